/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package optimizer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.yaml")
	data := []byte(`apiVersion: optimizer.moga.io/v1alpha1
kind: OptimizerArgs
generations: 0
populationSize: 8
selectionSize: 3
dominance: Pareto
seed: 7
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	args, err := LoadArgs(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if args.Generations == nil || *args.Generations != 0 {
		t.Errorf("Expected an explicit zero generations, got %v", args.Generations)
	}
	if args.PopulationSize != 8 || args.SelectionSize != 3 || args.Seed != 7 {
		t.Errorf("Unexpected args %+v", args)
	}
	if args.Dominance != DominancePareto || args.Crowding != CrowdingOverwrite {
		t.Errorf("Unexpected modes %q %q", args.Dominance, args.Crowding)
	}
	if args.MaxResults != DefaultMaxResults || *args.EarlyStopThreshold != DefaultEarlyStopThreshold {
		t.Errorf("Expected unset fields to be defaulted, got %+v", args)
	}
}

func TestDecodeArgsErrors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "unknown field", data: "populationSize: 4\nmutationRate: 0.2\n"},
		{name: "invalid value", data: "populationSize: 5\n"},
		{name: "malformed", data: "populationSize: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeArgs([]byte(tc.data)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestDeepCopy(t *testing.T) {
	in := DefaultArgs()
	out := in.DeepCopy()
	*out.Generations = 99
	*out.EarlyStopThreshold = 1
	if *in.Generations == 99 || *in.EarlyStopThreshold == 1 {
		t.Error("DeepCopy shares pointers with its source")
	}
	if in.DeepCopyObject().(*OptimizerArgs).Generations == in.Generations {
		t.Error("DeepCopyObject shares pointers with its source")
	}
	var nilArgs *OptimizerArgs
	if nilArgs.DeepCopy() != nil {
		t.Error("Expected nil copy of nil args")
	}
}
