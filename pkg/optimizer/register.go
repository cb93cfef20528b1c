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
	"fmt"
	"os"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"sigs.k8s.io/yaml"
)

const GroupName = "optimizer.moga.io"

var (
	SchemeGroupVersion = schema.GroupVersion{Group: GroupName, Version: "v1alpha1"}

	SchemeBuilder = runtime.NewSchemeBuilder(addKnownTypes, addDefaultingFuncs)
	AddToScheme   = SchemeBuilder.AddToScheme

	// Scheme knows OptimizerArgs and its defaulting funcs.
	Scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(AddToScheme(Scheme))
}

func addKnownTypes(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(SchemeGroupVersion, &OptimizerArgs{})
	return nil
}

// DefaultArgs returns a defaulted OptimizerArgs.
func DefaultArgs() *OptimizerArgs {
	args := &OptimizerArgs{}
	Scheme.Default(args)
	return args
}

// DecodeArgs parses YAML or JSON, applies defaults and validates the result.
func DecodeArgs(data []byte) (*OptimizerArgs, error) {
	args := &OptimizerArgs{}
	if err := yaml.UnmarshalStrict(data, args); err != nil {
		return nil, fmt.Errorf("decoding optimizer args: %w", err)
	}
	Scheme.Default(args)
	if err := ValidateOptimizerArgs(args); err != nil {
		return nil, fmt.Errorf("invalid optimizer args: %w", err)
	}
	return args, nil
}

// LoadArgs reads optimizer arguments from a YAML or JSON file.
func LoadArgs(path string) (*OptimizerArgs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeArgs(data)
}
