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
	"runtime"

	kruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/objectives"
)

const (
	DefaultGenerations            = 10
	DefaultPopulationSize         = 20
	DefaultSelectionSize          = 2
	DefaultEarlyStopThreshold     = 0.01
	DefaultEarlyStopWindow        = 5
	DefaultEarlyStopMinGeneration = 6
	DefaultMaxResults             = 3
)

func addDefaultingFuncs(scheme *kruntime.Scheme) error {
	return RegisterDefaults(scheme)
}

func RegisterDefaults(scheme *kruntime.Scheme) error {
	klog.V(5).InfoS("Registering defaults", "name", Name)
	scheme.AddTypeDefaultingFunc(&OptimizerArgs{}, func(obj interface{}) {
		SetDefaults_OptimizerArgs(obj.(*OptimizerArgs))
	})
	return nil
}

func SetDefaults_OptimizerArgs(obj kruntime.Object) {
	args := obj.(*OptimizerArgs)

	if args.Generations == nil {
		args.Generations = ptr.To(DefaultGenerations)
	}
	if args.PopulationSize == 0 {
		args.PopulationSize = DefaultPopulationSize
	}
	if args.SelectionSize == 0 {
		args.SelectionSize = DefaultSelectionSize
	}
	if args.EarlyStopThreshold == nil {
		args.EarlyStopThreshold = ptr.To(DefaultEarlyStopThreshold)
	}
	if args.EarlyStopWindow == 0 {
		args.EarlyStopWindow = DefaultEarlyStopWindow
	}
	if args.EarlyStopMinGeneration == nil {
		args.EarlyStopMinGeneration = ptr.To(DefaultEarlyStopMinGeneration)
	}
	if args.MaxResults == 0 {
		args.MaxResults = DefaultMaxResults
	}
	if args.CostDiscount == 0 {
		args.CostDiscount = objectives.DefaultCostDiscount
	}
	if args.Dominance == "" {
		args.Dominance = DominanceStrict
	}
	if args.Crowding == "" {
		args.Crowding = CrowdingOverwrite
	}
	if args.Workers == 0 {
		args.Workers = runtime.NumCPU()
	}
}
