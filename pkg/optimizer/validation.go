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

	"k8s.io/apimachinery/pkg/runtime"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// ValidateOptimizerArgs validates defaulted optimizer arguments
func ValidateOptimizerArgs(obj runtime.Object) error {
	args := obj.(*OptimizerArgs)
	var errs []error

	if args.Generations != nil && *args.Generations < 0 {
		errs = append(errs, fmt.Errorf("generations must be non-negative, got %d", *args.Generations))
	}
	if args.PopulationSize < 2 || args.PopulationSize%2 != 0 {
		errs = append(errs, fmt.Errorf("populationSize must be an even number of at least 2, got %d", args.PopulationSize))
	}
	if args.SelectionSize < 1 {
		errs = append(errs, fmt.Errorf("selectionSize must be at least 1, got %d", args.SelectionSize))
	}
	if args.EarlyStopThreshold != nil && *args.EarlyStopThreshold < 0 {
		errs = append(errs, fmt.Errorf("earlyStopThreshold must be non-negative, got %v", *args.EarlyStopThreshold))
	}
	if args.EarlyStopWindow < 1 {
		errs = append(errs, fmt.Errorf("earlyStopWindow must be at least 1, got %d", args.EarlyStopWindow))
	}
	if args.EarlyStopMinGeneration != nil && *args.EarlyStopMinGeneration < 0 {
		errs = append(errs, fmt.Errorf("earlyStopMinGeneration must be non-negative, got %d", *args.EarlyStopMinGeneration))
	}
	if args.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("maxResults must be at least 1, got %d", args.MaxResults))
	}
	if args.CostDiscount <= 0 || args.CostDiscount > 1 {
		errs = append(errs, fmt.Errorf("costDiscount must be in (0, 1], got %v", args.CostDiscount))
	}

	switch args.Dominance {
	case DominanceStrict, DominancePareto:
	default:
		errs = append(errs, fmt.Errorf("dominance must be %q or %q, got %q", DominanceStrict, DominancePareto, args.Dominance))
	}
	switch args.Crowding {
	case CrowdingOverwrite, CrowdingSum:
	default:
		errs = append(errs, fmt.Errorf("crowding must be %q or %q, got %q", CrowdingOverwrite, CrowdingSum, args.Crowding))
	}

	if args.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", args.Workers))
	}

	return utilerrors.NewAggregate(errs)
}
