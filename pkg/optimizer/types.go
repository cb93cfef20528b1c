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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DominanceMode selects the dominance relation used for ranking.
type DominanceMode string

const (
	// DominanceStrict requires an individual to be strictly better in all
	// three objectives.
	DominanceStrict DominanceMode = "Strict"
	// DominancePareto requires no worse everywhere and strictly better once.
	DominancePareto DominanceMode = "Pareto"
)

// CrowdingMode selects how per-objective crowding contributions combine.
type CrowdingMode string

const (
	CrowdingOverwrite CrowdingMode = "Overwrite"
	CrowdingSum       CrowdingMode = "Sum"
)

// +k8s:deepcopy-gen=true
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// OptimizerArgs holds the arguments used to configure a service selection run
type OptimizerArgs struct {
	metav1.TypeMeta `json:",inline"`

	// Generations is the maximum number of generations to evolve. An explicit
	// zero returns the best of the initial population.
	Generations *int `json:"generations,omitempty"`
	// PopulationSize is the number of individuals per generation, must be even
	PopulationSize int `json:"populationSize,omitempty"`
	// SelectionSize is the number of services in a randomly drawn selection
	SelectionSize int `json:"selectionSize,omitempty"`

	EarlyStopThreshold     *float64 `json:"earlyStopThreshold,omitempty"`
	EarlyStopWindow        int      `json:"earlyStopWindow,omitempty"`
	EarlyStopMinGeneration *int     `json:"earlyStopMinGeneration,omitempty"`

	// MaxResults caps the number of returned selections
	MaxResults int `json:"maxResults,omitempty"`
	// CostDiscount multiplies the summed price of a selection
	CostDiscount float64 `json:"costDiscount,omitempty"`

	Dominance DominanceMode `json:"dominance,omitempty"`
	Crowding  CrowdingMode  `json:"crowding,omitempty"`

	// Workers bounds the goroutines evaluating the initial population
	Workers int `json:"workers,omitempty"`
	// Seed of the random source; 0 seeds from the clock
	Seed uint64 `json:"seed,omitempty"`
}
