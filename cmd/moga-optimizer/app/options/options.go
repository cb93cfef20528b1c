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

// Package options provides the flags used for the optimizer commands.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/component-base/logs"
	logsapi "k8s.io/component-base/logs/api/v1"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer"
	"github.com/mihai-snyk/moga-optimizer/pkg/tracing"
)

const (
	DefaultBindAddress  = ":8080"
	DefaultCatalogSize  = 20
	DefaultFetchTimeout = 10 * time.Second
)

// Options holds everything the optimizer commands can be configured with.
type Options struct {
	// Args are the optimizer arguments; ArgsFile, when set, replaces the
	// values given through flags.
	Args     *optimizer.OptimizerArgs
	ArgsFile string

	Logs    *logs.Options
	Tracing tracing.Config

	// Catalog source: a file, a URL, or the generator when both are empty.
	CatalogFile  string
	CatalogURL   string
	CatalogSize  int
	CatalogSeed  uint64
	FetchTimeout time.Duration
	FetchRetries int

	OutputDir string
	SkipPlots bool

	BindAddress string
}

// NewOptions returns options holding defaulted optimizer arguments.
func NewOptions() *Options {
	return &Options{
		Args:         optimizer.DefaultArgs(),
		Logs:         logs.NewOptions(),
		Tracing:      tracing.Config{SampleRate: tracing.DefaultSampleRate},
		CatalogSize:  DefaultCatalogSize,
		FetchTimeout: DefaultFetchTimeout,
		FetchRetries: 3,
		BindAddress:  DefaultBindAddress,
	}
}

// AddFlags adds flags for the optimizer arguments and the catalog source.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ArgsFile, "config", o.ArgsFile, "YAML file holding OptimizerArgs. Overrides the individual optimizer flags.")
	fs.IntVar(o.Args.Generations, "generations", *o.Args.Generations, "Maximum number of generations.")
	fs.IntVar(&o.Args.PopulationSize, "population-size", o.Args.PopulationSize, "Individuals per generation, must be even.")
	fs.IntVar(&o.Args.SelectionSize, "selection-size", o.Args.SelectionSize, "Number of services per selection.")
	fs.Float64Var(o.Args.EarlyStopThreshold, "early-stop-threshold", *o.Args.EarlyStopThreshold, "Average cost movement below which the run stops early. 0 disables early stopping.")
	fs.IntVar(&o.Args.EarlyStopWindow, "early-stop-window", o.Args.EarlyStopWindow, "Generations compared by the early stop check.")
	fs.IntVar(o.Args.EarlyStopMinGeneration, "early-stop-min-generation", *o.Args.EarlyStopMinGeneration, "Generations that always run before early stopping.")
	fs.IntVar(&o.Args.MaxResults, "max-results", o.Args.MaxResults, "Maximum number of returned selections.")
	fs.Float64Var(&o.Args.CostDiscount, "cost-discount", o.Args.CostDiscount, "Factor applied to the summed price of a selection.")
	fs.StringVar((*string)(&o.Args.Dominance), "dominance", string(o.Args.Dominance), fmt.Sprintf("Dominance relation, %q or %q.", optimizer.DominanceStrict, optimizer.DominancePareto))
	fs.StringVar((*string)(&o.Args.Crowding), "crowding", string(o.Args.Crowding), fmt.Sprintf("Crowding accumulation, %q or %q.", optimizer.CrowdingOverwrite, optimizer.CrowdingSum))
	fs.IntVar(&o.Args.Workers, "workers", o.Args.Workers, "Goroutines evaluating the initial population.")
	fs.Uint64Var(&o.Args.Seed, "seed", o.Args.Seed, "Seed of the random source. 0 seeds from the clock.")

	fs.StringVar(&o.CatalogFile, "catalog-file", o.CatalogFile, "JSON or YAML file listing the catalog services.")
	fs.StringVar(&o.CatalogURL, "catalog-url", o.CatalogURL, "Endpoint serving the catalog as JSON, e.g. http://auth-service/generate-catalog.")
	fs.IntVar(&o.CatalogSize, "catalog-size", o.CatalogSize, "Size of the generated catalog when no catalog file or URL is set.")
	fs.Uint64Var(&o.CatalogSeed, "catalog-seed", o.CatalogSeed, "Seed of the catalog generator. 0 seeds from the clock.")
	fs.DurationVar(&o.FetchTimeout, "catalog-timeout", o.FetchTimeout, "Timeout of a single catalog request.")
	fs.IntVar(&o.FetchRetries, "catalog-retries", o.FetchRetries, "Retries of a failed catalog request.")

	fs.StringVar(&o.OutputDir, "output-dir", o.OutputDir, "Directory receiving the convergence and final generation tables and charts. Empty disables them.")
	fs.BoolVar(&o.SkipPlots, "skip-plots", o.SkipPlots, "Write only the CSV tables to the output directory.")

	fs.StringVar(&o.Tracing.Endpoint, "otel-collector-endpoint", o.Tracing.Endpoint, "OTLP gRPC collector endpoint. Empty disables tracing.")
	fs.Float64Var(&o.Tracing.SampleRate, "otel-sample-rate", o.Tracing.SampleRate, "Fraction of runs traced.")

	logsapi.AddFlags(o.Logs, fs)
}

// AddServeFlags adds the flags of the HTTP server.
func (o *Options) AddServeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "bind-address", o.BindAddress, "Address the HTTP server listens on.")
}

// Complete loads ArgsFile when set and validates the result.
func (o *Options) Complete() error {
	if o.ArgsFile != "" {
		args, err := optimizer.LoadArgs(o.ArgsFile)
		if err != nil {
			return err
		}
		o.Args = args
	}
	if o.CatalogFile != "" && o.CatalogURL != "" {
		return fmt.Errorf("--catalog-file and --catalog-url are mutually exclusive")
	}
	if o.CatalogSize < 0 {
		return fmt.Errorf("--catalog-size must be non-negative, got %d", o.CatalogSize)
	}
	return optimizer.ValidateOptimizerArgs(o.Args)
}
