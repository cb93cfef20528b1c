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

// Package app implements the optimizer commands.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	logsapi "k8s.io/component-base/logs/api/v1"
	"k8s.io/component-base/version"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/moga-optimizer/cmd/moga-optimizer/app/options"
	"github.com/mihai-snyk/moga-optimizer/pkg/api/v1alpha1"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metrics"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/util"
	"github.com/mihai-snyk/moga-optimizer/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// Logging configuration is process wide and can only be applied once.
var (
	loggingOnce sync.Once
	loggingErr  error
)

func applyLogging(o *options.Options) error {
	loggingOnce.Do(func() {
		loggingErr = logsapi.ValidateAndApply(o.Logs, nil)
	})
	return loggingErr
}

// NewOptimizerCommand creates the root command. Without a subcommand it runs a
// single optimization and prints the selections.
func NewOptimizerCommand(out io.Writer) *cobra.Command {
	o := options.NewOptions()

	cmd := &cobra.Command{
		Use:   "moga-optimizer",
		Short: "moga-optimizer",
		Long:  "Selects the services with the best cost, latency and availability trade-offs from a catalog.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyLogging(o); err != nil {
				return err
			}
			return o.Complete()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunOptimize(cmd.Context(), o, out)
		},
		SilenceUsage: true,
	}
	o.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newOptimizeCommand(o, out), newServeCommand(o), newGenerateCatalogCommand(o, out), newPlotCommand(o))
	return cmd
}

func newOptimizeCommand(o *options.Options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Run a single optimization and print the selections as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunOptimize(cmd.Context(), o, out)
		},
	}
}

func newServeCommand(o *options.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve optimizations, a generated catalog and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunServer(ctx, o)
		},
	}
	o.AddServeFlags(cmd.Flags())
	return cmd
}

func newGenerateCatalogCommand(o *options.Options, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-catalog",
		Short: "Print a synthetic catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd.Context())
			entries := newCatalogLoader(o).Generate(ctx, o.CatalogSize, o.CatalogSeed)
			return writeJSON(out, v1alpha1.FromCatalogEntries(entries))
		},
	}
}

func newPlotCommand(o *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Redraw the charts of --output-dir from its CSV tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.OutputDir == "" {
				return errors.New("--output-dir is required")
			}
			return util.RenderPlots(contextOrBackground(cmd.Context()), o.OutputDir)
		},
	}
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version of moga-optimizer",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "moga-optimizer version %+v\n", version.Get())
		},
	}
}

// RunOptimize loads the catalog, runs the optimizer once and prints the result.
func RunOptimize(ctx context.Context, o *options.Options, out io.Writer) error {
	ctx = contextOrBackground(ctx)
	shutdown, err := tracing.NewTracerProvider(ctx, o.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			klog.FromContext(ctx).Error(err, "Failed to flush traces")
		}
	}()

	entries, err := newCatalogLoader(o).Load(ctx)
	if err != nil {
		return err
	}
	opts, err := recorderOptions(o)
	if err != nil {
		return err
	}

	result, err := optimizer.Optimize(ctx, entries, o.Args, opts...)
	if err != nil {
		return err
	}
	return writeJSON(out, v1alpha1.FromSelections(result.Selections))
}

// RunServer serves until ctx is done.
func RunServer(ctx context.Context, o *options.Options) error {
	logger := klog.FromContext(ctx)

	shutdown, err := tracing.NewTracerProvider(ctx, o.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error(err, "Failed to flush traces")
		}
	}()

	metrics.Register(prometheus.DefaultRegisterer)
	handler, err := NewHandler(o, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              o.BindAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", o.BindAddress)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func recorderOptions(o *options.Options) ([]optimizer.Option, error) {
	if o.OutputDir == "" {
		return nil, nil
	}
	recorder, err := util.NewFileRecorder(o.OutputDir)
	if err != nil {
		return nil, err
	}
	recorder.SkipPlots = o.SkipPlots
	return []optimizer.Option{optimizer.WithRecorder(recorder)}, nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
