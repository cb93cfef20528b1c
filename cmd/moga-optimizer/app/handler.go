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

package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/moga-optimizer/cmd/moga-optimizer/app/options"
	"github.com/mihai-snyk/moga-optimizer/pkg/api/v1alpha1"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

const maxGeneratedCatalog = 10000

type handler struct {
	opts      *options.Options
	loader    *catalogLoader
	recorders []optimizer.Option

	// Runs writing artifacts share the output files.
	recordMu sync.Mutex
}

// NewHandler returns the HTTP surface of the optimizer.
func NewHandler(o *options.Options, gatherer prometheus.Gatherer) (http.Handler, error) {
	recorders, err := recorderOptions(o)
	if err != nil {
		return nil, err
	}
	h := &handler{
		opts:      o,
		loader:    newCatalogLoader(o),
		recorders: recorders,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /optimize", h.optimize)
	mux.HandleFunc("GET /generate-catalog", h.generateCatalog)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return otelhttp.NewHandler(mux, "moga-optimizer"), nil
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, v1alpha1.Message{Message: "MOGA Optimizer Microservice running!"})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, v1alpha1.HealthStatus{Status: "ok"})
}

// optimize runs on the configured catalog source. The seed and generations
// query parameters override the configured arguments.
func (h *handler) optimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := klog.FromContext(ctx)

	args := h.opts.Args.DeepCopy()
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid seed: "+err.Error())
			return
		}
		args.Seed = seed
	}
	if v := r.URL.Query().Get("generations"); v != "" {
		generations, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid generations: "+err.Error())
			return
		}
		args.Generations = &generations
	}
	if err := optimizer.ValidateOptimizerArgs(args); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.loader.Load(ctx)
	if err != nil {
		logger.Error(err, "Failed to load catalog")
		respondError(w, http.StatusBadGateway, "Failed to fetch catalog")
		return
	}

	if len(h.recorders) > 0 {
		h.recordMu.Lock()
		defer h.recordMu.Unlock()
	}
	result, err := optimizer.Optimize(ctx, entries, args, h.recorders...)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respond(w, http.StatusOK, v1alpha1.FromSelections(result.Selections))
}

func (h *handler) generateCatalog(w http.ResponseWriter, r *http.Request) {
	size := h.opts.CatalogSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxGeneratedCatalog {
			respondError(w, http.StatusBadRequest, "size must be an integer between 0 and "+strconv.Itoa(maxGeneratedCatalog))
			return
		}
		size = n
	}
	var seed uint64
	if v := r.URL.Query().Get("seed"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid seed: "+err.Error())
			return
		}
		seed = s
	}
	entries := h.loader.Generate(r.Context(), size, seed)
	respond(w, http.StatusOK, v1alpha1.FromCatalogEntries(entries))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, framework.ErrEmptyCatalog),
		errors.Is(err, framework.ErrInvalidMetric),
		errors.Is(err, framework.ErrDuplicateService),
		errors.Is(err, framework.ErrInvalidServiceID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, v1alpha1.ErrorResponse{Error: msg})
}
