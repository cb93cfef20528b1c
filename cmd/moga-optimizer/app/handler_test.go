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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"k8s.io/utils/ptr"

	"github.com/mihai-snyk/moga-optimizer/cmd/moga-optimizer/app/options"
	"github.com/mihai-snyk/moga-optimizer/pkg/api/v1alpha1"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metrics"
)

func catalogServer(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	body := `[
		{"id":"A","price":0.05,"availability":0.99,"latency":100,"service_name":"auth-service"},
		{"id":"B","price":0.03,"availability":0.98,"latency":150,"service_name":"user-service"},
		{"id":"C","price":0.10,"availability":0.95,"latency":80,"service_name":"order-service"}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestHandler(t *testing.T, o *options.Options) http.Handler {
	t.Helper()
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.RunsTotal, metrics.GenerationsTotal, metrics.CacheLookupsTotal)
	h, err := NewHandler(o, registry)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandlerInfoEndpoints(t *testing.T) {
	h := newTestHandler(t, options.NewOptions())

	testCases := []struct {
		target string
		status int
		body   map[string]string
	}{
		{target: "/", status: http.StatusOK, body: map[string]string{"message": "MOGA Optimizer Microservice running!"}},
		{target: "/healthz", status: http.StatusOK, body: map[string]string{"status": "ok"}},
		{target: "/unknown", status: http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			rec := get(t, h, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("Expected status %d, got %d", tc.status, rec.Code)
			}
			if tc.body == nil {
				return
			}
			var got map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.body, got); diff != "" {
				t.Errorf("Unexpected body (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandlerGenerateCatalog(t *testing.T) {
	h := newTestHandler(t, options.NewOptions())

	rec := get(t, h, "/generate-catalog?size=5&seed=9")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var services []v1alpha1.Service
	if err := json.Unmarshal(rec.Body.Bytes(), &services); err != nil {
		t.Fatal(err)
	}
	if len(services) != 5 {
		t.Fatalf("Expected 5 services, got %d", len(services))
	}

	for _, s := range services {
		if s.LastUpdated == nil {
			t.Errorf("Expected service %s to carry last_updated", s.ID)
		}
	}

	var again []v1alpha1.Service
	if err := json.Unmarshal(get(t, h, "/generate-catalog?size=5&seed=9").Body.Bytes(), &again); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(services, again, cmpopts.IgnoreFields(v1alpha1.Service{}, "LastUpdated")); diff != "" {
		t.Errorf("Seeded catalogs differ (-first +second):\n%s", diff)
	}

	if rec := get(t, h, "/generate-catalog?size=-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected a bad request for a negative size, got %d", rec.Code)
	}
}

func TestHandlerOptimize(t *testing.T) {
	srv, calls := catalogServer(t, 1)
	o := options.NewOptions()
	o.CatalogURL = srv.URL
	o.Args.PopulationSize = 4
	o.Args.Generations = ptr.To(3)
	h := newTestHandler(t, o)

	rec := get(t, h, "/optimize?seed=17")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if calls.Load() != 2 {
		t.Errorf("Expected the failed catalog request to be retried once, got %d calls", calls.Load())
	}

	var selections []v1alpha1.ServiceSelection
	if err := json.Unmarshal(rec.Body.Bytes(), &selections); err != nil {
		t.Fatal(err)
	}
	if len(selections) == 0 || len(selections) > 3 {
		t.Fatalf("Expected 1 to 3 selections, got %d", len(selections))
	}
	for _, sel := range selections {
		if len(sel.SelectedServices) == 0 || len(sel.SelectedServices) > 2 {
			t.Errorf("Unexpected selection size %d", len(sel.SelectedServices))
		}
	}

	if rec := get(t, h, "/optimize?seed=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected a bad request for an invalid seed, got %d", rec.Code)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(get(t, h, "/metrics").Body)
	if err != nil {
		t.Fatalf("Failed to parse metrics: %v", err)
	}
	runs, ok := families["moga_optimizer_runs_total"]
	if !ok {
		t.Fatal("Expected run metrics to be exposed")
	}
	for _, m := range runs.GetMetric() {
		if m.GetLabel()[0].GetValue() == "success" && m.GetCounter().GetValue() < 1 {
			t.Errorf("Expected at least one successful run, got %v", m.GetCounter().GetValue())
		}
	}
}

func TestHandlerOptimizeCatalogUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	o := options.NewOptions()
	o.CatalogURL = srv.URL

	rec := get(t, newTestHandler(t, o), "/optimize")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to fetch catalog") {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestHandlerOptimizeSmallCatalog(t *testing.T) {
	o := options.NewOptions()
	o.CatalogSize = 1

	rec := get(t, newTestHandler(t, o), "/optimize")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for a catalog smaller than the selection, got %d", rec.Code)
	}
}

func TestHandlerOptimizeBadQuery(t *testing.T) {
	h := newTestHandler(t, options.NewOptions())
	for _, target := range []string{
		"/optimize?seed=abc",
		"/optimize?generations=ten",
		"/optimize?generations=-1",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, h, target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
