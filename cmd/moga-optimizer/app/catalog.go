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
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/mihai-snyk/moga-optimizer/cmd/moga-optimizer/app/options"
	"github.com/mihai-snyk/moga-optimizer/pkg/api/v1alpha1"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/catalog"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

const maxCatalogBytes = 16 << 20

// catalogLoader resolves the catalog source configured in the options.
type catalogLoader struct {
	opts   *options.Options
	client *http.Client
	clock  clock.PassiveClock
}

func newCatalogLoader(o *options.Options) *catalogLoader {
	return &catalogLoader{
		opts: o,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   o.FetchTimeout,
		},
		clock: clock.RealClock{},
	}
}

func (l *catalogLoader) Load(ctx context.Context) ([]framework.CatalogEntry, error) {
	switch {
	case l.opts.CatalogFile != "":
		return l.readFile(l.opts.CatalogFile)
	case l.opts.CatalogURL != "":
		return l.fetch(ctx, l.opts.CatalogURL)
	default:
		return l.Generate(ctx, l.opts.CatalogSize, l.opts.CatalogSeed), nil
	}
}

// Generate draws a synthetic catalog stamped with the current time. A zero
// seed seeds from the clock.
func (l *catalogLoader) Generate(ctx context.Context, size int, seed uint64) []framework.CatalogEntry {
	now := l.clock.Now()
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	klog.FromContext(ctx).V(2).Info("Generating catalog", "size", size, "seed", seed)
	entries := catalog.Generate(rand.New(rand.NewSource(seed)), size)
	for i := range entries {
		entries[i].LastUpdated = now.UTC().Truncate(time.Second)
	}
	return entries
}

func (l *catalogLoader) readFile(path string) ([]framework.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	services, err := v1alpha1.DecodeCatalog(data)
	if err != nil {
		return nil, err
	}
	return v1alpha1.ToCatalogEntries(services), nil
}

// fetch retries transport errors and 5xx responses with exponential backoff.
func (l *catalogLoader) fetch(ctx context.Context, url string) ([]framework.CatalogEntry, error) {
	logger := klog.FromContext(ctx).WithValues("url", url)

	var data []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("catalog endpoint returned %s", resp.Status)
			if resp.StatusCode < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			return err
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.V(2).Info("Catalog fetch failed, retrying", "err", err, "backoff", wait)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(max(l.opts.FetchRetries, 0))), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}

	services, err := v1alpha1.DecodeCatalog(data)
	if err != nil {
		return nil, err
	}
	logger.V(2).Info("Fetched catalog", "services", len(services))
	return v1alpha1.ToCatalogEntries(services), nil
}
