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

package v1alpha1

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// DecodeCatalog parses a JSON or YAML list of services.
func DecodeCatalog(data []byte) ([]Service, error) {
	var services []Service
	if err := yaml.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return services, nil
}

// ToCatalogEntries converts wire services to catalog entries.
func ToCatalogEntries(services []Service) []framework.CatalogEntry {
	entries := make([]framework.CatalogEntry, len(services))
	for i, s := range services {
		entries[i] = framework.CatalogEntry{
			ID:           s.ID,
			Price:        s.Price,
			Availability: s.Availability,
			Latency:      s.Latency,
			Name:         s.ServiceName,
			Version:      s.Version,
			Owner:        s.Owner,
			Host:         s.Host,
			Port:         s.Port,
			Status:       s.Status,
		}
		if s.LastUpdated != nil {
			entries[i].LastUpdated = s.LastUpdated.Time
		}
	}
	return entries
}

// FromCatalogEntry converts a catalog entry to its wire form.
func FromCatalogEntry(e framework.CatalogEntry) Service {
	s := Service{
		ID:           e.ID,
		Price:        e.Price,
		Availability: e.Availability,
		Latency:      e.Latency,
		ServiceName:  e.Name,
		Version:      e.Version,
		Owner:        e.Owner,
		Host:         e.Host,
		Port:         e.Port,
		Status:       e.Status,
	}
	if !e.LastUpdated.IsZero() {
		s.LastUpdated = &metav1.Time{Time: e.LastUpdated}
	}
	return s
}

// FromCatalogEntries converts catalog entries to their wire form.
func FromCatalogEntries(entries []framework.CatalogEntry) []Service {
	services := make([]Service, len(entries))
	for i, e := range entries {
		services[i] = FromCatalogEntry(e)
	}
	return services
}

// FromSelections converts optimizer results to their wire form.
func FromSelections(selections []framework.Selection) []ServiceSelection {
	out := make([]ServiceSelection, len(selections))
	for i, sel := range selections {
		out[i] = ServiceSelection{
			SelectedServices: FromCatalogEntries(sel.Services),
			Cost:             sel.Cost,
			Availability:     sel.Availability,
			Latency:          sel.Latency,
		}
	}
	return out
}
