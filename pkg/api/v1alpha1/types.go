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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Service is a catalog record as served by a catalog endpoint or read from a
// catalog file
type Service struct {
	// ID uniquely identifies the service within a catalog
	ID string `json:"id"`

	// Price per request, must be non-negative
	Price float64 `json:"price"`

	// Availability is the fraction of successful requests, in (0, 1]
	Availability float64 `json:"availability"`

	// Latency in seconds, must be non-negative
	Latency float64 `json:"latency"`

	ServiceName string       `json:"service_name,omitempty"`
	Version     string       `json:"version,omitempty"`
	Owner       string       `json:"owner,omitempty"`
	Host        string       `json:"host,omitempty"`
	Port        int          `json:"port,omitempty"`
	Status      string       `json:"status,omitempty"`
	LastUpdated *metav1.Time `json:"last_updated,omitempty"`
}

// ServiceSelection is one recommended combination of services
type ServiceSelection struct {
	// SelectedServices are the members of the combination
	SelectedServices []Service `json:"selected_services"`

	// Cost is the discounted summed price
	Cost float64 `json:"cost"`

	// Availability is the product of the member availabilities
	Availability float64 `json:"availability"`

	// Latency is the slowest member latency
	Latency float64 `json:"latency"`
}

// Message is the body of informational endpoints
type Message struct {
	Message string `json:"message"`
}

// HealthStatus is the body of the health endpoint
type HealthStatus struct {
	Status string `json:"status"`
}

// ErrorResponse is returned with non 2xx status codes
type ErrorResponse struct {
	Error string `json:"error"`
}
