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

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"k8s.io/klog/v2"
)

const (
	// TracerName is the instrumentation scope of all spans emitted by the optimizer.
	TracerName = "github.com/mihai-snyk/moga-optimizer"

	DefaultServiceName = "moga-optimizer"
	DefaultSampleRate  = 0.1
)

var provider trace.TracerProvider = noop.NewTracerProvider()

// Tracer returns the tracer configured by NewTracerProvider, or a no-op tracer.
func Tracer() trace.Tracer {
	return provider.Tracer(TracerName)
}

// SetTracerProvider replaces the provider backing Tracer.
func SetTracerProvider(tp trace.TracerProvider) {
	provider = tp
}

// Config holds the OTLP exporter settings.
type Config struct {
	// Endpoint of the OTLP gRPC collector. Empty disables tracing.
	Endpoint    string
	ServiceName string
	SampleRate  float64
}

// NewTracerProvider installs an OTLP/gRPC backed tracer provider and returns a
// shutdown func flushing pending spans. An empty endpoint keeps the no-op
// provider.
func NewTracerProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	logger := klog.FromContext(ctx)
	if cfg.Endpoint == "" {
		logger.V(2).Info("Tracing endpoint not set, using no-op tracer")
		provider = noop.NewTracerProvider()
		return func(context.Context) error { return nil }, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	client := otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	provider = tp

	logger.Info("Tracing enabled", "endpoint", cfg.Endpoint, "serviceName", cfg.ServiceName, "sampleRate", cfg.SampleRate)
	return tp.Shutdown, nil
}
