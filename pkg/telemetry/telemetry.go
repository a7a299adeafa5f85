/*
Copyright 2025.

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


// Package telemetry exports cupos metrics over OTLP/HTTP and wraps the otel
// instruments used by the seat store and the periodic jobs.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// MeterName is the instrumentation scope of every cupos metric
const MeterName = "github.com/ritmofit/cupos"

var (
	meterProvider     *metric.MeterProvider
	meterProviderOnce sync.Once
	shutdownOnce      sync.Once
)

// Config of the OTLP metrics pipeline
type Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"serviceName"`
	ServiceVersion string `mapstructure:"serviceVersion"`
	// OTLPEndpoint accepts host:port or a URL; scheme and path are ignored
	OTLPEndpoint string `mapstructure:"otlpEndpoint"`
	Insecure     bool   `mapstructure:"insecure"`
	// ExportInterval defaults to the SDK's 60s
	ExportInterval time.Duration `mapstructure:"exportInterval"`
}

// Init installs the global meter provider once per process. A disabled config
// still installs a provider so instruments work, nothing is exported.
func Init(ctx context.Context, config Config) error {
	var initErr error
	meterProviderOnce.Do(func() {
		if !config.Enabled {
			meterProvider = metric.NewMeterProvider()
		} else {
			meterProvider, initErr = newExportingProvider(ctx, config)
			if initErr != nil {
				return
			}
		}
		otel.SetMeterProvider(meterProvider)
	})
	return initErr
}

func newExportingProvider(ctx context.Context, config Config) (*metric.MeterProvider, error) {
	if config.ServiceName == "" {
		return nil, errors.New("service name is required")
	}
	endpoint := exporterEndpoint(config.OTLPEndpoint)
	if endpoint == "" {
		return nil, errors.New("OTLP endpoint is required")
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if config.Insecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	var readerOpts []metric.PeriodicReaderOption
	if config.ExportInterval > 0 {
		readerOpts = append(readerOpts, metric.WithInterval(config.ExportInterval))
	}
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, readerOpts...)),
	), nil
}

// exporterEndpoint reduces raw to the host[:port] form otlpmetrichttp.WithEndpoint expects
func exporterEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// Shutdown flushes and stops the provider installed by Init
func Shutdown(ctx context.Context) error {
	var shutdownErr error
	shutdownOnce.Do(func() {
		if meterProvider != nil {
			shutdownErr = meterProvider.Shutdown(ctx)
		}
	})
	return shutdownErr
}

func GetMeter(name string, opts ...otelmetric.MeterOption) otelmetric.Meter {
	return otel.Meter(name, opts...)
}
