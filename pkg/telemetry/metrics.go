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


package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// MetricOptions names and describes an instrument
type MetricOptions struct {
	Name        string
	Description string
	Unit        string
}

func (o MetricOptions) description() otelmetric.InstrumentOption {
	return otelmetric.WithDescription(o.Description)
}

func (o MetricOptions) unit() otelmetric.InstrumentOption {
	return otelmetric.WithUnit(o.Unit)
}

// Counter is a monotonic int64 counter
type Counter struct {
	counter otelmetric.Int64Counter
}

func NewCounter(meter otelmetric.Meter, opts MetricOptions) (*Counter, error) {
	c, err := meter.Int64Counter(opts.Name, opts.description(), opts.unit())
	if err != nil {
		return nil, err
	}
	return &Counter{counter: c}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, n, otelmetric.WithAttributes(attrs...))
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Histogram records float64 samples, seconds for every duration in this package
type Histogram struct {
	histogram otelmetric.Float64Histogram
}

func NewHistogram(meter otelmetric.Meter, opts MetricOptions) (*Histogram, error) {
	h, err := meter.Float64Histogram(opts.Name, opts.description(), opts.unit())
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: h}, nil
}

func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, v, otelmetric.WithAttributes(attrs...))
}

// Gauge reports the value returned by read on every collection
type Gauge struct {
	gauge otelmetric.Int64ObservableGauge
}

func NewGauge(meter otelmetric.Meter, opts MetricOptions, read func() int64) (*Gauge, error) {
	g, err := meter.Int64ObservableGauge(opts.Name, opts.description(), opts.unit(),
		otelmetric.WithInt64Callback(func(_ context.Context, o otelmetric.Int64Observer) error {
			o.Observe(read())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Gauge{gauge: g}, nil
}

// UpDownCounter tracks a value that moves both ways
type UpDownCounter struct {
	counter otelmetric.Int64UpDownCounter
}

func NewUpDownCounter(meter otelmetric.Meter, opts MetricOptions) (*UpDownCounter, error) {
	c, err := meter.Int64UpDownCounter(opts.Name, opts.description(), opts.unit())
	if err != nil {
		return nil, err
	}
	return &UpDownCounter{counter: c}, nil
}

func (u *UpDownCounter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	u.counter.Add(ctx, n, otelmetric.WithAttributes(attrs...))
}

func (u *UpDownCounter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	u.Add(ctx, 1, attrs...)
}

func (u *UpDownCounter) Dec(ctx context.Context, attrs ...attribute.KeyValue) {
	u.Add(ctx, -1, attrs...)
}
