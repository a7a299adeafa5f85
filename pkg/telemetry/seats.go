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
	"sync"
	"sync/atomic"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	seatMetrics     *SeatMetrics
	seatMetricsOnce sync.Once
)

// SeatMetrics instruments the seat store. It satisfies seats.Recorder.
type SeatMetrics struct {
	OperationTotal    *Counter
	OperationDuration *Histogram
	EnrollmentNet     *UpDownCounter
	Entries           *Gauge
	OverCapacity      *Gauge

	entries      atomic.Int64
	overCapacity atomic.Int64
}

// NewSeatMetrics registers the seat instruments on meter
func NewSeatMetrics(meter otelmetric.Meter) (*SeatMetrics, error) {
	sm := &SeatMetrics{}

	operationTotal, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("seat_operation", MetricNameSuffixTotal),
		Description: "total number of seat store operations by operation and status",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	operationDuration, err := NewHistogram(meter, MetricOptions{
		Name:        BuildMetricName("seat_operation", MetricNameSuffixDuration),
		Description: "latency of seat store operations including the backing cache round trips",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	enrollmentNet, err := NewUpDownCounter(meter, MetricOptions{
		Name:        BuildMetricName("seat_enrollment_net", ""),
		Description: "seats taken minus seats released through the store since start",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	entries, err := NewGauge(meter, MetricOptions{
		Name:        BuildMetricName("seat_entries", MetricNameSuffixCount),
		Description: "number of classes tracked by the seat store at the last audit",
		Unit:        "1",
	}, sm.entries.Load)
	if err != nil {
		return nil, err
	}

	overCapacity, err := NewGauge(meter, MetricOptions{
		Name:        BuildMetricName("seat_over_capacity", MetricNameSuffixCount),
		Description: "number of classes whose enrollment exceeds capacity at the last audit",
		Unit:        "1",
	}, sm.overCapacity.Load)
	if err != nil {
		return nil, err
	}

	sm.OperationTotal = operationTotal
	sm.OperationDuration = operationDuration
	sm.EnrollmentNet = enrollmentNet
	sm.Entries = entries
	sm.OverCapacity = overCapacity
	return sm, nil
}

// InitSeatMetrics registers the process-wide seat metrics once
func InitSeatMetrics(meter otelmetric.Meter) error {
	var initErr error
	seatMetricsOnce.Do(func() {
		seatMetrics, initErr = NewSeatMetrics(meter)
	})
	return initErr
}

func GetSeatMetrics() *SeatMetrics {
	return seatMetrics
}

func (sm *SeatMetrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if sm == nil {
		return
	}
	sm.OperationTotal.Inc(ctx, WithOperation(operation), WithStatus(StatusFor(err)))
	sm.OperationDuration.Record(ctx, duration.Seconds(), WithOperation(operation))
}

// RecordEnrollmentChange moves the net enrollment by delta. The store only reports
// mutations that changed enrollment, so a floored decrement releases nothing.
func (sm *SeatMetrics) RecordEnrollmentChange(ctx context.Context, delta int) {
	if sm == nil {
		return
	}
	sm.EnrollmentNet.Add(ctx, int64(delta))
}

// SetAuditResult stores the values reported by the entry gauges
func (sm *SeatMetrics) SetAuditResult(entries, overCapacity int) {
	if sm == nil {
		return
	}
	sm.entries.Store(int64(entries))
	sm.overCapacity.Store(int64(overCapacity))
}
