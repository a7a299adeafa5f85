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

	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	jobMetrics     *JobMetrics
	jobMetricsOnce sync.Once
)

type JobMetrics struct {
	RunTotal   *Counter
	ErrorTotal *Counter
	Duration   *Histogram
}

// NewJobMetrics registers the periodic job instruments on meter
func NewJobMetrics(meter otelmetric.Meter) (*JobMetrics, error) {
	runTotal, err := NewCounter(meter, MetricOptions{
		Name: BuildMetricName("job_run", MetricNameSuffixTotal),
		Description: "total number of periodic job runs. " +
			"error% = cupos_job_error_total / cupos_job_run_total",
		Unit: "1",
	})
	if err != nil {
		return nil, err
	}

	errorTotal, err := NewCounter(meter, MetricOptions{
		Name:        BuildMetricName("job_error", MetricNameSuffixTotal),
		Description: "total number of periodic job runs that returned an error",
		Unit:        "1",
	})
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, MetricOptions{
		Name:        BuildMetricName("job", MetricNameSuffixDuration),
		Description: "duration of a single periodic job run",
		Unit:        "s",
	})
	if err != nil {
		return nil, err
	}

	return &JobMetrics{
		RunTotal:   runTotal,
		ErrorTotal: errorTotal,
		Duration:   duration,
	}, nil
}

// InitJobMetrics registers the process-wide job metrics once
func InitJobMetrics(meter otelmetric.Meter) error {
	var initErr error
	jobMetricsOnce.Do(func() {
		jobMetrics, initErr = NewJobMetrics(meter)
	})
	return initErr
}

func GetJobMetrics() *JobMetrics {
	return jobMetrics
}

// RecordJobRun counts one run of job and its outcome. Safe on a nil receiver.
func (jm *JobMetrics) RecordJobRun(ctx context.Context, job string, seconds float64, err error) {
	if jm == nil {
		return
	}
	jm.RunTotal.Inc(ctx, WithJob(job))
	jm.Duration.Record(ctx, seconds, WithJob(job), WithStatus(StatusFor(err)))
	if err != nil {
		jm.ErrorTotal.Inc(ctx, WithJob(job))
	}
}
