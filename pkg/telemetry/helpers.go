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
	"go.opentelemetry.io/otel/attribute"
)

// naming conventions for metric names
const (
	MetricNameSuffixTotal    = "_total"
	MetricNameSuffixDuration = "_duration_seconds"
	MetricNameSuffixCount    = "_count"
)

const (
	AttrJob       = "cupos_job"
	AttrStatus    = "cupos_status"
	AttrOperation = "cupos_operation"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BuildMetricName prefixes baseName with the service namespace
func BuildMetricName(baseName, suffix string) string {
	return "cupos_" + baseName + suffix
}

// periodic job name
func WithJob(job string) attribute.KeyValue {
	return attribute.String(AttrJob, job)
}

// creates attribute for status
func WithStatus(status string) attribute.KeyValue {
	return attribute.String(AttrStatus, status)
}

// seat store operation, see the seats.Operation* names
func WithOperation(operation string) attribute.KeyValue {
	return attribute.String(AttrOperation, operation)
}

// StatusFor maps an operation error to StatusSuccess or StatusError
func StatusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
