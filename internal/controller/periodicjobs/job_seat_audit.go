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


// Package periodicjobs provides scheduled background jobs for the cupos service.
//
// This file implements the seat audit job, which walks the seat store, reports
// classes whose enrollment went past capacity and feeds the seat entry gauges.
package periodicjobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
	"github.com/ritmofit/cupos/pkg/telemetry"
)

const (
	// SeatAuditJobName is the unique identifier of the seat audit job
	SeatAuditJobName = "cupos_seat_audit"

	// DefaultSeatAuditInterval is used when no interval is configured
	DefaultSeatAuditInterval = 5 * time.Minute
)

// SeatAuditJob inspects every seat entry. Over-capacity classes can only exist while
// capacity enforcement is off, so they are reported rather than corrected.
type SeatAuditJob struct {
	store    seats.SeatStoreInterface
	metrics  *telemetry.SeatMetrics
	interval time.Duration

	mu         sync.Mutex
	lastReport AuditReport
}

// AuditReport summarizes one audit run
type AuditReport struct {
	Entries      int
	Full         int
	OverCapacity []string
	FreeSeats    int
}

// NewSeatAuditJob creates the job; metrics may be nil
func NewSeatAuditJob(store seats.SeatStoreInterface, metrics *telemetry.SeatMetrics, interval time.Duration) (*SeatAuditJob, error) {
	if store == nil {
		return nil, fmt.Errorf("seat store is required")
	}
	if interval <= 0 {
		interval = DefaultSeatAuditInterval
	}
	return &SeatAuditJob{
		store:    store,
		metrics:  metrics,
		interval: interval,
	}, nil
}

// AddToPeriodicTaskManager registers this job with mgr
func (j *SeatAuditJob) AddToPeriodicTaskManager(mgr *PeriodicTaskManager) {
	mgr.AddTask(j)
}

func (j *SeatAuditJob) GetInterval() time.Duration {
	return j.interval
}

func (j *SeatAuditJob) GetName() string {
	return SeatAuditJobName
}

// LastReport returns the result of the most recent successful run
func (j *SeatAuditJob) LastReport() AuditReport {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastReport
}

func (j *SeatAuditJob) Run(ctx context.Context) error {
	log := logger.Logger(ctx)

	all, err := j.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list seat counts: %w", err)
	}

	report := buildReport(all)
	for _, classID := range report.OverCapacity {
		seat := all[classID]
		log.WithFields(logrus.Fields{
			"class_id":   classID,
			"capacity":   seat.Capacity,
			"enrollment": seat.CurrentEnrollment,
		}).Warn("class enrollment exceeds capacity")
	}

	j.metrics.SetAuditResult(report.Entries, len(report.OverCapacity))
	j.mu.Lock()
	j.lastReport = report
	j.mu.Unlock()

	log.WithFields(logrus.Fields{
		"entries":       report.Entries,
		"full":          report.Full,
		"over_capacity": len(report.OverCapacity),
		"free_seats":    report.FreeSeats,
	}).Info("seat audit completed")
	return nil
}

func buildReport(all map[string]seats.SeatCount) AuditReport {
	report := AuditReport{Entries: len(all)}
	for id, seat := range all {
		if seat.Full() {
			report.Full++
		}
		if seat.CurrentEnrollment > seat.Capacity {
			report.OverCapacity = append(report.OverCapacity, id)
		}
		report.FreeSeats += seat.Available()
	}
	sort.Strings(report.OverCapacity)
	return report
}
