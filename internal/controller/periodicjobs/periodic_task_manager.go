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


package periodicjobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/telemetry"
)

// PeriodicTask is a job the manager runs on a fixed interval
type PeriodicTask interface {
	GetName() string
	GetInterval() time.Duration
	Run(ctx context.Context) error
}

// PeriodicTaskManager runs every registered task on its own ticker
type PeriodicTaskManager struct {
	mu      sync.Mutex
	tasks   []PeriodicTask
	metrics *telemetry.JobMetrics
	wg      sync.WaitGroup
	started bool
}

func NewPeriodicTaskManager() *PeriodicTaskManager {
	return &PeriodicTaskManager{}
}

// WithMetrics records every run on jm
func (m *PeriodicTaskManager) WithMetrics(jm *telemetry.JobMetrics) *PeriodicTaskManager {
	m.metrics = jm
	return m
}

func (m *PeriodicTaskManager) AddTask(task PeriodicTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
}

func (m *PeriodicTaskManager) Tasks() []PeriodicTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PeriodicTask(nil), m.tasks...)
}

// RunAll starts every task in the background. Each task runs once immediately and then
// on every tick until ctx is done. Use Wait to block until all of them returned.
func (m *PeriodicTaskManager) RunAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("periodic tasks already started")
	}
	for _, task := range m.tasks {
		if task.GetInterval() <= 0 {
			return fmt.Errorf("task %s has a non-positive interval %s", task.GetName(), task.GetInterval())
		}
	}
	m.started = true

	for _, task := range m.tasks {
		m.wg.Add(1)
		go func(task PeriodicTask) {
			defer m.wg.Done()
			m.loop(ctx, task)
		}(task)
	}
	return nil
}

// Wait blocks until every task loop has exited
func (m *PeriodicTaskManager) Wait() {
	m.wg.Wait()
}

func (m *PeriodicTaskManager) loop(ctx context.Context, task PeriodicTask) {
	ctx = logger.WithFields(ctx, logrus.Fields{"job": task.GetName()})
	log := logger.Logger(ctx)
	log.WithField("interval", task.GetInterval().String()).Info("periodic task scheduled")

	ticker := time.NewTicker(task.GetInterval())
	defer ticker.Stop()

	m.runOnce(ctx, task)
	for {
		select {
		case <-ctx.Done():
			log.Info("periodic task stopped")
			return
		case <-ticker.C:
			m.runOnce(ctx, task)
		}
	}
}

func (m *PeriodicTaskManager) runOnce(ctx context.Context, task PeriodicTask) {
	start := time.Now()
	err := task.Run(ctx)
	elapsed := time.Since(start)

	m.metrics.RecordJobRun(ctx, task.GetName(), elapsed.Seconds(), err)

	entry := logger.Logger(ctx).WithField("duration_ms", elapsed.Milliseconds())
	if err != nil {
		entry.WithError(err).Error("periodic task failed")
		return
	}
	entry.Debug("periodic task finished")
}
