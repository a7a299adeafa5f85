package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/ritmofit/cupos/internal/controller/periodicjobs"
	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
	"github.com/ritmofit/cupos/pkg/telemetry"
)

const (
	periodicTasksControllerName = "periodictasks"

	// DefaultInitialDelay lets the API come up before the first audit touches the store
	DefaultInitialDelay = 10 * time.Second
)

// PeriodicTasksController owns the background maintenance jobs of the service
type PeriodicTasksController struct {
	taskManager  *periodicjobs.PeriodicTaskManager
	initialDelay time.Duration
}

// PeriodicTasksOptions configures NewPeriodicTasksController
type PeriodicTasksOptions struct {
	AuditInterval time.Duration
	InitialDelay  time.Duration
	SeatMetrics   *telemetry.SeatMetrics
	JobMetrics    *telemetry.JobMetrics
}

func NewPeriodicTasksController(store seats.SeatStoreInterface, opts PeriodicTasksOptions) (*PeriodicTasksController, error) {
	periodicTaskManager := periodicjobs.NewPeriodicTaskManager().WithMetrics(opts.JobMetrics)

	// Add jobs to the periodic task manager
	seatAuditJob, err := periodicjobs.NewSeatAuditJob(store, opts.SeatMetrics, opts.AuditInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create seat audit job: %w", err)
	}
	seatAuditJob.AddToPeriodicTaskManager(periodicTaskManager)

	delay := opts.InitialDelay
	if delay < 0 {
		delay = 0
	}

	return &PeriodicTasksController{
		taskManager:  periodicTaskManager,
		initialDelay: delay,
	}, nil
}

// TaskManager exposes the manager so callers can register extra tasks before Start
func (ptc *PeriodicTasksController) TaskManager() *periodicjobs.PeriodicTaskManager {
	return ptc.taskManager
}

// Start waits for the initial delay, runs every task until ctx is done and returns
// once all task loops have exited. A cancelled context is a clean stop.
func (ptc *PeriodicTasksController) Start(ctx context.Context) error {
	log := logger.Logger(ctx).WithField("controller", periodicTasksControllerName)
	log.Info("Starting periodic tasks controller")

	defer func() {
		log.Info("Finishing periodic tasks controller")
	}()

	// Wait for initialization delay or context cancellation
	select {
	case <-ctx.Done():
		log.Info("Context canceled during initialization")
		return nil
	case <-time.After(ptc.initialDelay):
		log.Debug("Periodic tasks ready to start after initialization delay")
	}

	if err := ptc.taskManager.RunAll(ctx); err != nil {
		log.WithError(err).Error("Error occurred while running periodic tasks")
		return err
	}

	log.Info("All periodic tasks have been started successfully")
	ptc.taskManager.Wait()
	return nil
}
