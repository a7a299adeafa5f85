package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ritmofit/cupos/internal/controller"
	"github.com/ritmofit/cupos/internal/httpapi/handlers"
	"github.com/ritmofit/cupos/internal/httpapi/server"
	"github.com/ritmofit/cupos/pkg/clients/classes"
	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
	"github.com/ritmofit/cupos/pkg/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// ServeCmd runs the HTTP API and the periodic jobs until SIGINT or SIGTERM.
type ServeCmd struct {
	Port     int    `help:"Override apiServer.port."`
	SeedFile string `help:"Seed file applied before serving. Overrides seats.seedFile."`
	NoJobs   bool   `help:"Do not run the periodic jobs."`
}

func (s *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.run(ctx, g, controller.DefaultInitialDelay)
}

func (s *ServeCmd) run(ctx context.Context, g *Globals, initialDelay time.Duration) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if s.Port > 0 {
		cfg.APIServer.Port = s.Port
	}
	if s.SeedFile != "" {
		cfg.Seats.SeedFile = s.SeedFile
	}
	if s.NoJobs {
		cfg.Jobs.Enabled = false
	}
	if !cfg.APIServer.Enabled && !cfg.Jobs.Enabled {
		return errors.New("nothing to run: apiServer and jobs are both disabled")
	}

	log := logger.Logger(ctx)

	if err := telemetry.Init(ctx, cfg.Telemetry); err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("failed to shut down telemetry")
		}
	}()

	meter := telemetry.GetMeter(telemetry.MeterName)
	if err := telemetry.InitSeatMetrics(meter); err != nil {
		return fmt.Errorf("failed to initialize seat metrics: %w", err)
	}
	if err := telemetry.InitJobMetrics(meter); err != nil {
		return fmt.Errorf("failed to initialize job metrics: %w", err)
	}

	store, release, err := openStore(cfg, seats.WithRecorder(telemetry.GetSeatMetrics()))
	if err != nil {
		return err
	}
	defer release()

	if cfg.Seats.SeedFile != "" {
		entries, err := seats.LoadSeedFile(cfg.Seats.SeedFile)
		if err != nil {
			return err
		}
		seeded, err := store.Seed(ctx, entries)
		if err != nil {
			return err
		}
		log.WithField("classes", len(seeded)).Info("applied seed file")
	}

	var catalog handlers.ClassLister
	if cfg.Classes.BaseURL != "" {
		client, err := classes.NewClient(cfg.Classes)
		if err != nil {
			return fmt.Errorf("failed to create classes client: %w", err)
		}
		catalog = client
	}

	eg, egCtx := errgroup.WithContext(ctx)

	if cfg.APIServer.Enabled {
		apiServer := server.NewAPIServer(cfg, store, catalog)
		eg.Go(func() error {
			return apiServer.Start(egCtx)
		})
	}

	if cfg.Jobs.Enabled {
		periodicTasks, err := controller.NewPeriodicTasksController(store, controller.PeriodicTasksOptions{
			AuditInterval: cfg.Jobs.AuditInterval,
			InitialDelay:  initialDelay,
			SeatMetrics:   telemetry.GetSeatMetrics(),
			JobMetrics:    telemetry.GetJobMetrics(),
		})
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return periodicTasks.Start(egCtx)
		})
	}

	log.WithField("environment", cfg.App.Environment).Info("cupos started")
	if err := eg.Wait(); err != nil {
		return err
	}
	log.Info("cupos stopped")
	return nil
}
