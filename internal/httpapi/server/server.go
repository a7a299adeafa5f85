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


package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritmofit/cupos/internal/httpapi/handlers"
	"github.com/ritmofit/cupos/internal/httpapi/middleware"
	"github.com/ritmofit/cupos/pkg/config"
	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
)

const defaultShutdownTimeout = 10 * time.Second

type APIServer struct {
	config   *config.AppConfig
	router   *gin.Engine
	handlers *handlers.Handlers
	server   *http.Server
}

func NewAPIServer(cfg *config.AppConfig, store seats.SeatStoreInterface, catalog handlers.ClassLister) *APIServer {
	if cfg.App.Environment == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(&cfg.APIServer))

	s := &APIServer{
		config:   cfg,
		router:   router,
		handlers: handlers.NewHandlers(cfg, store, catalog),
	}

	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	s.router.GET("/healthz", s.handlers.Health)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.Auth(s.config))

	v1.GET("/status", s.handlers.Status)

	seatRoutes := v1.Group("/seats")
	seatRoutes.GET("", s.handlers.ListSeats)
	seatRoutes.GET("/:classId", s.handlers.GetSeat)
	seatRoutes.POST("/:classId", s.handlers.InitializeSeat)
	seatRoutes.POST("/:classId/increment", s.handlers.IncrementSeat)
	seatRoutes.POST("/:classId/decrement", s.handlers.DecrementSeat)

	v1.GET("/classes", s.handlers.ListClasses)
}

// Handler exposes the router, mainly for tests
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *APIServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.config.APIServer.Host, fmt.Sprint(s.config.APIServer.Port)),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger(ctx).WithField("address", s.server.Addr).Info("starting http API server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start http API server : %w", err)
	case <-ctx.Done():
	}

	return s.StopServer()
}

func (s *APIServer) StopServer() error {
	logger.Base().Info("turning down http API server")

	timeout := s.config.APIServer.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logger.Base().WithError(err).Error("Error during HTTP API server shutdown")
		return err
	}
	logger.Base().Info("http API server stopped")
	return nil
}
