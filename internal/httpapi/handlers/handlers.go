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


package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/ritmofit/cupos/pkg/clients/classes"
	"github.com/ritmofit/cupos/pkg/config"
	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
)

// ClassLister is the upstream class catalog
type ClassLister interface {
	ListClasses(ctx context.Context) ([]classes.Class, error)
}

type Handlers struct {
	config  *config.AppConfig
	store   seats.SeatStoreInterface
	catalog ClassLister
}

// NewHandlers wires the handlers; catalog may be nil when no upstream is configured
func NewHandlers(cfg *config.AppConfig, store seats.SeatStoreInterface, catalog ClassLister) *Handlers {
	return &Handlers{
		config:  cfg,
		store:   store,
		catalog: catalog,
	}
}

// SeatResponse is the API view of one class seat count
type SeatResponse struct {
	ClassID           string `json:"classId"`
	Capacity          int    `json:"capacity"`
	CurrentEnrollment int    `json:"currentEnrollment"`
	Available         int    `json:"available"`
}

// InitializeSeatRequest is the optional body of POST /seats/:classId
type InitializeSeatRequest struct {
	Capacity          *int `json:"capacity"`
	CurrentEnrollment *int `json:"currentEnrollment"`
}

func toResponse(seat seats.SeatCount) SeatResponse {
	return SeatResponse{
		ClassID:           seat.ClassID,
		Capacity:          seat.Capacity,
		CurrentEnrollment: seat.CurrentEnrollment,
		Available:         seat.Available(),
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":         h.config.App.Name,
		"version":         h.config.App.Version,
		"environment":     h.config.App.Environment,
		"status":          "running",
		"cacheDriver":     h.config.Cache.Driver,
		"enforceCapacity": h.config.Seats.EnforceCapacity,
	})
}

// ListSeats returns every tracked class ordered by class id
func (h *Handlers) ListSeats(c *gin.Context) {
	all, err := h.store.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "failed to list seat counts")
		return
	}

	response := make([]SeatResponse, 0, len(all))
	for _, seat := range all {
		response = append(response, toResponse(seat))
	}
	sort.Slice(response, func(i, j int) bool { return response[i].ClassID < response[j].ClassID })

	c.JSON(http.StatusOK, response)
}

func (h *Handlers) GetSeat(c *gin.Context) {
	classID := c.Param("classId")

	seat, err := h.store.Get(c.Request.Context(), classID)
	if err != nil {
		h.writeError(c, err, "failed to fetch seat count")
		return
	}
	if seat == nil {
		notFound(c, classID)
		return
	}

	c.JSON(http.StatusOK, toResponse(*seat))
}

// InitializeSeat creates the entry if it does not exist. Omitted fields use the
// store defaults; an existing entry is returned unchanged.
func (h *Handlers) InitializeSeat(c *gin.Context) {
	classID := c.Param("classId")

	var req InitializeSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	capacity := h.config.Seats.DefaultCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	enrollment := seats.DefaultEnrollment
	if req.CurrentEnrollment != nil {
		enrollment = *req.CurrentEnrollment
	}

	seat, err := h.store.Initialize(c.Request.Context(), classID, capacity, enrollment)
	if err != nil {
		h.writeError(c, err, "failed to initialize seat count")
		return
	}

	c.JSON(http.StatusOK, toResponse(*seat))
}

func (h *Handlers) IncrementSeat(c *gin.Context) {
	h.mutateSeat(c, h.store.Increment, "failed to increment seat count")
}

func (h *Handlers) DecrementSeat(c *gin.Context) {
	h.mutateSeat(c, h.store.Decrement, "failed to decrement seat count")
}

func (h *Handlers) mutateSeat(c *gin.Context, op func(context.Context, string) (*seats.SeatCount, error), msg string) {
	classID := c.Param("classId")

	seat, err := op(c.Request.Context(), classID)
	if err != nil {
		h.writeError(c, err, msg)
		return
	}
	if seat == nil {
		notFound(c, classID)
		return
	}

	c.JSON(http.StatusOK, toResponse(*seat))
}

// ListClasses returns the upstream catalog with seat counts filled in from the store
func (h *Handlers) ListClasses(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "class catalog is not configured"})
		return
	}

	ctx := c.Request.Context()
	list, err := h.catalog.ListClasses(ctx)
	if err != nil {
		logger.Logger(ctx).WithError(err).Error("failed to fetch class catalog")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch class catalog"})
		return
	}

	c.JSON(http.StatusOK, classes.Decorate(ctx, h.store, list))
}

func notFound(c *gin.Context, classID string) {
	c.JSON(http.StatusNotFound, gin.H{"error": "class has no seat count", "classId": classID})
}

func (h *Handlers) writeError(c *gin.Context, err error, msg string) {
	log := logger.Logger(c.Request.Context()).WithField("class_id", c.Param("classId")).WithError(err)

	switch {
	case errors.Is(err, seats.ErrInvalidSeatCount), errors.Is(err, seats.ErrInvalidClassID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, seats.ErrClassFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, seats.ErrStorageUnavailable):
		log.Error(msg)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msg})
	default:
		log.Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
