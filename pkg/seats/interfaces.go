package seats

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_seats.go -package=mocks

import (
	"context"
	"time"
)

// SeatStoreInterface defines the seat cache operations
// This interface enables mocking in handlers and jobs
type SeatStoreInterface interface {
	// Get returns the seat count of a class, or nil when it was never initialized
	Get(ctx context.Context, classID string) (*SeatCount, error)

	// Initialize creates the entry if absent and returns the stored entry
	// An existing entry is returned unchanged
	Initialize(ctx context.Context, classID string, capacity, enrollment int) (*SeatCount, error)

	// InitializeDefault is Initialize with the store's default capacity and zero enrollment
	InitializeDefault(ctx context.Context, classID string) (*SeatCount, error)

	// Increment adds one enrolled seat; nil when the class is unknown
	Increment(ctx context.Context, classID string) (*SeatCount, error)

	// Decrement removes one enrolled seat, floored at zero; nil when the class is unknown
	Decrement(ctx context.Context, classID string) (*SeatCount, error)

	// List returns every stored entry keyed by class id
	List(ctx context.Context) (map[string]SeatCount, error)
}

// Notifier is told about every successful mutation
type Notifier interface {
	NotifySeatChanged(ctx context.Context, operation string, seat SeatCount) error
}

// Recorder receives the outcome and latency of every store operation
type Recorder interface {
	RecordOperation(ctx context.Context, operation string, duration time.Duration, err error)

	// RecordEnrollmentChange is called with the enrollment delta of every mutation that moved it
	RecordEnrollmentChange(ctx context.Context, delta int)
}
