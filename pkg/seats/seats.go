// Package seats keeps a persisted per-class seat availability overlay ("cupos").
//
// Every class is tracked by a SeatCount holding its capacity and current
// enrollment. The whole map lives as one JSON document under a single cache
// key and every mutation is a read-modify-write of that document. Store
// serializes its own mutations, so concurrent callers within one process do
// not lose updates; processes sharing a backend are not coordinated.
package seats

import "errors"

const (
	// DefaultCapacity is used by InitializeDefault and by callers falling back after a cache failure
	DefaultCapacity = 20
	// DefaultEnrollment is the enrollment of a freshly initialized class
	DefaultEnrollment = 0
)

const (
	OperationGet        = "get"
	OperationList       = "list"
	OperationInitialize = "initialize"
	OperationIncrement  = "increment"
	OperationDecrement  = "decrement"
)

var (
	// ErrStorageUnavailable wraps every failure of the backing cache, including corrupt data
	ErrStorageUnavailable = errors.New("seat storage unavailable")

	// ErrInvalidSeatCount is returned by Initialize for negative capacity or enrollment
	ErrInvalidSeatCount = errors.New("capacity and enrollment must not be negative")

	// ErrInvalidClassID is returned for an empty class id
	ErrInvalidClassID = errors.New("class id must not be empty")

	// ErrClassFull is returned by Increment only when capacity enforcement is enabled
	ErrClassFull = errors.New("class is full")
)

// SeatCount is the capacity/enrollment pair of one class
type SeatCount struct {
	ClassID           string `json:"classId"`
	Capacity          int    `json:"capacity"`
	CurrentEnrollment int    `json:"currentEnrollment"`
}

// Available returns the number of free seats, never negative
func (s SeatCount) Available() int {
	if free := s.Capacity - s.CurrentEnrollment; free > 0 {
		return free
	}
	return 0
}

// Full reports whether enrollment reached capacity
func (s SeatCount) Full() bool {
	return s.CurrentEnrollment >= s.Capacity
}

// seatRecord is the persisted form; the class id is the map key
type seatRecord struct {
	Capacity          int `json:"capacity"`
	CurrentEnrollment int `json:"currentEnrollment"`
}

func (r seatRecord) toSeatCount(classID string) *SeatCount {
	return &SeatCount{
		ClassID:           classID,
		Capacity:          r.Capacity,
		CurrentEnrollment: r.CurrentEnrollment,
	}
}
