package seats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ritmofit/cupos/pkg/cache"
	"github.com/ritmofit/cupos/pkg/logger"
)

// SeatsKey is the cache key holding the JSON map of every class
const SeatsKey = "cupos:seats"

// Store is the seat-count cache. Mutations hold mu for the whole
// read-modify-write cycle; reads go straight to the cache.
type Store struct {
	cache cache.Cache
	key   string

	mu sync.Mutex

	enforceCapacity bool
	defaultCapacity int

	notifier Notifier
	recorder Recorder
}

// Option customizes a Store
type Option func(*Store)

// WithCapacityEnforcement makes Increment fail with ErrClassFull once enrollment reaches capacity
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Store) {
		s.enforceCapacity = enabled
	}
}

// WithDefaultCapacity overrides the capacity used by InitializeDefault
func WithDefaultCapacity(capacity int) Option {
	return func(s *Store) {
		if capacity >= 0 {
			s.defaultCapacity = capacity
		}
	}
}

// WithNotifier publishes successful mutations
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithRecorder records operation metrics
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		s.recorder = r
	}
}

// WithKey stores the map under a different cache key
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a Store on top of the given cache
func New(c cache.Cache, opts ...Option) *Store {
	s := &Store{
		cache:           c,
		key:             SeatsKey,
		defaultCapacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultCapacity returns the capacity InitializeDefault uses
func (s *Store) DefaultCapacity() int {
	return s.defaultCapacity
}

// Get returns the seat count for classID, or nil if it was never initialized
func (s *Store) Get(ctx context.Context, classID string) (_ *SeatCount, err error) {
	defer s.observe(ctx, OperationGet, time.Now(), &err)

	seats, err := loadSeats(ctx, s.cache, s.key)
	if err != nil {
		return nil, err
	}

	rec, ok := seats[classID]
	if !ok {
		return nil, nil
	}
	return rec.toSeatCount(classID), nil
}

// List returns a snapshot of every entry
func (s *Store) List(ctx context.Context) (_ map[string]SeatCount, err error) {
	defer s.observe(ctx, OperationList, time.Now(), &err)

	seats, err := loadSeats(ctx, s.cache, s.key)
	if err != nil {
		return nil, err
	}

	out := make(map[string]SeatCount, len(seats))
	for id, rec := range seats {
		out[id] = *rec.toSeatCount(id)
	}
	return out, nil
}

// Initialize creates the entry for classID unless one already exists.
// The stored entry is returned in both cases; an existing one is never overwritten.
func (s *Store) Initialize(ctx context.Context, classID string, capacity, enrollment int) (_ *SeatCount, err error) {
	defer s.observe(ctx, OperationInitialize, time.Now(), &err)

	if classID == "" {
		return nil, ErrInvalidClassID
	}
	if capacity < 0 || enrollment < 0 {
		return nil, fmt.Errorf("%w: class %s capacity=%d enrollment=%d",
			ErrInvalidSeatCount, classID, capacity, enrollment)
	}

	seat, created, err := s.initialize(ctx, classID, capacity, enrollment)
	if err != nil {
		return nil, err
	}
	if created {
		s.notify(ctx, OperationInitialize, *seat)
	}
	return seat, nil
}

// initialize persists a new entry under the store lock. created is false when classID already existed.
func (s *Store) initialize(ctx context.Context, classID string, capacity, enrollment int) (_ *SeatCount, created bool, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seats, err := loadSeats(ctx, s.cache, s.key)
	if err != nil {
		return nil, false, err
	}

	if existing, ok := seats[classID]; ok {
		return existing.toSeatCount(classID), false, nil
	}

	rec := seatRecord{Capacity: capacity, CurrentEnrollment: enrollment}
	seats[classID] = rec
	if err := saveSeats(ctx, s.cache, s.key, seats); err != nil {
		return nil, false, err
	}

	logger.Logger(ctx).WithFields(logrus.Fields{
		"class_id":   classID,
		"capacity":   capacity,
		"enrollment": enrollment,
	}).Debug("initialized seat count")

	return rec.toSeatCount(classID), true, nil
}

// InitializeDefault initializes classID with the default capacity and no enrollment
func (s *Store) InitializeDefault(ctx context.Context, classID string) (*SeatCount, error) {
	return s.Initialize(ctx, classID, s.defaultCapacity, DefaultEnrollment)
}

// Increment adds one to the enrollment of classID.
// Unknown classes return nil without writing anything.
func (s *Store) Increment(ctx context.Context, classID string) (_ *SeatCount, err error) {
	defer s.observe(ctx, OperationIncrement, time.Now(), &err)

	return s.mutate(ctx, OperationIncrement, classID, func(rec *seatRecord) error {
		if s.enforceCapacity && rec.CurrentEnrollment >= rec.Capacity {
			return fmt.Errorf("%w: class %s has %d of %d seats taken",
				ErrClassFull, classID, rec.CurrentEnrollment, rec.Capacity)
		}
		rec.CurrentEnrollment++
		return nil
	})
}

// Decrement removes one from the enrollment of classID, never going below zero.
// Unknown classes return nil without writing anything.
func (s *Store) Decrement(ctx context.Context, classID string) (_ *SeatCount, err error) {
	defer s.observe(ctx, OperationDecrement, time.Now(), &err)

	return s.mutate(ctx, OperationDecrement, classID, func(rec *seatRecord) error {
		if rec.CurrentEnrollment > 0 {
			rec.CurrentEnrollment--
		}
		return nil
	})
}

// mutate applies fn and then reports the change. Notifier and recorder run after
// the store lock is released, so a slow broker never holds up other writers.
func (s *Store) mutate(ctx context.Context, operation, classID string, fn func(rec *seatRecord) error) (*SeatCount, error) {
	seat, delta, err := s.apply(ctx, operation, classID, fn)
	if err != nil || seat == nil {
		return nil, err
	}

	if delta != 0 && s.recorder != nil {
		s.recorder.RecordEnrollmentChange(ctx, delta)
	}
	s.notify(ctx, operation, *seat)
	return seat, nil
}

// apply runs fn on the record of classID under the store lock and persists the whole map.
// delta is the resulting change in enrollment.
func (s *Store) apply(ctx context.Context, operation, classID string, fn func(rec *seatRecord) error) (_ *SeatCount, delta int, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seats, err := loadSeats(ctx, s.cache, s.key)
	if err != nil {
		return nil, 0, err
	}

	rec, ok := seats[classID]
	if !ok {
		return nil, 0, nil
	}

	before := rec.CurrentEnrollment
	if err := fn(&rec); err != nil {
		return nil, 0, err
	}

	seats[classID] = rec
	if err := saveSeats(ctx, s.cache, s.key, seats); err != nil {
		return nil, 0, err
	}

	logger.Logger(ctx).WithFields(logrus.Fields{
		"class_id":   classID,
		"operation":  operation,
		"enrollment": rec.CurrentEnrollment,
		"capacity":   rec.Capacity,
	}).Debug("updated seat count")

	return rec.toSeatCount(classID), rec.CurrentEnrollment - before, nil
}

// notify is best effort: the mutation is already persisted
func (s *Store) notify(ctx context.Context, operation string, seat SeatCount) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifySeatChanged(ctx, operation, seat); err != nil {
		logger.Logger(ctx).WithFields(logrus.Fields{
			"class_id":  seat.ClassID,
			"operation": operation,
		}).WithError(err).Warn("failed to publish seat change")
	}
}

func (s *Store) observe(ctx context.Context, operation string, start time.Time, err *error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordOperation(ctx, operation, time.Since(start), *err)
}

// Compile-time interface compliance check
var _ SeatStoreInterface = (*Store)(nil)
