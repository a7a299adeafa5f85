package seats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmofit/cupos/pkg/cache"
	"github.com/ritmofit/cupos/pkg/cache/inmemory"
)

// SeatOperation is one of the mutating or reading store calls taking a class id
type SeatOperation func(ctx context.Context, store *Store, classID string) (*SeatCount, error)

var (
	getOp       SeatOperation = func(ctx context.Context, s *Store, id string) (*SeatCount, error) { return s.Get(ctx, id) }
	incrementOp SeatOperation = func(ctx context.Context, s *Store, id string) (*SeatCount, error) { return s.Increment(ctx, id) }
	decrementOp SeatOperation = func(ctx context.Context, s *Store, id string) (*SeatCount, error) { return s.Decrement(ctx, id) }
)

// SeatOpTestCase defines a table entry for a single-class operation
type SeatOpTestCase struct {
	Name       string
	ClassID    string
	Options    []Option
	SetupFunc  func(t *testing.T, store *Store, c cache.Cache)
	Want       *SeatCount
	WantErr    error
	VerifyFunc func(t *testing.T, store *Store, c cache.Cache)
}

func setupSeatStore(t *testing.T, opts ...Option) (*Store, cache.Cache) {
	t.Helper()
	c, err := inmemory.NewCache(&inmemory.Config{
		DefaultExpiration: 300,
		CleanupInterval:   600,
	})
	require.NoError(t, err)
	return New(c, opts...), c
}

func mustInitialize(t *testing.T, store *Store, classID string, capacity, enrollment int) {
	t.Helper()
	_, err := store.Initialize(context.Background(), classID, capacity, enrollment)
	require.NoError(t, err)
}

func noSetup(*testing.T, *Store, cache.Cache) {}

// RunSeatOpTests runs table-driven tests for a single-class store operation
func RunSeatOpTests(t *testing.T, op SeatOperation, tests []SeatOpTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			store, c := setupSeatStore(t, tt.Options...)
			if tt.SetupFunc != nil {
				tt.SetupFunc(t, store, c)
			}

			got, err := op(context.Background(), store, tt.ClassID)

			if tt.WantErr != nil {
				assert.ErrorIs(t, err, tt.WantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.Want, got)
			}
			if tt.VerifyFunc != nil {
				tt.VerifyFunc(t, store, c)
			}
		})
	}
}
