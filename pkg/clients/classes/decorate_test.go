package classes

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmofit/cupos/pkg/cache/inmemory"
	"github.com/ritmofit/cupos/pkg/seats"
	"github.com/ritmofit/cupos/pkg/seats/mocks"
)

func newSeatStore(t *testing.T, opts ...seats.Option) *seats.Store {
	t.Helper()
	c, err := inmemory.NewCache(&inmemory.Config{DefaultExpiration: 300, CleanupInterval: 600})
	require.NoError(t, err)
	return seats.New(c, opts...)
}

func TestDecorate(t *testing.T) {
	ctx := context.Background()
	store := newSeatStore(t, seats.WithDefaultCapacity(25))
	_, err := store.Initialize(ctx, "known", 12, 5)
	require.NoError(t, err)

	input := []Class{
		{ID: "live", Capacity: intPtr(30), CurrentEnrollment: intPtr(29)},
		{ID: "known"},
		{ID: "fresh"},
		{ID: "partial", Capacity: intPtr(8)},
	}

	got := Decorate(ctx, store, input)
	require.Len(t, got, 4)

	assert.Equal(t, 30, *got[0].Capacity)
	assert.Equal(t, 29, *got[0].CurrentEnrollment)

	assert.Equal(t, 12, *got[1].Capacity)
	assert.Equal(t, 5, *got[1].CurrentEnrollment)

	assert.Equal(t, 25, *got[2].Capacity)
	assert.Equal(t, 0, *got[2].CurrentEnrollment)

	assert.Equal(t, 8, *got[3].Capacity)
	assert.Equal(t, 0, *got[3].CurrentEnrollment)

	assert.Nil(t, input[1].Capacity, "input must not be modified")

	fresh, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, &seats.SeatCount{ClassID: "fresh", Capacity: 25, CurrentEnrollment: 0}, fresh)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, "live")
}

func TestDecorate_StoreFailureFallsBackToDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSeatStoreInterface(ctrl)
	down := errors.New("redis down")

	store.EXPECT().Get(gomock.Any(), "a").Return(nil, down)
	store.EXPECT().Get(gomock.Any(), "b").Return(nil, nil)
	store.EXPECT().InitializeDefault(gomock.Any(), "b").Return(nil, down)

	got := Decorate(context.Background(), store, []Class{{ID: "a"}, {ID: "b"}, {ID: ""}})
	require.Len(t, got, 3)
	for _, class := range got {
		assert.Equal(t, seats.DefaultCapacity, *class.Capacity)
		assert.Equal(t, seats.DefaultEnrollment, *class.CurrentEnrollment)
	}
}

func TestDecorate_Empty(t *testing.T) {
	got := Decorate(context.Background(), newSeatStore(t), nil)
	assert.Empty(t, got)
}
