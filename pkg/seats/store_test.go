package seats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmofit/cupos/pkg/cache"
	"github.com/ritmofit/cupos/pkg/cache/file"
	"github.com/ritmofit/cupos/pkg/cache/mocks"
	"github.com/ritmofit/cupos/pkg/cache/redis"
)

func seat(id string, capacity, enrollment int) *SeatCount {
	return &SeatCount{ClassID: id, Capacity: capacity, CurrentEnrollment: enrollment}
}

func TestNew(t *testing.T) {
	store, _ := setupSeatStore(t)

	assert.Equal(t, SeatsKey, store.key)
	assert.Equal(t, DefaultCapacity, store.DefaultCapacity())
	assert.False(t, store.enforceCapacity)

	custom, _ := setupSeatStore(t, WithDefaultCapacity(30), WithCapacityEnforcement(true), WithKey("other"))
	assert.Equal(t, 30, custom.DefaultCapacity())
	assert.True(t, custom.enforceCapacity)
	assert.Equal(t, "other", custom.key)
}

func TestSeatCount_Available(t *testing.T) {
	assert.Equal(t, 17, SeatCount{Capacity: 20, CurrentEnrollment: 3}.Available())
	assert.Equal(t, 0, SeatCount{Capacity: 20, CurrentEnrollment: 25}.Available())
	assert.True(t, SeatCount{Capacity: 2, CurrentEnrollment: 2}.Full())
	assert.False(t, SeatCount{Capacity: 2, CurrentEnrollment: 1}.Full())
}

func TestStore_Get(t *testing.T) {
	RunSeatOpTests(t, getOp, []SeatOpTestCase{
		{
			Name:      "never initialized returns nil",
			ClassID:   "missing",
			SetupFunc: noSetup,
			Want:      nil,
		},
		{
			Name:    "initialized class",
			ClassID: "yoga-101",
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "yoga-101", 15, 4)
			},
			Want: seat("yoga-101", 15, 4),
		},
		{
			Name:    "corrupt JSON is a storage error",
			ClassID: "c1",
			SetupFunc: func(t *testing.T, _ *Store, c cache.Cache) {
				require.NoError(t, c.Set(context.Background(), SeatsKey, "invalid json{{{", cache.NoExpiration))
			},
			WantErr: ErrStorageUnavailable,
		},
		{
			Name:    "unexpected value type is a storage error",
			ClassID: "c1",
			SetupFunc: func(t *testing.T, _ *Store, c cache.Cache) {
				require.NoError(t, c.Set(context.Background(), SeatsKey, 42, cache.NoExpiration))
			},
			WantErr: ErrStorageUnavailable,
		},
	})
}

func TestStore_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("second initialize keeps the first values", func(t *testing.T) {
		store, _ := setupSeatStore(t)

		first, err := store.Initialize(ctx, "c1", 20, 5)
		require.NoError(t, err)
		assert.Equal(t, seat("c1", 20, 5), first)

		second, err := store.Initialize(ctx, "c1", 30, 0)
		require.NoError(t, err)
		assert.Equal(t, seat("c1", 20, 5), second)

		got, err := store.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, seat("c1", 20, 5), got)
	})

	t.Run("default capacity", func(t *testing.T) {
		store, _ := setupSeatStore(t)
		got, err := store.InitializeDefault(ctx, "spinning")
		require.NoError(t, err)
		assert.Equal(t, seat("spinning", 20, 0), got)

		custom, _ := setupSeatStore(t, WithDefaultCapacity(12))
		got, err = custom.InitializeDefault(ctx, "spinning")
		require.NoError(t, err)
		assert.Equal(t, seat("spinning", 12, 0), got)
	})

	t.Run("zero capacity is allowed", func(t *testing.T) {
		store, _ := setupSeatStore(t)
		got, err := store.Initialize(ctx, "closed", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, seat("closed", 0, 0), got)
	})

	t.Run("enrollment above capacity is stored as given", func(t *testing.T) {
		store, _ := setupSeatStore(t)
		got, err := store.Initialize(ctx, "over", 5, 7)
		require.NoError(t, err)
		assert.Equal(t, seat("over", 5, 7), got)
	})

	invalid := []struct {
		name       string
		classID    string
		capacity   int
		enrollment int
		wantErr    error
	}{
		{name: "negative capacity", classID: "c", capacity: -1, enrollment: 0, wantErr: ErrInvalidSeatCount},
		{name: "negative enrollment", classID: "c", capacity: 10, enrollment: -3, wantErr: ErrInvalidSeatCount},
		{name: "empty class id", classID: "", capacity: 10, enrollment: 0, wantErr: ErrInvalidClassID},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			store, c := setupSeatStore(t)
			got, err := store.Initialize(ctx, tt.classID, tt.capacity, tt.enrollment)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)

			_, err = c.Get(ctx, SeatsKey)
			assert.ErrorIs(t, err, cache.ErrKeyNotFound, "invalid input must not write")
		})
	}

	t.Run("persisted JSON shape", func(t *testing.T) {
		store, c := setupSeatStore(t)
		mustInitialize(t, store, "c1", 20, 5)
		mustInitialize(t, store, "42", 10, 0)

		raw, err := c.Get(ctx, SeatsKey)
		require.NoError(t, err)

		var decoded map[string]map[string]int
		require.NoError(t, json.Unmarshal([]byte(raw.(string)), &decoded))
		assert.Equal(t, map[string]map[string]int{
			"c1": {"capacity": 20, "currentEnrollment": 5},
			"42": {"capacity": 10, "currentEnrollment": 0},
		}, decoded)
	})
}

func TestStore_Increment(t *testing.T) {
	RunSeatOpTests(t, incrementOp, []SeatOpTestCase{
		{
			Name:      "unknown class returns nil and creates nothing",
			ClassID:   "never-seen",
			SetupFunc: noSetup,
			Want:      nil,
			VerifyFunc: func(t *testing.T, store *Store, c cache.Cache) {
				got, err := store.Get(context.Background(), "never-seen")
				require.NoError(t, err)
				assert.Nil(t, got)

				_, err = c.Get(context.Background(), SeatsKey)
				assert.ErrorIs(t, err, cache.ErrKeyNotFound)
			},
		},
		{
			Name:    "adds one seat",
			ClassID: "c1",
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "c1", 20, 5)
			},
			Want: seat("c1", 20, 6),
			VerifyFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				got, err := store.Get(context.Background(), "c1")
				require.NoError(t, err)
				assert.Equal(t, seat("c1", 20, 6), got)
			},
		},
		{
			Name:    "past capacity is allowed by default",
			ClassID: "full",
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "full", 2, 2)
			},
			Want: seat("full", 2, 3),
		},
		{
			Name:    "full class rejected when enforcing capacity",
			ClassID: "full",
			Options: []Option{WithCapacityEnforcement(true)},
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "full", 2, 2)
			},
			WantErr: ErrClassFull,
			VerifyFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				got, err := store.Get(context.Background(), "full")
				require.NoError(t, err)
				assert.Equal(t, seat("full", 2, 2), got)
			},
		},
		{
			Name:    "class with room accepted when enforcing capacity",
			ClassID: "room",
			Options: []Option{WithCapacityEnforcement(true)},
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "room", 2, 1)
			},
			Want: seat("room", 2, 2),
		},
		{
			Name:    "other classes are untouched",
			ClassID: "a",
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "a", 10, 0)
				mustInitialize(t, store, "b", 10, 4)
			},
			Want: seat("a", 10, 1),
			VerifyFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				got, err := store.Get(context.Background(), "b")
				require.NoError(t, err)
				assert.Equal(t, seat("b", 10, 4), got)
			},
		},
	})
}

func TestStore_Decrement(t *testing.T) {
	RunSeatOpTests(t, decrementOp, []SeatOpTestCase{
		{
			Name:      "unknown class returns nil and creates nothing",
			ClassID:   "never-seen",
			SetupFunc: noSetup,
			Want:      nil,
			VerifyFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				got, err := store.Get(context.Background(), "never-seen")
				require.NoError(t, err)
				assert.Nil(t, got)
			},
		},
		{
			Name:    "floors at zero",
			ClassID: "c2",
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "c2", 10, 0)
			},
			Want: seat("c2", 10, 0),
		},
		{
			Name:    "removes one seat",
			ClassID: "c2",
			SetupFunc: func(t *testing.T, store *Store, _ cache.Cache) {
				mustInitialize(t, store, "c2", 10, 3)
			},
			Want: seat("c2", 10, 2),
		},
	})

	t.Run("repeated decrements stay at zero", func(t *testing.T) {
		store, _ := setupSeatStore(t)
		ctx := context.Background()
		mustInitialize(t, store, "c2", 10, 2)

		var got *SeatCount
		var err error
		for i := 0; i < 5; i++ {
			got, err = store.Decrement(ctx, "c2")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got.CurrentEnrollment, 0)
		}
		assert.Equal(t, seat("c2", 10, 0), got)
	})
}

func TestStore_BalancedIncrementDecrement(t *testing.T) {
	store, _ := setupSeatStore(t)
	ctx := context.Background()
	mustInitialize(t, store, "c3", 15, 3)

	_, err := store.Increment(ctx, "c3")
	require.NoError(t, err)
	got, err := store.Decrement(ctx, "c3")
	require.NoError(t, err)

	assert.Equal(t, seat("c3", 15, 3), got)
}

func TestStore_List(t *testing.T) {
	store, _ := setupSeatStore(t)
	ctx := context.Background()

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	mustInitialize(t, store, "a", 10, 1)
	mustInitialize(t, store, "b", 20, 2)

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]SeatCount{
		"a": {ClassID: "a", Capacity: 10, CurrentEnrollment: 1},
		"b": {ClassID: "b", Capacity: 20, CurrentEnrollment: 2},
	}, all)
}

func TestStore_SurvivesRestart(t *testing.T) {
	ctx := context.Background()

	t.Run("file backend", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cupos.json")
		c, err := file.NewCache(&file.Config{Path: path})
		require.NoError(t, err)
		_, err = New(c).Initialize(ctx, "c4", 20, 2)
		require.NoError(t, err)

		reopened, err := file.NewCache(&file.Config{Path: path})
		require.NoError(t, err)
		got, err := New(reopened).Get(ctx, "c4")
		require.NoError(t, err)
		assert.Equal(t, seat("c4", 20, 2), got)
	})

	t.Run("redis backend", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, err := redis.NewCache(&redis.Config{Host: mr.Host(), Port: mr.Port()})
		require.NoError(t, err)
		_, err = New(c).Initialize(ctx, "c4", 20, 2)
		require.NoError(t, err)
		require.NoError(t, c.Close())

		reconnected, err := redis.NewCache(&redis.Config{Host: mr.Host(), Port: mr.Port()})
		require.NoError(t, err)
		defer reconnected.Close()
		got, err := New(reconnected).Get(ctx, "c4")
		require.NoError(t, err)
		assert.Equal(t, seat("c4", 20, 2), got)
	})
}

func TestStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()

	t.Run("two increments from zero yield two", func(t *testing.T) {
		store, _ := setupSeatStore(t)
		mustInitialize(t, store, "c5", 20, 0)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(ctx, "c5")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "c5")
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentEnrollment)
	})

	t.Run("mixed classes share one document without lost updates", func(t *testing.T) {
		store, _ := setupSeatStore(t)
		classes := []string{"a", "b", "c", "d"}
		for _, id := range classes {
			mustInitialize(t, store, id, 100, 50)
		}

		const perClass = 25
		var wg sync.WaitGroup
		for _, id := range classes {
			for i := 0; i < perClass; i++ {
				wg.Add(2)
				go func(id string) {
					defer wg.Done()
					_, err := store.Increment(ctx, id)
					assert.NoError(t, err)
				}(id)
				go func(id string) {
					defer wg.Done()
					_, err := store.Increment(ctx, id)
					assert.NoError(t, err)
				}(id)
			}
		}
		wg.Wait()

		all, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range classes {
			assert.Equal(t, 50+2*perClass, all[id].CurrentEnrollment, "class %s", id)
		}
	})

	t.Run("capacity enforcement holds under contention", func(t *testing.T) {
		store, _ := setupSeatStore(t, WithCapacityEnforcement(true))
		mustInitialize(t, store, "popular", 5, 0)

		var wg sync.WaitGroup
		var mu sync.Mutex
		full := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(ctx, "popular")
				if errors.Is(err, ErrClassFull) {
					mu.Lock()
					full++
					mu.Unlock()
					return
				}
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "popular")
		require.NoError(t, err)
		assert.Equal(t, 5, got.CurrentEnrollment)
		assert.Equal(t, 15, full)
	})
}

func TestStore_StorageFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	t.Run("read failure propagates and skips the write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)
		mockCache.EXPECT().Get(gomock.Any(), SeatsKey).Return(nil, boom).Times(4)
		mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		store := New(mockCache)

		_, err := store.Get(ctx, "c1")
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.ErrorIs(t, err, boom)

		_, err = store.Initialize(ctx, "c1", 20, 0)
		assert.ErrorIs(t, err, ErrStorageUnavailable)

		_, err = store.Increment(ctx, "c1")
		assert.ErrorIs(t, err, ErrStorageUnavailable)

		_, err = store.Decrement(ctx, "c1")
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("write failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)
		mockCache.EXPECT().Get(gomock.Any(), SeatsKey).
			Return(`{"c1":{"capacity":20,"currentEnrollment":1}}`, nil).Times(1)
		mockCache.EXPECT().Set(gomock.Any(), SeatsKey, gomock.Any(), cache.NoExpiration).
			Return(boom).Times(1)

		got, err := New(mockCache).Increment(ctx, "c1")
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, got)
	})

	t.Run("writes the whole map with the updated entry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)
		mockCache.EXPECT().Get(gomock.Any(), SeatsKey).
			Return([]byte(`{"c1":{"capacity":20,"currentEnrollment":1},"c2":{"capacity":5,"currentEnrollment":5}}`), nil)
		mockCache.EXPECT().Set(gomock.Any(), SeatsKey, gomock.Any(), cache.NoExpiration).
			DoAndReturn(func(_ context.Context, _ string, value interface{}, _ time.Duration) error {
				var written map[string]seatRecord
				require.NoError(t, json.Unmarshal([]byte(value.(string)), &written))
				assert.Equal(t, map[string]seatRecord{
					"c1": {Capacity: 20, CurrentEnrollment: 0},
					"c2": {Capacity: 5, CurrentEnrollment: 5},
				}, written)
				return nil
			})

		got, err := New(mockCache).Decrement(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, seat("c1", 20, 0), got)
	})
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakeNotifier) NotifySeatChanged(_ context.Context, operation string, seat SeatCount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf("%s:%s:%d", operation, seat.ClassID, seat.CurrentEnrollment))
	return f.err
}

type fakeRecorder struct {
	mu     sync.Mutex
	ops    []string
	errors int
	deltas []int
}

func (f *fakeRecorder) RecordEnrollmentChange(_ context.Context, delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltas = append(f.deltas, delta)
}

func (f *fakeRecorder) RecordOperation(_ context.Context, operation string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, operation)
	if err != nil {
		f.errors++
	}
}

func TestStore_NotifierAndRecorder(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	store, _ := setupSeatStore(t, WithNotifier(notifier), WithRecorder(recorder), WithCapacityEnforcement(true))

	mustInitialize(t, store, "c1", 1, 0)
	mustInitialize(t, store, "c1", 9, 9) // existing entry, no event
	_, err := store.Increment(ctx, "c1")
	require.NoError(t, err)
	_, err = store.Increment(ctx, "c1")
	require.ErrorIs(t, err, ErrClassFull)
	_, err = store.Decrement(ctx, "c1")
	require.NoError(t, err)
	_, err = store.Increment(ctx, "unknown")
	require.NoError(t, err)

	assert.Equal(t, []string{"initialize:c1:0", "increment:c1:1", "decrement:c1:0"}, notifier.events)
	assert.Equal(t, []string{
		OperationInitialize, OperationInitialize,
		OperationIncrement, OperationIncrement,
		OperationDecrement, OperationIncrement,
	}, recorder.ops)
	assert.Equal(t, 1, recorder.errors)
	assert.Equal(t, []int{1, -1}, recorder.deltas)
}

func TestStore_FlooredDecrementReportsNoChange(t *testing.T) {
	ctx := context.Background()
	recorder := &fakeRecorder{}
	store, _ := setupSeatStore(t, WithRecorder(recorder))

	mustInitialize(t, store, "c1", 10, 1)
	for i := 0; i < 3; i++ {
		_, err := store.Decrement(ctx, "c1")
		require.NoError(t, err)
	}

	assert.Equal(t, []int{-1}, recorder.deltas)
}

// blockingNotifier parks every call until release is closed
type blockingNotifier struct {
	started chan string
	release chan struct{}
}

func (b *blockingNotifier) NotifySeatChanged(ctx context.Context, _ string, seat SeatCount) error {
	b.started <- seat.ClassID
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestStore_SlowNotifierDoesNotBlockWriters(t *testing.T) {
	ctx := context.Background()
	store, _ := setupSeatStore(t)
	mustInitialize(t, store, "c1", 10, 0)
	mustInitialize(t, store, "c2", 10, 0)

	notifier := &blockingNotifier{started: make(chan string, 4), release: make(chan struct{})}
	store.notifier = notifier

	firstDone := make(chan error, 1)
	go func() {
		_, err := store.Increment(ctx, "c1")
		firstDone <- err
	}()

	select {
	case id := <-notifier.started:
		require.Equal(t, "c1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("first notification never started")
	}

	secondDone := make(chan *SeatCount, 1)
	go func() {
		got, err := store.Increment(ctx, "c2")
		assert.NoError(t, err)
		secondDone <- got
	}()

	// the second mutation is persisted while the first notification is still parked
	require.Eventually(t, func() bool {
		got, err := store.Get(ctx, "c2")
		return err == nil && got != nil && got.CurrentEnrollment == 1
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case err := <-firstDone:
		t.Fatalf("first increment returned before its notification was released: %v", err)
	default:
	}

	select {
	case id := <-notifier.started:
		assert.Equal(t, "c2", id)
	case <-time.After(2 * time.Second):
		t.Fatal("second notification never started")
	}

	close(notifier.release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, seat("c2", 10, 1), <-secondDone)
}

func TestStore_NotifierFailureDoesNotFailMutation(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("broker down")}
	store, _ := setupSeatStore(t, WithNotifier(notifier))

	got, err := store.Initialize(context.Background(), "c1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, seat("c1", 20, 0), got)
	assert.Len(t, notifier.events, 1)
}
