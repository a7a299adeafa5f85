package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ritmofit/cupos/pkg/events"
	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
)

// GetCmd prints the seat count of one class.
type GetCmd struct {
	ClassID string `arg:"" help:"Class id."`
}

func (c *GetCmd) Run(g *Globals) error {
	return withStore(g, func(ctx context.Context, store *seats.Store) error {
		seat, err := store.Get(ctx, c.ClassID)
		if err != nil {
			return err
		}
		return printSeat(g, c.ClassID, seat)
	})
}

// InitCmd initializes a class unless it already has a seat count.
type InitCmd struct {
	ClassID    string `arg:"" help:"Class id."`
	Capacity   *int   `help:"Seat capacity. Defaults to seats.defaultCapacity."`
	Enrollment int    `help:"Seats already taken." default:"0"`
}

func (c *InitCmd) Run(g *Globals) error {
	return withStore(g, func(ctx context.Context, store *seats.Store) error {
		capacity := store.DefaultCapacity()
		if c.Capacity != nil {
			capacity = *c.Capacity
		}
		seat, err := store.Initialize(ctx, c.ClassID, capacity, c.Enrollment)
		if err != nil {
			return err
		}
		return printSeat(g, c.ClassID, seat)
	})
}

// IncrementCmd takes one seat.
type IncrementCmd struct {
	ClassID string `arg:"" help:"Class id."`
}

func (c *IncrementCmd) Run(g *Globals) error {
	return withStore(g, func(ctx context.Context, store *seats.Store) error {
		seat, err := store.Increment(ctx, c.ClassID)
		if err != nil {
			return err
		}
		return printSeat(g, c.ClassID, seat)
	})
}

// DecrementCmd releases one seat.
type DecrementCmd struct {
	ClassID string `arg:"" help:"Class id."`
}

func (c *DecrementCmd) Run(g *Globals) error {
	return withStore(g, func(ctx context.Context, store *seats.Store) error {
		seat, err := store.Decrement(ctx, c.ClassID)
		if err != nil {
			return err
		}
		return printSeat(g, c.ClassID, seat)
	})
}

// ListCmd prints every entry sorted by class id.
type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	return withStore(g, func(ctx context.Context, store *seats.Store) error {
		all, err := store.List(ctx)
		if err != nil {
			return err
		}
		out := make([]seatOutput, 0, len(all))
		for _, seat := range all {
			out = append(out, toOutput(seat))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ClassID < out[j].ClassID })
		return printJSON(g.out(), out)
	})
}

// SeedCmd applies a seed file. Classes that already exist are left untouched.
type SeedCmd struct {
	File string `help:"Seed file to apply." required:"" short:"f"`
}

func (c *SeedCmd) Run(g *Globals) error {
	entries, err := seats.LoadSeedFile(c.File)
	if err != nil {
		return err
	}
	return withStore(g, func(ctx context.Context, store *seats.Store) error {
		seeded, err := store.Seed(ctx, entries)
		if err != nil {
			return err
		}
		out := make([]seatOutput, 0, len(seeded))
		for _, seat := range seeded {
			out = append(out, toOutput(seat))
		}
		return printJSON(g.out(), out)
	})
}

// WatchCmd prints seat change events until interrupted.
type WatchCmd struct{}

func (c *WatchCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = events.Subscribe(ctx, cfg.Events, func(_ context.Context, event events.SeatChangedEvent) error {
		return printJSON(g.out(), event)
	})
	if errors.Is(err, events.ErrDisabled) {
		return fmt.Errorf("%w: set events.enabled to watch seat changes", err)
	}
	return err
}

// withStore loads configuration, opens the store and hands it to fn with a fresh request id.
func withStore(g *Globals, fn func(ctx context.Context, store *seats.Store) error) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	store, release, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer release()

	ctx := logger.WithRequestID(context.Background(), "")
	return fn(ctx, store)
}

// printSeat reports a nil seat as errSeatNotFound
func printSeat(g *Globals, classID string, seat *seats.SeatCount) error {
	if seat == nil {
		return fmt.Errorf("%w: class %s", errSeatNotFound, classID)
	}
	return printJSON(g.out(), toOutput(*seat))
}
