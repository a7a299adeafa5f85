// Command cupos runs the seat-count service and offers one-shot commands
// against the configured seat store.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ritmofit/cupos/pkg/cache"
	"github.com/ritmofit/cupos/pkg/config"
	"github.com/ritmofit/cupos/pkg/events"
	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	exitSuccess  = 0
	exitFailure  = 1
	exitInvalid  = 2
	exitNotFound = 3
	exitFull     = 4
)

var errSeatNotFound = errors.New("seat count not found")

// Globals are shared by every command.
type Globals struct {
	ConfigDir string `help:"Directory holding default.yaml and <env>.yaml." default:"config" env:"CONFIG_DIR"`
	Env       string `help:"Configuration file merged over default.yaml." default:"default" env:"APP_ENV"`

	Out io.Writer `kong:"-"`
}

// CLI is the top-level command structure for cupos.
type CLI struct {
	Globals

	Version   kong.VersionFlag `help:"Show version." short:"V"`
	Serve     ServeCmd         `cmd:"" help:"Run the HTTP API and the periodic jobs."`
	Get       GetCmd           `cmd:"" help:"Print the seat count of a class."`
	Init      InitCmd          `cmd:"" help:"Initialize the seat count of a class if it has none."`
	Increment IncrementCmd     `cmd:"" help:"Take one seat of a class."`
	Decrement DecrementCmd     `cmd:"" help:"Release one seat of a class."`
	List      ListCmd          `cmd:"" help:"Print every stored seat count."`
	Seed      SeedCmd          `cmd:"" help:"Initialize the classes listed in a seed file."`
	Watch     WatchCmd         `cmd:"" help:"Print seat change events from the broker."`
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Globals) loadConfig() (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(g.ConfigDir, g.Env)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	return cfg, nil
}

// openStore builds the seat store described by cfg. The returned func releases the cache driver.
func openStore(cfg *config.AppConfig, opts ...seats.Option) (*seats.Store, func(), error) {
	c, err := cache.New(&cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Driver, err)
	}

	base := []seats.Option{
		seats.WithCapacityEnforcement(cfg.Seats.EnforceCapacity),
		seats.WithDefaultCapacity(cfg.Seats.DefaultCapacity),
	}
	if cfg.Events.Enabled {
		base = append(base, seats.WithNotifier(events.NewPublisher(cfg.Events)))
	}

	release := func() {
		closer, ok := c.(io.Closer)
		if !ok {
			return
		}
		if err := closer.Close(); err != nil {
			logger.Base().WithError(err).Warn("failed to close cache")
		}
	}
	return seats.New(c, append(base, opts...)...), release, nil
}

type seatOutput struct {
	ClassID           string `json:"classId"`
	Capacity          int    `json:"capacity"`
	CurrentEnrollment int    `json:"currentEnrollment"`
	Available         int    `json:"available"`
}

func toOutput(seat seats.SeatCount) seatOutput {
	return seatOutput{
		ClassID:           seat.ClassID,
		Capacity:          seat.Capacity,
		CurrentEnrollment: seat.CurrentEnrollment,
		Available:         seat.Available(),
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errSeatNotFound):
		return exitNotFound
	case errors.Is(err, seats.ErrClassFull):
		return exitFull
	case errors.Is(err, seats.ErrInvalidClassID), errors.Is(err, seats.ErrInvalidSeatCount):
		return exitInvalid
	}
	return exitFailure
}

func main() {
	// stdout carries command output
	logger.SetOutput(os.Stderr)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cupos"),
		kong.Description("Seat availability cache for RitmoFit classes."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
