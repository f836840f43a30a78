package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/memocache"
	"github.com/rshade/memocache/internal/demo"
	"github.com/rshade/memocache/internal/logging"
	"github.com/rshade/memocache/internal/tui"
)

// eventBufferSize bounds the store-to-dashboard event queue. The hook drops
// events when the dashboard falls behind rather than blocking store
// operations.
const eventBufferSize = 256

// Default cadence and entry lifetime for the feeder workload.
const (
	defaultFeedInterval = time.Second
	defaultFeedTTL      = 30 * time.Second
)

// watchParams holds the parameters for the watch command execution.
type watchParams struct {
	interval time.Duration
	entryTTL time.Duration
	latency  time.Duration
}

// newWatchCmd creates the "watch" subcommand: a live terminal dashboard over
// a cache store fed by a background workload.
func newWatchCmd(state *rootState) *cobra.Command {
	var params watchParams

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a cache store live in the terminal",
		Long: `Open a live dashboard over an in-process cache store.

A background workload keeps issuing memoized calls so the dashboard has
traffic to show: store counters, the current entries with their remaining
lifetimes, and a feed of recent cache events.

Keys: 's' cycles the sort order, 'p' pauses refreshing, 'i' invalidates the
selected entry, 'x' clears the store, Enter inspects an entry, and 'q' quits.`,
		Example: `  # Watch with the default one-second feed cadence
  memocache watch

  # Slow the feed down and make computations visibly slow
  memocache watch --interval 3s --latency 200ms

  # Short-lived entries so expiry shows up quickly
  memocache watch --entry-ttl 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeWatch(cmd, state, params, args)
		},
	}

	cmd.Flags().DurationVar(&params.interval, "interval", defaultFeedInterval,
		"Delay between workload batches feeding the store")
	cmd.Flags().DurationVar(&params.entryTTL, "entry-ttl", defaultFeedTTL,
		"TTL for entries written by the feeder (0 uses the configured default)")
	cmd.Flags().DurationVar(&params.latency, "latency", 0,
		"Artificial delay per computation to imitate a slow backend")

	return cmd
}

// executeWatch builds the store and feeder, then hands the terminal to the
// dashboard until the user quits.
func executeWatch(cmd *cobra.Command, state *rootState, params watchParams, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if !isTerminal(os.Stdout) {
		return errors.New("watch requires an interactive terminal; use 'memocache demo' for a one-shot report")
	}
	if params.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", params.interval)
	}

	logging.AuditLoggerFromContext(ctx).Record(ctx, "watch", args)

	events := make(chan memocache.Event, eventBufferSize)
	store, err := newStore(state, memocache.WithEventHook(func(ev memocache.Event) {
		select {
		case events <- ev:
		default:
		}
	}))
	if err != nil {
		return err
	}

	feederCfg := demo.Config{
		Tasks:        state.cfg.Demo.Tasks,
		Workers:      state.cfg.Demo.Workers,
		Keys:         state.cfg.Demo.Keys,
		FailureRate:  state.cfg.Demo.FailureRate,
		Seed:         state.cfg.Demo.Seed,
		TTL:          params.entryTTL,
		Singleflight: state.cfg.Cache.Singleflight,
		Latency:      params.latency,
	}
	workload, err := demo.New(store, feederCfg)
	if err != nil {
		return fmt.Errorf("building feeder workload: %w", err)
	}

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		feedStore(feedCtx, workload, params.interval, log)
	}()

	log.Debug().Ctx(ctx).
		Str("operation", "watch").
		Dur("interval", params.interval).
		Dur("entry_ttl", params.entryTTL).
		Msg("starting dashboard")

	model := tui.NewWatchModel(store, events)
	p := tea.NewProgram(model)
	if _, runErr := p.Run(); runErr != nil {
		cancel()
		wg.Wait()
		return fmt.Errorf("failed to run interactive TUI: %w", runErr)
	}

	cancel()
	wg.Wait()

	log.Info().Ctx(ctx).
		Str("operation", "watch").
		Uint64("computes", workload.Computes()).
		Msg("dashboard closed")

	return nil
}

// feedStore runs workload batches against the store until ctx is canceled.
// Injected failures are recorded per call, so Run only errors on cancel.
func feedStore(ctx context.Context, workload *demo.Workload, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := workload.Run(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("feeder workload stopped")
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
