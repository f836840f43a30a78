package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/memocache/internal/demo"
	"github.com/rshade/memocache/internal/logging"
)

// Output format values accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// demoParams holds the parameters for the demo command execution.
type demoParams struct {
	tasks       int
	workers     int
	keys        int
	repeat      int
	failureRate float64
	seed        uint64
	bypassEvery int
	latency     time.Duration
	output      string
}

// newDemoCmd creates the "demo" subcommand that drives a synthetic memoized
// workload through a cache store and reports hit, miss, and compute counts.
func newDemoCmd(state *rootState) *cobra.Command {
	var params demoParams

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic workload against a cache store",
		Long: `Run a synthetic memoized workload against an in-process cache store.

The workload spreads a configurable number of calls over a small set of hot
keys, so after each key's first computation the remaining calls are answered
from cache. Failures can be injected to show that errors propagate to the
caller without being cached.

Repeating the workload with --repeat shares one store across all passes:
later passes find the store warm and compute almost nothing.`,
		Example: `  # Issue 200 calls over 8 hot keys with 4 workers
  memocache demo --tasks 200 --keys 8 --workers 4

  # Repeat the workload three times against one store
  memocache demo --repeat 3

  # Coalesce concurrent misses into a single computation
  memocache demo --singleflight --latency 50ms

  # Inject failures and emit the report as JSON
  memocache demo --failure-rate 0.2 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeDemo(cmd, state, params, args)
		},
	}

	cmd.Flags().IntVar(&params.tasks, "tasks", 0,
		"Number of memoized calls to issue (defaults from configuration)")
	cmd.Flags().IntVar(&params.workers, "workers", 0,
		"Maximum calls in flight at once (defaults from configuration)")
	cmd.Flags().IntVar(&params.keys, "keys", 0,
		"Number of distinct hot keys (defaults from configuration)")
	cmd.Flags().IntVar(&params.repeat, "repeat", 1,
		"Number of passes to run against the same store")
	cmd.Flags().Float64Var(&params.failureRate, "failure-rate", 0,
		"Fraction of computations that fail, 0 to 1 (defaults from configuration)")
	cmd.Flags().Uint64Var(&params.seed, "seed", 0,
		"Seed for reproducible key assignment and failure injection")
	cmd.Flags().IntVar(&params.bypassEvery, "bypass-every", 0,
		"Force every Nth call to skip its cache lookup (0 = never)")
	cmd.Flags().DurationVar(&params.latency, "latency", 0,
		"Artificial delay per computation to imitate a slow backend")
	cmd.Flags().StringVar(&params.output, "output", outputTable,
		"Output format: table or json")

	return cmd
}

// executeDemo builds the workload from configuration and flags, runs the
// requested passes against a shared store, and renders one report per pass.
func executeDemo(cmd *cobra.Command, state *rootState, params demoParams, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	if params.output != outputTable && params.output != outputJSON {
		return fmt.Errorf("unsupported output format: %s", params.output)
	}
	if params.repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", params.repeat)
	}

	logging.AuditLoggerFromContext(ctx).Record(ctx, "demo", args)

	cfg := demoConfig(cmd, state, params)

	store, err := newStore(state)
	if err != nil {
		return err
	}

	workload, err := demo.New(store, cfg)
	if err != nil {
		return fmt.Errorf("building workload: %w", err)
	}

	log.Debug().Ctx(ctx).
		Str("operation", "demo").
		Int("tasks", cfg.Tasks).
		Int("workers", cfg.Workers).
		Int("keys", cfg.Keys).
		Int("repeat", params.repeat).
		Bool("singleflight", cfg.Singleflight).
		Msg("starting workload")

	reports := make([]*demo.Report, 0, params.repeat)
	for pass := 1; pass <= params.repeat; pass++ {
		report, runErr := workload.Run(ctx)
		if runErr != nil {
			return fmt.Errorf("running workload pass %d: %w", pass, runErr)
		}
		reports = append(reports, report)

		if params.output == outputTable {
			if params.repeat > 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "Pass %d/%d\n", pass, params.repeat)
			}
			if renderErr := renderReportTable(cmd.OutOrStdout(), report); renderErr != nil {
				return renderErr
			}
			if pass < params.repeat {
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
	}

	if params.output == outputJSON {
		if renderErr := renderReportsJSON(cmd.OutOrStdout(), reports); renderErr != nil {
			return renderErr
		}
	}

	total := 0
	computed := uint64(0)
	for _, r := range reports {
		total += r.Calls
		computed += r.Computes
	}
	log.Info().Ctx(ctx).
		Str("operation", "demo").
		Int("passes", len(reports)).
		Int("calls", total).
		Uint64("computes", computed).
		Msg("workload complete")

	return nil
}

// demoConfig resolves the workload configuration. Values come from the
// resolved configuration file unless the corresponding flag was set.
func demoConfig(cmd *cobra.Command, state *rootState, params demoParams) demo.Config {
	cfg := demo.Config{
		Tasks:        state.cfg.Demo.Tasks,
		Workers:      state.cfg.Demo.Workers,
		Keys:         state.cfg.Demo.Keys,
		FailureRate:  state.cfg.Demo.FailureRate,
		Seed:         state.cfg.Demo.Seed,
		Singleflight: state.cfg.Cache.Singleflight,
		BypassEvery:  params.bypassEvery,
		Latency:      params.latency,
	}

	flags := cmd.Flags()
	if flags.Changed("tasks") {
		cfg.Tasks = params.tasks
	}
	if flags.Changed("workers") {
		cfg.Workers = params.workers
	}
	if flags.Changed("keys") {
		cfg.Keys = params.keys
	}
	if flags.Changed("failure-rate") {
		cfg.FailureRate = params.failureRate
	}
	if flags.Changed("seed") {
		cfg.Seed = params.seed
	}

	return cfg
}
