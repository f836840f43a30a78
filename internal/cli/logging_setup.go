package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/memocache"
	"github.com/rshade/memocache/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command, state *rootState) logging.Result {
	loggingCfg := logging.Config{
		Level:  state.cfg.Logging.Level,
		Format: state.cfg.Logging.Format,
		File:   state.cfg.Logging.File,
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		loggingCfg.Format = format
	}
	if file, _ := cmd.Flags().GetString("log-file"); file != "" && !debug {
		loggingCfg.File = file
	}

	result := logging.NewLogger(loggingCfg)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	traceID := logging.GetOrGenerateTraceID(cmd.Context())
	ctx := logging.ContextWithTraceID(cmd.Context(), traceID)
	ctx = logger.WithContext(ctx)

	auditLogger := logging.NewAuditLogger(logging.AuditLoggerConfig{
		Enabled: state.cfg.Logging.Audit.Enabled,
		File:    state.cfg.Logging.Audit.File,
	})
	ctx = logging.ContextWithAuditLogger(ctx, auditLogger)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.Name()).Str("trace_id", traceID).Msg("command started")

	return result
}

// cleanupLogging closes audit logger and log file handles.
func cleanupLogging(cmd *cobra.Command, logResult *logging.Result) error {
	ctx := cmd.Context()
	if err := logging.AuditLoggerFromContext(ctx).Close(); err != nil {
		return err
	}
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}

// newStore builds the cache store described by the resolved configuration,
// logging through the process logger. Extra options let callers attach event
// hooks.
func newStore(state *rootState, extra ...memocache.Option) (*memocache.Store, error) {
	ttl, err := state.cfg.Cache.TTL()
	if err != nil {
		return nil, err
	}

	opts := []memocache.Option{
		memocache.WithName(state.cfg.Cache.Name),
		memocache.WithLogger(logging.ComponentLogger(state.logResult.Logger, "cache")),
	}
	if ttl > 0 {
		opts = append(opts, memocache.WithDefaultTTL(ttl))
	}
	opts = append(opts, extra...)

	return memocache.New(opts...), nil
}
