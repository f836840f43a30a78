package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// disabledAuditLogger is handed out when no audit logger is configured.
//
//nolint:gochecknoglobals // shared disabled instance, stateless by design
var disabledAuditLogger = &AuditLogger{}

// AuditLoggerConfig configures the append-only audit trail.
type AuditLoggerConfig struct {
	// Enabled turns the audit trail on.
	Enabled bool

	// File is the JSONL file invocations are appended to.
	File string
}

// AuditLogger records command invocations as JSON lines. The zero value is
// disabled: Record and Close are no-ops, so callers never need to branch.
type AuditLogger struct {
	mu      sync.Mutex
	enabled bool
	file    *os.File
	logger  zerolog.Logger
}

// NewAuditLogger opens the configured audit file. A disabled config or a file
// that cannot be opened yields a disabled logger; audit trouble must never
// block a command.
func NewAuditLogger(cfg AuditLoggerConfig) *AuditLogger {
	if !cfg.Enabled || cfg.File == "" {
		return &AuditLogger{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
		return &AuditLogger{}
	}
	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return &AuditLogger{}
	}

	return &AuditLogger{
		enabled: true,
		file:    file,
		logger:  zerolog.New(file).With().Timestamp().Logger(),
	}
}

// Enabled reports whether invocations are being recorded.
func (a *AuditLogger) Enabled() bool {
	return a != nil && a.enabled
}

// Record appends one line for a command invocation, tagged with the trace id
// carried by ctx.
func (a *AuditLogger) Record(ctx context.Context, command string, args []string) {
	if !a.Enabled() {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger.Info().
		Str("trace_id", TraceIDFromContext(ctx)).
		Str("command", command).
		Strs("args", args).
		Msg("command invoked")
}

// Close releases the audit file handle. Safe to call on a disabled logger
// and safe to call twice.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}

	err := a.file.Close()
	a.file = nil
	a.enabled = false
	if err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	return nil
}
