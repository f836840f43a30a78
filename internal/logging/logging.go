package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Output format names accepted by Config.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config controls how the process logger is built.
type Config struct {
	// Level is a zerolog level name ("trace" through "error").
	// Unknown or empty values default to info.
	Level string

	// Format selects console or JSON output on stderr. Ignored when File is
	// set; file output is always JSON.
	Format string

	// File, when non-empty, sends all output to this file instead of stderr.
	// The directory is created if needed.
	File string

	// NoColor disables colors in console output.
	NoColor bool
}

// Result describes the logger that was built.
type Result struct {
	// Logger is the configured process logger.
	Logger zerolog.Logger

	// FilePath is the log file in use, empty when writing to stderr.
	FilePath string

	// UsingFile reports whether output goes to FilePath.
	UsingFile bool

	// FallbackUsed reports that file output was requested but could not be
	// set up; output goes to stderr instead.
	FallbackUsed bool

	// FallbackReason says why the fallback happened.
	FallbackReason string

	file *os.File
}

// Close releases the log file handle, if any.
func (r *Result) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// NewLogger builds a zerolog logger from cfg. A file that cannot be opened
// falls back to stderr with the reason recorded; logging setup never fails a
// command.
func NewLogger(cfg Config) Result {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	result := Result{}
	var out io.Writer

	switch {
	case cfg.File != "":
		file, openErr := openLogFile(cfg.File)
		if openErr != nil {
			result.FallbackUsed = true
			result.FallbackReason = openErr.Error()
			out = stderrWriter(cfg)
		} else {
			result.file = file
			result.FilePath = cfg.File
			result.UsingFile = true
			out = file
		}
	default:
		out = stderrWriter(cfg)
	}

	result.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return result
}

func stderrWriter(cfg Config) io.Writer {
	if cfg.Format == FormatJSON {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// ComponentLogger returns a child of parent tagged with a component name.
func ComponentLogger(parent zerolog.Logger, component string) zerolog.Logger {
	return parent.With().Str("component", component).Logger()
}

// PrintLogPathMessage tells the user where log output is going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning reports that file logging was requested but stderr is
// used instead.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), using stderr\n", reason)
}
