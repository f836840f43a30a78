package memocache

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TTL defaults and bounds for operator-facing input. The store itself
// accepts any TTL; these bound values arriving through configuration,
// environment, and flags.
const (
	// DefaultTTL is the default cache TTL (1 hour).
	DefaultTTL = time.Hour

	// MinTTL is the minimum expiring TTL accepted from configuration.
	MinTTL = time.Minute

	// MaxTTL is the maximum TTL accepted from configuration (7 days).
	MaxTTL = 7 * 24 * time.Hour

	// EnvTTL is the environment variable for overriding the default TTL.
	EnvTTL = "MEMOCACHE_TTL"

	// EnvTTLDisabled, when set to a true value, forces the never-expire
	// policy regardless of EnvTTL.
	EnvTTLDisabled = "MEMOCACHE_NO_TTL"

	hoursPerDay = 24
)

// TTL validation errors.
var (
	ErrNegativeTTL = errors.New("TTL cannot be negative")
	ErrInvalidTTL  = fmt.Errorf("TTL must be 0 or between %s and %s", MinTTL, MaxTTL)
)

// ParseTTL parses a TTL string in two formats: bare integer seconds ("3600")
// or a Go duration ("1h", "90s", "1h30m"). Zero is valid and means entries
// expire immediately; negative values are rejected.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("invalid TTL format: empty string")
	}

	if seconds, err := strconv.Atoi(s); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("%w: got %ds", ErrNegativeTTL, seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: got %s", ErrNegativeTTL, d)
	}
	return d, nil
}

// ValidateTTL checks a configured default TTL. Zero is valid and means
// entries never expire under the default policy; expiring TTLs must fall
// within [MinTTL, MaxTTL].
func ValidateTTL(ttl time.Duration) error {
	if ttl == 0 {
		return nil
	}
	if ttl < MinTTL || ttl > MaxTTL {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return nil
}

// TTLFromEnv reads EnvTTL through lookup (os.LookupEnv when nil). The second
// return is false when the variable is unset, empty, or does not parse.
// EnvTTLDisabled takes precedence: when set to a true value the result is
// (0, true), the never-expire policy.
func TTLFromEnv(lookup func(string) (string, bool)) (time.Duration, bool) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if raw, ok := lookup(EnvTTLDisabled); ok {
		if disabled, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil && disabled {
			return 0, true
		}
	}

	raw, ok := lookup(EnvTTL)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false
	}

	ttl, err := ParseTTL(raw)
	if err != nil {
		return 0, false
	}
	return ttl, true
}

// FormatDuration formats a duration in a compact human-readable way.
// Examples: "45s", "30m", "1h30m", "2d".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
