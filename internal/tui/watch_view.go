package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/memocache"
)

// watchSummaryHeight is the vertical space reserved around the entry table
// for the summary box, the event feed, and the status bar.
const watchSummaryHeight = 18

// truncateSuffix marks truncated table cells.
const truncateSuffix = "..."

// msgSelectedOutOfBounds is shown when the inspected entry left the snapshot
// before the detail view rendered.
const msgSelectedOutOfBounds = "Selected entry is no longer in the store.\n\nPress ESC to return."

// percentMultiplier converts a ratio to a percentage.
const percentMultiplier = 100

// View renders the current view.
func (m *WatchModel) View() string {
	switch m.state {
	case WatchStateQuitting:
		return ""
	case WatchStateDetail:
		return m.renderDetailView()
	case WatchStateLive:
		// Handled below
	}

	return m.renderLiveView()
}

// renderLiveView renders the dashboard: summary, entry table, event feed,
// and status bar.
func (m *WatchModel) renderLiveView() string {
	sections := []string{
		m.renderSummary(),
		m.entryTable.View(),
		m.renderFeed(),
		m.renderStatusBar(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSummary renders the boxed store counters.
func (m *WatchModel) renderSummary() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("CACHE OVERVIEW"))
	content.WriteString("\n")

	content.WriteString(LabelStyle.Render("Store: "))
	content.WriteString(ValueStyle.Render(m.store.Name()))
	content.WriteString(LabelStyle.Render("    Entries: "))
	content.WriteString(ValueStyle.Render(strconv.Itoa(m.stats.Size)))
	content.WriteString(LabelStyle.Render("    Hit ratio: "))
	content.WriteString(ValueStyle.Render(fmt.Sprintf("%.1f%%", m.stats.HitRatio()*percentMultiplier)))
	content.WriteString("\n")

	content.WriteString(LabelStyle.Render("Hits: "))
	content.WriteString(ValueStyle.Render(strconv.FormatUint(m.stats.Hits, 10)))
	content.WriteString(LabelStyle.Render("    Misses: "))
	content.WriteString(ValueStyle.Render(strconv.FormatUint(m.stats.Misses, 10)))
	content.WriteString(LabelStyle.Render("    Expired: "))
	content.WriteString(ValueStyle.Render(strconv.FormatUint(m.stats.Expired, 10)))
	content.WriteString(LabelStyle.Render("    Sets: "))
	content.WriteString(ValueStyle.Render(strconv.FormatUint(m.stats.Sets, 10)))
	content.WriteString(LabelStyle.Render("    Invalidations: "))
	content.WriteString(ValueStyle.Render(strconv.FormatUint(m.stats.Invalidations, 10)))

	return BoxStyle.Width(m.width - borderPadding).Render(content.String())
}

// renderFeed renders the most recent store events, newest first.
func (m *WatchModel) renderFeed() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("RECENT EVENTS"))
	content.WriteString("\n")

	if len(m.feed) == 0 {
		content.WriteString(SubtleStyle.Render("  (waiting for activity)"))
		return content.String()
	}

	for _, ev := range m.feed {
		content.WriteString("  ")
		content.WriteString(SubtleStyle.Render(ev.At.Format("15:04:05")))
		content.WriteString("  ")
		content.WriteString(eventStyle(ev.Kind).Render(fmt.Sprintf("%-10s", string(ev.Kind))))
		content.WriteString(" ")
		content.WriteString(ev.Key)
		content.WriteString("\n")
	}

	return strings.TrimRight(content.String(), "\n")
}

// eventStyle picks the feed color for an event kind.
func eventStyle(kind memocache.EventKind) lipgloss.Style {
	switch kind {
	case memocache.EventHit:
		return lipgloss.NewStyle().Foreground(ColorOK)
	case memocache.EventMiss:
		return SubtleStyle
	case memocache.EventExpired:
		return WarningStyle
	case memocache.EventInvalidate, memocache.EventClear:
		return CriticalStyle
	case memocache.EventSet:
		return LabelStyle
	default:
		return ValueStyle
	}
}

// renderStatusBar displays the sort field, pause state, and key help.
func (m *WatchModel) renderStatusBar() string {
	var flags []string
	if m.paused {
		flags = append(flags, WarningStyle.Render("PAUSED"))
	}
	if m.streamEnded {
		flags = append(flags, SubtleStyle.Render("stream ended"))
	}

	status := fmt.Sprintf(
		"Sort: %s | Press 's' to cycle, 'p' to pause, 'i' to invalidate, 'x' to clear, Enter for detail, 'q' to quit",
		m.sortLabel(),
	)
	if len(flags) > 0 {
		status = strings.Join(flags, " ") + " | " + status
	}
	return SubtleStyle.Render(status)
}

// sortLabel returns the human-readable label for the current sort field.
func (m *WatchModel) sortLabel() string {
	switch m.sortBy {
	case SortByKey:
		return "Key"
	case SortByAge:
		return "Age"
	case SortByExpiry:
		return "Expiry"
	default:
		return "Unknown"
	}
}

// renderDetailView renders a single entry.
func (m *WatchModel) renderDetailView() string {
	entry, ok := m.selectedEntry()
	if !ok {
		return msgSelectedOutOfBounds
	}

	now := m.now()
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("ENTRY DETAIL"))
	content.WriteString("\n\n")

	content.WriteString(LabelStyle.Render("Key:        "))
	content.WriteString(ValueStyle.Render(entry.Key))
	content.WriteString("\n")
	content.WriteString(LabelStyle.Render("Value:      "))
	content.WriteString(ValueStyle.Render(fmt.Sprintf("%v", entry.Value)))
	content.WriteString("\n\n")

	content.WriteString(LabelStyle.Render("Created:    "))
	content.WriteString(ValueStyle.Render(entry.CreatedAt.Format(time.RFC3339)))
	content.WriteString("\n")
	content.WriteString(LabelStyle.Render("Age:        "))
	content.WriteString(ValueStyle.Render(formatAge(entry.Age(now))))
	content.WriteString("\n")
	content.WriteString(LabelStyle.Render("TTL:        "))
	content.WriteString(ValueStyle.Render(formatEntryTTL(entry)))
	content.WriteString("\n")
	content.WriteString(LabelStyle.Render("Expires in: "))
	content.WriteString(renderExpiresIn(entry, now))
	content.WriteString("\n")

	content.WriteString(SubtleStyle.Render("\nPress ESC to return"))

	return BoxStyle.Width(m.width - borderPadding).Render(content.String())
}

// renderExpiresIn styles the remaining lifetime, warning when under a tenth
// of the TTL remains.
func renderExpiresIn(e memocache.Entry, now time.Time) string {
	remaining, expires := e.TimeUntilExpiration(now)
	if !expires {
		return SubtleStyle.Render("never")
	}
	if remaining <= 0 {
		return CriticalStyle.Render("expired")
	}
	text := formatAge(remaining)
	if e.TTL > 0 && remaining < e.TTL/10 { //nolint:mnd // Warn in the last tenth of the TTL.
		return WarningStyle.Render(text)
	}
	return ValueStyle.Render(text)
}

// formatAge renders a duration rounded to whole seconds.
func formatAge(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	return d.Round(time.Second).String()
}

// formatEntryTTL renders the TTL column value.
func formatEntryTTL(e memocache.Entry) string {
	if e.ExpiresAt.IsZero() {
		return "-"
	}
	return memocache.FormatDuration(e.TTL)
}

// formatExpiresIn renders the remaining lifetime column value.
func formatExpiresIn(e memocache.Entry, now time.Time) string {
	remaining, expires := e.TimeUntilExpiration(now)
	if !expires {
		return "never"
	}
	if remaining <= 0 {
		return "expired"
	}
	return formatAge(remaining)
}

// truncateCell shortens a table cell to width runes with an ellipsis.
func truncateCell(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= len(truncateSuffix) {
		return string(runes[:width])
	}
	return string(runes[:width-len(truncateSuffix)]) + truncateSuffix
}
