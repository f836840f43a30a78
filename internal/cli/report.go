package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/memocache/internal/demo"
)

// printer formats counts with locale-aware digit grouping.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

// headerSeparatorLen is the length of the separator line below section headers.
const headerSeparatorLen = 40

// maxHotKeys is the number of hottest keys shown in the table report.
const maxHotKeys = 5

// percentMultiplier converts a ratio to a percentage.
const percentMultiplier = 100

// renderReportTable renders a single workload report in table format.
func renderReportTable(w io.Writer, r *demo.Report) error {
	fmt.Fprintf(w, "CACHE REPORT (store: %s)\n", r.Store)
	fmt.Fprintln(w, strings.Repeat("-", headerSeparatorLen))

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintf(tw, "Calls\t%s\n", printer.Sprintf("%d", r.Calls))
	fmt.Fprintf(tw, "Computed\t%s\n", printer.Sprintf("%d", r.Computes))
	fmt.Fprintf(tw, "Failures\t%s\n", printer.Sprintf("%d", r.Failures))
	fmt.Fprintf(tw, "Hits\t%s\n", printer.Sprintf("%d", r.Stats.Hits))
	fmt.Fprintf(tw, "Misses\t%s\n", printer.Sprintf("%d", r.Stats.Misses))
	fmt.Fprintf(tw, "Expired reads\t%s\n", printer.Sprintf("%d", r.Stats.Expired))
	fmt.Fprintf(tw, "Invalidations\t%s\n", printer.Sprintf("%d", r.Stats.Invalidations))
	fmt.Fprintf(tw, "Entries\t%s\n", printer.Sprintf("%d", r.Stats.Size))
	fmt.Fprintf(tw, "Hit ratio\t%.1f%%\n", r.Stats.HitRatio()*percentMultiplier)
	fmt.Fprintf(tw, "Cache savings\t%.1f%%\n", r.CacheSavings()*percentMultiplier)
	fmt.Fprintf(tw, "Elapsed\t%s\n", r.Elapsed)
	fmt.Fprintf(tw, "Avg call\t%s\n", r.AvgCall)
	fmt.Fprintf(tw, "Slowest call\t%s\n", r.Slowest)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}

	renderHotKeys(w, r)
	return nil
}

// renderHotKeys writes the most-called keys section, hottest first.
func renderHotKeys(w io.Writer, r *demo.Report) {
	hot := r.HotKeys()
	if len(hot) == 0 {
		return
	}
	if len(hot) > maxHotKeys {
		hot = hot[:maxHotKeys]
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "HOTTEST KEYS")
	for _, key := range hot {
		fmt.Fprintf(w, "  %-20s %s calls\n", key, printer.Sprintf("%d", r.KeyCounts[key]))
	}
}

// reportJSON is the JSON view of one workload pass.
type reportJSON struct {
	Store         string         `json:"store"`
	Calls         int            `json:"calls"`
	Computes      uint64         `json:"computes"`
	Failures      int            `json:"failures"`
	Hits          uint64         `json:"hits"`
	Misses        uint64         `json:"misses"`
	Expired       uint64         `json:"expired"`
	Invalidations uint64         `json:"invalidations"`
	Entries       int            `json:"entries"`
	HitRatio      float64        `json:"hit_ratio"`
	CacheSavings  float64        `json:"cache_savings"`
	Elapsed       string         `json:"elapsed"`
	AvgCall       string         `json:"avg_call"`
	Slowest       string         `json:"slowest_call"`
	KeyCounts     map[string]int `json:"key_counts,omitempty"`
}

// reportsJSONOutput wraps all passes of one demo invocation.
type reportsJSONOutput struct {
	Passes []reportJSON `json:"passes"`
}

// renderReportsJSON renders all pass reports as a single JSON document.
func renderReportsJSON(w io.Writer, reports []*demo.Report) error {
	output := reportsJSONOutput{Passes: make([]reportJSON, 0, len(reports))}
	for _, r := range reports {
		output.Passes = append(output.Passes, newReportJSON(r))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// newReportJSON converts a workload report into its JSON view. Durations are
// rendered as strings so the output stays readable without unit guessing.
func newReportJSON(r *demo.Report) reportJSON {
	return reportJSON{
		Store:         r.Store,
		Calls:         r.Calls,
		Computes:      r.Computes,
		Failures:      r.Failures,
		Hits:          r.Stats.Hits,
		Misses:        r.Stats.Misses,
		Expired:       r.Stats.Expired,
		Invalidations: r.Stats.Invalidations,
		Entries:       r.Stats.Size,
		HitRatio:      r.Stats.HitRatio(),
		CacheSavings:  r.CacheSavings(),
		Elapsed:       r.Elapsed.Round(time.Microsecond).String(),
		AvgCall:       r.AvgCall.Round(time.Microsecond).String(),
		Slowest:       r.Slowest.Round(time.Microsecond).String(),
		KeyCounts:     r.KeyCounts,
	}
}
