package exporter

import (
	"fmt"
	"io"
	"sort"

	"github.com/badele/pytesthl/internal/importer/ansi"
	"github.com/badele/pytesthl/internal/types"
)

func DisplayStats(w io.Writer, stats types.TokenStats) {
	fmt.Fprintln(w, "=== Token Statistics ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  File size: %d bytes\n", stats.FileSize)
	fmt.Fprintf(w, "  Total tokens: %d\n", stats.TotalTokens)
	fmt.Fprintf(w, "  Visible text: %d bytes\n", stats.TotalTextLength)

	if stats.DroppedSequences > 0 || stats.MalformedSequences > 0 {
		fmt.Fprintf(w, "  Dropped sequences: %d\n", stats.DroppedSequences)
		fmt.Fprintf(w, "  Malformed sequences: %d (first at %d)\n", stats.MalformedSequences, stats.PosFirstBadSequence)
	}

	if len(stats.TokensByStyle) > 0 {
		fmt.Fprintln(w, "\n--- Tokens by Style")
		byStyle := make(map[string]int, len(stats.TokensByStyle))
		for style, count := range stats.TokensByStyle {
			byStyle[string(style)] = count
		}
		displayShare(w, byStyle, stats.TotalTokens)
	}

	if len(stats.TokensByRole) > 0 {
		fmt.Fprintln(w, "\n--- Tokens by Role")
		displayShare(w, stats.TokensByRole, stats.TotalTokens)
	}

	if len(stats.SGRCodes) > 0 {
		fmt.Fprintln(w, "\n--- Most Used SGR Codes")
		displayTopN(w, stats.SGRCodes, 10)
	}
}

type entry struct {
	Key   string
	Count int
}

// sortedEntries orders by count, then key, so output is stable.
func sortedEntries(data map[string]int) []entry {
	var entries []entry
	for k, v := range data {
		entries = append(entries, entry{k, v})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

func displayShare(w io.Writer, data map[string]int, total int) {
	for _, e := range sortedEntries(data) {
		percentage := 0.0
		if total > 0 {
			percentage = float64(e.Count) / float64(total) * 100
		}
		fmt.Fprintf(w, "  %-30s:  %5d (%.1f%%)\n", e.Key, e.Count, percentage)
	}
}

func displayTopN(w io.Writer, data map[string]int, n int) {
	for i, e := range sortedEntries(data) {
		if i >= n {
			break
		}

		displayName := e.Key
		if name := ansi.DescribeSGR(e.Key); name != "Unknown" {
			displayName = fmt.Sprintf("%s (%s)", e.Key, name)
		}

		fmt.Fprintf(w, "  %-30s: %5d\n", displayName, e.Count)
	}
}
