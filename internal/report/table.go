// Package report renders search responses as plain-text tables for the CLI.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mstrand/wavesearch/internal/pipeline"
	"github.com/mstrand/wavesearch/internal/search"
)

const maxSnippetWidth = 60

func WriteTable(resp *pipeline.Response, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== WaveSearch: %q ===\n\n", resp.Query)
	writeSummary(tw, resp)
	writeResultsTable(tw, resp.Results)

	tw.Flush()
}

func writeSummary(tw *tabwriter.Writer, resp *pipeline.Response) {
	fmt.Fprintf(tw, "Intent: %s\n", resp.Intent)
	if resp.Recommendation != nil {
		fmt.Fprintf(tw, "Routing: %s\n", resp.Recommendation.Explanation)
	}
	fmt.Fprintf(tw, "Engines: %d selected, %d succeeded, %d failed\n",
		len(resp.EnginesSelected), len(resp.EnginesSucceeded), len(resp.EnginesFailed))
	if len(resp.EnginesFailed) > 0 {
		fmt.Fprintf(tw, "Failed: %s\n", strings.Join(resp.EnginesFailed, ", "))
	}
	fmt.Fprintf(tw, "Took: %s (routing %s, execution %s, ranking %s)\n\n",
		fmtDuration(resp.Timings.Total),
		fmtDuration(resp.Timings.Routing),
		fmtDuration(resp.Timings.Execution),
		fmtDuration(resp.Timings.Ranking),
	)
}

func writeResultsTable(tw *tabwriter.Writer, results []search.RankedResult) {
	if len(results) == 0 {
		fmt.Fprintln(tw, "No results.")
		return
	}

	header := []string{"Rank", "Conf", "Tier", "Engines", "Title", "URL"}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, r := range results {
		row := []string{
			fmt.Sprintf("%d", r.Rank),
			fmt.Sprintf("%.1f", r.Confidence),
			string(r.Tier),
			strings.Join(r.FoundIn, ","),
			truncate(r.Title, maxSnippetWidth),
			r.URL,
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	fmt.Fprintln(tw)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func fmtDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fµs", float64(d.Microseconds()))
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
