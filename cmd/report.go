package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"trade-sync/internal/reconcile"
)

// printSummary writes the per-entity report block.
func printSummary(w io.Writer, report reconcile.Report) {
	fmt.Fprintln(w, "\n📊 Summary Report:")
	inserted := 0
	for i, r := range report.Results {
		icon := "✓"
		if !r.OK() {
			icon = "!"
		}
		target := fmt.Sprintf("%d -> %d", r.TargetCountBefore, r.TargetCountAfter)
		if r.Status == reconcile.StatusDryRun {
			target = fmt.Sprint(r.TargetCountBefore)
		}
		fmt.Fprintf(w, "[%s] [%02d/%02d] %-18s : source %d | target %s | missing %d | inserted %d - %s (%s)\n",
			icon, i+1, len(report.Results), r.Entity,
			r.SourceCount, target, r.MissingCount, r.InsertedCount,
			r.Status, r.Elapsed.Round(time.Millisecond))
		if r.Err != nil {
			fmt.Fprintf(w, "    └ Error (at %s): %s\n", r.State, r.Err)
		}
		inserted += r.InsertedCount
	}
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Total Inserted: %d\n", inserted)
}
