package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/liuscraft/tunefill/internal/filler"
)

func printSummary(w io.Writer, report *filler.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SET\tPRESENT\tPLANNED\tFILLED\tFAILED\tSTATUS\n")
	for _, s := range report.Sets {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Name, s.Present, len(s.Planned), len(s.Filled), len(s.Failed), status(s, report.DryRun))
	}
	tw.Flush()

	if report.DryRun {
		fmt.Fprintf(w, "\n%d sets, %d pitches to fill, %d sets skipped\n",
			len(report.Sets), report.Planned(), report.FailedSets())
		return
	}
	fmt.Fprintf(w, "\n%d sets, %d pitches filled, %d failed, %d sets skipped\n",
		len(report.Sets), report.Filled(), report.Failed(), report.FailedSets())
}

func status(s *filler.SetResult, dryRun bool) string {
	switch {
	case s.Err != nil:
		return "error: " + s.Err.Error()
	case !s.OK():
		return "incomplete"
	case len(s.Planned) == 0:
		return "complete"
	case dryRun:
		return "dry run"
	default:
		return "filled"
	}
}
