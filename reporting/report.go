// Package reporting renders matrix results for humans: terse outcome blocks
// naming each test, and a summary table of every execution.
package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ethereum-optimism/infra/op-matrix/runner"
	"github.com/ethereum-optimism/infra/op-matrix/types"
)

// WriteSummary writes the three outcome blocks. The passed block is gated on
// reportPassed; failed and no-result blocks always appear when non-empty.
func WriteSummary(w io.Writer, result *runner.MatrixResult, reportPassed bool) {
	if reportPassed {
		writeBlock(w, "Passed", result.Ledger.Passed)
	}
	writeBlock(w, "Failed", result.Ledger.Failed)
	writeBlock(w, "No result from", result.Ledger.NoResult)
}

func writeBlock(w io.Writer, description string, entries []runner.Entry) {
	if len(entries) == 0 {
		return
	}
	if len(entries) == 1 {
		fmt.Fprintf(w, "\n%s the following test:\n", description)
	} else {
		fmt.Fprintf(w, "\n%s the following %d tests:\n", description, len(entries))
	}
	for _, e := range entries {
		fmt.Fprintf(w, "\t%s\n", e.Test)
	}
}

// WriteTable renders every execution of the run as a table, in chronological
// order, colored by the aggregate status.
func WriteTable(w io.Writer, result *runner.MatrixResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Test Matrix Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Format", "Test", "Duration", "Exit", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Format", AutoMerge: true},
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Exit", Align: text.AlignRight},
	})

	for _, tr := range result.Results {
		t.AppendRow(table.Row{
			tr.Format,
			tr.Test,
			formatDuration(tr.Duration),
			tr.ExitCode,
			getResultString(tr.Status),
		})
	}

	switch result.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusNoResult:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		result.Stats.Total,
		formatDuration(result.Duration),
		"",
		getResultString(result.Status),
	})

	t.Render()
}

// getResultString returns a short marker string for a test status
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusNoResult:
		return "- no result"
	default:
		return "✗ fail"
	}
}

// formatDuration formats a duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
