// Package printer renders coloured console output for runs and commands.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/elektrokombinacija/pickplace/internal/bench"
	"github.com/elektrokombinacija/pickplace/internal/sim"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Printf("✓ %s", msg)
	} else {
		green.Print(msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow
func Warning(format string, a ...any) {
	yellow.Printf("⚠️  %s", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to stderr and returns an
// error carrying only the title, for Cobra with SilenceErrors set.
func Error(title string, explanation string, suggestions []string) error {
	return errorTo(os.Stderr, title, explanation, suggestions)
}

func errorTo(w io.Writer, title string, explanation string, suggestions []string) error {
	red.Fprintf(w, "%s\n\n", title)
	fmt.Fprintf(w, "%s\n", explanation)

	if len(suggestions) > 0 {
		fmt.Fprintf(w, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(w, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(w, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(w, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	return fmt.Errorf("%s", title)
}

// RunStart prints the run banner.
func RunStart(w io.Writer, info sim.RunInfo) {
	bold.Fprintf(w, "=== RUN START ===")
	fmt.Fprintf(w, " id=%s strategy=%s tasks=%d", info.RunID, info.Strategy, info.Planned)
	if dropped := info.Supplied - info.Planned; dropped > 0 {
		yellow.Fprintf(w, " (dropped %d unpaired)", dropped)
	}
	fmt.Fprintln(w)
}

// Task prints one per-task log line.
func Task(w io.Writer, out sim.TaskOutcome, delta int) {
	fmt.Fprintf(w, "[%4d] +%2d  %-20s @ %-3s  pos=(%d,%d)  load=%d  score=%d  result=",
		out.PathLen, delta, out.Name, out.Station,
		out.Position.Row, out.Position.Col, len(out.Carrying), out.Score)
	switch {
	case out.Error != "":
		red.Fprintf(w, "skipped")
		fmt.Fprintf(w, " (%s)", out.Error)
	case out.Success:
		green.Fprintf(w, "success")
	default:
		yellow.Fprintf(w, "failure")
	}
	fmt.Fprintln(w)
}

// TaskLog returns an observer that prints each task outcome with the number
// of path cells it added.
func TaskLog(w io.Writer) func(sim.TaskOutcome) {
	prev := 1
	return func(out sim.TaskOutcome) {
		Task(w, out, out.PathLen-prev)
		prev = out.PathLen
	}
}

// Summary prints the run metrics.
func Summary(w io.Writer, res *sim.Result, elapsed time.Duration) {
	m := res.Metrics
	if n := len(res.Outcomes); n > 0 {
		last := res.Outcomes[n-1].PathLen
		if d := m.Distance - last; d > 0 {
			fmt.Fprintf(w, "[%4d] +%2d  Drive -> END         pos=(%d,%d)\n", m.Distance, d, res.Final.Row, res.Final.Col)
		}
	}
	cyan.Fprintf(w, "=== RUN END | Total dist %d | Makespan %d | Loaded %d (%.1f%%) | Idle %d | Tasks %d | Score %d | CPU wall %.1f ms ===\n",
		m.Distance, m.LogicalSteps, m.LoadedSteps, m.Utilization, m.Distance-m.LoadedSteps,
		m.TasksPlanned, res.Score, float64(elapsed.Microseconds())/1000)
	rate := 0.0
	if m.TasksPlanned > 0 {
		rate = float64(m.TasksSucceeded) / float64(m.TasksPlanned) * 100
	}
	fmt.Fprintf(w, "succeeded=%d failed=%d (%.1f%%) max_load=%d\n", m.TasksSucceeded, m.TasksFailed, rate, m.MaxLoad)
}

// BenchSummary prints the per-strategy comparison table.
func BenchSummary(w io.Writer, summary []bench.StrategyMetrics) {
	bold.Fprintln(w, "\n=== BENCHMARK SUMMARY ===")
	fmt.Fprintf(w, "%-12s %6s %8s %12s %10s %10s %8s\n",
		"Strategy", "Runs", "Success", "Avg Time(ms)", "Avg Score", "Avg Dist", "Util%")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, m := range summary {
		fmt.Fprintf(w, "%-12s %6d %8d %12.2f %10.1f %10.1f %7.1f%%\n",
			m.Name, m.Runs, m.Successes, m.AvgRuntimeMs, m.AvgScore, m.AvgDistance, m.AvgUtilization)
	}
}
