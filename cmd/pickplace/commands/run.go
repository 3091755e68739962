package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/pickplace/internal/config"
	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/printer"
	"github.com/elektrokombinacija/pickplace/internal/scenario"
	"github.com/elektrokombinacija/pickplace/internal/sim"
)

var (
	runConfig string
	runExport string
	runTrace  string
	runQuiet  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Long: `Run loads a scenario file, plans the task order and drives the robot
through it, printing one line per task and a summary at the end.

Use --export to write the full result as JSON and --trace to record a
zstd-compressed JSON-lines trace of every task outcome.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "scenario.yaml", "Scenario file")
	runCmd.Flags().StringVar(&runExport, "export", "", "Write the result as JSON to this path")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "Write a compressed JSON-lines trace to this path")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Only print the summary")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return printer.Error("Invalid flag", err.Error(), nil)
	}

	cfg, err := config.Load(runConfig)
	if err != nil {
		return printer.Error(
			"Failed to load scenario",
			err.Error(),
			[]string{
				fmt.Sprintf("Check that %s exists and is valid YAML", runConfig),
				"Pass a different file with --config",
			},
		)
	}

	inst, err := scenario.Build(cfg)
	if err != nil {
		return printer.Error("Failed to build scenario", err.Error(), nil)
	}

	sc, err := scenario.SimConfig(cfg, inst, logger)
	if err != nil {
		return printer.Error("Invalid scenario", err.Error(), nil)
	}

	out := cmd.OutOrStdout()
	if runQuiet {
		out = io.Discard
	}
	sc.OnStart = func(info sim.RunInfo) { printer.RunStart(out, info) }
	sc.OnTask = printer.TaskLog(out)

	if runTrace != "" {
		tw, err := sim.CreateTraceFile(runTrace)
		if err != nil {
			return printer.Error("Failed to open trace", err.Error(), nil)
		}
		defer tw.Close()
		sc.Trace = tw
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	res, err := sim.RunSimulation(ctx, sc)
	if err != nil {
		return runError(err)
	}
	printer.Summary(cmd.OutOrStdout(), res, time.Since(started))

	if runExport != "" {
		if err := sim.ExportResult(res, runExport); err != nil {
			return printer.Error("Failed to export result", err.Error(), nil)
		}
		printer.Success("Result written to %s\n", runExport)
	}
	return nil
}

func runError(err error) error {
	switch {
	case errors.Is(err, core.ErrNoPathFound):
		return printer.Error(
			"Station unreachable",
			err.Error(),
			[]string{
				"Set skip_unreachable: true to keep going past unreachable stations",
				"Lower obstacles.count or change obstacles.seed",
			},
		)
	case errors.Is(err, core.ErrUnknownStation):
		return printer.Error(
			"Unknown station",
			err.Error(),
			[]string{"Every task station must appear in stations_csv or stations"},
		)
	case errors.Is(err, context.Canceled):
		return printer.Error("Run interrupted", err.Error(), nil)
	default:
		return printer.Error("Simulation failed", err.Error(), nil)
	}
}
