package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/pickplace/internal/bench"
	"github.com/elektrokombinacija/pickplace/internal/config"
	"github.com/elektrokombinacija/pickplace/internal/printer"
	"github.com/elektrokombinacija/pickplace/internal/scenario"
)

var (
	benchConfig     string
	benchOutput     string
	benchStrategies string
	benchSeeds      int
	benchFirstSeed  int64
	benchVerbose    bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare strategies across seeds",
	Long: `Bench runs one scenario once per strategy and seed, writes the per-run
metrics as CSV and prints a per-strategy summary.

The seed drives the robot's failure rolls and, for the random strategy,
batch selection.`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVarP(&benchConfig, "config", "c", "scenario.yaml", "Scenario file")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "evidence/bench_results.csv", "Output CSV file")
	benchCmd.Flags().StringVar(&benchStrategies, "strategy", "hybrid,random", "Strategies to run (comma-separated)")
	benchCmd.Flags().IntVar(&benchSeeds, "seeds", 10, "Number of seeds per strategy")
	benchCmd.Flags().Int64Var(&benchFirstSeed, "first-seed", 1, "First seed")
	benchCmd.Flags().BoolVarP(&benchVerbose, "verbose", "v", false, "Print every run")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return printer.Error("Invalid flag", err.Error(), nil)
	}
	if benchSeeds < 1 {
		return printer.Error("Invalid flag", "--seeds must be at least 1.", nil)
	}

	cfg, err := config.Load(benchConfig)
	if err != nil {
		return printer.Error("Failed to load scenario", err.Error(), nil)
	}
	inst, err := scenario.Build(cfg)
	if err != nil {
		return printer.Error("Failed to build scenario", err.Error(), nil)
	}
	base, err := scenario.SimConfig(cfg, inst, logger)
	if err != nil {
		return printer.Error("Invalid scenario", err.Error(), nil)
	}

	opts := bench.Options{}
	for _, s := range strings.Split(benchStrategies, ",") {
		if s = strings.TrimSpace(s); s != "" {
			opts.Strategies = append(opts.Strategies, s)
		}
	}
	for i := 0; i < benchSeeds; i++ {
		opts.Seeds = append(opts.Seeds, benchFirstSeed+int64(i))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running benchmarks: %d strategies x %d seeds = %d runs\n",
		len(opts.Strategies), len(opts.Seeds), len(opts.Strategies)*len(opts.Seeds))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := bench.Run(ctx, base, opts, func(done, total int, r *bench.Result) {
		if !benchVerbose {
			fmt.Fprintf(out, "\r[%d/%d] Running...", done, total)
			return
		}
		fmt.Fprintf(out, "[%d/%d] %s seed=%d ... ", done, total, r.Strategy, r.Seed)
		if r.Success {
			fmt.Fprintf(out, "OK (%.2fms, score=%d, dist=%d)\n", r.RuntimeMs, r.Score, r.Distance)
		} else {
			fmt.Fprintf(out, "FAILED (%s)\n", r.Error)
		}
	})
	fmt.Fprintln(out)
	if err != nil {
		return printer.Error("Benchmark aborted", err.Error(), nil)
	}

	if err := bench.SaveCSV(benchOutput, results); err != nil {
		return printer.Error("Failed to write results", err.Error(), nil)
	}
	printer.Success("Results written to %s\n", benchOutput)
	printer.BenchSummary(out, bench.Summarize(results))
	return nil
}
