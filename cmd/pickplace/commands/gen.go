package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/printer"
	"github.com/elektrokombinacija/pickplace/internal/scenario"
)

var (
	genRows     int
	genCols     int
	genCount    int
	genSeed     int64
	genOut      string
	genStations string
	genObjects  string
	genJobs     int
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate station and task CSV files",
}

var genStationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Generate stations on random free cells",
	Long: `Generate places --count stations on distinct random cells of a
--rows x --cols grid and writes them as name,row,col CSV.

Cell (0,0) is left free for the robot start.`,
	RunE: runGenStations,
}

var genTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Generate pick/place task pairs",
	Long: `Generate reads a stations CSV and writes --jobs pick/place pairs, each
moving one object between two different stations.`,
	RunE: runGenTasks,
}

func init() {
	genCmd.PersistentFlags().Int64Var(&genSeed, "seed", 1, "Random seed")
	genCmd.PersistentFlags().StringVarP(&genOut, "out", "o", "", "Output CSV path (required)")

	genStationsCmd.Flags().IntVar(&genRows, "rows", 20, "Grid rows")
	genStationsCmd.Flags().IntVar(&genCols, "cols", 20, "Grid columns")
	genStationsCmd.Flags().IntVar(&genCount, "count", 8, "Number of stations")

	genTasksCmd.Flags().StringVar(&genStations, "stations", "stations.csv", "Stations CSV to draw from")
	genTasksCmd.Flags().StringVar(&genObjects, "objects", "A,B,C", "Comma-separated object ids")
	genTasksCmd.Flags().IntVar(&genJobs, "jobs", 10, "Number of pick/place pairs")

	genCmd.AddCommand(genStationsCmd, genTasksCmd)
	rootCmd.AddCommand(genCmd)
}

func requireOut() error {
	if genOut == "" {
		return printer.Error("Missing output path", "--out is required.", nil)
	}
	return nil
}

func runGenStations(cmd *cobra.Command, args []string) error {
	if err := requireOut(); err != nil {
		return err
	}
	stations, err := scenario.GenerateStations(genRows, genCols, genCount, []core.Coord{{}}, genSeed)
	if err != nil {
		return printer.Error(
			"Failed to generate stations",
			err.Error(),
			[]string{"Lower --count or enlarge the grid"},
		)
	}
	if err := scenario.SaveStations(genOut, stations); err != nil {
		return printer.Error("Failed to write stations", err.Error(), nil)
	}
	printer.Success("Wrote %d stations to %s\n", len(stations), genOut)
	return nil
}

func runGenTasks(cmd *cobra.Command, args []string) error {
	if err := requireOut(); err != nil {
		return err
	}
	stations, err := scenario.LoadStations(genStations)
	if err != nil {
		return printer.Error("Failed to read stations", err.Error(), nil)
	}
	var objects []string
	for _, o := range strings.Split(genObjects, ",") {
		if o = strings.TrimSpace(o); o != "" {
			objects = append(objects, o)
		}
	}
	tasks, err := scenario.GenerateTasks(genJobs, stations, objects, genSeed)
	if err != nil {
		return printer.Error("Failed to generate tasks", err.Error(), nil)
	}
	if err := scenario.SaveTasks(genOut, tasks); err != nil {
		return printer.Error("Failed to write tasks", err.Error(), nil)
	}
	printer.Success("Wrote %d tasks (%d pairs) to %s\n", len(tasks), genJobs, genOut)
	return nil
}
