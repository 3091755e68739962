package scenario

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/config"
	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/sim"
)

// Stations collects the configured stations: the CSV table first, then the
// inline map in name order. Inline entries override CSV rows of the same name.
func Stations(cfg *config.Config) ([]Station, error) {
	var out []Station
	if cfg.StationsCSV != "" {
		s, err := LoadStations(cfg.ResolvePath(cfg.StationsCSV))
		if err != nil {
			return nil, err
		}
		out = s
	}

	names := make([]string, 0, len(cfg.Stations))
	for name := range cfg.Stations {
		names = append(names, name)
	}
	sort.Strings(names)

	pos := make(map[string]int, len(out))
	for i, s := range out {
		pos[s.Name] = i
	}
	for _, name := range names {
		v := cfg.Stations[name]
		s := Station{Name: name, Coord: core.Coord{Row: v[0], Col: v[1]}}
		if i, ok := pos[name]; ok {
			out[i] = s
			continue
		}
		pos[name] = len(out)
		out = append(out, s)
	}
	return out, nil
}

// Build assembles the grid, stations, obstacles and tasks described by cfg.
func Build(cfg *config.Config) (*core.Instance, error) {
	grid, err := core.NewGridMap(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}
	inst := core.NewInstance(grid, cfg.Start())
	inst.End = cfg.End()

	stations, err := Stations(cfg)
	if err != nil {
		return nil, err
	}
	for _, s := range stations {
		if err := inst.AddStation(s.Name, s.Coord); err != nil {
			return nil, err
		}
	}

	if cfg.Obstacles != nil && cfg.Obstacles.Count > 0 {
		forbid := []core.Coord{inst.Start}
		if inst.End != nil {
			forbid = append(forbid, *inst.End)
		}
		rng := rand.New(rand.NewSource(cfg.Obstacles.Seed))
		if err := grid.GenerateRandomObstacles(cfg.Obstacles.Count, forbid, rng); err != nil {
			return nil, err
		}
	}

	if cfg.TasksCSV != "" {
		inst.Tasks, err = LoadTasks(cfg.ResolvePath(cfg.TasksCSV), core.NewScoringContext())
	} else {
		inst.Tasks, err = GenerateTasks(cfg.Generate.Jobs, stations, cfg.Objects, cfg.Generate.Seed)
	}
	if err != nil {
		return nil, err
	}
	if cfg.SortTasks != "" {
		core.SortByPoints(inst.Tasks, cfg.SortTasks == config.SortDescending)
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// NewSequencer returns the configured ordering strategy.
func NewSequencer(cfg *config.Config) (algo.Sequencer, error) {
	capacity := config.DefaultCap
	if cfg.Robot != nil && cfg.Robot.Cap != nil {
		capacity = *cfg.Robot.Cap
	}
	seed := int64(config.DefaultSeed)
	if cfg.Robot != nil && cfg.Robot.Seed != nil {
		seed = *cfg.Robot.Seed
	}
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = config.StrategyHybrid
	}
	return algo.NewSequencer(strategy, capacity, seed)
}

// SimConfig builds the simulation settings for inst. cfg must have defaults
// applied.
func SimConfig(cfg *config.Config, inst *core.Instance, logger *slog.Logger) (sim.Config, error) {
	seq, err := NewSequencer(cfg)
	if err != nil {
		return sim.Config{}, err
	}
	sc := sim.DefaultConfig()
	sc.Instance = inst
	sc.Sequencer = seq
	sc.Cap = *cfg.Robot.Cap
	sc.FailProb = *cfg.Robot.FailProb
	sc.Seed = *cfg.Robot.Seed
	sc.Smooth = *cfg.Robot.Smooth
	sc.Band = cfg.BandParams()
	sc.SkipUnreachable = cfg.SkipUnreachable
	sc.Logger = logger
	return sc, nil
}
