// Package config loads the YAML scenario file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/core"
)

// Strategy names accepted by the strategy key.
const (
	StrategyHybrid = algo.StrategyHybrid
	StrategyRandom = algo.StrategyRandom
)

// Task orderings accepted by sort_tasks.
const (
	SortDescending = "desc"
	SortAscending  = "asc"
)

// Config represents the top-level scenario.yaml configuration
type Config struct {
	Rows    int      `yaml:"rows"`
	Cols    int      `yaml:"cols"`
	Objects []string `yaml:"objects,omitempty"` // Object ids used by the task generator
	Layout  Layout   `yaml:"layout"`

	// Stations come from stations_csv, the inline map, or both.
	StationsCSV string           `yaml:"stations_csv,omitempty"`
	Stations    map[string][]int `yaml:"stations,omitempty"`

	// Tasks come from tasks_csv when set, otherwise from the generator.
	TasksCSV string          `yaml:"tasks_csv,omitempty"`
	Generate *GenerateConfig `yaml:"generate,omitempty"`
	// SortTasks reorders the loaded tasks by points: "desc", "asc" or empty
	// for table order.
	SortTasks string `yaml:"sort_tasks,omitempty"`

	Obstacles *ObstacleConfig `yaml:"obstacles,omitempty"`
	Robot     *RobotConfig    `yaml:"robot,omitempty"`
	Band      *BandConfig     `yaml:"band,omitempty"`
	Strategy  string          `yaml:"strategy,omitempty"` // "hybrid" (default) or "random"

	// SkipUnreachable keeps running when a station cannot be reached.
	SkipUnreachable bool `yaml:"skip_unreachable,omitempty"`

	dir string
}

// Layout holds the robot start and optional end cell as [row, col].
type Layout struct {
	Start []int `yaml:"start"`
	End   []int `yaml:"end,omitempty"`
}

// GenerateConfig drives random task generation.
type GenerateConfig struct {
	Jobs int   `yaml:"jobs"` // Pick/place pairs
	Seed int64 `yaml:"seed"`
}

// ObstacleConfig sprinkles random obstacles.
type ObstacleConfig struct {
	Count int   `yaml:"count"`
	Seed  int64 `yaml:"seed"`
}

// RobotConfig specifies robot behaviour. Nil fields take defaults.
type RobotConfig struct {
	Cap      *int     `yaml:"cap,omitempty"`
	FailProb *float64 `yaml:"fail_prob,omitempty"`
	Seed     *int64   `yaml:"seed,omitempty"`
	Smooth   *bool    `yaml:"smooth,omitempty"`
}

// BandConfig overrides elastic-band parameters.
type BandConfig struct {
	Iterations *int     `yaml:"iterations,omitempty"`
	Spring     *float64 `yaml:"spring,omitempty"`
	Repel      *float64 `yaml:"repel,omitempty"`
	Radius     *float64 `yaml:"obstacle_radius,omitempty"`
}

// Defaults.
const (
	DefaultCap      = algo.DefaultCap
	DefaultFailProb = 0.10
	DefaultSeed     = 42
	DefaultJobs     = 10
)

// ApplyDefaults fills unset optional sections.
func (c *Config) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyHybrid
	}
	if c.Robot == nil {
		c.Robot = &RobotConfig{}
	}
	if c.Robot.Cap == nil {
		v := DefaultCap
		c.Robot.Cap = &v
	}
	if c.Robot.FailProb == nil {
		v := DefaultFailProb
		c.Robot.FailProb = &v
	}
	if c.Robot.Seed == nil {
		v := int64(DefaultSeed)
		c.Robot.Seed = &v
	}
	if c.Robot.Smooth == nil {
		v := true
		c.Robot.Smooth = &v
	}
	if c.Obstacles == nil {
		c.Obstacles = &ObstacleConfig{Seed: DefaultSeed}
	}
	if c.TasksCSV == "" && c.Generate == nil {
		c.Generate = &GenerateConfig{Jobs: DefaultJobs, Seed: 1}
	}
	if c.Band == nil {
		c.Band = &BandConfig{}
	}
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("grid must be positive, got %dx%d", c.Rows, c.Cols)
	}

	start, err := cell("layout.start", c.Layout.Start)
	if err != nil {
		return err
	}
	if !c.inBounds(start) {
		return fmt.Errorf("layout.start %v outside %dx%d grid", start, c.Rows, c.Cols)
	}
	if c.Layout.End != nil {
		end, err := cell("layout.end", c.Layout.End)
		if err != nil {
			return err
		}
		if !c.inBounds(end) {
			return fmt.Errorf("layout.end %v outside %dx%d grid", end, c.Rows, c.Cols)
		}
	}

	if c.StationsCSV == "" && len(c.Stations) == 0 {
		return fmt.Errorf("no stations: set stations_csv or stations")
	}
	for name, v := range c.Stations {
		if _, err := cell("stations."+name, v); err != nil {
			return err
		}
	}

	if c.TasksCSV == "" {
		if c.Generate == nil || c.Generate.Jobs < 0 {
			return fmt.Errorf("generate.jobs must be >= 0 when tasks_csv is not set")
		}
		if c.Generate.Jobs > 0 && len(c.Objects) == 0 {
			return fmt.Errorf("objects must be listed to generate tasks")
		}
	}

	switch c.SortTasks {
	case "", SortDescending, SortAscending:
	default:
		return fmt.Errorf("invalid sort_tasks: %s (must be '%s' or '%s')", c.SortTasks, SortDescending, SortAscending)
	}

	if c.Obstacles != nil && c.Obstacles.Count < 0 {
		return fmt.Errorf("obstacles.count must be >= 0, got %d", c.Obstacles.Count)
	}

	if c.Robot != nil {
		if c.Robot.Cap != nil && *c.Robot.Cap < 1 {
			return fmt.Errorf("robot.cap must be >= 1, got %d", *c.Robot.Cap)
		}
		if p := c.Robot.FailProb; p != nil && (*p < 0 || *p > 1) {
			return fmt.Errorf("robot.fail_prob must be in [0, 1], got %v", *p)
		}
	}

	switch c.Strategy {
	case "", StrategyHybrid:
	case StrategyRandom:
		if c.Robot != nil && c.Robot.Cap != nil && *c.Robot.Cap > algo.MaxRandomBatchCap {
			return fmt.Errorf("strategy 'random' supports robot.cap <= %d, got %d", algo.MaxRandomBatchCap, *c.Robot.Cap)
		}
	default:
		return fmt.Errorf("invalid strategy: %s (must be '%s' or '%s')", c.Strategy, StrategyHybrid, StrategyRandom)
	}

	if c.Band != nil && c.Band.Iterations != nil && *c.Band.Iterations < 0 {
		return fmt.Errorf("band.iterations must be >= 0, got %d", *c.Band.Iterations)
	}

	return nil
}

func (c *Config) inBounds(p core.Coord) bool {
	return p.Row >= 0 && p.Row < c.Rows && p.Col >= 0 && p.Col < c.Cols
}

func cell(key string, v []int) (core.Coord, error) {
	if len(v) != 2 {
		return core.Coord{}, fmt.Errorf("%s must be [row, col], got %v", key, v)
	}
	return core.Coord{Row: v[0], Col: v[1]}, nil
}

// Start returns the robot start cell.
func (c *Config) Start() core.Coord {
	p, _ := cell("layout.start", c.Layout.Start)
	return p
}

// End returns the optional end cell.
func (c *Config) End() *core.Coord {
	if c.Layout.End == nil {
		return nil
	}
	p, _ := cell("layout.end", c.Layout.End)
	return &p
}

// BandParams merges band overrides onto the defaults.
func (c *Config) BandParams() algo.BandParams {
	p := algo.DefaultBandParams()
	if c.Band == nil {
		return p
	}
	if c.Band.Iterations != nil {
		p.Iterations = *c.Band.Iterations
	}
	if c.Band.Spring != nil {
		p.Spring = *c.Band.Spring
	}
	if c.Band.Repel != nil {
		p.Repel = *c.Band.Repel
	}
	if c.Band.Radius != nil {
		p.Radius = *c.Band.Radius
	}
	return p
}

// ResolvePath interprets p relative to the config file's directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Parse decodes, defaults and validates YAML content.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w: %w", core.ErrConfiguration, err)
	}

	return &config, nil
}

// Load reads a scenario file. Relative CSV paths resolve against its directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}
	config.dir = filepath.Dir(path)

	return config, nil
}
