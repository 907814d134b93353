package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/codec"
	"github.com/san-kum/camkin/internal/optim"
)

const (
	DefaultMethod    = string(optim.DifferentialEvolution)
	DefaultObjective = string(optim.RMSAcceleration)
	DefaultLogLevel  = "info"
	DefaultFormat    = string(codec.TOML)
)

type Config struct {
	Params    cam.Params      `yaml:"params"`
	Samples   int             `yaml:"samples"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`
}

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type BoundsConfig struct {
	MaxLift      Range `yaml:"max_lift"`
	RiseDuration Range `yaml:"rise_duration"`
	FallDuration Range `yaml:"fall_duration"`
}

type OptimizerConfig struct {
	Method         string       `yaml:"method"`
	Objective      string       `yaml:"objective"`
	Seed           int64        `yaml:"seed"`
	MaxIterations  int          `yaml:"max_iterations"`
	PopulationSize int          `yaml:"population_size"`
	GridPoints     int          `yaml:"grid_points"`
	Polish         bool         `yaml:"polish"`
	Bounds         BoundsConfig `yaml:"bounds"`
}

type ExportConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func DefaultConfig() *Config {
	b := optim.DefaultBounds()
	return &Config{
		Params:  cam.Default(),
		Samples: analysis.DefaultSamples,
		Optimizer: OptimizerConfig{
			Method:         DefaultMethod,
			Objective:      DefaultObjective,
			Seed:           optim.DefaultSeed,
			MaxIterations:  optim.DefaultMaxIterations,
			PopulationSize: optim.DefaultPopulationSize,
			GridPoints:     optim.DefaultGridPoints,
			Polish:         true,
			Bounds: BoundsConfig{
				MaxLift:      Range{Min: b[0].Min, Max: b[0].Max},
				RiseDuration: Range{Min: b[1].Min, Max: b[1].Max},
				FallDuration: Range{Min: b[2].Min, Max: b[2].Max},
			},
		},
		Export: ExportConfig{
			Format: DefaultFormat,
			Dir:    "export",
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads a YAML file over the defaults, so absent keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over base, for example a preset.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, err
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section and derives Params.CamDuration.
func (c *Config) Validate() error {
	p, err := cam.New(c.Params)
	if err != nil {
		return fmt.Errorf("config: params: %w", err)
	}
	c.Params = p

	if c.Samples < analysis.MinSamples {
		return fmt.Errorf("config: samples must be at least %d, got %d", analysis.MinSamples, c.Samples)
	}
	if _, err := c.Method(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Objective(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Bounds().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := codec.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) Method() (optim.Method, error) {
	return optim.ParseMethod(c.Optimizer.Method)
}

func (c *Config) Objective() (optim.Objective, error) {
	return optim.ParseObjective(c.Optimizer.Objective)
}

func (c *Config) Bounds() optim.Bounds {
	b := c.Optimizer.Bounds
	return optim.Bounds{
		{Min: b.MaxLift.Min, Max: b.MaxLift.Max},
		{Min: b.RiseDuration.Min, Max: b.RiseDuration.Max},
		{Min: b.FallDuration.Min, Max: b.FallDuration.Max},
	}
}

// OptimizerOptions translates the optimizer section into optim options.
func (c *Config) OptimizerOptions() []optim.Option {
	o := c.Optimizer
	return []optim.Option{
		optim.WithSamples(c.Samples),
		optim.WithSeed(o.Seed),
		optim.WithMaxIterations(o.MaxIterations),
		optim.WithPopulationSize(o.PopulationSize),
		optim.WithGridPoints(o.GridPoints),
		optim.WithPolish(o.Polish),
	}
}
