package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/codec"
	"github.com/san-kum/camkin/internal/config"
	"github.com/san-kum/camkin/internal/logging"
)

// loadConfig resolves defaults, then --preset, then --config, then a
// design file argument, then command flags.
func loadConfig(cmd *cobra.Command, design string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if design != "" {
		p, err := readParams(design)
		if err != nil {
			return nil, err
		}
		cfg.Params = p
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if flags.Changed("samples") {
		cfg.Samples = samples
	}
	if flags.Changed("method") {
		cfg.Optimizer.Method = method
	}
	if flags.Changed("objective") {
		cfg.Optimizer.Objective = objective
	}
	if flags.Changed("seed") {
		cfg.Optimizer.Seed = seed
	}
	if flags.Changed("max-iter") {
		cfg.Optimizer.MaxIterations = maxIter
	}
	if flags.Changed("popsize") {
		cfg.Optimizer.PopulationSize = popSize
	}
	if flags.Changed("grid-points") {
		cfg.Optimizer.GridPoints = gridPoints
	}
	if flags.Changed("no-polish") {
		cfg.Optimizer.Polish = !noPolish
	}
	if flags.Changed("dir") {
		cfg.Export.Dir = exportDir
	}
	if flags.Changed("format") {
		cfg.Export.Format = format
	}

	ranges := []struct {
		flag  string
		value string
		dst   *config.Range
	}{
		{"lift", liftRange, &cfg.Optimizer.Bounds.MaxLift},
		{"rise", riseRange, &cfg.Optimizer.Bounds.RiseDuration},
		{"fall", fallRange, &cfg.Optimizer.Bounds.FallDuration},
	}
	for _, r := range ranges {
		if !flags.Changed(r.flag) {
			continue
		}
		parsed, err := parseRange(r.value)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", r.flag, err)
		}
		*r.dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)
}

// readParams decodes a design file, choosing the codec by extension.
func readParams(path string) (cam.Params, error) {
	f, err := codec.FormatFromPath(path)
	if err != nil {
		return cam.Params{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cam.Params{}, err
	}
	p, err := codec.Unmarshal(f, data)
	if err != nil {
		return cam.Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func parseRange(s string) (config.Range, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return config.Range{}, fmt.Errorf("expected min:max, got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return config.Range{}, fmt.Errorf("invalid min: %w", err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return config.Range{}, fmt.Errorf("invalid max: %w", err)
	}
	return config.Range{Min: lo, Max: hi}, nil
}

func argOr(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}
