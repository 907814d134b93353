package config

import (
	"sort"

	"github.com/san-kum/camkin/internal/cam"
)

var Presets = map[string]cam.Params{
	"reference": cam.Default(),
	"compact": {
		BaseCircleRadius: 15, MaxLift: 6, RiseDuration: 60, DwellDuration: 30, FallDuration: 60,
		JerkLimit: 1000, AccelerationLimit: 500, VelocityLimit: 100, RPM: 3000,
	},
	"long_dwell": {
		BaseCircleRadius: 25, MaxLift: 10, RiseDuration: 80, DwellDuration: 120, FallDuration: 80,
		JerkLimit: 1000, AccelerationLimit: 500, VelocityLimit: 100, RPM: 1500,
	},
	"high_speed": {
		BaseCircleRadius: 30, MaxLift: 8, RiseDuration: 100, DwellDuration: 20, FallDuration: 100,
		JerkLimit: 2000, AccelerationLimit: 800, VelocityLimit: 150, RPM: 6000,
	},
}

// GetPreset returns a default config carrying the named design, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params = p
	cfg.Params.CamDuration = p.TotalDuration()
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
