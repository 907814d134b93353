package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/codec"
)

// ExportParameters writes p to dir/name plus the format's extension,
// creating dir if needed, and returns the written path.
func ExportParameters(dir, name string, p cam.Params, format codec.Format) (string, error) {
	data, err := codec.Marshal(format, p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+format.Extension())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

type ExportData struct {
	Params       cam.Params         `json:"params"`
	Samples      int                `json:"samples"`
	Theta        []float64          `json:"theta"`
	Displacement []float64          `json:"displacement"`
	Velocity     []float64          `json:"velocity"`
	Acceleration []float64          `json:"acceleration"`
	Jerk         []float64          `json:"jerk"`
	Metrics      map[string]float64 `json:"metrics"`
	Violations   map[string]bool    `json:"violations"`
}

// ExportAnalysis writes res as JSON for plotting tools.
func ExportAnalysis(w io.Writer, res *analysis.Result) error {
	data := ExportData{
		Params:       res.Params,
		Samples:      len(res.Theta),
		Theta:        res.Theta,
		Displacement: res.Displacement,
		Velocity:     res.Velocity,
		Acceleration: res.Acceleration,
		Jerk:         res.Jerk,
		Metrics:      res.Metrics,
		Violations: map[string]bool{
			"velocity":     res.VelocityViolation,
			"acceleration": res.AccelerationViolation,
			"jerk":         res.JerkViolation,
		},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportAnalysisFile(path string, res *analysis.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportAnalysis(file, res)
}
