package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/optim"
	"github.com/san-kum/camkin/internal/parity"
)

const (
	KindAnalysis     = "analysis"
	KindOptimization = "optimization"

	metadataFile   = "metadata.json"
	kinematicsFile = "kinematics.csv"
)

var kinematicsHeader = []string{"theta", "displacement", "velocity", "acceleration", "jerk"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Samples   int                `json:"samples"`
	Params    cam.Params         `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`

	Method      string             `json:"method,omitempty"`
	Objective   string             `json:"objective,omitempty"`
	Success     bool               `json:"success,omitempty"`
	Message     string             `json:"message,omitempty"`
	Iterations  int                `json:"iterations,omitempty"`
	Evaluations int                `json:"evaluations,omitempty"`
	Original    *cam.Params        `json:"original,omitempty"`
	Improvement *optim.Improvement `json:"improvement,omitempty"`
}

// SaveAnalysis stores res under a new run id derived from label.
func (s *Store) SaveAnalysis(label string, res *analysis.Result) (string, error) {
	meta := RunMetadata{
		Kind:    KindAnalysis,
		Label:   label,
		Samples: len(res.Theta),
		Params:  res.Params,
		Metrics: res.Metrics,
	}
	return s.save(meta, res)
}

// SaveOptimization stores the optimized design and its kinematics.
func (s *Store) SaveOptimization(label string, res *optim.Result) (string, error) {
	metrics := make(map[string]float64, len(res.Analysis.Metrics)+3)
	for k, v := range res.Analysis.Metrics {
		metrics[k] = v
	}
	metrics["objective_value"] = res.ObjectiveValue
	metrics["rms_acceleration_reduction"] = res.Improvement.RMSAccelerationReduction
	metrics["max_jerk_reduction"] = res.Improvement.MaxJerkReduction

	original := res.Original
	improvement := res.Improvement
	meta := RunMetadata{
		Kind:        KindOptimization,
		Label:       label,
		Samples:     len(res.Analysis.Theta),
		Params:      res.Optimized,
		Metrics:     metrics,
		Method:      string(res.Method),
		Objective:   string(res.Objective),
		Success:     res.Success,
		Message:     res.Message,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Original:    &original,
		Improvement: &improvement,
	}
	return s.save(meta, res.Analysis)
}

// ErrInvalidLabel is returned for labels that would leave the run root.
var ErrInvalidLabel = errors.New("storage: invalid run label")

func checkLabel(label string) error {
	if strings.ContainsAny(label, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidLabel, label)
	}
	return nil
}

// save writes the kinematics first and the metadata last; a run directory
// is only listed once its metadata exists. On any error the directory is
// removed.
func (s *Store) save(meta RunMetadata, res *analysis.Result) (runID string, err error) {
	if err := checkLabel(meta.Label); err != nil {
		return "", err
	}

	runID = fmt.Sprintf("%s_%s", meta.Label, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	meta.ID = runID
	meta.Timestamp = time.Now()

	if err = writeKinematics(filepath.Join(runDir, kinematicsFile), res); err != nil {
		return "", err
	}
	if err = writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return file.Close()
}

func writeKinematics(path string, res *analysis.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(kinematicsHeader); err != nil {
		return err
	}
	for i := range res.Theta {
		row := []string{
			formatFloat(res.Theta[i]),
			formatFloat(res.Displacement[i]),
			formatFloat(res.Velocity[i]),
			formatFloat(res.Acceleration[i]),
			formatFloat(res.Jerk[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}

// formatFloat writes the shortest text that reads back to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSamples reads a run's kinematics back as a table.
func (s *Store) LoadSamples(runID string) (*parity.Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, kinematicsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(kinematicsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	t := &parity.Table{}
	if len(records) < 2 {
		return t, nil
	}

	columns := []*[]float64{&t.Theta, &t.Displacement, &t.Velocity, &t.Acceleration, &t.Jerk}
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d column %s: %w", kinematicsFile, i+1, kinematicsHeader[j], err)
			}
			*columns[j] = append(*columns[j], v)
		}
	}
	return t, nil
}
