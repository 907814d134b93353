package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logJSON    bool

	samples   int
	label     string
	noSave    bool
	outFile   string
	harmonics int

	method     string
	objective  string
	seed       int64
	maxIter    int
	popSize    int
	gridPoints int
	noPolish   bool
	liftRange  string
	riseRange  string
	fallRange  string
	exportOpt  bool

	exportDir string
	format    string
	name      string

	paramsFile string
	runID      string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers every command. Flag variables are reset to their
// defaults on each call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "camkin",
		Short:        "cam follower motion design and optimization",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".camkin", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a named preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [design]",
		Short: "sample a design over one cycle and report its kinematics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().IntVar(&samples, "samples", 0, "number of sampled angles")
	analyzeCmd.Flags().StringVar(&label, "label", "", "run label (default analysis)")
	analyzeCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	analyzeCmd.Flags().StringVarP(&outFile, "out", "o", "", "write sampled kinematics as JSON")
	analyzeCmd.Flags().IntVar(&harmonics, "harmonics", 0, "print the strongest acceleration harmonics")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [design]",
		Short: "search lift, rise and fall for a smoother design",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().IntVar(&samples, "samples", 0, "number of sampled angles per evaluation")
	optimizeCmd.Flags().StringVar(&method, "method", "", "search method (differential_evolution, minimize, grid)")
	optimizeCmd.Flags().StringVar(&objective, "objective", "", "objective (rms_acceleration, max_jerk, energy)")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	optimizeCmd.Flags().IntVar(&maxIter, "max-iter", 0, "iteration limit")
	optimizeCmd.Flags().IntVar(&popSize, "popsize", 0, "population size multiplier")
	optimizeCmd.Flags().IntVar(&gridPoints, "grid-points", 0, "grid points per axis")
	optimizeCmd.Flags().BoolVar(&noPolish, "no-polish", false, "skip local polishing after evolution")
	optimizeCmd.Flags().StringVar(&liftRange, "lift", "", "max lift bounds as min:max")
	optimizeCmd.Flags().StringVar(&riseRange, "rise", "", "rise duration bounds as min:max")
	optimizeCmd.Flags().StringVar(&fallRange, "fall", "", "fall duration bounds as min:max")
	optimizeCmd.Flags().StringVar(&label, "label", "", "run label (default optimize)")
	optimizeCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	optimizeCmd.Flags().BoolVar(&exportOpt, "export", false, "export the optimized design")
	optimizeCmd.Flags().StringVar(&exportDir, "dir", "", "export directory")
	optimizeCmd.Flags().StringVar(&format, "format", "", "export format (json, toml)")

	exportCmd := &cobra.Command{
		Use:   "export [design]",
		Short: "write a design as JSON or TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "export directory")
	exportCmd.Flags().StringVar(&format, "format", "", "export format (json, toml)")
	exportCmd.Flags().StringVar(&name, "name", "cam_params", "file name without extension")

	convertCmd := &cobra.Command{
		Use:   "convert [in] [out]",
		Short: "convert a design file between JSON and TOML",
		Args:  cobra.ExactArgs(2),
		RunE:  runConvert,
	}

	referenceCmd := &cobra.Command{
		Use:   "reference",
		Short: "write the kinematics table at integer degrees",
		Args:  cobra.NoArgs,
		RunE:  runReference,
	}
	referenceCmd.Flags().StringVar(&paramsFile, "params", "", "design file")
	referenceCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	verifyCmd := &cobra.Command{
		Use:   "verify [table]",
		Short: "compare a kinematics table against the motion law",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVerify,
	}
	verifyCmd.Flags().StringVar(&paramsFile, "params", "", "design file")
	verifyCmd.Flags().StringVar(&runID, "run", "", "verify the samples of a stored run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list design presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(analyzeCmd, optimizeCmd, exportCmd, convertCmd, referenceCmd, verifyCmd, listCmd, showCmd, presetsCmd)
	return rootCmd
}
