package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/codec"
	"github.com/san-kum/camkin/internal/config"
	"github.com/san-kum/camkin/internal/motion"
	"github.com/san-kum/camkin/internal/optim"
	"github.com/san-kum/camkin/internal/parity"
	"github.com/san-kum/camkin/internal/storage"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, argOr(args, ""))
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	law, err := motion.New(cfg.Params)
	if err != nil {
		return err
	}
	analyzer := analysis.New(law, analysis.WithSamples(cfg.Samples), analysis.WithLogger(logger))
	res := analyzer.Analyze()

	out := cmd.OutOrStdout()
	printParams(out, res.Params)
	fmt.Fprintln(out)
	printAnalysis(out, res)

	if harmonics > 0 {
		fmt.Fprintln(out)
		printHarmonics(out, analyzer.Spectrum(), harmonics)
	}

	if outFile != "" {
		if err := storage.ExportAnalysisFile(outFile, res); err != nil {
			return fmt.Errorf("export analysis: %w", err)
		}
		logger.Info("analysis exported", zap.String("path", outFile))
	}

	if noSave {
		return nil
	}
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	id, err := store.SaveAnalysis(labelOr("analysis"), res)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Fprintf(out, "\nrun id: %s\n", id)
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, argOr(args, ""))
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, _ := cfg.Method()
	obj, _ := cfg.Objective()

	opts := append(cfg.OptimizerOptions(), optim.WithLogger(logger))
	opt, err := optim.New(cfg.Params, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "optimizing %s with %s...\n", obj, m)

	res, err := opt.Optimize(ctx, cfg.Bounds(), obj, m)
	var failure *optim.Failure
	if err != nil && !errors.As(err, &failure) {
		return err
	}
	if failure != nil {
		logger.Warn("optimizer did not converge", zap.String("message", failure.Message))
	}

	printOptimization(out, res)

	if exportOpt {
		f, _ := codec.ParseFormat(cfg.Export.Format)
		path, err := storage.ExportParameters(cfg.Export.Dir, "optimized_cam_params", res.Optimized, f)
		if err != nil {
			return fmt.Errorf("export design: %w", err)
		}
		fmt.Fprintf(out, "\nexported: %s\n", path)
	}

	if !noSave {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		id, err := store.SaveOptimization(labelOr("optimize"), res)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(out, "\nrun id: %s\n", id)
	}

	if failure != nil {
		return failure
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, argOr(args, ""))
	if err != nil {
		return err
	}
	f, err := codec.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}
	path, err := storage.ExportParameters(cfg.Export.Dir, name, cfg.Params, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported: %s\n", path)
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	p, err := readParams(args[0])
	if err != nil {
		return err
	}
	f, err := codec.FormatFromPath(args[1])
	if err != nil {
		return err
	}
	data, err := codec.Marshal(f, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "converted %s -> %s\n", args[0], args[1])
	return nil
}

func runReference(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, paramsFile)
	if err != nil {
		return err
	}
	law, err := motion.New(cfg.Params)
	if err != nil {
		return err
	}
	table := parity.Reference(law, parity.IntegerDegrees())

	if outFile == "" {
		return parity.WriteTable(cmd.OutOrStdout(), table)
	}
	file, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer file.Close()
	return parity.WriteTable(file, table)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && runID == "" {
		return errors.New("verify needs a table file or --run")
	}

	var (
		got *parity.Table
		p   cam.Params
	)
	if runID != "" {
		store := storage.New(dataDir)
		meta, err := store.Load(runID)
		if err != nil {
			return fmt.Errorf("run not found: %s", runID)
		}
		got, err = store.LoadSamples(runID)
		if err != nil {
			return err
		}
		p = meta.Params
	} else {
		cfg, err := loadConfig(cmd, paramsFile)
		if err != nil {
			return err
		}
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		got, err = parity.ReadTable(file)
		if err != nil {
			return err
		}
		p = cfg.Params
	}

	law, err := motion.New(p)
	if err != nil {
		return err
	}
	report, err := parity.Compare(parity.Reference(law, got.Theta), got, parity.DefaultTolerances)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printReport(out, report)
	if !report.OK() {
		return errors.New("kinematics table does not match the motion law")
	}
	fmt.Fprintf(out, "\n%d samples match\n", report.Samples)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tLABEL\tTIME\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID, run.Kind, run.Label, run.Timestamp.Format("2006-01-02 15:04:05"), run.Samples)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("run not found: %s", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "kind: %s\n", meta.Kind)
	fmt.Fprintf(out, "time: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "samples: %d\n", meta.Samples)
	if meta.Kind == storage.KindOptimization {
		fmt.Fprintf(out, "method: %s\n", meta.Method)
		fmt.Fprintf(out, "objective: %s\n", meta.Objective)
		fmt.Fprintf(out, "success: %t (%s)\n", meta.Success, meta.Message)
		fmt.Fprintf(out, "iterations: %d, evaluations: %d\n", meta.Iterations, meta.Evaluations)
	}
	fmt.Fprintln(out)
	printParams(out, meta.Params)

	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(meta.Metrics))
	for k := range meta.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", k, meta.Metrics[k])
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLIFT\tRISE\tDWELL\tFALL\tRPM")
	for _, n := range config.ListPresets() {
		p := config.Presets[n]
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n",
			n, p.MaxLift, p.RiseDuration, p.DwellDuration, p.FallDuration, p.RPM)
	}
	return w.Flush()
}

func labelOr(fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

func printParams(out io.Writer, p cam.Params) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "base circle radius\t%g mm\n", p.BaseCircleRadius)
	fmt.Fprintf(w, "max lift\t%g mm\n", p.MaxLift)
	fmt.Fprintf(w, "rise / dwell / fall\t%g / %g / %g deg\n", p.RiseDuration, p.DwellDuration, p.FallDuration)
	fmt.Fprintf(w, "cam duration\t%g deg\n", p.CamDuration)
	fmt.Fprintf(w, "speed\t%g rpm\n", p.RPM)
	fmt.Fprintf(w, "limits (v / a / j)\t%g / %g / %g\n", p.VelocityLimit, p.AccelerationLimit, p.JerkLimit)
	w.Flush()
}

func printAnalysis(out io.Writer, res *analysis.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tMAX\tRMS\tLIMIT\tSTATUS")
	fmt.Fprintf(w, "velocity\t%.4f\t%.4f\t%g\t%s\n",
		res.MaxVelocity, res.Metrics[analysis.MetricRMSVelocity], res.Params.VelocityLimit, status(res.VelocityViolation))
	fmt.Fprintf(w, "acceleration\t%.4f\t%.4f\t%g\t%s\n",
		res.MaxAcceleration, res.RMSAcceleration, res.Params.AccelerationLimit, status(res.AccelerationViolation))
	fmt.Fprintf(w, "jerk\t%.4f\t%.4f\t%g\t%s\n",
		res.MaxJerk, res.RMSJerk, res.Params.JerkLimit, status(res.JerkViolation))
	w.Flush()
}

func printHarmonics(out io.Writer, amps []float64, n int) {
	orders := make([]int, 0, len(amps))
	for k := 1; k < len(amps); k++ {
		orders = append(orders, k)
	}
	sort.SliceStable(orders, func(i, j int) bool { return amps[orders[i]] > amps[orders[j]] })
	if n > len(orders) {
		n = len(orders)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tAMPLITUDE")
	for _, k := range orders[:n] {
		fmt.Fprintf(w, "%d\t%.4f\n", k, amps[k])
	}
	w.Flush()
	fmt.Fprintf(out, "dominant order: %d\n", analysis.DominantOrder(amps))
}

func printOptimization(out io.Writer, res *optim.Result) {
	fmt.Fprintf(out, "%s (%d iterations, %d evaluations)\n", res.Message, res.Iterations, res.Evaluations)
	fmt.Fprintf(out, "objective: %.6f\n\n", res.ObjectiveValue)

	orig, opt := res.BaselineAnalysis, res.Analysis
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tORIGINAL\tOPTIMIZED")
	fmt.Fprintf(w, "max lift\t%.4f\t%.4f\n", res.Original.MaxLift, res.Optimized.MaxLift)
	fmt.Fprintf(w, "rise duration\t%.4f\t%.4f\n", res.Original.RiseDuration, res.Optimized.RiseDuration)
	fmt.Fprintf(w, "fall duration\t%.4f\t%.4f\n", res.Original.FallDuration, res.Optimized.FallDuration)
	fmt.Fprintf(w, "max velocity\t%.4f\t%.4f\n", orig.MaxVelocity, opt.MaxVelocity)
	fmt.Fprintf(w, "max acceleration\t%.4f\t%.4f\n", orig.MaxAcceleration, opt.MaxAcceleration)
	fmt.Fprintf(w, "max jerk\t%.4f\t%.4f\n", orig.MaxJerk, opt.MaxJerk)
	fmt.Fprintf(w, "rms acceleration\t%.4f\t%.4f\n", orig.RMSAcceleration, opt.RMSAcceleration)
	w.Flush()

	fmt.Fprintf(out, "\nrms acceleration reduction: %.4f\n", res.Improvement.RMSAccelerationReduction)
	fmt.Fprintf(out, "max jerk reduction: %.4f\n", res.Improvement.MaxJerkReduction)
}

func printReport(out io.Writer, r *parity.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tTOLERANCE\tMAX ERROR\tAT ROW\tFAILURES")
	for _, d := range r.Deviations {
		fmt.Fprintf(w, "%s\t%g\t%.3g\t%d\t%d\n", d.Quantity, d.Tolerance, d.MaxError, d.MaxIndex, d.Failures)
	}
	w.Flush()
}

func status(violated bool) string {
	if violated {
		return "EXCEEDED"
	}
	return "ok"
}
