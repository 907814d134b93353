package optim

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
)

const (
	DefaultSeed           = 42
	DefaultMaxIterations  = 100
	DefaultPopulationSize = 15
	DefaultGridPoints     = 9
	DefaultTolerance      = 0.01
)

// Improvement holds baseline minus optimized figures; positive is better.
type Improvement struct {
	RMSAccelerationReduction float64 `json:"rms_acceleration_reduction"`
	MaxJerkReduction         float64 `json:"max_jerk_reduction"`
}

type Result struct {
	Method         Method
	Objective      Objective
	Success        bool
	Message        string
	Iterations     int
	Evaluations    int
	ObjectiveValue float64

	Optimized cam.Params
	Original  cam.Params

	Analysis         *analysis.Result
	BaselineAnalysis *analysis.Result
	Improvement      Improvement
}

type Option func(*Optimizer)

// WithSamples sets the analyzer resolution used for every evaluation.
func WithSamples(n int) Option {
	return func(o *Optimizer) { o.samples = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithSeed(seed int64) Option {
	return func(o *Optimizer) { o.seed = seed }
}

func WithMaxIterations(n int) Option {
	return func(o *Optimizer) { o.maxIter = n }
}

// WithPopulationSize sets the evolution population as a multiple of the
// number of searched parameters.
func WithPopulationSize(n int) Option {
	return func(o *Optimizer) { o.popSize = n }
}

// WithGridPoints sets the number of grid points per axis.
func WithGridPoints(n int) Option {
	return func(o *Optimizer) { o.gridPoints = n }
}

// WithTolerance sets the relative population spread at which the evolution
// counts as converged.
func WithTolerance(tol float64) Option {
	return func(o *Optimizer) { o.tol = tol }
}

// WithPolish toggles the local refinement of the evolution's best member.
func WithPolish(polish bool) Option {
	return func(o *Optimizer) { o.polish = polish }
}

// WithEvaluationHook registers fn to see every evaluated candidate. fn is
// called from several goroutines at once.
func WithEvaluationHook(fn func(x []float64)) Option {
	return func(o *Optimizer) { o.hook = fn }
}

type Optimizer struct {
	base       cam.Params
	logger     *zap.Logger
	samples    int
	seed       int64
	maxIter    int
	popSize    int
	gridPoints int
	tol        float64
	polish     bool
	hook       func(x []float64)
}

// New binds an optimizer to a validated baseline.
func New(base cam.Params, opts ...Option) (*Optimizer, error) {
	base, err := cam.New(base)
	if err != nil {
		return nil, err
	}

	o := &Optimizer{
		base:       base,
		logger:     zap.NewNop(),
		samples:    analysis.DefaultSamples,
		seed:       DefaultSeed,
		maxIter:    DefaultMaxIterations,
		popSize:    DefaultPopulationSize,
		gridPoints: DefaultGridPoints,
		tol:        DefaultTolerance,
		polish:     true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.samples < analysis.MinSamples {
		o.samples = analysis.MinSamples
	}
	if o.maxIter < 0 {
		o.maxIter = 0
	}
	if o.gridPoints < 2 {
		o.gridPoints = 2
	}
	return o, nil
}

func (o *Optimizer) Baseline() cam.Params { return o.base }

// Optimize searches bounds for the (max lift, rise, fall) that minimizes
// objective, keeping every other baseline field. When the method stops
// without converging the result is still returned, together with a
// *Failure.
func (o *Optimizer) Optimize(ctx context.Context, bounds Bounds, objective Objective, method Method) (*Result, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if _, ok := objectives[objective]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObjective, objective)
	}
	search, err := lookup(method)
	if err != nil {
		return nil, err
	}

	o.logger.Info("optimization started",
		zap.String("method", string(method)),
		zap.String("objective", string(objective)),
		zap.Float64s("baseline", vec(o.base.Vector())),
	)

	prob := newProblem(o, bounds, objective)
	out, err := search(ctx, o, prob)
	if err != nil {
		return nil, err
	}

	optimized, err := o.base.WithVector(out.x)
	if err != nil {
		return nil, fmt.Errorf("optim: best candidate is infeasible: %w", err)
	}
	optRes, err := analysis.Analyze(optimized, analysis.WithSamples(o.samples))
	if err != nil {
		return nil, err
	}
	baseRes, err := analysis.Analyze(o.base, analysis.WithSamples(o.samples))
	if err != nil {
		return nil, err
	}

	res := &Result{
		Method:           method,
		Objective:        objective,
		Success:          out.success,
		Message:          out.message,
		Iterations:       out.iterations,
		Evaluations:      prob.evaluations(),
		ObjectiveValue:   out.fun,
		Optimized:        optimized,
		Original:         o.base,
		Analysis:         optRes,
		BaselineAnalysis: baseRes,
		Improvement: Improvement{
			RMSAccelerationReduction: baseRes.RMSAcceleration - optRes.RMSAcceleration,
			MaxJerkReduction:         baseRes.MaxJerk - optRes.MaxJerk,
		},
	}

	o.logger.Info("optimization finished",
		zap.Bool("success", res.Success),
		zap.String("message", res.Message),
		zap.Int("iterations", res.Iterations),
		zap.Int("evaluations", res.Evaluations),
		zap.Float64("objective", res.ObjectiveValue),
		zap.Float64s("optimized", vec(optimized.Vector())),
	)

	if !out.success {
		return res, &Failure{Method: method, Message: out.message, Iterations: out.iterations}
	}
	return res, nil
}

// outcome is what a search method reports back to Optimize.
type outcome struct {
	x          [3]float64
	fun        float64
	success    bool
	message    string
	iterations int
}

func vec(x [3]float64) []float64 { return x[:] }

func isBetter(f float64, x [3]float64, bestF float64, bestX [3]float64) bool {
	if f != bestF {
		return f < bestF || math.IsNaN(bestF)
	}
	for i := range x {
		if x[i] != bestX[i] {
			return x[i] < bestX[i]
		}
	}
	return false
}
