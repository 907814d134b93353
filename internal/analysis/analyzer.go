package analysis

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/metrics"
	"github.com/san-kum/camkin/internal/motion"
)

const (
	DefaultSamples = 1000
	MinSamples     = 2
)

// Metric names reported in Result.Metrics.
const (
	MetricMaxDisplacement        = "max_displacement"
	MetricMaxVelocity            = "max_velocity"
	MetricMaxAcceleration        = "max_acceleration"
	MetricMaxJerk                = "max_jerk"
	MetricRMSVelocity            = "rms_velocity"
	MetricRMSAcceleration        = "rms_acceleration"
	MetricRMSJerk                = "rms_jerk"
	MetricVelocityExceedance     = "velocity_exceedance"
	MetricAccelerationExceedance = "acceleration_exceedance"
	MetricJerkExceedance         = "jerk_exceedance"
)

type Result struct {
	Params cam.Params

	Theta        []float64
	Displacement []float64
	Velocity     []float64
	Acceleration []float64
	Jerk         []float64

	MaxVelocity     float64
	MaxAcceleration float64
	MaxJerk         float64
	RMSAcceleration float64
	RMSJerk         float64

	VelocityViolation     bool
	AccelerationViolation bool
	JerkViolation         bool

	// Metrics holds every summary figure by name, including the fraction of
	// samples above each limit.
	Metrics map[string]float64
}

// Violated reports whether any limit is exceeded.
func (r *Result) Violated() bool {
	return r.VelocityViolation || r.AccelerationViolation || r.JerkViolation
}

type Option func(*Analyzer)

// WithSamples sets the number of sampled angles. Values below MinSamples
// are raised to MinSamples.
func WithSamples(n int) Option {
	return func(a *Analyzer) {
		if n < MinSamples {
			n = MinSamples
		}
		a.samples = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

type Analyzer struct {
	law     *motion.Law
	samples int
	logger  *zap.Logger
}

func New(law *motion.Law, opts ...Option) *Analyzer {
	a := &Analyzer{
		law:     law,
		samples: DefaultSamples,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Samples is the number of angles Analyze evaluates.
func (a *Analyzer) Samples() int { return a.samples }

// Analyze samples the law and reduces it. Every call recomputes from scratch.
func (a *Analyzer) Analyze() *Result {
	p := a.law.Params()
	thetas := floats.Span(make([]float64, a.samples), 0, a.law.TotalDuration())
	states := a.law.States(thetas)

	res := &Result{
		Params:       p,
		Theta:        thetas,
		Displacement: make([]float64, len(states)),
		Velocity:     make([]float64, len(states)),
		Acceleration: make([]float64, len(states)),
		Jerk:         make([]float64, len(states)),
		Metrics:      make(map[string]float64, 10),
	}
	for i, s := range states {
		res.Displacement[i] = s.Displacement
		res.Velocity[i] = s.Velocity
		res.Acceleration[i] = s.Acceleration
		res.Jerk[i] = s.Jerk
	}

	merge(res.Metrics, metrics.Collect(res.Displacement,
		metrics.NewMaxAbs(MetricMaxDisplacement),
	))
	merge(res.Metrics, metrics.Collect(res.Velocity,
		metrics.NewMaxAbs(MetricMaxVelocity),
		metrics.NewRMS(MetricRMSVelocity),
		metrics.NewExceedance(MetricVelocityExceedance, p.VelocityLimit),
	))
	merge(res.Metrics, metrics.Collect(res.Acceleration,
		metrics.NewMaxAbs(MetricMaxAcceleration),
		metrics.NewRMS(MetricRMSAcceleration),
		metrics.NewExceedance(MetricAccelerationExceedance, p.AccelerationLimit),
	))
	merge(res.Metrics, metrics.Collect(res.Jerk,
		metrics.NewMaxAbs(MetricMaxJerk),
		metrics.NewRMS(MetricRMSJerk),
		metrics.NewExceedance(MetricJerkExceedance, p.JerkLimit),
	))

	res.MaxVelocity = res.Metrics[MetricMaxVelocity]
	res.MaxAcceleration = res.Metrics[MetricMaxAcceleration]
	res.MaxJerk = res.Metrics[MetricMaxJerk]
	res.RMSAcceleration = res.Metrics[MetricRMSAcceleration]
	res.RMSJerk = res.Metrics[MetricRMSJerk]

	res.VelocityViolation = res.MaxVelocity > p.VelocityLimit
	res.AccelerationViolation = res.MaxAcceleration > p.AccelerationLimit
	res.JerkViolation = res.MaxJerk > p.JerkLimit

	a.logger.Debug("kinematic analysis",
		zap.Int("samples", a.samples),
		zap.Float64("max_velocity", res.MaxVelocity),
		zap.Float64("max_acceleration", res.MaxAcceleration),
		zap.Float64("max_jerk", res.MaxJerk),
		zap.Float64("rms_acceleration", res.RMSAcceleration),
		zap.Bool("violated", res.Violated()),
	)

	return res
}

// Analyze builds a motion law for p and analyzes it.
func Analyze(p cam.Params, opts ...Option) (*Result, error) {
	law, err := motion.New(p)
	if err != nil {
		return nil, err
	}
	return New(law, opts...).Analyze(), nil
}

func merge(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}
