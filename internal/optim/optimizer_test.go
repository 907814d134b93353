package optim_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/camkin/internal/analysis"
	"github.com/san-kum/camkin/internal/cam"
	"github.com/san-kum/camkin/internal/optim"
)

const samples = 180

func newOptimizer(base cam.Params, opts ...optim.Option) *optim.Optimizer {
	o, err := optim.New(base, append([]optim.Option{optim.WithSamples(samples)}, opts...)...)
	Expect(err).NotTo(HaveOccurred())
	return o
}

var _ = Describe("Evaluate", func() {
	var o *optim.Optimizer

	BeforeEach(func() {
		o = newOptimizer(cam.Default())
	})

	It("scores an infeasible candidate with the sentinel", func() {
		v, err := o.Evaluate([3]float64{10, 200, 200}, optim.RMSAcceleration)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(optim.InfeasiblePenalty))
	})

	It("returns the plain objective when every limit holds", func() {
		res, err := analysis.Analyze(cam.Default(), analysis.WithSamples(samples))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Violated()).To(BeFalse())

		v, err := o.Evaluate(cam.Default().Vector(), optim.RMSAcceleration)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(res.RMSAcceleration))

		v, err = o.Evaluate(cam.Default().Vector(), optim.MaxJerk)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(res.MaxJerk))
	})

	It("squares RMS acceleration for the energy objective", func() {
		x := [3]float64{12, 80, 100}
		rms, err := o.Evaluate(x, optim.RMSAcceleration)
		Expect(err).NotTo(HaveOccurred())
		energy, err := o.Evaluate(x, optim.Energy)
		Expect(err).NotTo(HaveOccurred())
		Expect(energy).To(BeNumerically("~", rms*rms, 1e-12))
	})

	It("adds the weighted excess of every violated limit", func() {
		base := cam.Default()
		base.VelocityLimit = 0.5
		base.AccelerationLimit = 0.1
		res, err := analysis.Analyze(base, analysis.WithSamples(samples))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.VelocityViolation).To(BeTrue())
		Expect(res.AccelerationViolation).To(BeTrue())
		Expect(res.JerkViolation).To(BeFalse())

		want := res.RMSAcceleration +
			optim.PenaltyWeight*(res.MaxVelocity-base.VelocityLimit) +
			optim.PenaltyWeight*(res.MaxAcceleration-base.AccelerationLimit)
		Expect(optim.Penalty(res)).To(BeNumerically("~", want-res.RMSAcceleration, 1e-9))

		v, err := newOptimizer(base).Evaluate(base.Vector(), optim.RMSAcceleration)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", want, 1e-9))
	})

	It("rejects an unknown objective", func() {
		_, err := o.Evaluate(cam.Default().Vector(), optim.Objective("smoothness"))
		Expect(err).To(MatchError(optim.ErrUnknownObjective))
	})
})

var _ = Describe("Optimize", func() {
	var (
		ctx  context.Context
		base cam.Params
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = cam.Default()
	})

	DescribeTable("stays inside the box and never regresses",
		func(method optim.Method, bounds optim.Bounds, opts ...optim.Option) {
			var (
				mu   sync.Mutex
				seen [][]float64
			)
			hook := optim.WithEvaluationHook(func(x []float64) {
				mu.Lock()
				seen = append(seen, x)
				mu.Unlock()
			})
			o := newOptimizer(base, append(opts, hook)...)

			res, err := o.Optimize(ctx, bounds, optim.RMSAcceleration, method)
			if err != nil {
				Expect(err).To(MatchError(optim.ErrOptimization))
			}
			Expect(res).NotTo(BeNil())

			Expect(seen).NotTo(BeEmpty())
			Expect(res.Evaluations).To(Equal(len(seen)))
			for _, x := range seen {
				Expect(bounds.Contains([3]float64{x[0], x[1], x[2]})).To(BeTrue(), "candidate %v", x)
			}
			Expect(bounds.Contains(res.Optimized.Vector())).To(BeTrue())

			Expect(res.Optimized.DwellDuration).To(Equal(base.DwellDuration))
			Expect(res.Optimized.BaseCircleRadius).To(Equal(base.BaseCircleRadius))
			Expect(res.Optimized.RPM).To(Equal(base.RPM))
			Expect(res.Optimized.CamDuration).To(Equal(res.Optimized.TotalDuration()))
			Expect(res.Original).To(Equal(base))

			if bounds.Contains(base.Vector()) {
				baseline, err := o.Evaluate(base.Vector(), optim.RMSAcceleration)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.ObjectiveValue).To(BeNumerically("<=", baseline))
				Expect(res.Improvement.RMSAccelerationReduction).To(BeNumerically(">=", 0))
			}
		},
		Entry("differential evolution", optim.DifferentialEvolution, optim.DefaultBounds(),
			optim.WithMaxIterations(30)),
		Entry("differential evolution, baseline outside the box", optim.DifferentialEvolution,
			optim.Bounds{{Min: 12, Max: 15}, {Min: 100, Max: 120}, {Min: 60, Max: 70}},
			optim.WithMaxIterations(10)),
		Entry("local search", optim.Minimize, optim.DefaultBounds()),
		Entry("local search, baseline outside the box", optim.Minimize,
			optim.Bounds{{Min: 12, Max: 15}, {Min: 100, Max: 120}, {Min: 60, Max: 70}}),
		Entry("grid", optim.Grid, optim.DefaultBounds(), optim.WithGridPoints(5)),
		Entry("grid over a degenerate axis", optim.Grid,
			optim.Bounds{{Min: 10, Max: 10}, {Min: 45, Max: 135}, {Min: 45, Max: 135}},
			optim.WithGridPoints(4)),
	)

	It("reports improvement as baseline minus optimized", func() {
		o := newOptimizer(base, optim.WithGridPoints(4))
		res, err := o.Optimize(ctx, optim.DefaultBounds(), optim.MaxJerk, optim.Grid)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Success).To(BeTrue())
		Expect(res.Method).To(Equal(optim.Grid))
		Expect(res.Objective).To(Equal(optim.MaxJerk))

		Expect(res.Improvement.RMSAccelerationReduction).To(Equal(
			res.BaselineAnalysis.RMSAcceleration - res.Analysis.RMSAcceleration))
		Expect(res.Improvement.MaxJerkReduction).To(Equal(
			res.BaselineAnalysis.MaxJerk - res.Analysis.MaxJerk))
		Expect(res.Improvement.MaxJerkReduction).To(BeNumerically(">=", 0))
		Expect(res.Analysis.Params).To(Equal(res.Optimized))
	})

	It("is reproducible for a fixed seed", func() {
		run := func() *optim.Result {
			o := newOptimizer(base, optim.WithMaxIterations(15), optim.WithSeed(7))
			res, err := o.Optimize(ctx, optim.DefaultBounds(), optim.Energy, optim.DifferentialEvolution)
			if err != nil {
				Expect(err).To(MatchError(optim.ErrOptimization))
			}
			return res
		}
		first, second := run(), run()
		Expect(second.Optimized).To(Equal(first.Optimized))
		Expect(second.ObjectiveValue).To(Equal(first.ObjectiveValue))
		Expect(second.Iterations).To(Equal(first.Iterations))
		Expect(second.Evaluations).To(Equal(first.Evaluations))
	})

	It("surfaces a search that did not converge", func() {
		o := newOptimizer(base, optim.WithMaxIterations(1), optim.WithPolish(false))
		res, err := o.Optimize(ctx, optim.DefaultBounds(), optim.RMSAcceleration, optim.DifferentialEvolution)

		Expect(err).To(MatchError(optim.ErrOptimization))
		var failure *optim.Failure
		Expect(errors.As(err, &failure)).To(BeTrue())
		Expect(failure.Method).To(Equal(optim.DifferentialEvolution))
		Expect(failure.Iterations).To(Equal(1))

		Expect(res).NotTo(BeNil())
		Expect(res.Success).To(BeFalse())
		Expect(res.Message).To(Equal(failure.Message))
		Expect(res.Iterations).To(Equal(1))
		Expect(res.Evaluations).To(Equal(2 * 45))
	})

	It("seeds the evolution with the baseline clamped into the box", func() {
		var (
			mu   sync.Mutex
			seen [][3]float64
		)
		o := newOptimizer(base,
			optim.WithMaxIterations(0),
			optim.WithPolish(false),
			optim.WithEvaluationHook(func(x []float64) {
				mu.Lock()
				seen = append(seen, [3]float64{x[0], x[1], x[2]})
				mu.Unlock()
			}),
		)
		bounds := optim.Bounds{{Min: 12, Max: 15}, {Min: 100, Max: 120}, {Min: 60, Max: 70}}

		res, err := o.Optimize(ctx, bounds, optim.RMSAcceleration, optim.DifferentialEvolution)
		Expect(err).To(MatchError(optim.ErrOptimization))
		Expect(res.Evaluations).To(Equal(45))
		Expect(seen).To(ContainElement(bounds.Clamp(base.Vector())))
	})

	DescribeTable("takes no search steps with a zero iteration limit",
		func(method optim.Method, evaluations int) {
			o := newOptimizer(base, optim.WithMaxIterations(0))
			res, err := o.Optimize(ctx, optim.DefaultBounds(), optim.RMSAcceleration, method)

			Expect(err).To(MatchError(optim.ErrOptimization))
			Expect(res.Success).To(BeFalse())
			Expect(res.Iterations).To(Equal(0))
			Expect(res.Evaluations).To(Equal(evaluations))
		},
		Entry("local search scores only the start", optim.Minimize, 1),
		Entry("evolution scores the initial population and the polish start", optim.DifferentialEvolution, 46),
	)

	It("fails when no candidate in the box is feasible", func() {
		base.RiseDuration = 30
		base.DwellDuration = 300
		base.FallDuration = 30
		o := newOptimizer(base, optim.WithGridPoints(2))
		_, err := o.Optimize(ctx, optim.DefaultBounds(), optim.RMSAcceleration, optim.Grid)
		Expect(err).To(MatchError(cam.ErrValidation))
	})

	It("stops on a cancelled context", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		o := newOptimizer(base)
		for _, m := range []optim.Method{optim.DifferentialEvolution, optim.Minimize, optim.Grid} {
			_, err := o.Optimize(cancelled, optim.DefaultBounds(), optim.RMSAcceleration, m)
			Expect(err).To(MatchError(context.Canceled), string(m))
		}
	})

	It("rejects bad arguments before searching", func() {
		o := newOptimizer(base)

		_, err := o.Optimize(ctx, optim.Bounds{{Min: 20, Max: 5}, {Min: 45, Max: 135}, {Min: 45, Max: 135}},
			optim.RMSAcceleration, optim.Grid)
		Expect(err).To(MatchError(optim.ErrInvalidBounds))

		_, err = o.Optimize(ctx, optim.DefaultBounds(), optim.Objective("wear"), optim.Grid)
		Expect(err).To(MatchError(optim.ErrUnknownObjective))

		_, err = o.Optimize(ctx, optim.DefaultBounds(), optim.RMSAcceleration, optim.Method("annealing"))
		Expect(err).To(MatchError(optim.ErrUnknownMethod))
	})
})

var _ = Describe("New", func() {
	It("validates the baseline", func() {
		base := cam.Default()
		base.MaxLift = 0
		_, err := optim.New(base)
		Expect(err).To(MatchError(cam.ErrValidation))
	})

	It("derives the baseline cam duration", func() {
		base := cam.Default()
		base.CamDuration = 1
		o, err := optim.New(base)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.Baseline().CamDuration).To(Equal(225.0))
	})
})

var _ = Describe("Bounds", func() {
	It("defaults to the reference box", func() {
		b := optim.DefaultBounds()
		Expect(b[0]).To(Equal(optim.Interval{Min: 5, Max: 20}))
		Expect(b[1]).To(Equal(optim.Interval{Min: 45, Max: 135}))
		Expect(b[2]).To(Equal(optim.Interval{Min: 45, Max: 135}))
		Expect(b.Validate()).To(Succeed())
		Expect(b.Contains(cam.Default().Vector())).To(BeTrue())
	})

	It("clamps into the box", func() {
		b := optim.DefaultBounds()
		Expect(b.Clamp([3]float64{30, 10, 90})).To(Equal([3]float64{20, 45, 90}))
		Expect(b.Contains([3]float64{30, 10, 90})).To(BeFalse())
	})

	DescribeTable("rejects malformed intervals",
		func(iv optim.Interval) {
			b := optim.DefaultBounds()
			b[1] = iv
			Expect(b.Validate()).To(MatchError(optim.ErrInvalidBounds))
		},
		Entry("inverted", optim.Interval{Min: 100, Max: 50}),
		Entry("infinite", optim.Interval{Min: 0, Max: inf()}),
		Entry("nan", optim.Interval{Min: nan(), Max: 50}),
	)
})

var _ = Describe("GridSearch", func() {
	It("spans every axis inclusively", func() {
		c := optim.NewGridSearch(optim.DefaultBounds(), 3).Candidates()
		Expect(c).To(HaveLen(27))
		Expect(c[0]).To(Equal([3]float64{5, 45, 45}))
		Expect(c[1]).To(Equal([3]float64{5, 45, 90}))
		Expect(c[26]).To(Equal([3]float64{20, 135, 135}))
	})

	It("collapses a degenerate axis", func() {
		b := optim.Bounds{{Min: 10, Max: 10}, {Min: 45, Max: 135}, {Min: 45, Max: 135}}
		c := optim.NewGridSearch(b, 4).Candidates()
		Expect(c).To(HaveLen(16))
		for _, x := range c {
			Expect(x[0]).To(Equal(10.0))
		}
	})
})

var _ = Describe("names", func() {
	It("parses methods and objectives", func() {
		m, err := optim.ParseMethod("minimize")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(optim.Minimize))
		_, err = optim.ParseMethod("nelder_mead")
		Expect(err).To(MatchError(optim.ErrUnknownMethod))

		obj, err := optim.ParseObjective("energy")
		Expect(err).NotTo(HaveOccurred())
		Expect(obj).To(Equal(optim.Energy))
		_, err = optim.ParseObjective("")
		Expect(err).To(MatchError(optim.ErrUnknownObjective))

		Expect(optim.Methods()).To(Equal([]string{"differential_evolution", "grid", "minimize"}))
		Expect(optim.Objectives()).To(Equal([]string{"energy", "max_jerk", "rms_acceleration"}))
	})
})
