package analysis_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpsim/internal/analysis"
	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

var _ = Describe("PoincareSection", func() {
	var params physics.Params

	BeforeEach(func() {
		params = physics.DefaultParams()
	})

	run := func(x0 dynamo.State, dt float64, steps int) *sim.Trajectory {
		tr, err := sim.Run(context.Background(), x0, params, integrators.NewRK4(), dt, steps)
		Expect(err).NotTo(HaveOccurred())
		return tr
	}

	Context("in the small-angle in-phase normal mode", func() {
		const (
			amp   = 0.05
			dt    = 0.01
			steps = 3000
		)
		var tr *sim.Trajectory

		BeforeEach(func() {
			tr = run(dynamo.State{amp, math.Sqrt2 * amp, 0, 0}, dt, steps)
		})

		It("agrees with the upward zero crossings of θ1", func() {
			cs, err := analysis.PoincareSection(tr, analysis.DefaultSectionOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(cs).To(HaveLen(analysis.UpwardZeroCrossings(tr.Theta1())))
		})

		It("matches the normal-mode frequency estimate", func() {
			cs, err := analysis.PoincareSection(tr, analysis.DefaultSectionOptions())
			Expect(err).NotTo(HaveOccurred())

			omega := math.Sqrt(params.G * (2 - math.Sqrt2) / params.L1)
			expected := tr.Duration() * omega / (2 * math.Pi)
			Expect(float64(len(cs))).To(BeNumerically("~", expected, 1))
		})

		It("reports crossings in chronological order with ω1 > 0", func() {
			cs, _ := analysis.PoincareSection(tr, analysis.DefaultSectionOptions())
			Expect(cs).NotTo(BeEmpty())
			for i, c := range cs {
				Expect(c.Omega1).To(BeNumerically(">", 0))
				if i > 0 {
					Expect(c.Time).To(BeNumerically(">", cs[i-1].Time))
				}
			}
		})

		It("finds θ2 near zero at each crossing", func() {
			cs, _ := analysis.PoincareSection(tr, analysis.DefaultSectionOptions())
			for _, c := range cs {
				Expect(c.Theta2).To(BeNumerically("~", 0, 0.01))
			}
		})
	})

	Context("at equilibrium", func() {
		It("finds no crossings", func() {
			tr := run(dynamo.State{0, 0, 0, 0}, 0.01, 500)
			cs, err := analysis.PoincareSection(tr, analysis.DefaultSectionOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(cs).To(BeEmpty())
		})
	})

	Context("for a high-energy release", func() {
		It("keeps wrapped θ2 inside [-π, π)", func() {
			tr := run(dynamo.State{3, 3, 0, 0}, 0.005, 8000)
			cs, err := analysis.PoincareSection(tr, analysis.DefaultSectionOptions())
			Expect(err).NotTo(HaveOccurred())
			for _, c := range cs {
				Expect(c.Theta2).To(BeNumerically(">=", -math.Pi))
				Expect(c.Theta2).To(BeNumerically("<", math.Pi))
			}
		})
	})
})

var _ = Describe("LinInterp", func() {
	It("interpolates the reference points to 5", func() {
		y, err := analysis.LinInterp(1, 10, 3, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(y).To(BeNumerically("~", 5, 1e-12))
	})

	It("fails loudly on a zero-width interval", func() {
		_, err := analysis.LinInterp(1, 10, 1, 20)
		Expect(err).To(MatchError(analysis.ErrDegenerateInterval))
	})
})
