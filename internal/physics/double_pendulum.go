package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dpsim/internal/dynamo"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.8
)

// Params holds the rod lengths, bob masses and gravitational acceleration
// of a point-mass double pendulum. Values are not validated: negative or
// zero masses are accepted even though they are unphysical.
type Params struct {
	L1 float64 `yaml:"l1" json:"l1"`
	L2 float64 `yaml:"l2" json:"l2"`
	M1 float64 `yaml:"m1" json:"m1"`
	M2 float64 `yaml:"m2" json:"m2"`
	G  float64 `yaml:"g" json:"g"`
}

// DefaultParams returns unit rods and masses with g = 9.8.
func DefaultParams() Params {
	return Params{
		L1: DefaultLength, L2: DefaultLength,
		M1: DefaultMass, M2: DefaultMass,
		G: DefaultGravity,
	}
}

// Derive returns (dθ1, dθ2, dω1, dω2) for state x. The system is autonomous
// so t is ignored.
//
// The only failure is an exactly zero denominator 1 + m1/m2 - cos²(θ1-θ2),
// reachable for example with m1 = 0 and θ1 = θ2. Close to that configuration
// the accelerations blow up and are returned as computed, possibly Inf or NaN.
func (p Params) Derive(x dynamo.State, _ float64) (dynamo.State, error) {
	if len(x) != dynamo.StateDim {
		return nil, fmt.Errorf("%w: want %d, got %d", dynamo.ErrDimensionMismatch, dynamo.StateDim, len(x))
	}
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	l1, l2, m1, m2, g := p.L1, p.L2, p.M1, p.M2, p.G

	s1, s2 := math.Sin(theta1), math.Sin(theta2)
	sd, cd := math.Sincos(theta1 - theta2)

	mr := 1 + m1/m2
	num1 := -(l2/l1)*omega2*omega2*sd - g*mr*s1
	num2 := (l1/l2)*omega1*omega1*sd - g*s2
	den := mr - cd*cd
	if den == 0 {
		return nil, fmt.Errorf("%w: θ1-θ2=%g, m1/m2=%g", ErrSingular, theta1-theta2, m1/m2)
	}

	alpha1 := (num1 - (l2/l1)*cd*num2) / den
	alpha2 := (mr*num2 - (l1/l2)*cd*num1) / den

	return dynamo.State{omega1, omega2, alpha1, alpha2}, nil
}

// Func adapts Derive to the integrator signature.
func (p Params) Func() dynamo.Func {
	return p.Derive
}

// Kinetic returns the kinetic energy of both bobs. Like Potential, Energy
// and Positions it yields NaN for a state that is not four components long.
func (p Params) Kinetic(x dynamo.State) float64 {
	if len(x) != dynamo.StateDim {
		return math.NaN()
	}
	theta1, theta2, omega1, omega2 := x[0], x[1], x[2], x[3]
	s1, c1 := math.Sincos(theta1)
	s2, c2 := math.Sincos(theta2)

	v1 := p.L1 * omega1
	vx2 := p.L1*omega1*c1 + p.L2*omega2*c2
	vy2 := p.L1*omega1*s1 + p.L2*omega2*s2
	return 0.5*p.M1*v1*v1 + 0.5*p.M2*(vx2*vx2+vy2*vy2)
}

// Potential returns the gravitational potential energy with the pivot as
// reference height, so the hanging rest state has energy -(m1+m2)g·l1 - m2·g·l2.
func (p Params) Potential(x dynamo.State) float64 {
	if len(x) != dynamo.StateDim {
		return math.NaN()
	}
	c1, c2 := math.Cos(x[0]), math.Cos(x[1])
	return -p.M1*p.G*p.L1*c1 - p.M2*p.G*(p.L1*c1+p.L2*c2)
}

// Energy returns the total mechanical energy.
func (p Params) Energy(x dynamo.State) float64 {
	return p.Kinetic(x) + p.Potential(x)
}

// Positions returns the Cartesian coordinates of both bobs with the pivot at
// the origin and y pointing up. θ = 0 hangs straight down.
func (p Params) Positions(x dynamo.State) (x1, y1, x2, y2 float64) {
	if len(x) != dynamo.StateDim {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	s1, c1 := math.Sincos(x[0])
	s2, c2 := math.Sincos(x[1])

	x1 = p.L1 * s1
	y1 = -p.L1 * c1
	x2 = x1 + p.L2*s2
	y2 = y1 - p.L2*c2
	return
}

// Reach is the maximum distance of the outer bob from the pivot.
func (p Params) Reach() float64 {
	return math.Abs(p.L1) + math.Abs(p.L2)
}

func (p Params) String() string {
	return fmt.Sprintf("l1=%g l2=%g m1=%g m2=%g g=%g", p.L1, p.L2, p.M1, p.M2, p.G)
}

// DoublePendulum is a mutable wrapper around Params for interactive use.
type DoublePendulum struct {
	Params
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{Params: DefaultParams()}
}

// GetParams implements dynamo.Configurable
func (d *DoublePendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"l1": d.L1,
		"l2": d.L2,
		"m1": d.M1,
		"m2": d.M2,
		"g":  d.G,
	}
}

// SetParam implements dynamo.Configurable
func (d *DoublePendulum) SetParam(name string, value float64) error {
	switch name {
	case "l1":
		d.L1 = value
	case "l2":
		d.L2 = value
	case "m1":
		d.M1 = value
	case "m2":
		d.M2 = value
	case "g":
		d.G = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
