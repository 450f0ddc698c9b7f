package dynamo

import (
	"fmt"
	"math"
)

// StateDim is the length of a double pendulum state: θ1, θ2, ω1, ω2.
const StateDim = 4

// Indices into a State.
const (
	Theta1 = iota
	Theta2
	Omega1
	Omega2
)

// State is a point in phase space. Angles are never wrapped.
type State []float64

// NewState packs the two angles and angular velocities into a State.
func NewState(theta1, theta2, omega1, omega2 float64) State {
	return State{theta1, theta2, omega1, omega2}
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) String() string {
	if len(s) != StateDim {
		return fmt.Sprintf("%v", []float64(s))
	}
	return fmt.Sprintf("(θ1=%.6g θ2=%.6g ω1=%.6g ω2=%.6g)", s[Theta1], s[Theta2], s[Omega1], s[Omega2])
}

// Func is a vector field dx/dt = f(x, t).
type Func func(x State, t float64) (State, error)

// Integrator advances a state by one fixed step of size dt.
// Implementations must be stateless so a single value can be shared.
type Integrator interface {
	Name() string
	Order() int
	Step(f Func, x State, t, dt float64) (State, error)
}

// Hamiltonian is implemented by systems that can report their total energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Observer receives every sample accepted by the trajectory driver.
type Observer interface {
	OnStep(step int, t float64, x State)
}

// Configurable exposes named parameters for interactive tweaking.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
