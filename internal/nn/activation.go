package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// applyForward writes the element-wise activation of src into dst.
// dst and src must have the same shape (dst == src is allowed).
func applyForward(dst, src *mat.Dense, act Activation) {
	dst.Apply(func(_, _ int, v float64) float64 { return act.Forward(v) }, src)
}

// applyDerivative writes the element-wise activation derivative of the
// pre-activation src into dst.
func applyDerivative(dst, src *mat.Dense, act Activation) {
	dst.Apply(func(_, _ int, v float64) float64 { return act.Derivative(v) }, src)
}

// Activation is a pure, stateless element-wise activation function.
//
// Derivative is taken with respect to the pre-activation input, so for an
// output y = act.Forward(x) the chain rule factor is act.Derivative(x).
type Activation interface {
	Forward(x float64) float64
	Derivative(x float64) float64
}

// Identity is the linear activation f(x) = x.
type Identity struct{}

func (Identity) Forward(x float64) float64  { return x }
func (Identity) Derivative(float64) float64 { return 1 }

// Sigmoid squashes values to (0, 1): σ(x) = 1 / (1 + exp(-x)).
//
// Used by the gate units of the recurrent families.
type Sigmoid struct{}

func (Sigmoid) Forward(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func (s Sigmoid) Derivative(x float64) float64 {
	y := s.Forward(x)
	return y * (1.0 - y)
}

// Tanh squashes values to (-1, 1).
type Tanh struct{}

func (Tanh) Forward(x float64) float64 { return math.Tanh(x) }

func (Tanh) Derivative(x float64) float64 {
	y := math.Tanh(x)
	return 1.0 - y*y
}

// ReLU is the rectifier f(x) = max(0, x).
type ReLU struct{}

func (ReLU) Forward(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func (ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}
