package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/strand-ml/strand/internal/nn"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
//
// Update rule:
//
//	m = beta1*m + (1-beta1)*grad
//	v = beta2*v + (1-beta2)*grad²
//	mhat = m / (1 - beta1^t)
//	vhat = v / (1 - beta2^t)
//	param = param - lr * mhat / (sqrt(vhat) + eps)
type Adam struct {
	accumulator
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int

	m map[*nn.Param]*mat.Dense
	v map[*nn.Param]*mat.Dense
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float64    // learning rate (default: 0.001)
	Betas [2]float64 // moment decay rates (default: 0.9, 0.999)
	Eps   float64    // numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas == [2]float64{} {
		config.Betas = [2]float64{0.9, 0.999}
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		accumulator: newAccumulator(),
		lr:          config.LR,
		beta1:       config.Betas[0],
		beta2:       config.Betas[1],
		eps:         config.Eps,
		m:           make(map[*nn.Param]*mat.Dense),
		v:           make(map[*nn.Param]*mat.Dense),
	}
}

// Step applies the Adam update with the averaged accumulated gradients.
func (a *Adam) Step() {
	if a.count == 0 {
		return
	}
	a.t++
	c1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	c2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	a.averaged(func(p *nn.Param, grad *mat.Dense) {
		r, c := p.Dims()
		m, ok := a.m[p]
		if !ok {
			m = mat.NewDense(r, c, nil)
			a.m[p] = m
			a.v[p] = mat.NewDense(r, c, nil)
		}
		v := a.v[p]

		value := p.Value()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := grad.At(i, j)
				mi := a.beta1*m.At(i, j) + (1-a.beta1)*g
				vi := a.beta2*v.At(i, j) + (1-a.beta2)*g*g
				m.Set(i, j, mi)
				v.Set(i, j, vi)
				mhat := mi / c1
				vhat := vi / c2
				value.Set(i, j, value.At(i, j)-a.lr*mhat/(math.Sqrt(vhat)+a.eps))
			}
		}
	})
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 { return a.lr }

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) { a.lr = lr }
