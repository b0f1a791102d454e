package optim

import (
	"gonum.org/v1/gonum/mat"

	"github.com/strand-ml/strand/internal/nn"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param    = param - lr * velocity
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//
//	for _, example := range batch {
//	    // forward, seed error, backward ...
//	    opt.Accumulate(layer.Params(), layer.Grads())
//	}
//	opt.Step()
type SGD struct {
	accumulator
	lr         float64
	momentum   float64
	velocities map[*nn.Param]*mat.Dense
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // learning rate (default: 0.01)
	Momentum float64 // momentum factor (default: 0, range [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		accumulator: newAccumulator(),
		lr:          config.LR,
		momentum:    config.Momentum,
		velocities:  make(map[*nn.Param]*mat.Dense),
	}
}

// Step applies the SGD update with the averaged accumulated gradients.
func (s *SGD) Step() {
	s.averaged(func(p *nn.Param, grad *mat.Dense) {
		update := grad
		if s.momentum != 0 {
			v, ok := s.velocities[p]
			if !ok {
				r, c := p.Dims()
				v = mat.NewDense(r, c, nil)
				s.velocities[p] = v
			}
			v.Scale(s.momentum, v)
			v.Add(v, grad)
			update = v
		}
		var scaled mat.Dense
		scaled.Scale(s.lr, update)
		p.Value().Sub(p.Value(), &scaled)
	})
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR updates the learning rate. Useful for scheduling.
func (s *SGD) SetLR(lr float64) { s.lr = lr }
