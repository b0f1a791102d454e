// Package train implements the training-loop driver: epoch and batch
// iteration, deterministic shuffling and optimizer accumulation.
//
// The driver owns everything the computation core deliberately leaves
// out: it seeds output-error buffers from a loss gradient before invoking
// backward, and it hands each example's parameter gradients to the
// optimizer exactly once. Shuffling uses an explicit seeded generator;
// there is no package-level random state.
package train

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/optim"
)

// Example is one supervised training pair.
type Example struct {
	Input  []float64
	Target []float64
}

// Model is the contract the driver needs from a trainable network: any
// single-input layer or composite satisfies it.
type Model interface {
	SetInput(x []float64)
	Forward()
	Backward(propagateToInput bool)
	Output() *nn.Signal
	Params() []*nn.Param
	Grads() []*mat.Dense
}

// Config holds the training-loop settings.
type Config struct {
	Epochs    int        // number of passes over the examples (default: 1)
	BatchSize int        // examples per optimizer step (default: 1)
	Rand      *rand.Rand // shuffle source; required
	Shuffle   bool       // shuffle examples at the start of every epoch

	// OnEpoch, when set, is called after every epoch with the mean
	// per-example loss.
	OnEpoch func(epoch int, loss float64)
}

// Trainer runs the training loop for one model and optimizer.
type Trainer struct {
	model Model
	opt   optim.Optimizer
	loss  Loss
	cfg   Config
}

// New creates a trainer. The configuration is validated eagerly: a nil
// random generator is rejected rather than silently falling back to a
// process-wide source.
func New(model Model, opt optim.Optimizer, loss Loss, cfg Config) (*Trainer, error) {
	if model == nil || opt == nil || loss == nil {
		return nil, fmt.Errorf("train: %w: model, optimizer and loss are required", nn.ErrInvalidConfig)
	}
	if cfg.Rand == nil {
		return nil, fmt.Errorf("train: %w: an explicit random generator is required", nn.ErrInvalidConfig)
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &Trainer{model: model, opt: opt, loss: loss, cfg: cfg}, nil
}

// Fit trains the model on the examples and returns the mean per-example
// loss of the final epoch.
func (t *Trainer) Fit(examples []Example) float64 {
	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	var epochLoss float64
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		if t.cfg.Shuffle {
			t.cfg.Rand.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		epochLoss = 0
		for start := 0; start < len(order); start += t.cfg.BatchSize {
			end := min(start+t.cfg.BatchSize, len(order))
			for _, idx := range order[start:end] {
				epochLoss += t.trainExample(examples[idx])
			}
			t.opt.Step()
		}
		if len(examples) > 0 {
			epochLoss /= float64(len(examples))
		}
		if t.cfg.OnEpoch != nil {
			t.cfg.OnEpoch(epoch, epochLoss)
		}
	}
	return epochLoss
}

// trainExample runs one forward/backward pass and accumulates the
// example's gradients into the optimizer.
func (t *Trainer) trainExample(ex Example) float64 {
	t.model.SetInput(ex.Input)
	t.model.Forward()

	out := t.model.Output()
	loss := t.loss.Loss(out.Values, ex.Target)
	out.ZeroGrad()
	t.loss.Grad(out.Values, ex.Target, out.Grad)

	t.model.Backward(false)
	t.opt.Accumulate(t.model.Params(), t.model.Grads())
	return loss
}
