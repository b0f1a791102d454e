package train

import "gonum.org/v1/gonum/mat"

// Loss computes a scalar loss and its gradient with respect to the model
// output. The core never computes loss itself; the trainer seeds the
// output error buffer from Grad before invoking backward.
type Loss interface {
	Loss(output *mat.Dense, target []float64) float64
	Grad(output *mat.Dense, target []float64, dst *mat.Dense)
}

// MSE is the mean squared error loss.
//
//	Loss = mean((output - target)²)
//	Grad = 2/n · (output - target)
type MSE struct{}

// Loss computes mean((output - target)²).
func (MSE) Loss(output *mat.Dense, target []float64) float64 {
	sum := 0.0
	for i, t := range target {
		d := output.At(i, 0) - t
		sum += d * d
	}
	return sum / float64(len(target))
}

// Grad writes 2/n·(output - target) into dst.
func (MSE) Grad(output *mat.Dense, target []float64, dst *mat.Dense) {
	n := float64(len(target))
	for i, t := range target {
		dst.Set(i, 0, 2.0/n*(output.At(i, 0)-t))
	}
}
