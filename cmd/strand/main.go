// Package main provides the Strand CLI.
package main

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/strand-ml/strand/internal/serialization"
	"github.com/strand-ml/strand/nn"
	"github.com/strand-ml/strand/optim"
	"github.com/strand-ml/strand/train"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("Strand %s\n", version)
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "demo" {
		savePath := ""
		if len(os.Args) > 2 {
			savePath = os.Args[2]
		}
		demo(savePath)
		return
	}

	fmt.Println("Strand - layer-level neural computation for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version           Show version")
	fmt.Println("  demo [file]       Train a small feedforward network on XOR,")
	fmt.Println("                    optionally saving the result as a checkpoint")
}

// demo fits a 2-4-1 feedforward pair on XOR and prints the loss curve.
// savePath, when non-empty, receives the trained parameters.
func demo(savePath string) {
	rng := train.NewRand(42)

	hidden := nn.NewFeedForward(2, 4, nn.Tanh{}, rng)
	output := nn.NewFeedForward(4, 1, nn.Sigmoid{}, rng)
	model := &mlp{hidden: hidden, output: output}

	examples := []train.Example{
		{Input: []float64{0, 0}, Target: []float64{0}},
		{Input: []float64{0, 1}, Target: []float64{1}},
		{Input: []float64{1, 0}, Target: []float64{1}},
		{Input: []float64{1, 1}, Target: []float64{0}},
	}

	trainer, err := train.New(model, optim.NewAdam(optim.AdamConfig{LR: 0.05}), train.MSE{}, train.Config{
		Epochs:    500,
		BatchSize: 4,
		Rand:      rng,
		Shuffle:   true,
		OnEpoch: func(epoch int, loss float64) {
			if (epoch+1)%100 == 0 {
				fmt.Printf("epoch %4d  loss %.6f\n", epoch+1, loss)
			}
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	trainer.Fit(examples)

	for _, ex := range examples {
		model.SetInput(ex.Input)
		model.Forward()
		fmt.Printf("%v -> %.3f (want %.0f)\n", ex.Input, model.Output().Values.At(0, 0), ex.Target[0])
	}

	if savePath != "" {
		if err := serialization.Save(savePath, model.named()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("saved checkpoint to %s\n", savePath)
	}
}

// mlp chains two feedforward layers into a train.Model.
type mlp struct {
	hidden *nn.FeedForward
	output *nn.FeedForward
}

func (m *mlp) SetInput(x []float64) { m.hidden.SetInput(x) }

func (m *mlp) Forward() {
	m.hidden.Forward()
	m.output.Input().Set(m.hidden.Output().Slice())
	m.output.Forward()
}

func (m *mlp) Backward(propagateToInput bool) {
	m.hidden.Output().ZeroGrad()
	m.output.Backward(true)
	m.hidden.Output().AddGrad(m.output.Input().Grad)
	m.output.Input().ZeroGrad()
	m.hidden.Backward(propagateToInput)
}

func (m *mlp) Output() *nn.Signal { return m.output.Output() }

func (m *mlp) Params() []*nn.Param {
	return append(m.hidden.Params(), m.output.Params()...)
}

func (m *mlp) Grads() []*mat.Dense {
	return append(m.hidden.Grads(), m.output.Grads()...)
}

// named maps the parameters to unique checkpoint names.
func (m *mlp) named() map[string]*mat.Dense {
	out := make(map[string]*mat.Dense)
	for _, p := range m.hidden.Params() {
		out["hidden."+p.Name()] = p.Value()
	}
	for _, p := range m.output.Params() {
		out["output."+p.Name()] = p.Value()
	}
	return out
}
