// Copyright 2025 The Strand Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the training-loop driver: epochs, batching,
// deterministic shuffling and optimizer accumulation.
package train

import (
	"math/rand/v2"

	"github.com/strand-ml/strand/internal/optim"
	"github.com/strand-ml/strand/internal/train"
)

// Example is one supervised training pair.
type Example = train.Example

// Model is the contract the driver needs from a trainable network.
type Model = train.Model

// Config holds the training-loop settings.
type Config = train.Config

// Trainer runs the training loop for one model and optimizer.
type Trainer = train.Trainer

// Loss computes a scalar loss and its output gradient.
type Loss = train.Loss

// MSE is the mean squared error loss.
type MSE = train.MSE

// New creates a trainer; the configuration is validated eagerly.
func New(model Model, opt optim.Optimizer, loss Loss, cfg Config) (*Trainer, error) {
	return train.New(model, opt, loss, cfg)
}

// NewRand returns a deterministic generator for the given seed, suitable
// for Config.Rand and weight initialization.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
