// Copyright 2025 The Strand Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training Strand
// models.
//
// # Overview
//
// This package contains:
//   - SGD: stochastic gradient descent with momentum
//   - Adam: adaptive moment estimation with bias correction
//   - Optimizer interface for custom update methods
//
// # Basic Usage
//
//	import (
//	    "github.com/strand-ml/strand/nn"
//	    "github.com/strand-ml/strand/optim"
//	)
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//
//	for _, example := range batch {
//	    layer.SetInput(example.Input)
//	    layer.Forward()
//	    // seed layer.Output().Grad from the loss gradient ...
//	    layer.Backward(false)
//	    opt.Accumulate(layer.Params(), layer.Grads())
//	}
//	opt.Step()
//
// Optimizers hold the only cross-example gradient state: layer gradient
// buffers are overwritten by every backward call and must be accumulated
// exactly once per example.
package optim
