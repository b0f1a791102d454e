package nn

import "errors"

// ErrNotImplemented reports an unsupported operation, e.g. contribution
// tracking on a layer family that has no relevance model. Callers must
// treat it as non-recoverable for the attempted call.
var ErrNotImplemented = errors.New("not implemented")

// ErrInvalidConfig reports an invalid construction-time configuration,
// e.g. a bidirectional wrapper over a non-recurrent layer kind. Detected
// eagerly, before any computation runs.
var ErrInvalidConfig = errors.New("invalid configuration")

// Shape mismatches are not wrapped: the numeric array collaborator
// (gonum/mat) panics on incompatible dimensions and the core does not
// mask that.
