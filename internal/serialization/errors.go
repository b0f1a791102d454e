package serialization

import "errors"

var (
	// ErrBadMagic reports a file that is not a .strand checkpoint.
	ErrBadMagic = errors.New("serialization: not a strand checkpoint")

	// ErrBadFormat reports a malformed or unsupported checkpoint.
	ErrBadFormat = errors.New("serialization: malformed checkpoint")

	// ErrChecksum reports a checkpoint whose contents do not match its
	// stored checksum.
	ErrChecksum = errors.New("serialization: checksum mismatch")
)
