// Package serialization implements the .strand checkpoint format: a
// binary container for named parameter matrices.
//
// Layout:
//
//	magic "STND" (4 bytes)
//	format version (uint32, little-endian)
//	header length (uint32, little-endian)
//	SHA-256 checksum of header + payload (32 bytes)
//	JSON header
//	payload: float64 matrices, little-endian, row-major, in header order
//
// The checksum covers everything after the fixed prefix, so a truncated
// or corrupted file is rejected on load.
package serialization

import "time"

const (
	magicBytes      = "STND"
	formatVersion   = 1
	fixedPrefixSize = 4 + 4 + 4 + checksumSize
	checksumSize    = 32
)

// Header is the JSON metadata block of a checkpoint file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Params        []ParamMeta       `json:"params"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ParamMeta describes one stored matrix. Offset is relative to the start
// of the payload.
type ParamMeta struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Offset int64  `json:"offset"`
}
