package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Load reads a .strand checkpoint and returns its matrices by name. The
// checksum is verified before any matrix is decoded.
func Load(path string) (map[string]*mat.Dense, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if len(data) < fixedPrefixSize {
		return nil, fmt.Errorf("%w: file too short", ErrBadFormat)
	}
	if string(data[:4]) != magicBytes {
		return nil, ErrBadMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrBadFormat, version)
	}
	headerLen := int(binary.LittleEndian.Uint32(data[8:12]))
	stored := data[12:fixedPrefixSize]
	rest := data[fixedPrefixSize:]
	if headerLen > len(rest) {
		return nil, fmt.Errorf("%w: header length %d exceeds file size", ErrBadFormat, headerLen)
	}

	sum := sha256.Sum256(rest)
	if !bytes.Equal(stored, sum[:]) {
		return nil, ErrChecksum
	}

	var header Header
	if err := json.Unmarshal(rest[:headerLen], &header); err != nil {
		return nil, fmt.Errorf("%w: decode header: %v", ErrBadFormat, err)
	}

	payload := rest[headerLen:]
	out := make(map[string]*mat.Dense, len(header.Params))
	for _, meta := range header.Params {
		n := meta.Rows * meta.Cols
		end := meta.Offset + int64(n*8)
		if meta.Rows <= 0 || meta.Cols <= 0 || meta.Offset < 0 || end > int64(len(payload)) {
			return nil, fmt.Errorf("%w: matrix %q out of bounds", ErrBadFormat, meta.Name)
		}
		values := make([]float64, n)
		for i := range values {
			bits := binary.LittleEndian.Uint64(payload[meta.Offset+int64(i*8):])
			values[i] = math.Float64frombits(bits)
		}
		out[meta.Name] = mat.NewDense(meta.Rows, meta.Cols, values)
	}
	return out, nil
}

// Restore loads a checkpoint into the given matrices. Every destination
// name must be present in the file with matching dimensions; extra
// matrices in the file are ignored.
func Restore(path string, params map[string]*mat.Dense) error {
	loaded, err := Load(path)
	if err != nil {
		return err
	}
	for name, dst := range params {
		src, ok := loaded[name]
		if !ok {
			return fmt.Errorf("%w: matrix %q missing from checkpoint", ErrBadFormat, name)
		}
		dr, dc := dst.Dims()
		sr, sc := src.Dims()
		if dr != sr || dc != sc {
			return fmt.Errorf("%w: matrix %q has shape %dx%d, want %dx%d", ErrBadFormat, name, sr, sc, dr, dc)
		}
		dst.Copy(src)
	}
	return nil
}
