package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Save writes the named matrices to path as a .strand checkpoint.
// Matrices are stored in sorted name order so identical inputs produce
// identical files apart from the timestamp.
func Save(path string, params map[string]*mat.Dense) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: formatVersion,
		CreatedAt:     time.Now().UTC(),
	}
	var payload bytes.Buffer
	for _, name := range names {
		m := params[name]
		rows, cols := m.Dims()
		header.Params = append(header.Params, ParamMeta{
			Name:   name,
			Rows:   rows,
			Cols:   cols,
			Offset: int64(payload.Len()),
		})
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				var buf [8]byte
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.At(i, j)))
				payload.Write(buf[:])
			}
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	sum := sha256.New()
	sum.Write(headerJSON)
	sum.Write(payload.Bytes())

	var out bytes.Buffer
	out.WriteString(magicBytes)
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], formatVersion)
	out.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(len(headerJSON)))
	out.Write(u32[:])
	out.Write(sum.Sum(nil))
	out.Write(headerJSON)
	out.Write(payload.Bytes())

	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}
