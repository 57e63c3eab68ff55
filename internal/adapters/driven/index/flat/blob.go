package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// Index file layout: 8-byte magic, uint32 dimension, uint32 row count,
// then count*dim little-endian float32 values. The blob is written on
// every mutation alongside the docstore, but rebuilds never trust it -
// the docstore alone is enough to reconstruct the index.
const blobMagic = "RAGFLAT1"

const blobHeaderSize = len(blobMagic) + 8

// encodeVectors serialises the vector rows into the index blob format.
func encodeVectors(dim int, vectors [][]float32) []byte {
	buf := make([]byte, blobHeaderSize+len(vectors)*dim*4)
	copy(buf, blobMagic)
	binary.LittleEndian.PutUint32(buf[len(blobMagic):], uint32(dim))         //nolint:gosec // dim is small and positive
	binary.LittleEndian.PutUint32(buf[len(blobMagic)+4:], uint32(len(vectors))) //nolint:gosec // bounded by corpus size

	off := blobHeaderSize
	for _, row := range vectors {
		for _, f := range row {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}

// decodeVectors parses an index blob, validating magic, dimension and
// length. Returns domain.ErrCorruptState for anything malformed.
func decodeVectors(data []byte, wantDim int) ([][]float32, error) {
	if len(data) < blobHeaderSize || string(data[:len(blobMagic)]) != blobMagic {
		return nil, fmt.Errorf("%w: bad index header", domain.ErrCorruptState)
	}

	dim := int(binary.LittleEndian.Uint32(data[len(blobMagic):]))
	count := int(binary.LittleEndian.Uint32(data[len(blobMagic)+4:]))
	if dim != wantDim {
		return nil, fmt.Errorf("%w: index dimension %d, want %d", domain.ErrDimensionMismatch, dim, wantDim)
	}
	if len(data) != blobHeaderSize+count*dim*4 {
		return nil, fmt.Errorf("%w: truncated index blob", domain.ErrCorruptState)
	}

	vectors := make([][]float32, count)
	off := blobHeaderSize
	for i := range vectors {
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = row
	}
	return vectors, nil
}

// saveBlob writes the index blob atomically (temp file + rename), the
// same discipline as the docstore so the pair stays consistent.
func saveBlob(path string, dim int, vectors [][]float32) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encodeVectors(dim, vectors), 0600); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}
