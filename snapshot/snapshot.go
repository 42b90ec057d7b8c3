// Package snapshot exports and imports a whole descriptor table as a single
// zstd-compressed stream. The payload is the bruteforce index binary format,
// so a snapshot restores the same order, values and dimension.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/viant/facevec/facestore"
	"github.com/viant/facevec/index/bruteforce"
	"github.com/viant/facevec/vector"
)

// ErrNotEmpty is returned when importing into a store that already holds
// descriptors.
var ErrNotEmpty = errors.New("snapshot: target store is not empty")

// Export writes every descriptor of s to w and returns how many were written.
func Export(ctx context.Context, w io.Writer, s *facestore.Store) (int, error) {
	descs, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := Write(w, s.Dim(), descs); err != nil {
		return 0, err
	}
	return len(descs), nil
}

// Write encodes descs with dimension dim and compresses them into w.
func Write(w io.Writer, dim int, descs []vector.Descriptor) error {
	idx := bruteforce.New(dim)
	for i, d := range descs {
		if _, err := idx.Append(d); err != nil {
			return fmt.Errorf("snapshot: entry %d: %w", i, err)
		}
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("snapshot: zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	return nil
}

// Read decompresses a snapshot and returns its dimension and descriptors.
func Read(r io.Reader) (int, []vector.Descriptor, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot: zstd reader: %w", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot: read: %w", err)
	}
	idx := &bruteforce.Index{}
	if err := idx.UnmarshalBinary(data); err != nil {
		return 0, nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return idx.Dim(), idx.Vectors(), nil
}

// Import reads a snapshot from r and appends its descriptors to s in order.
// s must be empty, and a pinned dimension on s must agree with the snapshot.
// The whole snapshot is decoded and checked before the first Add.
func Import(ctx context.Context, r io.Reader, s *facestore.Store) (int, error) {
	if s.Len() != 0 {
		return 0, ErrNotEmpty
	}
	dim, descs, err := Read(r)
	if err != nil {
		return 0, err
	}
	if len(descs) > 0 {
		if err := vector.CheckDimension(descs[0], s.Dim()); err != nil {
			return 0, fmt.Errorf("snapshot: %w", err)
		}
	} else if pinned := s.Dim(); pinned > 0 && dim > 0 && pinned != dim {
		return 0, fmt.Errorf("snapshot: %w", &vector.DimensionMismatchError{Expected: pinned, Actual: dim})
	}
	for i, d := range descs {
		idx, err := s.Add(ctx, d)
		if err != nil {
			return i, fmt.Errorf("snapshot: import entry %d: %w", i, err)
		}
		if idx != uint64(i) {
			return i + 1, fmt.Errorf("snapshot: import entry %d landed at index %d", i, idx)
		}
	}
	return len(descs), nil
}
