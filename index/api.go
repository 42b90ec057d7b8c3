package index

import "github.com/viant/facevec/vector"

// Neighbor is a stored entry closest to a query.
type Neighbor struct {
	Position uint64
	Distance float64
}

// Index defines an append-only descriptor index. Implementations are not
// safe for concurrent use; callers serialize access.
type Index interface {
	// Append stores vec at the next position and returns it. The first
	// append fixes the dimension unless one was configured up front.
	Append(vec vector.Descriptor) (uint64, error)

	// CheckAppend reports whether Append(vec) would succeed, without
	// mutating the index.
	CheckAppend(vec vector.Descriptor) error

	// Nearest returns the stored entry with the smallest Euclidean distance
	// to query; ties resolve to the lowest position. ok is false when the
	// index is empty.
	Nearest(query vector.Descriptor) (n Neighbor, ok bool, err error)

	// Len returns the number of stored entries.
	Len() int

	// Dim returns the established dimension, or 0 if none is set.
	Dim() int

	// Vector returns a copy of the entry at position.
	Vector(position uint64) (vector.Descriptor, bool)

	// Vectors returns copies of all entries in position order.
	Vectors() []vector.Descriptor

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
