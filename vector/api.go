package vector

import (
	"context"
)

// Descriptor is a fixed-length face embedding. Its length is set by the
// embedding model that produced it; this package never converts it.
type Descriptor []float64

// Clone returns a deep copy of the descriptor.
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// Table defines the durable side of a descriptor table. Implementations keep
// descriptors in position order and never update or delete a stored row.
type Table interface {
	// Append persists d at the given position. Position must equal the
	// number of rows already stored.
	Append(ctx context.Context, position uint64, d Descriptor) error

	// Load returns every stored descriptor ordered by position.
	Load(ctx context.Context) ([]Descriptor, error)

	// Count returns the number of stored descriptors.
	Count(ctx context.Context) (uint64, error)

	// Close releases the underlying database handle.
	Close() error
}
