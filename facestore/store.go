package facestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/facevec/index"
	"github.com/viant/facevec/index/bruteforce"
	"github.com/viant/facevec/logging"
	"github.com/viant/facevec/vector"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("facestore: store is closed")

// Store holds the descriptor table. Add takes the write lock; Compare,
// Nearest and List take the read lock, so readers always see a consistent
// table.
type Store struct {
	mu        sync.RWMutex
	idx       index.Index
	table     vector.Table
	threshold float64
	logger    *logging.Logger
	closed    bool
}

// New returns an in-memory Store. Its contents live as long as the Store.
func New(opts ...Option) (*Store, error) {
	return Open(context.Background(), nil, opts...)
}

// Open returns a Store backed by table, loading every persisted descriptor
// in position order. A nil table keeps the store in memory only.
func Open(ctx context.Context, table vector.Table, opts ...Option) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	s := &Store{
		idx:       bruteforce.New(o.dimension),
		table:     table,
		threshold: o.threshold,
		logger:    o.logger,
	}
	if table == nil {
		return s, nil
	}
	descs, err := table.Load(ctx)
	if err != nil {
		s.logger.LogLoad(ctx, 0, o.dimension, err)
		return nil, fmt.Errorf("facestore: load: %w", err)
	}
	for i, d := range descs {
		if _, err := s.idx.Append(d); err != nil {
			err = fmt.Errorf("facestore: load position %d: %w", i, err)
			s.logger.LogLoad(ctx, i, s.idx.Dim(), err)
			return nil, err
		}
	}
	s.logger.LogLoad(ctx, s.idx.Len(), s.idx.Dim(), nil)
	return s, nil
}

// Add appends d and returns its index, equal to the table length before the
// call. The first Add on an empty table fixes the dimension unless one was
// pinned. A rejected or failed Add leaves the table unchanged.
func (s *Store) Add(ctx context.Context, d vector.Descriptor) (uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(ctx, d)
}

func (s *Store) add(ctx context.Context, d vector.Descriptor) (uint64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if err := s.idx.CheckAppend(d); err != nil {
		s.logger.LogAdd(ctx, 0, len(d), err)
		return 0, err
	}
	position := uint64(s.idx.Len())
	if s.table != nil {
		if err := s.table.Append(ctx, position, d); err != nil {
			err = fmt.Errorf("facestore: persist index %d: %w", position, err)
			s.logger.LogAdd(ctx, position, len(d), err)
			return 0, err
		}
	}
	got, err := s.idx.Append(d)
	if err != nil {
		// CheckAppend passed under the same lock, so this is unreachable
		// unless the index implementation changes.
		return 0, err
	}
	s.logger.LogAdd(ctx, got, len(d), nil)
	return got, nil
}

// Compare returns the index of the stored descriptor closest to d when its
// Euclidean distance is within the threshold. ok is false when there is no
// such descriptor, including when the table is empty.
func (s *Store) Compare(ctx context.Context, d vector.Descriptor) (idx uint64, ok bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compare(ctx, d)
}

func (s *Store) compare(ctx context.Context, d vector.Descriptor) (uint64, bool, error) {
	if s.closed {
		return 0, false, ErrClosed
	}
	n, found, err := s.idx.Nearest(d)
	if err != nil {
		s.logger.LogCompare(ctx, 0, false, 0, err)
		return 0, false, err
	}
	if !found || n.Distance > s.threshold {
		s.logger.LogCompare(ctx, 0, false, 0, nil)
		return 0, false, nil
	}
	s.logger.LogCompare(ctx, n.Position, true, n.Distance, nil)
	return n.Position, true, nil
}

// Nearest returns the closest stored descriptor and its distance whether or
// not it falls within the threshold. ok is false on an empty table.
func (s *Store) Nearest(ctx context.Context, d vector.Descriptor) (index.Neighbor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return index.Neighbor{}, false, ErrClosed
	}
	return s.idx.Nearest(d)
}

// FindOrAdd compares d against the table and appends it when nothing
// matches, holding the write lock across both steps. matched reports
// whether idx refers to an existing descriptor.
func (s *Store) FindOrAdd(ctx context.Context, d vector.Descriptor) (idx uint64, matched bool, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, matched, err = s.compare(ctx, d); err != nil || matched {
		return idx, matched, err
	}
	idx, err = s.add(ctx, d)
	return idx, false, err
}

// List returns copies of all stored descriptors in insertion order.
func (s *Store) List(ctx context.Context) ([]vector.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.idx.Vectors(), nil
}

// Len returns the number of stored descriptors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Len()
}

// Dim returns the established dimension, or 0 if none is set yet.
func (s *Store) Dim() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Dim()
}

// Threshold returns the match threshold.
func (s *Store) Threshold() float64 { return s.threshold }

// Close closes the backing table. Further operations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.table != nil {
		return s.table.Close()
	}
	return nil
}
