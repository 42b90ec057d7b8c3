package facestore

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/facevec/vector"
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	return s
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithThreshold(0.5))

	idx, err := s.Add(ctx, vector.Descriptor{1.0, 0.0})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx)

	idx, err = s.Add(ctx, vector.Descriptor{0.0, 1.0})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)

	idx, ok, err := s.Compare(ctx, vector.Descriptor{0.9, 0.1})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), idx)

	_, ok, err = s.Compare(ctx, vector.Descriptor{5.0, 5.0})
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []vector.Descriptor{{1.0, 0.0}, {0.0, 1.0}}, list)
}

func TestStore_IndexMonotonicity(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	const n = 50
	var want []vector.Descriptor
	for i := 0; i < n; i++ {
		d := vector.Descriptor{float64(i), float64(i) * 0.5, -float64(i)}
		got, err := s.Add(ctx, d)
		require.NoError(t, err)
		require.Equal(t, uint64(i), got)
		want = append(want, d)
	}
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, list)
	assert.Equal(t, n, s.Len())
	assert.Equal(t, 3, s.Dim())
}

func TestStore_AddDoesNotDeduplicate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	d := vector.Descriptor{0.25, 0.75}

	first, err := s.Add(ctx, d)
	require.NoError(t, err)
	second, err := s.Add(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)
	assert.Equal(t, 2, s.Len())
}

func TestStore_SelfMatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithThreshold(1e-9))
	for i := 0; i < 10; i++ {
		d := vector.Descriptor{float64(i) * 10, 1, 2}
		idx, err := s.Add(ctx, d)
		require.NoError(t, err)

		got, ok, err := s.Compare(ctx, d)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, idx, got)
	}
}

func TestStore_CompareEmptyTable(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, q := range []vector.Descriptor{nil, {1}, {1, 2, 3}, {math.NaN()}} {
		_, ok, err := s.Compare(ctx, q)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestStore_ThresholdIsInclusive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithThreshold(5))
	_, err := s.Add(ctx, vector.Descriptor{0, 0})
	require.NoError(t, err)

	idx, ok, err := s.Compare(ctx, vector.Descriptor{3, 4})
	require.NoError(t, err)
	assert.True(t, ok, "distance equal to the threshold must match")
	assert.Equal(t, uint64(0), idx)

	_, ok, err = s.Compare(ctx, vector.Descriptor{3, 4.0000001})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_TieBreakLowestIndex(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithThreshold(2))
	for _, d := range []vector.Descriptor{{0, 3}, {1, 0}, {-1, 0}, {0, 1}} {
		_, err := s.Add(ctx, d)
		require.NoError(t, err)
	}
	// Entries 1, 2 and 3 are all at distance 1 from the origin.
	idx, ok, err := s.Compare(ctx, vector.Descriptor{0, 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), idx)
}

func TestStore_ClosestWinsOverEarlier(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Add(ctx, vector.Descriptor{0.5, 0})
	require.NoError(t, err)
	_, err = s.Add(ctx, vector.Descriptor{0.1, 0})
	require.NoError(t, err)

	idx, ok, err := s.Compare(ctx, vector.Descriptor{0, 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), idx)

	n, ok, err := s.Nearest(ctx, vector.Descriptor{0, 0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), n.Position)
	assert.InDelta(t, 0.1, n.Distance, 1e-12)
}

func TestStore_Determinism(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for i := 0; i < 20; i++ {
		_, err := s.Add(ctx, vector.Descriptor{math.Sin(float64(i)), math.Cos(float64(i))})
		require.NoError(t, err)
	}
	q := vector.Descriptor{0.3, 0.2}
	i1, ok1, err1 := s.Compare(ctx, q)
	i2, ok2, err2 := s.Compare(ctx, q)
	assert.Equal(t, i1, i2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, err1, err2)

	l1, err := s.List(ctx)
	require.NoError(t, err)
	l2, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, l1, l2)
}

func TestStore_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Add(ctx, vector.Descriptor{1, 2, 3})
	require.NoError(t, err)

	_, err = s.Add(ctx, vector.Descriptor{1, 2})
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
	var dm *vector.DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
	assert.Equal(t, 1, s.Len(), "rejected add must not mutate the table")

	_, _, err = s.Compare(ctx, vector.Descriptor{1, 2, 3, 4})
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)
}

func TestStore_RejectsInvalidDescriptors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Add(ctx, nil)
	require.ErrorIs(t, err, vector.ErrEmptyDescriptor)
	_, err = s.Add(ctx, vector.Descriptor{math.Inf(1), 0})
	require.ErrorIs(t, err, vector.ErrNonFinite)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Dim(), "rejected add must not establish the dimension")
}

func TestStore_PinnedDimension(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithDimension(4))
	assert.Equal(t, 4, s.Dim())

	_, err := s.Add(ctx, vector.Descriptor{1, 2})
	require.ErrorIs(t, err, vector.ErrDimensionMismatch)

	idx, err := s.Add(ctx, vector.Descriptor{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx)
}

func TestStore_InvalidOptions(t *testing.T) {
	for _, opt := range []Option{WithThreshold(0), WithThreshold(-1), WithThreshold(math.NaN()), WithDimension(-2)} {
		_, err := New(opt)
		assert.Error(t, err)
	}
}

func TestStore_ListReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	d := vector.Descriptor{1, 2}
	_, err := s.Add(ctx, d)
	require.NoError(t, err)
	d[0] = 100

	list, err := s.List(ctx)
	require.NoError(t, err)
	list[0][1] = 100

	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []vector.Descriptor{{1, 2}}, again)
}

func TestStore_FindOrAdd(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithThreshold(0.5))

	idx, matched, err := s.FindOrAdd(ctx, vector.Descriptor{1, 0})
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, uint64(0), idx)

	idx, matched, err = s.FindOrAdd(ctx, vector.Descriptor{0.9, 0.1})
	require.NoError(t, err)
	assert.True(t, matched)
	assert.Equal(t, uint64(0), idx)

	idx, matched, err = s.FindOrAdd(ctx, vector.Descriptor{0, 1})
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, uint64(1), idx)
	assert.Equal(t, 2, s.Len())
}

func TestStore_FindOrAddConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	d := vector.Descriptor{0.1, 0.2, 0.3}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]uint64, workers)
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w], _, errs[w] = s.FindOrAdd(ctx, d)
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		require.NoError(t, errs[w])
		assert.Equal(t, uint64(0), results[w])
	}
	assert.Equal(t, 1, s.Len())
}

func TestStore_ConcurrentAddsAreDense(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	seen := make(chan uint64, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				idx, err := s.Add(ctx, vector.Descriptor{float64(w), float64(i)})
				if err == nil {
					seen <- idx
				}
				_, _, _ = s.Compare(ctx, vector.Descriptor{float64(i), float64(w)})
			}
		}(w)
	}
	wg.Wait()
	close(seen)

	got := make(map[uint64]bool)
	for idx := range seen {
		assert.False(t, got[idx], "index %d assigned twice", idx)
		got[idx] = true
	}
	require.Len(t, got, workers*perWorker)
	for i := uint64(0); i < workers*perWorker; i++ {
		assert.True(t, got[i], "index %d missing", i)
	}
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Add(ctx, vector.Descriptor{1})
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = s.Compare(ctx, vector.Descriptor{1})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = s.FindOrAdd(ctx, vector.Descriptor{1})
	assert.ErrorIs(t, err, ErrClosed)
}
