package bruteforce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/viant/facevec/index"
	"github.com/viant/facevec/vector"
)

// magic prefixes the binary format.
var magic = [4]byte{'F', 'V', 'B', '1'}

const headerSize = 4 + 4 + 8

// Index is a brute-force descriptor index. Entries are stored in one flat
// slice of n*dim components.
type Index struct {
	dim  int
	n    int
	data []float64
}

// New returns an empty index. A positive dim pins the dimension before the
// first append; 0 lets the first append establish it.
func New(dim int) *Index {
	if dim < 0 {
		dim = 0
	}
	return &Index{dim: dim}
}

// Append validates and stores vec.
func (i *Index) Append(vec vector.Descriptor) (uint64, error) {
	if err := i.CheckAppend(vec); err != nil {
		return 0, err
	}
	if i.dim == 0 {
		i.dim = len(vec)
	}
	i.data = append(i.data, vec...)
	i.n++
	return uint64(i.n - 1), nil
}

// CheckAppend reports whether Append(vec) would succeed without mutating
// the index.
func (i *Index) CheckAppend(vec vector.Descriptor) error {
	if err := vector.CheckDimension(vec, i.dim); err != nil {
		return err
	}
	return vector.Validate(vec)
}

// Nearest scans all entries in position order. A strictly smaller distance
// is required to replace the current best, so the lowest position wins ties.
func (i *Index) Nearest(query vector.Descriptor) (index.Neighbor, bool, error) {
	if i.n == 0 {
		return index.Neighbor{}, false, nil
	}
	if err := vector.CheckDimension(query, i.dim); err != nil {
		return index.Neighbor{}, false, err
	}
	if err := vector.Validate(query); err != nil {
		return index.Neighbor{}, false, err
	}
	best := math.Inf(1)
	bestPos := 0
	for p := 0; p < i.n; p++ {
		d := math.Sqrt(vector.SquaredL2(query, i.row(p)))
		if d < best {
			best = d
			bestPos = p
		}
	}
	return index.Neighbor{Position: uint64(bestPos), Distance: best}, true, nil
}

// Len returns the number of entries.
func (i *Index) Len() int { return i.n }

// Dim returns the dimension, or 0 when unset.
func (i *Index) Dim() int { return i.dim }

// Vector returns a copy of the entry at position.
func (i *Index) Vector(position uint64) (vector.Descriptor, bool) {
	if position >= uint64(i.n) {
		return nil, false
	}
	return vector.Descriptor(i.row(int(position))).Clone(), true
}

// Vectors returns copies of all entries in position order.
func (i *Index) Vectors() []vector.Descriptor {
	out := make([]vector.Descriptor, i.n)
	for p := 0; p < i.n; p++ {
		out[p] = vector.Descriptor(i.row(p)).Clone()
	}
	return out
}

func (i *Index) row(p int) vector.Descriptor {
	return i.data[p*i.dim : (p+1)*i.dim]
}

// MarshalBinary stores: magic, dim(uint32), n(uint64), then n*dim float64
// components, all little-endian.
func (i *Index) MarshalBinary() ([]byte, error) {
	if uint64(i.dim) > math.MaxUint32 {
		return nil, fmt.Errorf("bruteforce: dimension %d too large", i.dim)
	}
	out := make([]byte, headerSize+8*len(i.data))
	copy(out[0:4], magic[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(i.dim))
	binary.LittleEndian.PutUint64(out[8:16], uint64(i.n))
	off := headerSize
	for _, v := range i.data {
		binary.LittleEndian.PutUint64(out[off:], math.Float64bits(v))
		off += 8
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes, replacing its contents.
// The dimension recorded in the data replaces any pinned dimension.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return errors.New("bruteforce: invalid data")
	}
	if [4]byte(data[0:4]) != magic {
		return errors.New("bruteforce: bad magic")
	}
	dim := int(binary.LittleEndian.Uint32(data[4:8]))
	n := binary.LittleEndian.Uint64(data[8:16])
	if n > 0 && dim == 0 {
		return errors.New("bruteforce: entries without dimension")
	}
	body := data[headerSize:]
	words := uint64(len(body)) / 8
	if uint64(len(body))%8 != 0 || (n == 0 && words != 0) || (n > 0 && (words%n != 0 || words/n != uint64(dim))) {
		return fmt.Errorf("bruteforce: truncated: %d bytes for %d entries of dim %d", len(body), n, dim)
	}
	vals := make([]float64, len(body)/8)
	for j := range vals {
		vals[j] = math.Float64frombits(binary.LittleEndian.Uint64(body[j*8:]))
	}
	for j, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bruteforce: %w at entry %d", vector.ErrNonFinite, j/dim)
		}
	}
	i.dim = dim
	i.n = int(n)
	i.data = vals
	return nil
}

// Ensure Index satisfies the index.Index interface.
var _ index.Index = (*Index)(nil)
