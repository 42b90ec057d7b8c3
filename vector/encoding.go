package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeDescriptor encodes a descriptor into a BLOB representation suitable
// for storage in SQLite. The encoding is a little-endian sequence of IEEE 754
// float64 values without a length prefix; the length is derived from the
// BLOB size on decode. Bits are preserved exactly, including signed zero.
func EncodeDescriptor(d Descriptor) ([]byte, error) {
	if len(d) == 0 {
		return nil, nil
	}
	b := make([]byte, len(d)*8)
	for i, v := range d {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b, nil
}

// DecodeDescriptor decodes a BLOB produced by EncodeDescriptor.
func DecodeDescriptor(b []byte) (Descriptor, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vector: invalid descriptor blob length %d (not multiple of 8)", len(b))
	}
	n := len(b) / 8
	d := make(Descriptor, n)
	for i := 0; i < n; i++ {
		d[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return d, nil
}
