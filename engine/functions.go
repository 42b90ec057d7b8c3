package engine

import (
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_l2 and vec_dim with the driver so
// they are available on new connections opened after this call.
// Note: existing open connections will not see new functions.
func RegisterVectorFunctions(_ *sql.DB) error {
	registerOnce.Do(func() {
		registerErr = register("vec_l2", 2, vecL2Impl)
		if registerErr == nil {
			registerErr = register("vec_dim", 1, vecDimImpl)
		}
	})
	return registerErr
}

func register(name string, nArgs int, fn func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)) error {
	if err := sqlite.RegisterDeterministicScalarFunction(name, int32(nArgs), fn); err != nil {
		if strings.Contains(err.Error(), "already registered") {
			return nil
		}
		return fmt.Errorf("engine: register %s: %w", name, err)
	}
	return nil
}

func asDescriptor(arg driver.Value) ([]float64, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeDescriptor(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for descriptor; want BLOB", arg)
	}
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_l2: expected 2 arguments, got %d", len(args))
	}
	a, err := asDescriptor(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asDescriptor(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	d, err := l2(a, b)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func vecDimImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("vec_dim: expected 1 argument, got %d", len(args))
	}
	a, err := asDescriptor(args[0])
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	return int64(len(a)), nil
}

// Local minimal helpers to avoid import cycles in tests.
func decodeDescriptor(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vec: invalid descriptor blob length %d", len(b))
	}
	n := len(b) / 8
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}

func l2(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vec: L2 dim mismatch %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
