package engine

import (
	"math"
	"testing"

	"github.com/viant/facevec/vector"
)

func TestRegisterVectorFunctionsAndUse(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	// Registering again must be harmless.
	if err := RegisterVectorFunctions(db); err != nil {
		t.Fatalf("RegisterVectorFunctions failed: %v", err)
	}

	zeroBlob, err := vector.EncodeDescriptor(vector.Descriptor{0, 0})
	if err != nil {
		t.Fatalf("EncodeDescriptor zero failed: %v", err)
	}
	threeFourBlob, err := vector.EncodeDescriptor(vector.Descriptor{3, 4})
	if err != nil {
		t.Fatalf("EncodeDescriptor threeFour failed: %v", err)
	}

	// vec_l2 between (0,0) and (3,4) -> 5
	var dist float64
	if err := db.QueryRow(`SELECT vec_l2(?, ?)`, zeroBlob, threeFourBlob).Scan(&dist); err != nil {
		t.Fatalf("vec_l2 query failed: %v", err)
	}
	if math.Abs(dist-5) > 1e-12 {
		t.Fatalf("vec_l2 = %v, want 5", dist)
	}

	var dim int
	if err := db.QueryRow(`SELECT vec_dim(?)`, threeFourBlob).Scan(&dim); err != nil {
		t.Fatalf("vec_dim query failed: %v", err)
	}
	if dim != 2 {
		t.Fatalf("vec_dim = %d, want 2", dim)
	}
}

func TestVecL2MatchesGoDistance(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	a := vector.Descriptor{0.1, -0.25, 0.3333333333333333, 1e-9}
	b := vector.Descriptor{0.7, 0.125, -0.2, 2.5}
	aBlob, _ := vector.EncodeDescriptor(a)
	bBlob, _ := vector.EncodeDescriptor(b)

	var got float64
	if err := db.QueryRow(`SELECT vec_l2(?, ?)`, aBlob, bBlob).Scan(&got); err != nil {
		t.Fatalf("vec_l2 query failed: %v", err)
	}
	want, err := vector.L2Distance(a, b)
	if err != nil {
		t.Fatalf("L2Distance failed: %v", err)
	}
	if got != want {
		t.Fatalf("vec_l2 = %v, Go L2Distance = %v; want bit-identical", got, want)
	}
}

func TestVecL2DimensionMismatch(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	aBlob, _ := vector.EncodeDescriptor(vector.Descriptor{1, 2})
	bBlob, _ := vector.EncodeDescriptor(vector.Descriptor{1, 2, 3})
	var dist float64
	if err := db.QueryRow(`SELECT vec_l2(?, ?)`, aBlob, bBlob).Scan(&dist); err == nil {
		t.Fatalf("expected vec_l2 to fail on mismatched dimensions")
	}
}
