package strided

import "testing"

func TestBroadcastEquivalence(t *testing.T) {
	// Testable property 8: a stride-0 view of x with count N must behave
	// like N explicit copies of x.
	broadcast := Broadcast(int64(42))
	explicit := Of([]int64{42, 42, 42, 42})

	for i := 0; i < 4; i++ {
		if broadcast.At(i) != explicit.At(i) {
			t.Fatalf("broadcast[%d] = %v, want %v", i, broadcast.At(i), explicit.At(i))
		}
	}
}

func TestValidateCountMismatch(t *testing.T) {
	v := Of([]int{1, 2, 3})

	if err := v.Validate(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(4); err == nil {
		t.Fatal("expected a bad-argument error on count mismatch")
	}
}

func TestMaterializeBroadcast(t *testing.T) {
	out, err := Materialize(Broadcast("x"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0] != "x" || out[2] != "x" {
		t.Fatalf("unexpected materialization: %v", out)
	}
}
