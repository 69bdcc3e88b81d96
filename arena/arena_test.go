package arena

import "bytes"

import "testing"

func TestAllocAndReset(t *testing.T) {
	a := New()

	first := a.Put([]byte("hello"))
	second := a.Put([]byte("world"))

	if !bytes.Equal(first, []byte("hello")) || !bytes.Equal(second, []byte("world")) {
		t.Fatalf("unexpected arena contents: %q %q", first, second)
	}

	a.Reset()
	if a.Len() != 0 {
		t.Fatalf("expected arena to be empty after Reset, got %d bytes", a.Len())
	}
}

func TestTapePreservesOrderAndMissing(t *testing.T) {
	a := New()
	tape := NewTape(a)

	tape.Push([]byte("a"))
	tape.Push(nil)
	tape.Push([]byte("c"))

	values := tape.Values()
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if string(values[0]) != "a" || values[1] != nil || string(values[2]) != "c" {
		t.Fatalf("unexpected tape contents: %v", values)
	}
}
