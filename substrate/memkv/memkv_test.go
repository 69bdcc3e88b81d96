package memkv

import (
	"context"
	"testing"

	"github.com/krotik/multikv/kverr"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	b := New()

	h, err := b.CollectionOpen(ctx, "docs")
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Set(ctx, nil, []byte("k1"), []byte("v1")); err != nil {
		t.Fatal(err)
	}

	v, ok, err := h.Get(ctx, nil, []byte("k1"))
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("expected v1, got %q ok=%v err=%v", v, ok, err)
	}

	if err := h.Delete(ctx, nil, []byte("k1")); err != nil {
		t.Fatal(err)
	}
	_, ok, err = h.Get(ctx, nil, []byte("k1"))
	if err != nil || ok {
		t.Fatalf("expected key to be absent after delete, ok=%v err=%v", ok, err)
	}
}

func TestScanOrdersKeysAscending(t *testing.T) {
	ctx := context.Background()
	b := New()
	h, _ := b.CollectionOpen(ctx, "docs")

	for _, k := range []string{"c", "a", "b"} {
		h.Set(ctx, nil, []byte(k), []byte(k))
	}

	var seen []string
	h.Scan(ctx, nil, nil, nil, func(key, value []byte) bool {
		seen = append(seen, string(key))
		return true
	})

	want := []string{"a", "b", "c"}
	for i, k := range want {
		if seen[i] != k {
			t.Fatalf("expected ascending scan order %v, got %v", want, seen)
		}
	}
}

func TestInjectedFailureReturnsSubstrateFailure(t *testing.T) {
	ctx := context.Background()
	b := New()
	h, _ := b.CollectionOpen(ctx, "docs")

	b.InjectFailure("docs", "k1", AccessFailGet)

	_, _, err := h.Get(ctx, nil, []byte("k1"))
	if err == nil {
		t.Fatal("expected injected failure to surface as an error")
	}
	if kvErr, ok := err.(*kverr.Error); !ok || kvErr.Kind != kverr.SubstrateFailure {
		t.Fatalf("expected a substrate-failure error, got %v", err)
	}

	// The injection should have been consumed - a second read succeeds.
	if _, _, err := h.Get(ctx, nil, []byte("k1")); err != nil {
		t.Fatalf("expected injected failure to be one-shot, got %v", err)
	}
}

func TestCollectionDropRemovesCollection(t *testing.T) {
	ctx := context.Background()
	b := New()
	h, _ := b.CollectionOpen(ctx, "docs")
	h.Set(ctx, nil, []byte("k1"), []byte("v1"))

	if err := b.CollectionDrop(ctx, "docs", 2); err != nil {
		t.Fatal(err)
	}

	if err := b.CollectionDrop(ctx, "docs", 0); err == nil {
		t.Fatal("expected drop of an already-removed collection to be a bad-argument error")
	}
}
