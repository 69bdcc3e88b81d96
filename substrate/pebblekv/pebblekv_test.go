package pebblekv

import (
	"context"
	"testing"

	"github.com/krotik/multikv/substrate"
)

func openTestBridge(t *testing.T) *Bridge {
	t.Helper()
	b, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	b := openTestBridge(t)

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
		t.Fatalf("expected key to be gone, ok=%v err=%v", ok, err)
	}
}

func TestCollectionsAreNamespacedApart(t *testing.T) {
	ctx := context.Background()
	b := openTestBridge(t)

	h1, _ := b.CollectionOpen(ctx, "a")
	h2, _ := b.CollectionOpen(ctx, "b")

	h1.Set(ctx, nil, []byte("k"), []byte("from-a"))
	h2.Set(ctx, nil, []byte("k"), []byte("from-b"))

	v1, _, _ := h1.Get(ctx, nil, []byte("k"))
	v2, _, _ := h2.Get(ctx, nil, []byte("k"))
	if string(v1) != "from-a" || string(v2) != "from-b" {
		t.Fatalf("expected isolated collections, got %q and %q", v1, v2)
	}
}

func TestScanVisitsAscendingWithinCollection(t *testing.T) {
	ctx := context.Background()
	b := openTestBridge(t)
	h, _ := b.CollectionOpen(ctx, "docs")

	for _, k := range []string{"b", "a", "c"} {
		h.Set(ctx, nil, []byte(k), []byte(k))
	}

	var seen []string
	err := h.Scan(ctx, nil, nil, nil, func(key, value []byte) bool {
		seen = append(seen, string(key))
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Fatalf("expected ascending [a,b,c], got %v", seen)
	}
}

func TestTransactionBufferedWritesAreVisibleBeforeCommit(t *testing.T) {
	ctx := context.Background()
	b := openTestBridge(t)
	h, _ := b.CollectionOpen(ctx, "docs")

	tx, err := b.TxnBegin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Set(ctx, tx, []byte("k"), []byte("uncommitted")); err != nil {
		t.Fatal(err)
	}

	v, ok, err := h.Get(ctx, tx, []byte("k"))
	if err != nil || !ok || string(v) != "uncommitted" {
		t.Fatalf("expected write to be visible within its own transaction, got %q ok=%v err=%v", v, ok, err)
	}

	_, ok, _ = h.Get(ctx, nil, []byte("k"))
	if ok {
		t.Fatal("expected uncommitted write to be invisible outside the transaction")
	}

	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	v, ok, err = h.Get(ctx, nil, []byte("k"))
	if err != nil || !ok || string(v) != "uncommitted" {
		t.Fatalf("expected committed write to be visible, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestTransactionRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	b := openTestBridge(t)
	h, _ := b.CollectionOpen(ctx, "docs")

	tx, err := b.TxnBegin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	h.Set(ctx, tx, []byte("k"), []byte("v"))
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	_, ok, err := h.Get(ctx, nil, []byte("k"))
	if err != nil || ok {
		t.Fatalf("expected rolled-back write to never land, ok=%v err=%v", ok, err)
	}
}

func TestCollectionDropClearsOnlyThatCollection(t *testing.T) {
	ctx := context.Background()
	b := openTestBridge(t)
	h1, _ := b.CollectionOpen(ctx, "a")
	h2, _ := b.CollectionOpen(ctx, "b")

	h1.Set(ctx, nil, []byte("k"), []byte("v"))
	h2.Set(ctx, nil, []byte("k"), []byte("v"))

	if err := b.CollectionDrop(ctx, "a", substrate.DropCollection); err != nil {
		t.Fatal(err)
	}

	_, ok, _ := h1.Get(ctx, nil, []byte("k"))
	if ok {
		t.Fatal("expected collection a to be cleared")
	}
	_, ok, _ = h2.Get(ctx, nil, []byte("k"))
	if !ok {
		t.Fatal("expected collection b to be untouched")
	}
}
