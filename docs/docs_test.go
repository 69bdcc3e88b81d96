package docs

import (
	"context"
	"testing"

	"github.com/krotik/multikv/arena"
	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/substrate/memkv"
)

func TestScenarioADocUpsertAndFieldRead(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, err := bridge.CollectionOpen(ctx, "docs")
	if err != nil {
		t.Fatal(err)
	}

	if err := Write(ctx, h, nil, []WriteRequest{{
		Key:     42,
		Format:  doccodec.FormatJSON,
		Content: []byte(`{"name":"Ann","age":30}`),
	}}); err != nil {
		t.Fatal(err)
	}

	tape := arena.NewTape(arena.New())
	if err := Read(ctx, h, nil, []int64{42}, []string{"/age"}, doccodec.FormatJSON, tape); err != nil {
		t.Fatal(err)
	}
	values := tape.Values()
	if string(values[0]) != "30\x00" {
		t.Fatalf("expected age=30 null-terminated, got %q", values[0])
	}

	tape2 := arena.NewTape(arena.New())
	if err := Read(ctx, h, nil, []int64{42}, []string{"/nonexistent"}, doccodec.FormatJSON, tape2); err != nil {
		t.Fatal(err)
	}
	if tape2.Values()[0] != nil {
		t.Fatalf("expected missing field to yield a nil value, got %q", tape2.Values()[0])
	}
}

func TestScenarioBMergePatch(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	if err := Write(ctx, h, nil, []WriteRequest{{
		Key:     1,
		Format:  doccodec.FormatJSON,
		Content: []byte(`{"a":{"b":1}}`),
	}}); err != nil {
		t.Fatal(err)
	}

	if err := Write(ctx, h, nil, []WriteRequest{{
		Key:     1,
		Format:  doccodec.FormatJSONMergePatch,
		Content: []byte(`{"a":{"c":2}}`),
	}}); err != nil {
		t.Fatal(err)
	}

	tape := arena.NewTape(arena.New())
	if err := Read(ctx, h, nil, []int64{1}, []string{""}, doccodec.FormatJSON, tape); err != nil {
		t.Fatal(err)
	}
	got := string(tape.Values()[0])
	want := `{"a":{"b":1,"c":2}}` + "\x00"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestScenarioFBatchedReadReorder(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	for _, k := range []int64{2, 5, 9} {
		if err := Write(ctx, h, nil, []WriteRequest{{
			Key:     k,
			Format:  doccodec.FormatJSON,
			Content: []byte(`{"v":1}`),
		}}); err != nil {
			t.Fatal(err)
		}
	}

	keys := []int64{5, 2, 5, 9, 2}
	fields := []string{"", "", "", "", ""}

	tape := arena.NewTape(arena.New())
	if err := Read(ctx, h, nil, keys, fields, doccodec.FormatJSON, tape); err != nil {
		t.Fatal(err)
	}
	if tape.Len() != 5 {
		t.Fatalf("expected 5 results matching input order, got %d", tape.Len())
	}
	for _, v := range tape.Values() {
		if v == nil {
			t.Fatal("expected every key to resolve to a document")
		}
	}
}

func TestFieldDeleteViaWrite(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	Write(ctx, h, nil, []WriteRequest{{
		Key:     1,
		Format:  doccodec.FormatJSON,
		Content: []byte(`{"a":1,"b":2}`),
	}})

	if err := Write(ctx, h, nil, []WriteRequest{{
		Key:    1,
		Field:  "/a",
		Format: doccodec.FormatJSON,
	}}); err != nil {
		t.Fatal(err)
	}

	tape := arena.NewTape(arena.New())
	Read(ctx, h, nil, []int64{1}, []string{""}, doccodec.FormatJSON, tape)
	if string(tape.Values()[0]) != `{"b":2}`+"\x00" {
		t.Fatalf("expected field a removed, got %q", tape.Values()[0])
	}
}

func TestGistUnionOfFieldPaths(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	Write(ctx, h, nil, []WriteRequest{{Key: 1, Format: doccodec.FormatJSON, Content: []byte(`{"a":1}`)}})
	Write(ctx, h, nil, []WriteRequest{{Key: 2, Format: doccodec.FormatJSON, Content: []byte(`{"b":2}`)}})

	tape := arena.NewTape(arena.New())
	if err := Gist(ctx, h, nil, []int64{1, 2}, tape); err != nil {
		t.Fatal(err)
	}

	paths := map[string]bool{}
	for _, v := range tape.Values() {
		paths[string(v[:len(v)-1])] = true
	}
	if !paths["a"] || !paths["b"] {
		t.Fatalf("expected gist to include both a and b, got %v", paths)
	}
}
