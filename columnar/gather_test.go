package columnar

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/substrate"
	"github.com/krotik/multikv/substrate/memkv"
)

func bit(b []byte, i int) int {
	return int((b[i/8] >> (i % 8)) & 1)
}

func TestScenarioEGather(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	put := func(key int64, json string) {
		doc, err := doccodec.DecodeJSON([]byte(json))
		if err != nil {
			t.Fatal(err)
		}
		encoded, err := doccodec.EncodeBinaryA(doc)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.Set(ctx, nil, substrate.EncodeKey(key), encoded); err != nil {
			t.Fatal(err)
		}
	}
	put(1, `{"x":"7"}`)
	put(2, `{"x":true}`)

	cols, err := Gather(ctx, h, nil, []int64{1, 2}, []Request{{Field: "/x", Type: TypeI32}})
	if err != nil {
		t.Fatal(err)
	}
	col := cols[0]

	if bit(col.Validity, 0) != 1 || bit(col.Validity, 1) != 1 {
		t.Fatalf("expected both rows valid, validity=%v", col.Validity)
	}
	if bit(col.Converted, 0) != 1 || bit(col.Converted, 1) != 1 {
		t.Fatalf("expected both rows converted, converted=%v", col.Converted)
	}
	if bit(col.Collision, 0) != 0 || bit(col.Collision, 1) != 0 {
		t.Fatalf("expected no collisions, collision=%v", col.Collision)
	}

	v0 := int32(binary.LittleEndian.Uint32(col.Data[0:4]))
	v1 := int32(binary.LittleEndian.Uint32(col.Data[4:8]))
	if v0 != 7 || v1 != 1 {
		t.Fatalf("expected scalars [7,1], got [%d,%d]", v0, v1)
	}
}

func TestFloatGatheredAsIntegerCollidesWhenUnrepresentable(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	put := func(key int64, json string) {
		doc, err := doccodec.DecodeJSON([]byte(json))
		if err != nil {
			t.Fatal(err)
		}
		encoded, err := doccodec.EncodeBinaryA(doc)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.Set(ctx, nil, substrate.EncodeKey(key), encoded); err != nil {
			t.Fatal(err)
		}
	}
	put(1, `{"x":1e30}`)
	put(2, `{"x":1.5}`)
	put(3, `{"x":7.0}`)

	cols, err := Gather(ctx, h, nil, []int64{1, 2, 3}, []Request{{Field: "/x", Type: TypeI32}})
	if err != nil {
		t.Fatal(err)
	}
	col := cols[0]

	if bit(col.Collision, 0) != 1 {
		t.Fatalf("expected an out-of-range float to collide, collision=%v", col.Collision)
	}
	if bit(col.Collision, 1) != 1 {
		t.Fatalf("expected a non-integral float to collide when gathered as i32, collision=%v", col.Collision)
	}
	if bit(col.Validity, 0) == 1 || bit(col.Validity, 1) == 1 {
		t.Fatal("a colliding row must never also be marked valid")
	}
	if bit(col.Validity, 2) != 1 || bit(col.Collision, 2) != 0 {
		t.Fatalf("expected an integral in-range float to convert cleanly, validity=%v collision=%v", col.Validity, col.Collision)
	}
	v2 := int32(binary.LittleEndian.Uint32(col.Data[2*4 : 2*4+4]))
	if v2 != 7 {
		t.Fatalf("expected scalar 7, got %d", v2)
	}
}

func TestValidityAndCollisionNeverBothSet(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "docs")

	doc, _ := doccodec.DecodeJSON([]byte(`{"x":{"nested":true}}`))
	encoded, _ := doccodec.EncodeBinaryA(doc)
	h.Set(ctx, nil, substrate.EncodeKey(1), encoded)

	cols, err := Gather(ctx, h, nil, []int64{1}, []Request{{Field: "/x", Type: TypeI32}})
	if err != nil {
		t.Fatal(err)
	}
	col := cols[0]
	if bit(col.Validity, 0) == 1 && bit(col.Collision, 0) == 1 {
		t.Fatal("validity and collision must never both be set for the same row")
	}
	if bit(col.Collision, 0) != 1 {
		t.Fatal("expected an object field requested as a scalar to collide")
	}
}
