package graph

import (
	"context"
	"reflect"
	"testing"

	"github.com/krotik/multikv/arena"
	"github.com/krotik/multikv/substrate/memkv"
)

func TestScenarioCGraphTriangle(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "graph")

	edges := []Edge{
		{Source: 1, Target: 2, ID: 100},
		{Source: 2, Target: 3, ID: 101},
		{Source: 1, Target: 3, ID: 102},
	}
	if err := UpsertEdges(ctx, h, nil, edges); err != nil {
		t.Fatal(err)
	}

	succ, err := Successors(ctx, h, nil, 1)
	if err != nil || !reflect.DeepEqual(succ, []int64{2, 3}) {
		t.Fatalf("expected successors(1)=[2,3], got %v err=%v", succ, err)
	}

	pred, err := Predecessors(ctx, h, nil, 3)
	if err != nil || !reflect.DeepEqual(pred, []int64{1, 2}) {
		t.Fatalf("expected predecessors(3)=[1,2], got %v err=%v", pred, err)
	}

	nbrs, err := Neighbors(ctx, h, nil, 2)
	if err != nil || !reflect.DeepEqual(nbrs, []int64{1, 3}) {
		t.Fatalf("expected neighbors(2)=[1,3], got %v err=%v", nbrs, err)
	}

	degrees := arena.NewTape(arena.New())
	nbTape := arena.NewTape(arena.New())
	if err := FindEdges(ctx, h, nil, []int64{2}, RoleAny, false, degrees, nbTape); err != nil {
		t.Fatal(err)
	}
	if len(degrees.Values()[0]) != 4 {
		t.Fatalf("expected a 4-byte degree encoding, got %v", degrees.Values()[0])
	}
}

func TestScenarioDRemoveVertex(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "graph")

	UpsertEdges(ctx, h, nil, []Edge{
		{Source: 1, Target: 2, ID: 100},
		{Source: 2, Target: 3, ID: 101},
		{Source: 1, Target: 3, ID: 102},
	})

	if err := RemoveVertices(ctx, h, nil, []int64{2}, RoleAny); err != nil {
		t.Fatal(err)
	}

	contained, err := Contains(ctx, h, nil, []int64{2})
	if err != nil || contained[0] {
		t.Fatalf("expected vertex 2 to be gone, got %v err=%v", contained, err)
	}

	succ, _ := Successors(ctx, h, nil, 1)
	if !reflect.DeepEqual(succ, []int64{3}) {
		t.Fatalf("expected successors(1)=[3] after removing 2, got %v", succ)
	}

	pred, _ := Predecessors(ctx, h, nil, 3)
	if !reflect.DeepEqual(pred, []int64{1}) {
		t.Fatalf("expected predecessors(3)=[1] after removing 2, got %v", pred)
	}
}

func TestRemoveEdgesIsIdempotentInverseOfUpsert(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "graph")

	edges := []Edge{
		{Source: 1, Target: 2, ID: 100},
		{Source: 2, Target: 3, ID: 101},
	}

	if err := UpsertEdges(ctx, h, nil, edges); err != nil {
		t.Fatal(err)
	}
	if err := RemoveEdges(ctx, h, nil, edges); err != nil {
		t.Fatal(err)
	}

	for _, v := range []int64{1, 2, 3} {
		ok, err := Contains(ctx, h, nil, []int64{v})
		if err != nil {
			t.Fatal(err)
		}
		if ok[0] {
			entries, _, err := loadRecord(ctx, h, nil, v)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Fatalf("expected vertex %d to have an empty adjacency record after inverse removal, got %v", v, entries)
			}
		}
	}
}

func TestUpsertEdgeIsNoOpOnDuplicate(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "graph")

	edge := Edge{Source: 1, Target: 2, ID: 100}
	UpsertEdges(ctx, h, nil, []Edge{edge})
	UpsertEdges(ctx, h, nil, []Edge{edge})

	entries, _, err := loadRecord(ctx, h, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected duplicate upsert to be a no-op, got %v", entries)
	}
}

func TestSelfLoopEdgeKeepsBothRoleEntries(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "graph")

	if err := UpsertEdge(ctx, h, nil, Edge{Source: 1, Target: 1, ID: 100}); err != nil {
		t.Fatal(err)
	}

	degrees := arena.NewTape(arena.New())
	nbrs := arena.NewTape(arena.New())
	if err := FindEdges(ctx, h, nil, []int64{1}, RoleSource, false, degrees, nbrs); err != nil {
		t.Fatal(err)
	}
	if len(degrees.Values()[0]) != 4 || degrees.Values()[0][0] != 1 {
		t.Fatalf("expected source-of degree 1 for self-loop, got %v", degrees.Values()[0])
	}

	succ, err := Successors(ctx, h, nil, 1)
	if err != nil || !reflect.DeepEqual(succ, []int64{1}) {
		t.Fatalf("expected successors(1)=[1] for self-loop, got %v err=%v", succ, err)
	}
	pred, err := Predecessors(ctx, h, nil, 1)
	if err != nil || !reflect.DeepEqual(pred, []int64{1}) {
		t.Fatalf("expected predecessors(1)=[1] for self-loop, got %v err=%v", pred, err)
	}

	if err := RemoveEdge(ctx, h, nil, Edge{Source: 1, Target: 1, ID: 100}); err != nil {
		t.Fatal(err)
	}
	entries, _, err := loadRecord(ctx, h, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected self-loop removal to clear both role entries, got %v", entries)
	}
}

func TestAdjacencyRecordStaysSortedAndDeduplicated(t *testing.T) {
	ctx := context.Background()
	bridge := memkv.New()
	h, _ := bridge.CollectionOpen(ctx, "graph")

	UpsertEdges(ctx, h, nil, []Edge{
		{Source: 1, Target: 5, ID: 1},
		{Source: 1, Target: 2, ID: 1},
		{Source: 1, Target: 9, ID: 1},
	})

	entries, _, err := loadRecord(ctx, h, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(entries); i++ {
		if !less(entries[i-1], entries[i]) {
			t.Fatalf("expected strictly increasing adjacency entries, got %v", entries)
		}
	}
}
