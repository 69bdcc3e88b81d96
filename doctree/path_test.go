package doctree

import "testing"

func buildAnn() Node {
	obj := NewEmptyObject()
	obj.Set("name", String("Ann"))
	obj.Set("age", Int(30))
	return NewObject(obj)
}

func TestLookupSimpleField(t *testing.T) {
	doc := buildAnn()

	p, err := ParsePath("/age")
	if err != nil {
		t.Fatal(err)
	}

	v, ok := Lookup(doc, p)
	if !ok || v.Int != 30 {
		t.Fatalf("expected age=30, got %v ok=%v", v, ok)
	}
}

func TestLookupMissingField(t *testing.T) {
	doc := buildAnn()

	p, err := ParsePath("/nonexistent")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := Lookup(doc, p); ok {
		t.Fatal("expected missing field lookup to report not-found")
	}
}

func TestPlaceOnNonObjectRootWraps(t *testing.T) {
	root := String("not an object")
	p, _ := ParsePath("/a")

	out := Place(root, p, Int(1))
	if out.Kind != KindObject {
		t.Fatalf("expected root to be replaced with an object, got %v", out.Kind)
	}
	v, ok := out.Object.Get("a")
	if !ok || v.Int != 1 {
		t.Fatalf("expected field a=1, got %v ok=%v", v, ok)
	}
}

func TestPlaceCreatesIntermediateObjects(t *testing.T) {
	root := Null()
	p, _ := ParsePath("/a/b/c")

	out := Place(root, p, Int(5))

	a, _ := out.Object.Get("a")
	b, _ := a.Object.Get("b")
	c, _ := b.Object.Get("c")

	if c.Int != 5 {
		t.Fatalf("expected nested c=5, got %v", c)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	p, err := ParsePath("/a~1b/c~0d")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.segments) != 2 || p.segments[0] != "a/b" || p.segments[1] != "c~d" {
		t.Fatalf("unexpected unescaped segments: %#v", p.segments)
	}
}

func TestMergePatchScenario(t *testing.T) {
	// Scenario B: {"a":{"b":1}} merge-patched with {"a":{"c":2}}
	a := NewEmptyObject()
	a.Set("b", Int(1))
	doc := NewObject(func() *Object {
		root := NewEmptyObject()
		root.Set("a", NewObject(a))
		return root
	}())

	patch := NewEmptyObject()
	patchA := NewEmptyObject()
	patchA.Set("c", Int(2))
	patch.Set("a", NewObject(patchA))

	result := MergePatch(doc, NewObject(patch))

	ra, ok := result.Object.Get("a")
	if !ok {
		t.Fatal("expected field a to survive merge")
	}
	b, ok := ra.Object.Get("b")
	if !ok || b.Int != 1 {
		t.Fatalf("expected a.b=1 preserved, got %v ok=%v", b, ok)
	}
	c, ok := ra.Object.Get("c")
	if !ok || c.Int != 2 {
		t.Fatalf("expected a.c=2 merged in, got %v ok=%v", c, ok)
	}
}
