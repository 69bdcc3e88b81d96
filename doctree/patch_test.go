package doctree

import "testing"

func TestApplyPatchAddAndRemove(t *testing.T) {
	doc := buildAnn()

	result, err := ApplyPatch(doc, []PatchOp{
		{Op: "add", Path: "/email", Value: String("ann@example.com")},
		{Op: "remove", Path: "/age"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := result.Object.Get("age"); ok {
		t.Fatal("expected age to be removed")
	}
	email, ok := result.Object.Get("email")
	if !ok || email.Str != "ann@example.com" {
		t.Fatalf("expected email field to be added, got %v ok=%v", email, ok)
	}

	// original must be untouched - no partial writes visible on the caller's copy.
	if _, ok := doc.Object.Get("email"); ok {
		t.Fatal("original document must not be mutated by ApplyPatch")
	}
}

func TestApplyPatchTestFailureLeavesInputUntouched(t *testing.T) {
	doc := buildAnn()

	_, err := ApplyPatch(doc, []PatchOp{
		{Op: "test", Path: "/age", Value: Int(99)},
		{Op: "remove", Path: "/age"},
	})
	if err == nil {
		t.Fatal("expected a failed test operation to error out")
	}

	if _, ok := doc.Object.Get("age"); !ok {
		t.Fatal("failed patch must not have removed age from the original")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Int(1), Int(1)) {
		t.Fatal("expected equal ints to compare equal")
	}
	if Equal(Int(1), Uint(1)) {
		t.Fatal("expected mismatched kinds to compare unequal")
	}
}
