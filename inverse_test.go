package delta

import (
	"errors"
	"testing"
)

func inverseJSON(t *testing.T, doc, patch string, opts *Options) string {
	t.Helper()
	p, err := DecodePatch([]byte(patch))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	inv, err := CreateInversePatch(mustJSON(t, doc), p, opts)
	if err != nil {
		t.Fatalf("CreateInversePatch: %v", err)
	}
	return patchJSON(t, inv)
}

func TestCreateInversePatch_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		patch string
		want  string
	}{
		{
			"AddBecomesRemove",
			`{}`,
			`[{"op":"add","path":"/a","value":1}]`,
			`[{"op":"remove","path":"/a"}]`,
		},
		{
			"AddOverwriteBecomesReplace",
			`{"a":1}`,
			`[{"op":"add","path":"/a","value":2}]`,
			`[{"op":"replace","path":"/a","value":1}]`,
		},
		{
			"AppendBecomesIndexedRemove",
			`{"l":[1]}`,
			`[{"op":"add","path":"/l/-","value":2}]`,
			`[{"op":"remove","path":"/l/1"}]`,
		},
		{
			"RemoveBecomesAdd",
			`{"a":{"k":"v"}}`,
			`[{"op":"remove","path":"/a"}]`,
			`[{"op":"add","path":"/a","value":{"k":"v"}}]`,
		},
		{
			"ReplaceRestoresPrior",
			`{"a":1}`,
			`[{"op":"replace","path":"/a","value":2}]`,
			`[{"op":"replace","path":"/a","value":1}]`,
		},
		{
			"MoveSwapsEndpoints",
			`{"a":1}`,
			`[{"op":"move","from":"/a","path":"/b"}]`,
			`[{"op":"move","path":"/a","from":"/b"}]`,
		},
		{
			"MoveOntoItselfNeedsNoInverse",
			`{"a":1}`,
			`[{"op":"move","from":"/a","path":"/a"}]`,
			`[]`,
		},
		{
			"MoveOverwriteRestoresMember",
			`{"a":1,"b":2}`,
			`[{"op":"move","from":"/a","path":"/b"}]`,
			`[{"op":"move","path":"/a","from":"/b"},{"op":"add","path":"/b","value":2}]`,
		},
		{
			"MoveOntoEnclosingMemberBecomesReplace",
			`{"b":{"c":1,"d":2}}`,
			`[{"op":"move","from":"/b/c","path":"/b"}]`,
			`[{"op":"replace","path":"/b","value":{"c":1,"d":2}}]`,
		},
		{
			"CopyLeavesNoInverse",
			`{"a":1}`,
			`[{"op":"copy","from":"/a","path":"/b"}]`,
			`[]`,
		},
		{
			"TestLeavesNoInverse",
			`{"a":1}`,
			`[{"op":"test","path":"/a","value":1}]`,
			`[]`,
		},
		{
			"RootAddRestoresPriorRoot",
			`{"a":1}`,
			`[{"op":"add","path":"","value":{"b":2}}]`,
			`[{"op":"replace","path":"","value":{"a":1}}]`,
		},
		{
			"RootReplaceRestoresPriorRoot",
			`[1,2]`,
			`[{"op":"replace","path":"","value":null}]`,
			`[{"op":"replace","path":"","value":[1,2]}]`,
		},
		{
			"RootMoveRestoresPriorRoot",
			`{"a":{"x":1},"b":2}`,
			`[{"op":"move","from":"/a","path":""}]`,
			`[{"op":"replace","path":"","value":{"a":{"x":1},"b":2}}]`,
		},
		{
			"StepsComposeInReverse",
			`{}`,
			`[{"op":"add","path":"/a","value":1},{"op":"replace","path":"/a","value":2}]`,
			`[{"op":"replace","path":"/a","value":1},{"op":"remove","path":"/a"}]`,
		},
		{
			"InterleavedArrayEdits",
			`{"l":[1,2,3]}`,
			`[{"op":"remove","path":"/l/0"},{"op":"add","path":"/l/2","value":9}]`,
			`[{"op":"remove","path":"/l/2"},{"op":"add","path":"/l/0","value":1}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inverseJSON(t, tt.doc, tt.patch, nil)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCreateInversePatch_Batched(t *testing.T) {
	batched := NewOptions(WithBatching(0))

	tests := []struct {
		name  string
		doc   string
		patch string
		want  string
	}{
		{
			"CountedRemoveRestoresRun",
			`{"l":[1,2,3,4]}`,
			`[{"op":"remove","path":"/l/1","count":2}]`,
			`[{"op":"add","path":"/l/1","value":[2,3]}]`,
		},
		{
			"BatchedAddBecomesCountedRemove",
			`{"l":[1,4]}`,
			`[{"op":"add","path":"/l/1","value":[2,3]}]`,
			`[{"op":"remove","path":"/l/1","count":2}]`,
		},
		{
			"EmptyRunAddNeedsNoInverse",
			`{"l":[1,2]}`,
			`[{"op":"add","path":"/l/1","value":[]}]`,
			`[]`,
		},
		{
			"ArrayValuedElementWrappedAsRun",
			`{"l":[[1,2]]}`,
			`[{"op":"remove","path":"/l/0"}]`,
			`[{"op":"add","path":"/l/0","value":[[1,2]]}]`,
		},
		{
			"RepeatedRemovesMergeIntoRun",
			`{"l":[1,2,3,4,5]}`,
			`[{"op":"remove","path":"/l/1"},{"op":"remove","path":"/l/1"},{"op":"remove","path":"/l/1"}]`,
			`[{"op":"add","path":"/l/1","value":[2,3,4]}]`,
		},
		{
			"DescendingRemovesMergeIntoRun",
			`{"l":[0,1,2,3,4]}`,
			`[{"op":"remove","path":"/l/3"},{"op":"remove","path":"/l/2"}]`,
			`[{"op":"add","path":"/l/2","value":[2,3]}]`,
		},
		{
			"RepeatedAddsMergeIntoCountedRemove",
			`{"l":["a","b"]}`,
			`[{"op":"add","path":"/l/1","value":"x"},{"op":"add","path":"/l/1","value":"y"}]`,
			`[{"op":"remove","path":"/l/1","count":2}]`,
		},
		{
			"NumericObjectKeysStayElementary",
			`{"m":{"0":"zero","1":"one"}}`,
			`[{"op":"remove","path":"/m/0"},{"op":"remove","path":"/m/1"}]`,
			`[{"op":"add","path":"/m/1","value":"one"},{"op":"add","path":"/m/0","value":"zero"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inverseJSON(t, tt.doc, tt.patch, batched)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCreateInversePatch_MoveAppend(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		patch string
		want  string
	}{
		{
			"AppendFromOutside",
			`{"l":[1,2],"x":9}`,
			`[{"op":"move","from":"/x","path":"/l/-"}]`,
			`[{"op":"move","path":"/x","from":"/l/2"}]`,
		},
		{
			"RotateWithinSameArray",
			`{"l":[1,2,3]}`,
			`[{"op":"move","from":"/l/0","path":"/l/-"}]`,
			`[{"op":"move","path":"/l/0","from":"/l/2"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inverseJSON(t, tt.doc, tt.patch, nil)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

// TestCreateInversePatch_Reverts applies a patch and then its inverse and
// expects the original document back, across operation mixes and option
// modes.
func TestCreateInversePatch_Reverts(t *testing.T) {
	docs := []struct {
		name  string
		doc   string
		patch string
	}{
		{
			"ObjectEdits",
			`{"a":1,"b":{"c":2},"keep":true}`,
			`[{"op":"replace","path":"/a","value":10},{"op":"remove","path":"/b/c"},{"op":"add","path":"/b/d","value":[1,2]}]`,
		},
		{
			"ArrayEdits",
			`{"l":[1,2,3,4,5]}`,
			`[{"op":"remove","path":"/l/1"},{"op":"remove","path":"/l/1"},{"op":"add","path":"/l/0","value":0},{"op":"replace","path":"/l/3","value":"x"}]`,
		},
		{
			"Moves",
			`{"l":["a","b","c"],"m":{"k":1}}`,
			`[{"op":"move","from":"/l/0","path":"/l/-"},{"op":"move","from":"/m/k","path":"/k"}]`,
		},
		{
			"MoveOverwrite",
			`{"a":1,"b":2,"m":{"k":"v"}}`,
			`[{"op":"move","from":"/a","path":"/b"},{"op":"move","from":"/b","path":"/m/k"}]`,
		},
		{
			"MoveToRoot",
			`{"a":{"x":1},"b":2}`,
			`[{"op":"move","from":"/a","path":""}]`,
		},
		{
			"EmptyValueAdd",
			`{"l":[1,2]}`,
			`[{"op":"add","path":"/l/1","value":[]}]`,
		},
		{
			"RootSwap",
			`{"a":1}`,
			`[{"op":"add","path":"","value":[1,2,3]},{"op":"add","path":"/-","value":4}]`,
		},
		{
			"CountedRuns",
			`{"l":[1,2,3,4,5,6]}`,
			`[{"op":"remove","path":"/l/1","count":3}]`,
		},
	}
	modes := []struct {
		name string
		opts *Options
	}{
		{"Default", nil},
		{"Batched", NewOptions(WithBatching(0))},
	}

	for _, mode := range modes {
		for _, tt := range docs {
			t.Run(mode.name+"/"+tt.name, func(t *testing.T) {
				orig := mustJSON(t, tt.doc)
				patch, err := DecodePatch([]byte(tt.patch))
				if err != nil {
					t.Fatalf("DecodePatch: %v", err)
				}

				res, inv, err := ApplyPatchWithInverse(Clone(orig), patch, mode.opts)
				if err != nil {
					t.Fatalf("ApplyPatchWithInverse: %v", err)
				}

				restored, err := ApplyPatch(res, inv, mode.opts)
				if err != nil {
					t.Fatalf("ApplyPatch(inverse): %v", err)
				}
				if !Equal(restored, orig) {
					t.Errorf("Inverse did not restore the document: got %v, want %v", restored, orig)
				}
			})
		}
	}
}

// TestCreateInversePatch_RevertsDiff pairs the differ with the inverse
// generator: the inverse of a derived patch restores the source document.
func TestCreateInversePatch_RevertsDiff(t *testing.T) {
	pairs := []struct {
		name     string
		old, new string
	}{
		{"Objects", `{"a":1,"b":2,"c":{"d":3}}`, `{"a":1,"b":9,"c":{"e":4},"f":5}`},
		{"Arrays", `{"l":[1,2,3,4,5,6]}`, `{"l":[6,2,3,9]}`},
		{"Rotation", `[1,2,3,4]`, `[4,1,2,3]`},
		{"Growth", `[]`, `[1,2,3,4,5]`},
	}
	modes := []struct {
		name string
		opts *Options
	}{
		{"Default", nil},
		{"Moves", NewOptions(WithMoveDetection())},
		{"Batched", NewOptions(WithBatching(0))},
		{"MovesBatched", NewOptions(WithMoveDetection(), WithBatching(0))},
	}

	for _, mode := range modes {
		for _, tt := range pairs {
			t.Run(mode.name+"/"+tt.name, func(t *testing.T) {
				oldDoc := mustJSON(t, tt.old)
				newDoc := mustJSON(t, tt.new)

				patch, err := CreatePatch(oldDoc, newDoc, mode.opts)
				if err != nil {
					t.Fatalf("CreatePatch: %v", err)
				}

				res, inv, err := ApplyPatchWithInverse(Clone(oldDoc), patch, mode.opts)
				if err != nil {
					t.Fatalf("ApplyPatchWithInverse: %v", err)
				}
				if !Equal(res, newDoc) {
					t.Fatalf("Patch did not produce the target: %v", res)
				}

				restored, err := ApplyPatch(res, inv, mode.opts)
				if err != nil {
					t.Fatalf("ApplyPatch(inverse): %v", err)
				}
				if !Equal(restored, oldDoc) {
					t.Errorf("Inverse did not restore the document: got %v, want %v", restored, oldDoc)
				}
			})
		}
	}
}

func TestCreateInversePatch_Validated(t *testing.T) {
	opts := NewOptions(WithInverseValidation())

	t.Run("WellFormedPasses", func(t *testing.T) {
		doc := mustJSON(t, `{"l":[1,2,3],"a":"x"}`)
		patch := Patch{
			moveOp("/l/0", "/l/-"),
			replaceOp("/a", "y"),
		}

		inv, err := CreateInversePatch(doc, patch, opts)
		if err != nil {
			t.Fatalf("CreateInversePatch: %v", err)
		}
		if len(inv) != 2 {
			t.Errorf("Expected 2 inverse operations, got %d", len(inv))
		}
	})

	t.Run("MoveOverwritePasses", func(t *testing.T) {
		doc := mustJSON(t, `{"a":1,"b":2}`)
		patch := Patch{moveOp("/a", "/b")}

		inv, err := CreateInversePatch(doc, patch, opts)
		if err != nil {
			t.Fatalf("CreateInversePatch: %v", err)
		}
		if len(inv) != 2 {
			t.Errorf("Expected 2 inverse operations, got %d", len(inv))
		}
	})

	t.Run("MoveToRootPasses", func(t *testing.T) {
		doc := mustJSON(t, `{"a":{"x":1},"b":2}`)
		patch := Patch{moveOp("/a", "")}

		inv, err := CreateInversePatch(doc, patch, opts)
		if err != nil {
			t.Fatalf("CreateInversePatch: %v", err)
		}
		if len(inv) != 1 {
			t.Errorf("Expected 1 inverse operation, got %d", len(inv))
		}
	})

	t.Run("CopySkipsVerification", func(t *testing.T) {
		doc := mustJSON(t, `{"a":1}`)
		patch := Patch{copyOp("/a", "/b")}

		inv, err := CreateInversePatch(doc, patch, opts)
		if err != nil {
			t.Fatalf("CreateInversePatch: %v", err)
		}
		if len(inv) != 0 {
			t.Errorf("Expected empty inverse for copy, got %v", inv)
		}
	})
}

func TestCreateInversePatch_Errors(t *testing.T) {
	t.Run("InvalidPatchRejected", func(t *testing.T) {
		patch := Patch{{Op: "bogus", Path: "/a"}}

		_, err := CreateInversePatch(map[string]any{}, patch, nil)
		if !errors.Is(err, ErrInvalidOp) {
			t.Errorf("Expected ErrInvalidOp, got %v", err)
		}
	})

	t.Run("ReplayFailureSurfaces", func(t *testing.T) {
		patch := Patch{removeOp("/missing")}

		_, err := CreateInversePatch(map[string]any{}, patch, nil)
		if !errors.Is(err, ErrPathNotFound) {
			t.Errorf("Expected ErrPathNotFound, got %v", err)
		}
	})

	t.Run("SourceDocumentUntouched", func(t *testing.T) {
		doc := map[string]any{"a": float64(1)}

		if _, err := CreateInversePatch(doc, Patch{removeOp("/a")}, nil); err != nil {
			t.Fatalf("CreateInversePatch: %v", err)
		}
		if _, ok := doc["a"]; !ok {
			t.Error("Inverse derivation mutated the source document")
		}
	})
}
