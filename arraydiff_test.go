package delta

import (
	"reflect"
	"testing"
)

// replayPlan applies a planned edit sequence to a copy of old, the way the
// executor would, so plans can be checked end to end.
func replayPlan(old []any, ops []arrayOp) []any {
	out := append([]any(nil), old...)

	for _, op := range ops {
		switch op.kind {
		case arrayOpRemove:
			n := op.count
			if n == 0 {
				n = 1
			}
			out = spliceOut(out, op.idx, n)
		case arrayOpMove:
			v := out[op.from]
			out = spliceOut(out, op.from, 1)
			out = spliceIn(out, op.idx, v)
		case arrayOpAdd:
			out = spliceIn(out, op.idx, op.values...)
		}
	}

	return out
}

func TestGenerateArrayOperations_Plans(t *testing.T) {
	tests := []struct {
		name     string
		old, new []any
		want     []arrayOp
	}{
		{
			"Identical",
			[]any{"a", "b"},
			[]any{"a", "b"},
			nil,
		},
		{
			"RemovesBackToFront",
			[]any{"a", "b", "c"},
			[]any{"a"},
			[]arrayOp{
				{kind: arrayOpRemove, idx: 2, count: 1, values: []any{"c"}},
				{kind: arrayOpRemove, idx: 1, count: 1, values: []any{"b"}},
			},
		},
		{
			"AddsFrontToBack",
			[]any{"a"},
			[]any{"a", "b", "c"},
			[]arrayOp{
				{kind: arrayOpAdd, idx: 1, values: []any{"b"}},
				{kind: arrayOpAdd, idx: 2, values: []any{"c"}},
			},
		},
		{
			"SingleReplace",
			[]any{"a"},
			[]any{"b"},
			[]arrayOp{
				{kind: arrayOpRemove, idx: 0, count: 1, values: []any{"a"}},
				{kind: arrayOpAdd, idx: 0, values: []any{"b"}},
			},
		},
		{
			"HalfRotation",
			[]any{"A", "B", "C", "D"},
			[]any{"D", "C", "A", "B"},
			[]arrayOp{
				{kind: arrayOpMove, from: 3, idx: 0},
				{kind: arrayOpMove, from: 3, idx: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateArrayOperations(nil, tt.old, tt.new)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGenerateArrayOperations_Replay(t *testing.T) {
	tests := []struct {
		name     string
		old, new []any
	}{
		{"Empty", nil, nil},
		{"FromEmpty", nil, []any{"a", "b"}},
		{"ToEmpty", []any{"a", "b"}, nil},
		{
			"EndSwap",
			[]any{float64(1), float64(2), float64(3), float64(4)},
			[]any{float64(4), float64(2), float64(3), float64(1)},
		},
		{
			"Reversal",
			[]any{"a", "b", "c", "d", "e"},
			[]any{"e", "d", "c", "b", "a"},
		},
		{
			"MixedEverything",
			[]any{"keep", "drop", "shift", "x"},
			[]any{"new", "shift", "keep", "tail"},
		},
		{
			"Duplicates",
			[]any{"x", "x", "y", "x"},
			[]any{"y", "x", "x"},
		},
		{
			"InsertRun",
			[]any{float64(1), float64(5)},
			[]any{float64(1), float64(2), float64(3), float64(4), float64(5)},
		},
		{
			"ContainersByValue",
			[]any{map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}},
			[]any{map[string]any{"id": float64(2)}, map[string]any{"id": float64(1)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := generateArrayOperations(nil, tt.old, tt.new)
			got := replayPlan(tt.old, ops)
			if !Equal(got, append([]any{}, tt.new...)) {
				t.Errorf("Replay gave %v, expected %v (plan %+v)", got, tt.new, ops)
			}

			// The batched plan must replay to the same result.
			batched := batchArrayOps(generateArrayOperations(nil, tt.old, tt.new), 0)
			got = replayPlan(tt.old, batched)
			if !Equal(got, append([]any{}, tt.new...)) {
				t.Errorf("Batched replay gave %v, expected %v (plan %+v)", got, tt.new, batched)
			}
		})
	}
}

func TestBatchArrayOps(t *testing.T) {
	t.Run("MergesRemoveRun", func(t *testing.T) {
		in := []arrayOp{
			{kind: arrayOpRemove, idx: 5, count: 1, values: []any{"f"}},
			{kind: arrayOpRemove, idx: 4, count: 1, values: []any{"e"}},
			{kind: arrayOpRemove, idx: 3, count: 1, values: []any{"d"}},
		}
		got := batchArrayOps(in, 0)
		want := []arrayOp{
			{kind: arrayOpRemove, idx: 3, count: 3, values: []any{"d", "e", "f"}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("RemoveRunCapped", func(t *testing.T) {
		in := []arrayOp{
			{kind: arrayOpRemove, idx: 3, count: 1, values: []any{"d"}},
			{kind: arrayOpRemove, idx: 2, count: 1, values: []any{"c"}},
			{kind: arrayOpRemove, idx: 1, count: 1, values: []any{"b"}},
			{kind: arrayOpRemove, idx: 0, count: 1, values: []any{"a"}},
		}
		got := batchArrayOps(in, 2)
		if len(got) != 2 || got[0].count != 2 || got[1].count != 2 {
			t.Errorf("Expected two runs of two, got %+v", got)
		}
	})

	t.Run("MergesAddRun", func(t *testing.T) {
		in := []arrayOp{
			{kind: arrayOpAdd, idx: 2, values: []any{"x"}},
			{kind: arrayOpAdd, idx: 3, values: []any{"y"}},
			{kind: arrayOpAdd, idx: 4, values: []any{"z"}},
		}
		got := batchArrayOps(in, 0)
		want := []arrayOp{
			{kind: arrayOpAdd, idx: 2, values: []any{"x", "y", "z"}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("GapBreaksRun", func(t *testing.T) {
		in := []arrayOp{
			{kind: arrayOpAdd, idx: 2, values: []any{"x"}},
			{kind: arrayOpAdd, idx: 5, values: []any{"y"}},
		}
		got := batchArrayOps(in, 0)
		if len(got) != 2 {
			t.Errorf("Non-contiguous adds merged: %+v", got)
		}
	})

	t.Run("RemoveAddBecomesMove", func(t *testing.T) {
		in := []arrayOp{
			{kind: arrayOpRemove, idx: 1, count: 1, values: []any{"v"}},
			{kind: arrayOpAdd, idx: 4, values: []any{"v"}},
		}
		got := batchArrayOps(in, 0)
		want := []arrayOp{
			{kind: arrayOpMove, from: 1, idx: 4},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("UnequalRemoveAddStays", func(t *testing.T) {
		in := []arrayOp{
			{kind: arrayOpRemove, idx: 1, count: 1, values: []any{"a"}},
			{kind: arrayOpAdd, idx: 4, values: []any{"b"}},
		}
		got := batchArrayOps(in, 0)
		if len(got) != 2 {
			t.Errorf("Unequal pair rewritten: %+v", got)
		}
	})
}

func TestSerializeArrayOps(t *testing.T) {
	prefix, _ := ParsePointer("/list")

	t.Run("RemoveRun", func(t *testing.T) {
		ops := []arrayOp{{kind: arrayOpRemove, idx: 2, count: 3, values: []any{"a", "b", "c"}}}
		got := serializeArrayOps(prefix, ops, true)
		want := Patch{removeRunOp("/list/2", 3)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("Move", func(t *testing.T) {
		ops := []arrayOp{{kind: arrayOpMove, from: 0, idx: 3}}
		got := serializeArrayOps(prefix, ops, false)
		want := Patch{moveOp("/list/0", "/list/3")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("BatchedAddRun", func(t *testing.T) {
		ops := []arrayOp{{kind: arrayOpAdd, idx: 1, values: []any{"x", "y"}}}
		got := serializeArrayOps(prefix, ops, true)
		want := Patch{addOp("/list/1", []any{"x", "y"})}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("SingleArrayElementWrapped", func(t *testing.T) {
		// One inserted element that is itself an array must still be
		// encoded as a run, or the splice convention would flatten it.
		inner := []any{float64(1), float64(2)}
		ops := []arrayOp{{kind: arrayOpAdd, idx: 0, values: []any{inner}}}

		got := serializeArrayOps(prefix, ops, true)
		want := Patch{addOp("/list/0", []any{inner})}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("UnbatchedAddIsLiteral", func(t *testing.T) {
		inner := []any{float64(1)}
		ops := []arrayOp{{kind: arrayOpAdd, idx: 0, values: []any{inner}}}

		got := serializeArrayOps(prefix, ops, false)
		want := Patch{addOp("/list/0", inner)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})
}
