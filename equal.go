package delta

import (
	"encoding/json"
	"reflect"
)

// Equal performs a deep equality check between two JSON-like values.
// Numbers compare by numeric value regardless of their Go type, so an int 5
// equals a float64 5. Cyclic values are supported: a pair of containers
// already under comparison is treated as equal at the point of revisit.
func Equal(a, b any) bool {
	var e equaler
	return e.equal(a, b)
}

// containerID identifies a map or slice by its backing storage. Two slices
// sharing storage but with different lengths count as distinct.
type containerID struct {
	ptr    uintptr
	length int
}

type visitPair struct {
	a, b containerID
}

type equaler struct {
	visited map[visitPair]bool
}

func (e *equaler) seen(a, b containerID) bool {
	pair := visitPair{a: a, b: b}
	if e.visited[pair] {
		return true
	}

	if e.visited == nil {
		e.visited = make(map[visitPair]bool)
	}

	e.visited[pair] = true

	return false
}

func (e *equaler) equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if na, ok := numericValue(a); ok {
		nb, ok := numericValue(b)
		return ok && na == nb
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		if e.seen(mapID(av), mapID(bv)) {
			return true
		}

		for k, va := range av {
			vb, ok := bv[k]
			if !ok || !e.equal(va, vb) {
				return false
			}
		}

		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		if len(av) == 0 {
			return true
		}

		if e.seen(sliceID(av), sliceID(bv)) {
			return true
		}

		for i := range av {
			if !e.equal(av[i], bv[i]) {
				return false
			}
		}

		return true
	default:
		// Values outside the JSON model, compared structurally.
		return reflect.DeepEqual(a, b)
	}
}

func mapID(m map[string]any) containerID {
	return containerID{ptr: reflect.ValueOf(m).Pointer(), length: len(m)}
}

func sliceID(s []any) containerID {
	return containerID{ptr: reflect.ValueOf(s).Pointer(), length: len(s)}
}

// numericValue normalizes any Go numeric type, including json.Number, to
// float64 for comparison.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}
