package delta

import "sort"

// DetectCycle scans a JSON-like value for cyclic references and reports the
// RFC 6901 pointer at which the first cycle closes, walking object keys in
// sorted order so the answer is deterministic. Containers that are merely
// shared between two branches do not count as cycles; only a container that
// contains itself, directly or transitively, does.
func DetectCycle(v any) (string, bool) {
	var w cycleWalker
	return w.walk(v, nil)
}

// cycleWalker tracks the containers on the current ancestor chain.
type cycleWalker struct {
	stack map[containerID]bool
}

func (w *cycleWalker) enter(id containerID) bool {
	if w.stack[id] {
		return false
	}

	if w.stack == nil {
		w.stack = make(map[containerID]bool)
	}

	w.stack[id] = true

	return true
}

func (w *cycleWalker) walk(v any, path Pointer) (string, bool) {
	switch t := v.(type) {
	case map[string]any:
		id := mapID(t)
		if !w.enter(id) {
			return path.String(), true
		}

		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if at, found := w.walk(t[k], path.Child(k)); found {
				return at, true
			}
		}

		delete(w.stack, id)

		return "", false
	case []any:
		if len(t) == 0 {
			return "", false
		}

		id := sliceID(t)
		if !w.enter(id) {
			return path.String(), true
		}

		for i, child := range t {
			if at, found := w.walk(child, path.Child(indexToken(i))); found {
				return at, true
			}
		}

		delete(w.stack, id)

		return "", false
	default:
		return "", false
	}
}

// ValidateMaxDepth checks that v nests no deeper than maxDepth container
// levels, returning ErrMaxDepth naming the first offending pointer
// otherwise. Scalars sit at depth zero; each enclosing container adds one.
// A non-positive maxDepth means DefaultMaxDepth.
func ValidateMaxDepth(v any, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return checkDepth(v, nil, maxDepth)
}

func checkDepth(v any, path Pointer, budget int) error {
	switch t := v.(type) {
	case map[string]any:
		if budget == 0 {
			return newError(ErrMaxDepth, path.String(),
				"nesting exceeds limit")
		}

		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if err := checkDepth(t[k], path.Child(k), budget-1); err != nil {
				return err
			}
		}
	case []any:
		if budget == 0 {
			return newError(ErrMaxDepth, path.String(),
				"nesting exceeds limit")
		}

		for i, child := range t {
			if err := checkDepth(child, path.Child(indexToken(i)), budget-1); err != nil {
				return err
			}
		}
	}

	return nil
}

// checkCircular is the executor-facing cycle check: it prefixes the
// reported cycle location with the pointer the value sits at.
func checkCircular(v any, at string) error {
	rel, found := DetectCycle(v)
	if !found {
		return nil
	}

	return newError(ErrCircular, at+rel, "value contains a cycle")
}
