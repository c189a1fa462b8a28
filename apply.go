package delta

import "github.com/MysMon/delta-sculptor/debug"

// ApplyPatch applies patch to doc, mutating containers in place where it
// can, and returns the resulting document root. The returned root can
// differ from doc: replacing the root, adding to it, or splicing the
// outermost array all produce a new root value. Operations execute
// strictly in order and stop at the first failure, leaving earlier
// mutations in place; use ApplyPatchWithRollback or ApplyPatchImmutable
// when that is not acceptable. A nil opts means DefaultOptions.
func ApplyPatch(doc any, patch Patch, opts *Options) (any, error) {
	o := opts.resolved()

	if o.Validate {
		if err := patch.Validate(); err != nil {
			return nil, err
		}
	}

	root := doc

	for i := range patch {
		if debug.Apply() {
			debug.Logf("apply %s %s\n", patch[i].Op, patch[i].Path)
		}

		var err error

		root, err = applyOperation(root, &patch[i], o)
		if err != nil {
			return nil, err
		}
	}

	return root, nil
}

// ApplyPatchImmutable applies patch to a deep copy of doc and returns the
// patched copy. The original document is never touched.
func ApplyPatchImmutable(doc any, patch Patch, opts *Options) (any, error) {
	return ApplyPatch(Clone(doc), patch, opts)
}

// ApplyPatchWithRollback applies patch atomically: either every operation
// succeeds and the final root is returned, or the original document is
// restored from a pre-call snapshot and the failure is returned alongside
// the restored root. Restoration happens in place for a map or slice root,
// so existing references to doc observe the restored state.
func ApplyPatchWithRollback(doc any, patch Patch, opts *Options) (any, error) {
	snap := Clone(doc)

	res, err := ApplyPatch(doc, patch, opts)
	if err == nil {
		return res, nil
	}

	switch orig := doc.(type) {
	case map[string]any:
		sm := snap.(map[string]any)

		clear(orig)
		for k, v := range sm {
			orig[k] = v
		}

		return orig, err
	case []any:
		sv := snap.([]any)
		if len(orig) == len(sv) {
			copy(orig, sv)
			return orig, err
		}

		return sv, err
	default:
		return snap, err
	}
}

// applyOperation executes one operation against root and returns the
// possibly new root. Errors are annotated with the operation.
func applyOperation(root any, op *Operation, o *Options) (any, error) {
	next, err := dispatchOperation(root, op, o)
	if err != nil {
		if pe, ok := err.(*PatchError); ok && pe.Op == nil {
			pe.Op = op
		}

		return nil, err
	}

	return next, nil
}

func dispatchOperation(root any, op *Operation, o *Options) (any, error) {
	switch op.Op {
	case OpAdd:
		if err := checkInserted(op.Value, op.Path, o); err != nil {
			return nil, err
		}

		return applyAdd(root, op, o)
	case OpRemove:
		next, _, err := applyRemove(root, op)
		return next, err
	case OpReplace:
		if err := checkInserted(op.Value, op.Path, o); err != nil {
			return nil, err
		}

		return applyReplace(root, op)
	case OpMove:
		return applyMove(root, op)
	case OpCopy:
		return applyCopy(root, op)
	case OpTest:
		return root, applyTest(root, op)
	default:
		return nil, opError(ErrInvalidOp, op, "unknown op %q", op.Op)
	}
}

// checkInserted guards a value about to enter the document: no cycles when
// circular checking is on, and nesting within the depth ceiling always.
func checkInserted(v any, at string, o *Options) error {
	if o.CheckCircular {
		if err := checkCircular(v, at); err != nil {
			return err
		}
	}

	return ValidateMaxDepth(v, o.MaxDepth)
}

func applyAdd(root any, op *Operation, o *Options) (any, error) {
	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	// Adding to the root replaces the whole document.
	if p.IsRoot() {
		return op.Value, nil
	}

	return addAt(root, p, 0, op.Value, o.BatchArrayOps)
}

// addAt descends to the parent of the final token and inserts value,
// returning the possibly new subtree root. The parent must already exist.
// With batch set, an array value inserted into an array splices its
// elements as a run.
func addAt(node any, full Pointer, depth int, value any, batch bool) (any, error) {
	tok := full[depth]
	last := depth == len(full)-1

	switch c := node.(type) {
	case map[string]any:
		if last {
			c[tok] = value
			return c, nil
		}

		child, ok := c[tok]
		if !ok {
			return nil, newError(ErrPathNotFound,
				full[:depth+1].String(), "missing key %q", tok)
		}

		nc, err := addAt(child, full, depth+1, value, batch)
		if err != nil {
			return nil, err
		}

		c[tok] = nc

		return c, nil
	case []any:
		idx, err := parseArrayToken(tok, len(c), last)
		if err != nil {
			return nil, pathError(err, full[:depth+1])
		}

		if last {
			if batch {
				if run, ok := value.([]any); ok {
					return spliceIn(c, idx, run...), nil
				}
			}

			return spliceIn(c, idx, value), nil
		}

		nc, err := addAt(c[idx], full, depth+1, value, batch)
		if err != nil {
			return nil, err
		}

		c[idx] = nc

		return c, nil
	default:
		return nil, newError(ErrTypeMismatch, full[:depth+1].String(),
			"cannot descend into %T", node)
	}
}

func applyRemove(root any, op *Operation) (any, []any, error) {
	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, nil, err
	}

	if p.IsRoot() {
		return nil, nil, newError(ErrRootOperation, op.Path,
			"cannot remove the document root")
	}

	count := op.Count
	if count <= 0 {
		count = 1
	}

	return removeAt(root, p, 0, count)
}

// removeAt descends to the parent of the final token and removes count
// elements there, returning the possibly new subtree root and the removed
// values. A count above one requires an array target.
func removeAt(node any, full Pointer, depth int, count int) (any, []any, error) {
	tok := full[depth]
	last := depth == len(full)-1

	switch c := node.(type) {
	case map[string]any:
		child, ok := c[tok]
		if !ok {
			return nil, nil, newError(ErrPathNotFound,
				full[:depth+1].String(), "missing key %q", tok)
		}

		if last {
			if count > 1 {
				return nil, nil, newError(ErrArrayIndex,
					full.String(), "count requires an array target")
			}

			delete(c, tok)

			return c, []any{child}, nil
		}

		nc, removed, err := removeAt(child, full, depth+1, count)
		if err != nil {
			return nil, nil, err
		}

		c[tok] = nc

		return c, removed, nil
	case []any:
		idx, err := parseArrayToken(tok, len(c), false)
		if err != nil {
			return nil, nil, pathError(err, full[:depth+1])
		}

		if last {
			if idx+count > len(c) {
				return nil, nil, newError(ErrArrayIndex,
					full.String(),
					"run of %d from index %d exceeds length %d",
					count, idx, len(c))
			}

			removed := make([]any, count)
			copy(removed, c[idx:idx+count])

			return spliceOut(c, idx, count), removed, nil
		}

		nc, removed, err := removeAt(c[idx], full, depth+1, count)
		if err != nil {
			return nil, nil, err
		}

		c[idx] = nc

		return c, removed, nil
	default:
		return nil, nil, newError(ErrTypeMismatch, full[:depth+1].String(),
			"cannot descend into %T", node)
	}
}

func applyReplace(root any, op *Operation) (any, error) {
	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	// The root always exists, so replacing it always succeeds.
	if p.IsRoot() {
		return op.Value, nil
	}

	return replaceAt(root, p, 0, op.Value)
}

// replaceAt overwrites the value at the final token, which must already
// exist.
func replaceAt(node any, full Pointer, depth int, value any) (any, error) {
	tok := full[depth]
	last := depth == len(full)-1

	switch c := node.(type) {
	case map[string]any:
		if _, ok := c[tok]; !ok {
			return nil, newError(ErrPathNotFound,
				full[:depth+1].String(), "missing key %q", tok)
		}

		if last {
			c[tok] = value
			return c, nil
		}

		nc, err := replaceAt(c[tok], full, depth+1, value)
		if err != nil {
			return nil, err
		}

		c[tok] = nc

		return c, nil
	case []any:
		idx, err := parseArrayToken(tok, len(c), false)
		if err != nil {
			return nil, pathError(err, full[:depth+1])
		}

		if last {
			c[idx] = value
			return c, nil
		}

		nc, err := replaceAt(c[idx], full, depth+1, value)
		if err != nil {
			return nil, err
		}

		c[idx] = nc

		return c, nil
	default:
		return nil, newError(ErrTypeMismatch, full[:depth+1].String(),
			"cannot descend into %T", node)
	}
}

func applyMove(root any, op *Operation) (any, error) {
	from, err := ParsePointer(op.From)
	if err != nil {
		return nil, err
	}

	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	if from.IsRoot() {
		return nil, newError(ErrRootOperation, op.From,
			"cannot move the document root")
	}

	if p.HasPrefix(from) && len(from) < len(p) {
		return nil, opError(ErrInvalidOp, op,
			"cannot move a value into its own descendant")
	}

	// Moving a value onto itself is a no-op, but the source must still
	// resolve.
	if _, ok := from.resolve(root); !ok {
		return nil, newError(ErrPathNotFound, op.From,
			"move source does not resolve")
	}

	if len(from) == len(p) && p.HasPrefix(from) {
		return root, nil
	}

	next, removed, err := removeAt(root, from, 0, 1)
	if err != nil {
		return nil, err
	}

	if p.IsRoot() {
		return removed[0], nil
	}

	return addAt(next, p, 0, removed[0], false)
}

func applyCopy(root any, op *Operation) (any, error) {
	from, err := ParsePointer(op.From)
	if err != nil {
		return nil, err
	}

	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	v, ok := from.resolve(root)
	if !ok {
		return nil, newError(ErrPathNotFound, op.From,
			"copy source does not resolve")
	}

	// The destination gets an independent deep copy, so later mutation
	// of either side cannot affect the other.
	dup := Clone(v)

	if p.IsRoot() {
		return dup, nil
	}

	return addAt(root, p, 0, dup, false)
}

func applyTest(root any, op *Operation) error {
	p, err := ParsePointer(op.Path)
	if err != nil {
		return err
	}

	v, ok := p.resolve(root)
	if !ok {
		return newError(ErrPathNotFound, op.Path,
			"test target does not resolve")
	}

	if !Equal(v, op.Value) {
		return opError(ErrTestFailed, op, "value does not match")
	}

	return nil
}
