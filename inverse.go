package delta

import "github.com/MysMon/delta-sculptor/debug"

// CreateInversePatch derives the patch that undoes patch, computed from
// preDoc, the document as it stood before the patch. The patch is replayed
// against a disposable deep copy; each step's inverse is captured from the
// working copy before that step mutates it, and the captured inverses
// compose in reverse order.
//
// Per kind: add becomes remove (a counted remove for a batched run),
// remove becomes the add or adds restoring what it deleted, replace
// restores the prior value, and move swaps from and path, preceded on
// replay by an add restoring any map member the move overwrote. An add,
// replace or move targeting the root restores the prior root. copy and
// test contribute
// no inverse operation: test asserts without mutating, and the policy
// here is that undoing a patch leaves copy destinations in place rather
// than removing them. For that reason Options.ValidateInverse skips
// verification of patches containing copy.
//
// With Options.BatchArrayOps the composed inverse is run through the same
// run-merging pass the differ uses.
func CreateInversePatch(preDoc any, patch Patch, opts *Options) (Patch, error) {
	o := opts.resolved()

	if o.Validate {
		if err := patch.Validate(); err != nil {
			return nil, err
		}
	}

	work := Clone(preDoc)
	inv := make(Patch, 0, len(patch))

	for i := range patch {
		op := &patch[i]

		entries, err := inverseOf(work, op, o)
		if err != nil {
			return nil, err
		}

		work, err = applyOperation(work, op, o)
		if err != nil {
			return nil, err
		}

		inv = append(inv, entries...)
	}

	for l, r := 0, len(inv)-1; l < r; l, r = l+1, r-1 {
		inv[l], inv[r] = inv[r], inv[l]
	}

	if o.BatchArrayOps {
		inv = batchPatch(work, inv, o.MaxBatchSize)
	}

	if o.ValidateInverse && !hasCopy(patch) {
		undone, err := ApplyPatch(work, inv, o)
		if err != nil {
			return nil, wrapError(ErrInternal, "", err,
				"inverse failed to apply")
		}

		if !Equal(undone, preDoc) {
			return nil, newError(ErrInternal, "",
				"inverse does not restore the original document")
		}
	}

	if debug.Inverse() {
		debug.Logf("inverse %d ops -> %d\n", len(patch), len(inv))
	}

	return inv, nil
}

// ApplyPatchWithInverse applies patch to doc and returns the patched root
// together with the inverse patch that undoes it. The inverse is derived
// from the pre-patch state, so applying it to the returned document
// restores doc's original content.
func ApplyPatchWithInverse(doc any, patch Patch, opts *Options) (any, Patch, error) {
	inv, err := CreateInversePatch(doc, patch, opts)
	if err != nil {
		return nil, nil, err
	}

	res, err := ApplyPatch(doc, patch, opts)
	if err != nil {
		return nil, nil, err
	}

	return res, inv, nil
}

// inverseOf captures the operations that undo op, taken against the
// working copy in its pre-operation state. Multi-operation results are
// emitted in reverse replay order so the patch-wide reversal above puts
// them right. An empty result with a nil error means the op needs no
// inverse, or that replaying the op itself will surface the precise
// failure.
func inverseOf(work any, op *Operation, o *Options) ([]Operation, error) {
	switch op.Op {
	case OpAdd:
		return inverseOfAdd(work, op, o)
	case OpRemove:
		return inverseOfRemove(work, op, o)
	case OpReplace:
		p, err := ParsePointer(op.Path)
		if err != nil {
			return nil, err
		}

		prior, ok := p.resolve(work)
		if !ok {
			return nil, nil
		}

		return oneOp(replaceOp(op.Path, Clone(prior))), nil
	case OpMove:
		return inverseOfMove(work, op)
	default:
		// copy and test leave nothing to undo.
		return nil, nil
	}
}

func oneOp(op Operation) []Operation {
	return []Operation{op}
}

func inverseOfAdd(work any, op *Operation, o *Options) ([]Operation, error) {
	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	// Adding to the root replaces the document; restore the prior root.
	if p.IsRoot() {
		return oneOp(replaceOp("", Clone(work))), nil
	}

	parent, last := p.Parent()

	pv, ok := parent.resolve(work)
	if !ok {
		return nil, nil
	}

	switch pc := pv.(type) {
	case map[string]any:
		if prior, exists := pc[last]; exists {
			// add onto an existing key overwrites it.
			return oneOp(replaceOp(op.Path, Clone(prior))), nil
		}

		return oneOp(removeOp(op.Path)), nil
	case []any:
		idx := len(pc)
		if last != "-" {
			idx, err = parseArrayToken(last, len(pc), true)
			if err != nil {
				return nil, nil
			}
		}

		path := parent.Child(indexToken(idx)).String()

		if o.BatchArrayOps {
			if run, isRun := op.Value.([]any); isRun {
				// Splicing zero elements changes nothing.
				if len(run) == 0 {
					return nil, nil
				}

				return oneOp(removeRunOp(path, len(run))), nil
			}
		}

		return oneOp(removeOp(path)), nil
	default:
		return nil, nil
	}
}

func inverseOfRemove(work any, op *Operation, o *Options) ([]Operation, error) {
	p, err := ParsePointer(op.Path)
	if err != nil || p.IsRoot() {
		return nil, err
	}

	count := op.Count
	if count <= 0 {
		count = 1
	}

	if count == 1 {
		prior, ok := p.resolve(work)
		if !ok {
			return nil, nil
		}

		value := Clone(prior)
		if o.BatchArrayOps && isBatchValue(value) && inArray(work, p) {
			// Wrap so the splice convention reads it as a run of
			// one.
			value = []any{value}
		}

		return oneOp(addOp(op.Path, value)), nil
	}

	parent, last := p.Parent()

	pv, ok := parent.resolve(work)
	if !ok {
		return nil, nil
	}

	pc, isArr := pv.([]any)
	if !isArr {
		return nil, nil
	}

	idx, err := parseArrayToken(last, len(pc), false)
	if err != nil || idx+count > len(pc) {
		return nil, nil
	}

	if o.BatchArrayOps {
		run := make([]any, count)
		for i := 0; i < count; i++ {
			run[i] = Clone(pc[idx+i])
		}

		return oneOp(addOp(op.Path, run)), nil
	}

	// Without the splice convention the run comes back as repeated
	// single inserts at one index. Ascending element order here is
	// reverse replay order: after the patch-wide reversal each insert
	// lands in front of the one replayed before it.
	group := make([]Operation, count)
	for i := 0; i < count; i++ {
		group[i] = addOp(op.Path, Clone(pc[idx+i]))
	}

	return group, nil
}

func inverseOfMove(work any, op *Operation) ([]Operation, error) {
	if op.From == op.Path {
		return nil, nil
	}

	p, err := ParsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	// Moving to the root replaces the whole document; only restoring the
	// prior root brings back what the replacement discarded.
	if p.IsRoot() {
		return oneOp(replaceOp("", Clone(work))), nil
	}

	path := op.Path

	// Concretize an append destination so the inverse can address the
	// landed element.
	if p[len(p)-1] == "-" {
		parent, _ := p.Parent()

		pv, ok := parent.resolve(work)
		if !ok {
			return nil, nil
		}

		arr, isArr := pv.([]any)
		if !isArr {
			return nil, nil
		}

		idx := len(arr)

		from, ferr := ParsePointer(op.From)
		if ferr != nil {
			return nil, ferr
		}

		fparent, _ := from.Parent()
		if fparent.String() == parent.String() {
			// The removal step shrinks the array first.
			idx--
		}

		path = parent.Child(indexToken(idx)).String()
	}

	// A move onto an existing map member overwrites it, and the swapped
	// move alone cannot bring that member back.
	parent, last := p.Parent()
	if pv, ok := parent.resolve(work); ok {
		if pm, isMap := pv.(map[string]any); isMap {
			if prior, exists := pm[last]; exists {
				from, ferr := ParsePointer(op.From)
				if ferr != nil {
					return nil, ferr
				}

				// A source inside the member is already part of the
				// restored value, and the swapped move cannot replay
				// into the subtree the restore replaces.
				if from.HasPrefix(p) {
					return oneOp(replaceOp(op.Path, Clone(prior))), nil
				}

				// Reverse replay order: the move returns first, then
				// the add restores the overwritten member.
				return []Operation{
					addOp(op.Path, Clone(prior)),
					moveOp(path, op.From),
				}, nil
			}
		}
	}

	return oneOp(moveOp(path, op.From)), nil
}

// inArray reports whether p addresses an element of an array in doc.
func inArray(doc any, p Pointer) bool {
	parent, _ := p.Parent()

	pv, ok := parent.resolve(doc)
	if !ok {
		return false
	}

	_, isArr := pv.([]any)

	return isArr
}

func hasCopy(p Patch) bool {
	for i := range p {
		if p[i].Op == OpCopy {
			return true
		}
	}

	return false
}

// batchPatch merges contiguous elementary array edits at the operation
// level: a remove whose run ends where its predecessor's begins extends
// that predecessor, and an add continuing its predecessor's run joins it.
// Only neighbors addressing sibling indices of the same array in doc
// merge, and no merged run exceeds maxBatch elements.
func batchPatch(doc any, p Patch, maxBatch int) Patch {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}

	out := make(Patch, 0, len(p))

	for _, op := range p {
		if len(out) > 0 && mergeOps(doc, &out[len(out)-1], &op, maxBatch) {
			continue
		}

		out = append(out, op)
	}

	return out
}

// mergeOps folds op into prev when they form one contiguous run,
// preserving sequential replay semantics.
func mergeOps(doc any, prev, op *Operation, maxBatch int) bool {
	if prev.Op != op.Op {
		return false
	}

	pp, err := ParsePointer(prev.Path)
	if err != nil || pp.IsRoot() {
		return false
	}

	po, err := ParsePointer(op.Path)
	if err != nil || po.IsRoot() {
		return false
	}

	pParent, pTok := pp.Parent()
	oParent, oTok := po.Parent()

	if pParent.String() != oParent.String() {
		return false
	}

	// Numeric object keys must not be mistaken for array indices.
	if !inArray(doc, pp) {
		return false
	}

	pIdx, err := positiveIndex(pTok)
	if err != nil {
		return false
	}

	oIdx, err := positiveIndex(oTok)
	if err != nil {
		return false
	}

	switch op.Op {
	case OpRemove:
		pCount := prev.Count
		if pCount <= 0 {
			pCount = 1
		}

		oCount := op.Count
		if oCount <= 0 {
			oCount = 1
		}

		if pCount+oCount > maxBatch {
			return false
		}

		switch {
		case oIdx+oCount == pIdx:
			// Run extends downward in front of the previous one.
			prev.Path = op.Path
			prev.Count = pCount + oCount

			return true
		case oIdx == pIdx:
			prev.Count = pCount + oCount

			return true
		}

		return false
	case OpAdd:
		pRun := runValues(prev.Value)
		oRun := runValues(op.Value)

		if len(pRun)+len(oRun) > maxBatch {
			return false
		}

		switch {
		case oIdx == pIdx+len(pRun):
			prev.Value = append(pRun, oRun...)
			return true
		case oIdx == pIdx:
			// The later insertion lands in front.
			prev.Value = append(oRun, pRun...)
			return true
		}

		return false
	default:
		return false
	}
}

// runValues reads an add payload as a run under the batched conventions.
func runValues(v any) []any {
	if run, ok := v.([]any); ok {
		return append([]any(nil), run...)
	}

	return []any{v}
}
