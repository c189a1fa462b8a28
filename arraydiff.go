package delta

import "sort"

// arrayOpKind discriminates planned array edits.
type arrayOpKind uint8

const (
	arrayOpRemove arrayOpKind = iota
	arrayOpMove
	arrayOpAdd
)

// arrayOp is one planned edit against a single array. Indices are valid at
// the op's own application time, given sequential replay of the plan.
type arrayOp struct {
	kind arrayOpKind

	// idx is the removal index, the insertion index, or the move
	// destination.
	idx int

	// from is the move source.
	from int

	// count is the removal run length.
	count int

	// values holds the inserted run for adds and the removed elements
	// for removes. Removes keep their values so the batching pass can
	// recognize remove and add pairs of equal elements.
	values []any
}

// generateArrayOperations plans the edits that turn old into new: elements
// missing from new are removed back-to-front, elements present in both but
// relocated become moves ordered by ascending destination, and elements
// only in new are inserted front-to-back at their final indices. Elements
// are matched by deep equality through a longest-common-subsequence pass;
// cache, when non-nil, memoizes that pass.
func generateArrayOperations(cache *lcsCache, old, new []any) []arrayOp {
	if len(old) == 0 && len(new) == 0 {
		return nil
	}

	pairs := cachedLCS(cache, old, new)

	inLCSOld := make([]bool, len(old))
	inLCSNew := make([]bool, len(new))
	for _, p := range pairs {
		inLCSOld[p.A] = true
		inLCSNew[p.B] = true
	}

	// Pair up leftovers that exist on both sides; those relocate
	// instead of being removed and re-added. Greedy first-equal
	// matching in index order.
	moveOf := make(map[int]int)
	isMoveTarget := make(map[int]bool)

	for oi := range old {
		if inLCSOld[oi] {
			continue
		}

		for ni := range new {
			if inLCSNew[ni] || isMoveTarget[ni] {
				continue
			}

			if Equal(old[oi], new[ni]) {
				moveOf[oi] = ni
				isMoveTarget[ni] = true

				break
			}
		}
	}

	var ops []arrayOp

	// Removals, back to front, so earlier indices stay valid.
	for oi := len(old) - 1; oi >= 0; oi-- {
		if inLCSOld[oi] {
			continue
		}

		if _, moved := moveOf[oi]; moved {
			continue
		}

		ops = append(ops, arrayOp{
			kind:   arrayOpRemove,
			idx:    oi,
			count:  1,
			values: []any{old[oi]},
		})
	}

	// Moves. sim tracks the surviving elements, identified by old
	// index, through each planned move, mirroring sequential replay.
	if len(moveOf) > 0 {
		sim := make([]int, 0, len(old))
		for oi := range old {
			if _, moved := moveOf[oi]; moved || inLCSOld[oi] {
				sim = append(sim, oi)
			}
		}

		srcOfNew := make(map[int]int, len(sim))
		for _, p := range pairs {
			srcOfNew[p.B] = p.A
		}
		for oi, ni := range moveOf {
			srcOfNew[ni] = oi
		}

		finalPos := make(map[int]int, len(sim))
		pos := 0
		for ni := range new {
			if oi, ok := srcOfNew[ni]; ok {
				finalPos[oi] = pos
				pos++
			}
		}

		moveBound := make([]int, 0, len(moveOf))
		for oi := range moveOf {
			moveBound = append(moveBound, oi)
		}
		sort.Slice(moveBound, func(i, j int) bool {
			return finalPos[moveBound[i]] < finalPos[moveBound[j]]
		})

		for _, oi := range moveBound {
			cur := -1
			for i, v := range sim {
				if v == oi {
					cur = i
					break
				}
			}

			dst := finalPos[oi]
			if cur == dst {
				continue
			}

			ops = append(ops, arrayOp{
				kind: arrayOpMove,
				from: cur,
				idx:  dst,
			})

			sim = append(sim[:cur], sim[cur+1:]...)
			sim = append(sim[:dst], append([]int{oi}, sim[dst:]...)...)
		}
	}

	// Additions, front to back, at their final indices.
	for ni := range new {
		if inLCSNew[ni] || isMoveTarget[ni] {
			continue
		}

		ops = append(ops, arrayOp{
			kind:   arrayOpAdd,
			idx:    ni,
			values: []any{new[ni]},
		})
	}

	return ops
}

// batchArrayOps merges contiguous elementary edits into batched ones, each
// run capped at maxBatch elements, and rewrites an adjacent remove and add
// of equal values into a move.
func batchArrayOps(ops []arrayOp, maxBatch int) []arrayOp {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}

	out := make([]arrayOp, 0, len(ops))

	for _, op := range ops {
		if len(out) > 0 {
			prev := &out[len(out)-1]

			switch {
			case op.kind == arrayOpRemove && prev.kind == arrayOpRemove &&
				op.idx == prev.idx-1 && prev.count < maxBatch:
				// A descending neighbor extends the run
				// downward.
				prev.idx = op.idx
				prev.count++
				prev.values = append(op.values, prev.values...)

				continue
			case op.kind == arrayOpAdd && prev.kind == arrayOpAdd &&
				op.idx == prev.idx+len(prev.values) &&
				len(prev.values) < maxBatch:
				prev.values = append(prev.values, op.values...)

				continue
			case op.kind == arrayOpAdd && prev.kind == arrayOpRemove &&
				prev.count == 1 && len(op.values) == 1 &&
				Equal(prev.values[0], op.values[0]):
				*prev = arrayOp{
					kind: arrayOpMove,
					from: prev.idx,
					idx:  op.idx,
				}

				continue
			}
		}

		out = append(out, op)
	}

	return out
}

// serializeArrayOps renders a plan as patch operations under the array's
// pointer. With batching enabled, multi-element adds carry their run as an
// array value; a single element that is itself an array is wrapped in a
// one-element run so the splice convention cannot misread it.
func serializeArrayOps(prefix Pointer, ops []arrayOp, batched bool) Patch {
	out := make(Patch, 0, len(ops))

	for _, op := range ops {
		switch op.kind {
		case arrayOpRemove:
			path := prefix.Child(indexToken(op.idx)).String()
			out = append(out, removeRunOp(path, op.count))
		case arrayOpMove:
			from := prefix.Child(indexToken(op.from)).String()
			path := prefix.Child(indexToken(op.idx)).String()
			out = append(out, moveOp(from, path))
		case arrayOpAdd:
			path := prefix.Child(indexToken(op.idx)).String()

			value := op.values[0]
			if batched && (len(op.values) > 1 || isBatchValue(value)) {
				value = append([]any(nil), op.values...)
			}

			out = append(out, addOp(path, value))
		}
	}

	return out
}
