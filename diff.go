package delta

import (
	"sort"

	"github.com/MysMon/delta-sculptor/debug"
)

// Differ computes patches between documents. It owns the memo cache for
// the array subsequence pass, so reusing one Differ across related diffs
// lets repeated array comparisons hit the cache. A Differ is safe for
// concurrent use.
type Differ struct {
	opts  *Options
	cache *lcsCache
}

// NewDiffer returns a Differ using the given options. A nil opts means
// DefaultOptions.
func NewDiffer(opts *Options) *Differ {
	return &Differ{
		opts:  opts.resolved(),
		cache: newLCSCache(lcsCacheCapacity),
	}
}

// ClearCache drops all memoized subsequence results.
func (d *Differ) ClearCache() {
	d.cache.clear()
}

// CreatePatch derives the ordered operations that transform old into new.
// Applying the result to old, with the same options, yields a document
// deeply equal to new. Equal inputs produce an empty patch.
func (d *Differ) CreatePatch(old, new any) (Patch, error) {
	if d.opts.CheckCircular {
		if err := checkCircular(old, ""); err != nil {
			return nil, err
		}

		if err := checkCircular(new, ""); err != nil {
			return nil, err
		}
	}

	if err := ValidateMaxDepth(old, d.opts.MaxDepth); err != nil {
		return nil, err
	}

	if err := ValidateMaxDepth(new, d.opts.MaxDepth); err != nil {
		return nil, err
	}

	patch := Patch{}
	d.diffValue(nil, old, new, &patch)

	if debug.Diff() {
		debug.Logf("diff -> %d ops\n", len(patch))
	}

	return patch, nil
}

// CreatePatch derives a patch turning old into new. A nil opts means
// DefaultOptions. Callers diffing many related documents should hold a
// Differ instead, to reuse its cache.
func CreatePatch(old, new any, opts *Options) (Patch, error) {
	return NewDiffer(opts).CreatePatch(old, new)
}

func (d *Differ) diffValue(path Pointer, old, new any, out *Patch) {
	if Equal(old, new) {
		return
	}

	om, oldIsMap := old.(map[string]any)
	nm, newIsMap := new.(map[string]any)
	oa, oldIsArr := old.([]any)
	na, newIsArr := new.([]any)

	switch {
	case oldIsMap && newIsMap:
		d.diffObject(path, om, nm, out)
	case oldIsArr && newIsArr:
		d.diffArray(path, oa, na, out)
	default:
		*out = append(*out, replaceOp(path.String(), new))
	}
}

// diffObject emits removes for keys gone from new, then walks the keys of
// new, adding fresh ones and recursing into changed ones. Keys are visited
// in sorted order so output is deterministic.
func (d *Differ) diffObject(path Pointer, old, new map[string]any, out *Patch) {
	oldKeys := sortedKeys(old)
	for _, k := range oldKeys {
		if _, kept := new[k]; !kept {
			*out = append(*out, removeOp(path.Child(k).String()))
		}
	}

	newKeys := sortedKeys(new)
	for _, k := range newKeys {
		nv := new[k]

		ov, existed := old[k]
		if !existed {
			*out = append(*out, addOp(path.Child(k).String(), nv))
			continue
		}

		d.diffValue(path.Child(k), ov, nv, out)
	}
}

// diffArray plans array edits and serializes them under path. With move
// detection on, the subsequence pass pairs up relocated elements; otherwise
// elements are compared positionally and only the tail grows or shrinks.
func (d *Differ) diffArray(path Pointer, old, new []any, out *Patch) {
	if d.opts.DetectMove {
		ops := generateArrayOperations(d.cache, old, new)
		if d.opts.BatchArrayOps {
			ops = batchArrayOps(ops, d.opts.MaxBatchSize)
		}

		*out = append(*out, serializeArrayOps(path, ops, d.opts.BatchArrayOps)...)

		return
	}

	overlap := len(old)
	if len(new) < overlap {
		overlap = len(new)
	}

	for i := 0; i < overlap; i++ {
		d.diffValue(path.Child(indexToken(i)), old[i], new[i], out)
	}

	// At most one of the tails is non-empty.
	var tail []arrayOp

	for i := len(old) - 1; i >= overlap; i-- {
		tail = append(tail, arrayOp{
			kind:   arrayOpRemove,
			idx:    i,
			count:  1,
			values: []any{old[i]},
		})
	}

	for i := overlap; i < len(new); i++ {
		tail = append(tail, arrayOp{
			kind:   arrayOpAdd,
			idx:    i,
			values: []any{new[i]},
		})
	}

	if d.opts.BatchArrayOps {
		tail = batchArrayOps(tail, d.opts.MaxBatchSize)
	}

	*out = append(*out, serializeArrayOps(path, tail, d.opts.BatchArrayOps)...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
