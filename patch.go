package delta

import "encoding/json"

// Op is an RFC 6902 operation kind.
type Op string

// The six RFC 6902 operation kinds.
const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpMove    Op = "move"
	OpCopy    Op = "copy"
	OpTest    Op = "test"
)

// Bits recording fields that were absent in a decoded operation, so
// validation can tell a missing value from an explicit null.
const (
	missingOp uint8 = 1 << iota
	missingPath
	missingValue
	missingFrom
)

// Operation is a single RFC 6902 patch operation, extended with Count for
// batched removes. An add whose Value is an array denotes a batched run of
// insertions when the patch was produced with Options.BatchArrayOps.
type Operation struct {
	// Op is the operation kind.
	Op Op `json:"op"`

	// Path is the RFC 6901 pointer the operation targets.
	Path string `json:"path"`

	// From is the source pointer for move and copy.
	From string `json:"from,omitempty"`

	// Value is the payload for add, replace and test.
	Value any `json:"value,omitempty"`

	// Count extends remove to delete a contiguous run of array
	// elements starting at Path. Zero means a single element.
	Count int `json:"count,omitempty"`

	missing uint8
}

// Patch is an ordered sequence of operations. Operations apply
// sequentially; each one addresses the document as left by its
// predecessors.
type Patch []Operation

// valueOps lists the kinds that require a value field.
func (o *Operation) needsValue() bool {
	return o.Op == OpAdd || o.Op == OpReplace || o.Op == OpTest
}

// fromOps lists the kinds that require a from field.
func (o *Operation) needsFrom() bool {
	return o.Op == OpMove || o.Op == OpCopy
}

// MarshalJSON renders the operation with only the fields its kind uses,
// keeping an explicit null value for add, replace and test.
func (o Operation) MarshalJSON() ([]byte, error) {
	if o.needsValue() {
		return json.Marshal(struct {
			Op    Op     `json:"op"`
			Path  string `json:"path"`
			Value any    `json:"value"`
		}{o.Op, o.Path, o.Value})
	}

	return json.Marshal(struct {
		Op    Op     `json:"op"`
		Path  string `json:"path"`
		From  string `json:"from,omitempty"`
		Count int    `json:"count,omitempty"`
	}{o.Op, o.Path, o.From, o.Count})
}

// UnmarshalJSON decodes the operation, recording which fields were absent
// so Validate can distinguish a missing value from JSON null.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var w struct {
		Op    *string         `json:"op"`
		Path  *string         `json:"path"`
		From  *string         `json:"from"`
		Value json.RawMessage `json:"value"`
		Count int             `json:"count"`
	}

	if err := json.Unmarshal(data, &w); err != nil {
		return wrapError(ErrInvalidPatch, "", err, "malformed operation")
	}

	*o = Operation{Count: w.Count}

	if w.Op != nil {
		o.Op = Op(*w.Op)
	} else {
		o.missing |= missingOp
	}

	if w.Path != nil {
		o.Path = *w.Path
	} else {
		o.missing |= missingPath
	}

	if w.From != nil {
		o.From = *w.From
	} else {
		o.missing |= missingFrom
	}

	if w.Value != nil {
		if err := json.Unmarshal(w.Value, &o.Value); err != nil {
			return wrapError(ErrInvalidPatch, o.Path, err,
				"malformed value")
		}
	} else {
		o.missing |= missingValue
	}

	return nil
}

// DecodePatch unmarshals a JSON patch document and validates it.
func DecodePatch(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		if pe, ok := err.(*PatchError); ok {
			return nil, pe
		}

		return nil, wrapError(ErrInvalidPatch, "", err, "malformed patch")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks every operation for a known kind, required fields,
// well-formed pointers and a sane count. It does not consult a document;
// whether pointers resolve is decided at apply time.
func (p Patch) Validate() error {
	for i := range p {
		if err := p[i].validate(); err != nil {
			if pe, ok := err.(*PatchError); ok {
				pe.msg = "operation " + indexToken(i) + ": " + pe.msg
			}

			return err
		}
	}

	return nil
}

func (o *Operation) validate() error {
	switch o.Op {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
	default:
		if o.missing&missingOp != 0 {
			return opError(ErrMissingField, o, "op is required")
		}

		return opError(ErrInvalidOp, o, "unknown op %q", o.Op)
	}

	if o.missing&missingPath != 0 {
		return opError(ErrMissingField, o, "path is required")
	}

	if err := ValidatePointer(o.Path); err != nil {
		return opError(ErrInvalidPointer, o, "bad path %q", o.Path)
	}

	if o.needsValue() && o.missing&missingValue != 0 {
		return opError(ErrMissingField, o, "%s requires value", o.Op)
	}

	if o.needsFrom() {
		if o.missing&missingFrom != 0 {
			return opError(ErrMissingField, o, "%s requires from", o.Op)
		}

		if err := ValidatePointer(o.From); err != nil {
			return opError(ErrInvalidPointer, o, "bad from %q", o.From)
		}
	}

	if o.Count != 0 {
		if o.Op != OpRemove {
			return opError(ErrInvalidPatch, o,
				"count is only valid on remove")
		}

		if o.Count < 0 {
			return opError(ErrInvalidPatch, o,
				"count must be positive")
		}
	}

	return nil
}

// Expand rewrites batched operations into their elementary forms: a remove
// with count n becomes n removes at the same index, and an array-valued add
// becomes one add per element at consecutive indices. It assumes the patch
// follows the batched conventions; on a patch whose array-valued adds are
// literal values, Expand must not be used.
func (p Patch) Expand() Patch {
	out := make(Patch, 0, len(p))

	for _, op := range p {
		switch {
		case op.Op == OpRemove && op.Count > 1:
			for i := 0; i < op.Count; i++ {
				out = append(out, removeOp(op.Path))
			}
		case op.Op == OpAdd && isBatchValue(op.Value):
			ptr, err := ParsePointer(op.Path)
			if err != nil || ptr.IsRoot() {
				out = append(out, op)
				continue
			}

			parent, tok := ptr.Parent()

			if tok == "-" {
				for _, v := range op.Value.([]any) {
					out = append(out, addOp(op.Path, v))
				}

				continue
			}

			idx, aerr := positiveIndex(tok)
			if aerr != nil {
				// Object key; the array value is literal.
				out = append(out, op)
				continue
			}

			for i, v := range op.Value.([]any) {
				path := parent.Child(indexToken(idx + i)).String()
				out = append(out, addOp(path, v))
			}
		default:
			out = append(out, op)
		}
	}

	return out
}

// isBatchValue reports whether an add payload denotes a run under the
// batched conventions.
func isBatchValue(v any) bool {
	_, ok := v.([]any)
	return ok
}

// positiveIndex parses a token as a plain array index with no length
// bound.
func positiveIndex(token string) (int, error) {
	return parseArrayToken(token, int(^uint(0)>>1)-1, false)
}

func addOp(path string, v any) Operation {
	return Operation{Op: OpAdd, Path: path, Value: v}
}

func removeOp(path string) Operation {
	return Operation{Op: OpRemove, Path: path}
}

func removeRunOp(path string, count int) Operation {
	op := Operation{Op: OpRemove, Path: path}
	if count > 1 {
		op.Count = count
	}

	return op
}

func replaceOp(path string, v any) Operation {
	return Operation{Op: OpReplace, Path: path, Value: v}
}

func moveOp(from, path string) Operation {
	return Operation{Op: OpMove, Path: path, From: from}
}

func copyOp(from, path string) Operation {
	return Operation{Op: OpCopy, Path: path, From: from}
}

func testOp(path string, v any) Operation {
	return Operation{Op: OpTest, Path: path, Value: v}
}
