package delta

// Builder constructs a patch operation by operation through a fluent
// interface. Operations are validated when Build is called, so a chain
// never has to be interrupted for error handling.
type Builder struct {
	ops Patch
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an add operation.
func (b *Builder) Add(path string, value any) *Builder {
	b.ops = append(b.ops, addOp(path, value))
	return b
}

// Remove appends a remove operation.
func (b *Builder) Remove(path string) *Builder {
	b.ops = append(b.ops, removeOp(path))
	return b
}

// RemoveRun appends a batched remove of count contiguous array elements
// starting at path.
func (b *Builder) RemoveRun(path string, count int) *Builder {
	b.ops = append(b.ops, removeRunOp(path, count))
	return b
}

// Replace appends a replace operation.
func (b *Builder) Replace(path string, value any) *Builder {
	b.ops = append(b.ops, replaceOp(path, value))
	return b
}

// Move appends a move operation.
func (b *Builder) Move(from, path string) *Builder {
	b.ops = append(b.ops, moveOp(from, path))
	return b
}

// Copy appends a copy operation.
func (b *Builder) Copy(from, path string) *Builder {
	b.ops = append(b.ops, copyOp(from, path))
	return b
}

// Test appends a test operation.
func (b *Builder) Test(path string, value any) *Builder {
	b.ops = append(b.ops, testOp(path, value))
	return b
}

// Len reports the number of operations accumulated so far.
func (b *Builder) Len() int {
	return len(b.ops)
}

// Build validates the accumulated operations and returns them as a patch.
// The Builder stays usable; the returned patch is a copy.
func (b *Builder) Build() (Patch, error) {
	if err := b.ops.Validate(); err != nil {
		return nil, err
	}

	out := make(Patch, len(b.ops))
	copy(out, b.ops)

	return out, nil
}

// MustBuild is like Build but panics when validation fails. It is meant
// for patches assembled from trusted literals.
func (b *Builder) MustBuild() Patch {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
