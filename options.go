package delta

// Default limits applied when an Options field is left at zero.
const (
	// DefaultMaxDepth bounds document nesting during validation,
	// diffing and patching.
	DefaultMaxDepth = 100

	// DefaultMaxBatchSize bounds the number of elements merged into a
	// single batched array operation.
	DefaultMaxBatchSize = 100
)

// Options controls diffing, patching and inverse generation. The zero value
// disables validation and circular checking; DefaultOptions returns the
// recommended configuration. A nil *Options is treated as DefaultOptions
// everywhere it is accepted.
type Options struct {
	// DetectMove enables the longest-common-subsequence array pass that
	// recognizes relocated elements and emits move operations instead
	// of remove and add pairs.
	DetectMove bool

	// BatchArrayOps merges contiguous runs of array edits into single
	// operations: removes gain a count, adds carry an array of
	// elements. Patches produced with batching enabled must also be
	// applied with it enabled, since an array-valued add inside an
	// array is then spliced rather than inserted as one element.
	BatchArrayOps bool

	// MaxBatchSize caps the run length of a single batched operation.
	// Zero means DefaultMaxBatchSize.
	MaxBatchSize int

	// MaxDepth caps document nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// CheckCircular scans inputs for cyclic references before they are
	// walked.
	CheckCircular bool

	// Validate checks patch shape and pointer syntax before any
	// operation is applied.
	Validate bool

	// ValidateInverse verifies each generated inverse patch by applying
	// it to a scratch copy and comparing against the original document.
	ValidateInverse bool
}

// Option mutates an Options during construction.
type Option func(*Options)

// DefaultOptions returns the recommended configuration: validation and
// circular checking on, move detection and batching off, default limits.
func DefaultOptions() *Options {
	return &Options{
		MaxBatchSize:  DefaultMaxBatchSize,
		MaxDepth:      DefaultMaxDepth,
		CheckCircular: true,
		Validate:      true,
	}
}

// NewOptions builds an Options from DefaultOptions with the given
// modifiers applied in order.
func NewOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithMoveDetection enables move detection for array diffs.
func WithMoveDetection() Option {
	return func(o *Options) {
		o.DetectMove = true
	}
}

// WithBatching enables batched array operations capped at size elements
// per run. A non-positive size keeps DefaultMaxBatchSize.
func WithBatching(size int) Option {
	return func(o *Options) {
		o.BatchArrayOps = true
		if size > 0 {
			o.MaxBatchSize = size
		}
	}
}

// WithMaxDepth sets the nesting bound.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithoutValidation disables patch validation and circular checking for
// callers that know their inputs are well formed.
func WithoutValidation() Option {
	return func(o *Options) {
		o.Validate = false
		o.CheckCircular = false
	}
}

// WithInverseValidation enables verification of generated inverse patches.
func WithInverseValidation() Option {
	return func(o *Options) {
		o.ValidateInverse = true
	}
}

// resolved normalizes an options pointer for internal use: nil becomes
// DefaultOptions and zero limits take their defaults. The caller's struct
// is never modified.
func (o *Options) resolved() *Options {
	if o == nil {
		return DefaultOptions()
	}

	r := *o

	if r.MaxBatchSize <= 0 {
		r.MaxBatchSize = DefaultMaxBatchSize
	}

	if r.MaxDepth <= 0 {
		r.MaxDepth = DefaultMaxDepth
	}

	return &r
}
