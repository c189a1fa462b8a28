package delta

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package matches exactly one of
// these sentinels under errors.Is.
var (
	// ErrInvalidPointer reports a malformed JSON pointer string.
	ErrInvalidPointer = errors.New("invalid JSON pointer")

	// ErrInvalidOp reports an unknown or malformed operation kind.
	ErrInvalidOp = errors.New("invalid operation")

	// ErrInvalidPatch reports a structurally invalid patch document.
	ErrInvalidPatch = errors.New("invalid patch")

	// ErrMissingField reports an operation lacking a required field,
	// such as a move without from or an add without value.
	ErrMissingField = errors.New("missing required field")

	// ErrArrayIndex reports an array index outside the valid range for
	// the operation being applied.
	ErrArrayIndex = errors.New("array index out of bounds")

	// ErrRootOperation reports an operation that cannot target the
	// document root, such as remove with an empty pointer.
	ErrRootOperation = errors.New("operation not allowed on document root")

	// ErrCircular reports a cyclic reference discovered in an input
	// value while circular checking is enabled.
	ErrCircular = errors.New("circular reference detected")

	// ErrTypeMismatch reports traversal through, or an operation
	// against, a value of the wrong kind, such as indexing a string.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMaxDepth reports a value nested deeper than Options.MaxDepth.
	ErrMaxDepth = errors.New("maximum depth exceeded")

	// ErrTestFailed reports a test operation whose target value did not
	// equal the expected value.
	ErrTestFailed = errors.New("test operation failed")

	// ErrPathNotFound reports a pointer that does not resolve to an
	// existing location in the document.
	ErrPathNotFound = errors.New("path not found")

	// ErrInternal reports an invariant violation inside the package
	// itself, such as a generated inverse failing verification.
	ErrInternal = errors.New("internal error")

	// ErrBadJSONDoc reports document bytes that are not valid JSON,
	// from the raw byte-level entry points.
	ErrBadJSONDoc = errors.New("invalid document JSON")
)

// PatchError is the concrete error type returned by package operations. It
// carries the error kind, the pointer the failure occurred at and, when the
// failure happened while processing a specific operation, that operation.
type PatchError struct {
	// Kind is one of the package sentinel errors.
	Kind error

	// Path is the RFC 6901 pointer at which the failure occurred, when
	// known.
	Path string

	// Op is the operation being processed when the failure occurred,
	// when the failure is tied to one.
	Op *Operation

	msg   string
	cause error
}

// Error implements the error interface.
func (e *PatchError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.Error())

	if e.msg != "" {
		b.WriteString(": ")
		b.WriteString(e.msg)
	}

	if e.Path != "" {
		fmt.Fprintf(&b, " at %q", e.Path)
	}

	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}

	return b.String()
}

// Is reports whether target matches this error's kind, making
// errors.Is(err, ErrPathNotFound) and friends work on wrapped errors.
func (e *PatchError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause, if any.
func (e *PatchError) Unwrap() error {
	return e.cause
}

// newError builds a PatchError of the given kind at the given pointer.
func newError(kind error, path string, format string, a ...any) *PatchError {
	return &PatchError{
		Kind: kind,
		Path: path,
		msg:  fmt.Sprintf(format, a...),
	}
}

// opError builds a PatchError tied to a specific operation.
func opError(kind error, op *Operation, format string, a ...any) *PatchError {
	path := ""
	if op != nil {
		path = op.Path
	}

	return &PatchError{
		Kind: kind,
		Path: path,
		Op:   op,
		msg:  fmt.Sprintf(format, a...),
	}
}

// wrapError attaches a kind and pointer to an underlying cause, keeping the
// cause reachable through errors.Unwrap.
func wrapError(kind error, path string, cause error, format string, a ...any) *PatchError {
	return &PatchError{
		Kind:  kind,
		Path:  path,
		msg:   fmt.Sprintf(format, a...),
		cause: errors.WithStack(cause),
	}
}
