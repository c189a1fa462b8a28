package delta

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyPatchBytes decodes a JSON document and a patch, applies the patch
// and re-encodes the result. It is the convenience path for callers
// working with raw JSON end to end.
func ApplyPatchBytes(doc, patch []byte, opts *Options) ([]byte, error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, wrapError(ErrBadJSONDoc, "", err, "cannot decode document")
	}

	p, err := DecodePatch(patch)
	if err != nil {
		return nil, err
	}

	res, err := ApplyPatch(root, p, opts)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(res)
	if err != nil {
		return nil, wrapError(ErrInternal, "", err, "cannot encode result")
	}

	return out, nil
}

// GetRaw resolves an RFC 6901 pointer against raw JSON without decoding
// the whole document, returning the addressed value still encoded. The
// root pointer returns the document itself.
func GetRaw(doc []byte, pointer string) ([]byte, error) {
	p, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}

	if p.IsRoot() {
		return doc, nil
	}

	res := gjson.GetBytes(doc, gjsonPath(p))
	if !res.Exists() {
		return nil, newError(ErrPathNotFound, pointer,
			"pointer does not resolve")
	}

	return []byte(res.Raw), nil
}

// SetRaw writes an encoded JSON value at an RFC 6901 pointer without
// decoding the whole document, returning the updated document. Like
// SetByPointer it is lenient: missing intermediates are created and the
// "-" token appends. The root pointer replaces the document wholesale.
func SetRaw(doc []byte, pointer string, value []byte) ([]byte, error) {
	p, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}

	if p.IsRoot() {
		out := make([]byte, len(value))
		copy(out, value)

		return out, nil
	}

	out, err := sjson.SetRawBytes(doc, sjsonPath(p), value)
	if err != nil {
		return nil, wrapError(ErrInternal, pointer, err, "raw set failed")
	}

	return out, nil
}

// DeleteRaw removes the value at an RFC 6901 pointer without decoding the
// whole document, returning the updated document. The pointer must
// resolve; the root cannot be deleted.
func DeleteRaw(doc []byte, pointer string) ([]byte, error) {
	p, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}

	if p.IsRoot() {
		return nil, newError(ErrRootOperation, pointer,
			"cannot delete the document root")
	}

	path := gjsonPath(p)

	if !gjson.GetBytes(doc, path).Exists() {
		return nil, newError(ErrPathNotFound, pointer,
			"pointer does not resolve")
	}

	out, err := sjson.DeleteBytes(doc, path)
	if err != nil {
		return nil, wrapError(ErrInternal, pointer, err, "raw delete failed")
	}

	return out, nil
}

// gjsonPath renders a parsed pointer as a gjson/sjson path, escaping the
// characters those libraries treat specially.
func gjsonPath(p Pointer) string {
	var b strings.Builder

	for i, tok := range p {
		if i > 0 {
			b.WriteByte('.')
		}

		b.WriteString(escapeRawToken(tok))
	}

	return b.String()
}

// sjsonPath is gjsonPath with the RFC 6901 append token mapped to sjson's
// append index.
func sjsonPath(p Pointer) string {
	if n := len(p); n > 0 && p[n-1] == "-" {
		q := make(Pointer, n)
		copy(q, p)
		q[n-1] = "-1"

		return gjsonPath(q)
	}

	return gjsonPath(p)
}

func escapeRawToken(tok string) string {
	if !strings.ContainsAny(tok, `.*?|#@\`) {
		return tok
	}

	var b strings.Builder
	b.Grow(len(tok) + 2)

	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}

		b.WriteByte(tok[i])
	}

	return b.String()
}
