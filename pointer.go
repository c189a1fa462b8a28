package delta

import (
	"strconv"
	"strings"
)

// Pointer is a parsed RFC 6901 JSON pointer: the sequence of reference
// tokens in unescaped form. The empty Pointer addresses the document root.
type Pointer []string

// ParsePointer parses an RFC 6901 pointer string. The empty string yields
// the root pointer; any other pointer must start with "/" and use only the
// escape sequences "~0" and "~1".
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}

	if s[0] != '/' {
		return nil, newError(ErrInvalidPointer, s,
			"pointer must be empty or start with /")
	}

	parts := strings.Split(s[1:], "/")

	p := make(Pointer, len(parts))
	for i, part := range parts {
		tok, err := UnescapeToken(part)
		if err != nil {
			return nil, newError(ErrInvalidPointer, s,
				"token %d: %v", i, err)
		}

		p[i] = tok
	}

	return p, nil
}

// ValidatePointer reports whether s is a well-formed RFC 6901 pointer.
func ValidatePointer(s string) error {
	_, err := ParsePointer(s)
	return err
}

// String renders the pointer back to its RFC 6901 string form, escaping
// tokens as needed.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}

	var b strings.Builder
	for _, tok := range p {
		b.WriteByte('/')
		b.WriteString(EscapeToken(tok))
	}

	return b.String()
}

// IsRoot reports whether the pointer addresses the document root.
func (p Pointer) IsRoot() bool {
	return len(p) == 0
}

// Child returns a new pointer extended by one token. The receiver is not
// modified.
func (p Pointer) Child(token string) Pointer {
	c := make(Pointer, len(p)+1)
	copy(c, p)
	c[len(p)] = token

	return c
}

// Parent returns the pointer to the enclosing container and the final
// token. Calling Parent on the root pointer returns the root pointer and an
// empty token.
func (p Pointer) Parent() (Pointer, string) {
	if len(p) == 0 {
		return p, ""
	}

	return p[:len(p)-1], p[len(p)-1]
}

// HasPrefix reports whether prefix addresses p itself or one of its
// ancestors.
func (p Pointer) HasPrefix(prefix Pointer) bool {
	if len(prefix) > len(p) {
		return false
	}

	for i, tok := range prefix {
		if p[i] != tok {
			return false
		}
	}

	return true
}

// EscapeToken escapes a single reference token for embedding in a pointer
// string, turning "~" into "~0" and "/" into "~1".
func EscapeToken(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}

	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")

	return token
}

// UnescapeToken reverses EscapeToken, rejecting "~" sequences other than
// "~0" and "~1".
func UnescapeToken(token string) (string, error) {
	if !strings.Contains(token, "~") {
		return token, nil
	}

	var b strings.Builder
	b.Grow(len(token))

	for i := 0; i < len(token); i++ {
		c := token[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}

		if i+1 >= len(token) {
			return "", newError(ErrInvalidPointer, token,
				"dangling ~ escape")
		}

		switch token[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", newError(ErrInvalidPointer, token,
				"invalid escape ~%c", token[i+1])
		}

		i++
	}

	return b.String(), nil
}

// GetByPointer resolves an RFC 6901 pointer string against a document and
// returns the addressed value. It returns ErrPathNotFound when the pointer
// does not resolve, including the "-" append token, which never addresses
// an existing element.
func GetByPointer(doc any, pointer string) (any, error) {
	p, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}

	v, ok := p.resolve(doc)
	if !ok {
		return nil, newError(ErrPathNotFound, pointer,
			"pointer does not resolve")
	}

	return v, nil
}

// SetByPointer sets the value addressed by an RFC 6901 pointer, creating
// missing intermediate containers on the way: an array when the following
// token is an index or "-", an object otherwise. Array tokens may address
// an existing element or the position one past the end. The possibly new
// document root is returned; the root itself cannot be set.
func SetByPointer(doc any, pointer string, value any) (any, error) {
	p, err := ParsePointer(pointer)
	if err != nil {
		return nil, err
	}

	if p.IsRoot() {
		return nil, newError(ErrRootOperation, pointer,
			"cannot set the document root")
	}

	return setTokens(doc, p, p, value)
}

// RemoveByPointer removes the value addressed by an RFC 6901 pointer and
// returns the possibly new document root together with the removed value.
// The root itself cannot be removed.
func RemoveByPointer(doc any, pointer string) (any, any, error) {
	p, err := ParsePointer(pointer)
	if err != nil {
		return nil, nil, err
	}

	if p.IsRoot() {
		return nil, nil, newError(ErrRootOperation, pointer,
			"cannot remove the document root")
	}

	return removeTokens(doc, p, p)
}

// resolve walks the pointer through the document, reporting whether every
// token resolved.
func (p Pointer) resolve(doc any) (any, bool) {
	cur := doc

	for _, tok := range p {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[tok]
			if !ok {
				return nil, false
			}

			cur = v
		case []any:
			idx, err := parseArrayToken(tok, len(c), false)
			if err != nil {
				return nil, false
			}

			cur = c[idx]
		default:
			return nil, false
		}
	}

	return cur, true
}

// parseArrayToken interprets a reference token as an array index for an
// array of the given length. The "-" token and the index one past the end
// are accepted only when allowEnd is set. Leading zeros are rejected, as
// RFC 6901 requires.
func parseArrayToken(token string, length int, allowEnd bool) (int, error) {
	if token == "-" {
		if !allowEnd {
			return 0, newError(ErrPathNotFound, token,
				"append token does not address an element")
		}

		return length, nil
	}

	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, newError(ErrArrayIndex, token,
			"invalid array index %q", token)
	}

	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 {
		return 0, newError(ErrArrayIndex, token,
			"invalid array index %q", token)
	}

	max := length - 1
	if allowEnd {
		max = length
	}

	if idx > max {
		return 0, newError(ErrArrayIndex, token,
			"index %d out of bounds for length %d", idx, length)
	}

	return idx, nil
}

// indexToken renders an array index as a reference token.
func indexToken(i int) string {
	return strconv.Itoa(i)
}

// containerFor picks the container kind to create for a missing
// intermediate, based on the token that will address into it.
func containerFor(token string) any {
	if token == "-" {
		return []any{}
	}

	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return map[string]any{}
		}
	}

	if token == "" {
		return map[string]any{}
	}

	return []any{}
}

// setTokens descends along toks and sets the final value, returning the
// possibly new subtree root at each level. full is the complete pointer,
// kept for error reporting.
func setTokens(node any, full Pointer, toks []string, value any) (any, error) {
	tok := toks[0]
	last := len(toks) == 1

	if node == nil {
		node = containerFor(tok)
	}

	switch c := node.(type) {
	case map[string]any:
		if last {
			c[tok] = value
			return c, nil
		}

		child, ok := c[tok]
		if !ok {
			child = containerFor(toks[1])
		}

		nc, err := setTokens(child, full, toks[1:], value)
		if err != nil {
			return nil, err
		}

		c[tok] = nc

		return c, nil
	case []any:
		idx, err := parseArrayToken(tok, len(c), true)
		if err != nil {
			return nil, pathError(err, full)
		}

		if last {
			if idx == len(c) {
				return append(c[:len(c):len(c)], value), nil
			}

			c[idx] = value

			return c, nil
		}

		var child any
		if idx < len(c) {
			child = c[idx]
		} else {
			child = containerFor(toks[1])
		}

		nc, err := setTokens(child, full, toks[1:], value)
		if err != nil {
			return nil, err
		}

		if idx == len(c) {
			return append(c[:len(c):len(c)], nc), nil
		}

		c[idx] = nc

		return c, nil
	default:
		return nil, newError(ErrTypeMismatch, full.String(),
			"cannot descend into %T", node)
	}
}

// removeTokens descends along toks and removes the final value, returning
// the possibly new subtree root and the removed value.
func removeTokens(node any, full Pointer, toks []string) (any, any, error) {
	tok := toks[0]
	last := len(toks) == 1

	switch c := node.(type) {
	case map[string]any:
		child, ok := c[tok]
		if !ok {
			return nil, nil, newError(ErrPathNotFound, full.String(),
				"key %q does not exist", tok)
		}

		if last {
			delete(c, tok)
			return c, child, nil
		}

		nc, removed, err := removeTokens(child, full, toks[1:])
		if err != nil {
			return nil, nil, err
		}

		c[tok] = nc

		return c, removed, nil
	case []any:
		idx, err := parseArrayToken(tok, len(c), false)
		if err != nil {
			return nil, nil, pathError(err, full)
		}

		if last {
			removed := c[idx]
			return spliceOut(c, idx, 1), removed, nil
		}

		nc, removed, err := removeTokens(c[idx], full, toks[1:])
		if err != nil {
			return nil, nil, err
		}

		c[idx] = nc

		return c, removed, nil
	default:
		return nil, nil, newError(ErrTypeMismatch, full.String(),
			"cannot descend into %T", node)
	}
}

// pathError rewrites the path of a token-level error to the full pointer.
func pathError(err error, full Pointer) error {
	if pe, ok := err.(*PatchError); ok {
		pe.Path = full.String()
	}

	return err
}

// spliceOut removes n elements of s starting at idx, never writing into
// the original backing array beyond the retained prefix.
func spliceOut(s []any, idx, n int) []any {
	out := make([]any, 0, len(s)-n)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+n:]...)

	return out
}

// spliceIn inserts values into s at idx, leaving the original backing
// array untouched.
func spliceIn(s []any, idx int, values ...any) []any {
	out := make([]any, 0, len(s)+len(values))
	out = append(out, s[:idx]...)
	out = append(out, values...)
	out = append(out, s[idx:]...)

	return out
}
