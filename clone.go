package delta

// Clone creates a deep copy of a JSON-like value. Maps and slices are
// copied recursively; shared containers stay shared in the copy and cyclic
// references are reproduced rather than followed forever. Scalars and
// values outside the JSON model are copied by assignment.
func Clone(v any) any {
	var c cloner
	return c.clone(v)
}

// cloner maps each source container, by identity, to its clone so that a
// container reached twice is cloned once.
type cloner struct {
	refs map[containerID]any
}

func (c *cloner) remember(id containerID, clone any) {
	if c.refs == nil {
		c.refs = make(map[containerID]any)
	}

	c.refs[id] = clone
}

func (c *cloner) clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		id := mapID(t)
		if dup, ok := c.refs[id]; ok {
			return dup
		}

		out := make(map[string]any, len(t))

		// Register before descending so cycles resolve to the
		// clone under construction.
		c.remember(id, out)

		for k, child := range t {
			out[k] = c.clone(child)
		}

		return out
	case []any:
		if len(t) == 0 {
			return []any{}
		}

		id := sliceID(t)
		if dup, ok := c.refs[id]; ok {
			return dup
		}

		out := make([]any, len(t))

		c.remember(id, out)

		for i, child := range t {
			out[i] = c.clone(child)
		}

		return out
	default:
		return v
	}
}
