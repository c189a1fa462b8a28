package delta

// MergePatch applies an RFC 7396 merge patch to a document and returns the
// merged result. An object patch merges key by key, with a null value
// deleting the key; any non-object patch replaces the target wholesale.
// The inputs are not modified, but untouched subtrees of doc are shared
// with the result rather than copied.
func MergePatch(doc, patch any) any {
	po, isObj := patch.(map[string]any)
	if !isObj {
		return Clone(patch)
	}

	out := make(map[string]any)
	if dm, ok := doc.(map[string]any); ok {
		for k, v := range dm {
			out[k] = v
		}
	}

	for k, v := range po {
		if v == nil {
			delete(out, k)
			continue
		}

		out[k] = MergePatch(out[k], v)
	}

	return out
}

// CreateMergePatch derives the RFC 7396 merge patch that turns old into
// new, so MergePatch(old, CreateMergePatch(old, new)) deep-equals new.
// When either document is not an object the patch is new itself, or an
// empty object when the documents are already equal.
//
// RFC 7396 cannot express setting a key to null, since null marks a
// deletion; use CreatePatch when documents carry meaningful nulls.
func CreateMergePatch(old, new any) any {
	om, oldIsObj := old.(map[string]any)
	nm, newIsObj := new.(map[string]any)

	if !oldIsObj || !newIsObj {
		if Equal(old, new) {
			return map[string]any{}
		}

		return Clone(new)
	}

	patch := make(map[string]any)

	for k, ov := range om {
		nv, kept := nm[k]
		if !kept {
			patch[k] = nil
			continue
		}

		if Equal(ov, nv) {
			continue
		}

		ovm, ovIsObj := ov.(map[string]any)
		nvm, nvIsObj := nv.(map[string]any)

		if ovIsObj && nvIsObj {
			sub := CreateMergePatch(ovm, nvm).(map[string]any)
			if len(sub) > 0 {
				patch[k] = sub
			}

			continue
		}

		patch[k] = Clone(nv)
	}

	for k, nv := range nm {
		if _, existed := om[k]; !existed {
			patch[k] = Clone(nv)
		}
	}

	return patch
}
