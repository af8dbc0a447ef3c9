package nuclei

// Step is one element of a lookup path: an object key or an array index.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a step selecting the member name of an object.
func Key(name string) Step { return Step{key: name} }

// Index returns a step selecting element i of an array.
func Index(i int) Step { return Step{index: i, isIndex: true} }

// Get returns the member key of an object. It reports false when v is not an
// object or has no such member.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// At returns element i of an array. It reports false when v is not an array or
// i is out of range.
func (v Value) At(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Lookup follows path from root, stopping at the first step that cannot be taken.
// A present JSON null is returned with ok == true; stepping into it fails.
func Lookup(root Value, path ...Step) (v Value, ok bool) {
	v = root
	for _, s := range path {
		if s.isIndex {
			v, ok = v.At(s.index)
		} else {
			v, ok = v.Get(s.key)
		}
		if !ok {
			return Value{}, false
		}
	}
	return v, true
}
