package nuclei

// Text converts a looked-up value into a column value. Absent and null values
// become nil, arrays and objects become JSON text, scalars become their text.
func Text(v Value, ok bool) *string {
	if !ok || v.IsNull() {
		return nil
	}
	s := scalarText(v)
	return &s
}

// TextOr is Text with def substituted for absent and null values.
func TextOr(v Value, ok bool, def string) *string {
	if t := Text(v, ok); t != nil {
		return t
	}
	return &def
}

// First returns the first element of a list-valued field. A bare scalar is
// treated as a one-element list, since nuclei writes single-valued lists such
// as cve-id as plain strings.
func First(v Value, ok bool) (Value, bool) {
	if !ok {
		return Value{}, false
	}
	switch v.Kind() {
	case KindArray:
		return v.At(0)
	case KindObject:
		return Value{}, false
	default:
		return v, true
	}
}

func scalarText(v Value) string {
	switch v.kind {
	case KindString, KindNumber:
		return v.text
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	default:
		return v.JSON()
	}
}
