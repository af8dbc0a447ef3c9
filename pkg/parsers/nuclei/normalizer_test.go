package nuclei

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) Value {
	t.Helper()
	v, err := Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func TestLookup(t *testing.T) {
	root := mustDecode(t, `{"info":{"classification":{"cve-id":["CVE-1","CVE-2"],"cpe":null},"severity":"high"},"ip":"1.2.3.4"}`)

	tests := []struct {
		name   string
		path   []Step
		wantOK bool
		want   string
	}{
		{"top level", []Step{Key("ip")}, true, `"1.2.3.4"`},
		{"nested", []Step{Key("info"), Key("severity")}, true, `"high"`},
		{"array index", []Step{Key("info"), Key("classification"), Key("cve-id"), Index(1)}, true, `"CVE-2"`},
		{"present null", []Step{Key("info"), Key("classification"), Key("cpe")}, true, "null"},
		{"missing leaf", []Step{Key("info"), Key("metadata")}, false, ""},
		{"missing middle short-circuits", []Step{Key("nope"), Key("classification"), Key("cve-id")}, false, ""},
		{"step into scalar", []Step{Key("ip"), Key("x")}, false, ""},
		{"step into null", []Step{Key("info"), Key("classification"), Key("cpe"), Key("x")}, false, ""},
		{"index out of range", []Step{Key("info"), Key("classification"), Key("cve-id"), Index(5)}, false, ""},
		{"negative index", []Step{Key("info"), Key("classification"), Key("cve-id"), Index(-1)}, false, ""},
		{"index on object", []Step{Key("info"), Index(0)}, false, ""},
		{"empty path", nil, true, root.JSON()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Lookup(root, tt.path...)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, v.JSON())
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		ok    bool
		want  *string
	}{
		{"absent", Value{}, false, nil},
		{"null", Null(), true, nil},
		{"string", String("high"), true, ptr("high")},
		{"empty string", String(""), true, ptr("")},
		{"number literal", Number("7.5"), true, ptr("7.5")},
		{"integer", Number("1"), true, ptr("1")},
		{"true", Bool(true), true, ptr("true")},
		{"false", Bool(false), true, ptr("false")},
		{"array", Array(String("a"), String("b")), true, ptr(`["a","b"]`)},
		{"object", Object(Member{Key: "os", Value: String("linux")}), true, ptr(`{"os":"linux"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.value, tt.ok))
		})
	}
}

func TestTextOr(t *testing.T) {
	assert.Equal(t, "0.0.0.0", *TextOr(Value{}, false, "0.0.0.0"))
	assert.Equal(t, "0.0.0.0", *TextOr(Null(), true, "0.0.0.0"))
	assert.Equal(t, "10.0.0.1", *TextOr(String("10.0.0.1"), true, "0.0.0.0"))
	assert.Equal(t, "", *TextOr(String(""), true, "0.0.0.0"))
}

func TestFirst(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		ok     bool
		wantOK bool
		want   string
	}{
		{"absent", Value{}, false, false, ""},
		{"list", Array(String("cwe-20"), String("cwe-917")), true, true, `"cwe-20"`},
		{"empty list", Array(), true, false, ""},
		{"bare string", String("cve-2021-44228"), true, true, `"cve-2021-44228"`},
		{"object", Object(), true, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := First(tt.value, tt.ok)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, v.JSON())
			}
		})
	}
}

func TestStructuredTextReparses(t *testing.T) {
	text := Text(Array(String("a"), String("b")), true)
	require.NotNil(t, text)

	back := mustDecode(t, *text)
	require.Equal(t, KindArray, back.Kind())
	var got []string
	for _, e := range back.Elements() {
		s, ok := e.Str()
		require.True(t, ok)
		got = append(got, s)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func ptr(s string) *string { return &s }
