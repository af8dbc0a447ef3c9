package nuclei

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Kinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`null`, KindNull},
		{`"x"`, KindString},
		{`-1.5e3`, KindNumber},
		{`true`, KindBool},
		{`[1,2]`, KindArray},
		{`{"a":1}`, KindObject},
		{"  {}  ", KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"truncated object", `{"a":1`},
		{"bare word", `hello`},
		{"trailing comma", `{"a":1,}`},
		{"two objects", `{"a":1}{"b":2}`},
		{"trailing garbage", `{"a":1} x`},
		{"single quotes", `{'a':1}`},
		{"nesting too deep", strings.Repeat("[", maxDepth+1) + strings.Repeat("]", maxDepth+1)},
		{"unterminated deep nesting", `{"a":` + strings.Repeat("[", 5_000_000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecode_NestingTooDeep(t *testing.T) {
	_, err := Decode([]byte(`{"a":` + strings.Repeat("[", 5_000_000)))
	require.ErrorIs(t, err, ErrInvalidJSON)
	assert.Contains(t, err.Error(), "nesting exceeds")
}

func TestDecode_NestingAtLimit(t *testing.T) {
	input := strings.Repeat("[", maxDepth) + strings.Repeat("]", maxDepth)
	v, err := Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, KindArray, v.Kind())
}

func TestValue_JSONPreservesOrderAndLiterals(t *testing.T) {
	input := `{"z":1.50,"a":[true,null,"<b>&"],"m":{"k":"v \"q\""},"e":[],"o":{}}`

	v, err := Decode([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, input, v.JSON())
}

func TestValue_JSONCompactsWhitespace(t *testing.T) {
	v, err := Decode([]byte(`[ "a" ,  "b" ]`))
	require.NoError(t, err)

	assert.Equal(t, `["a","b"]`, v.JSON())
}

func TestDecode_DuplicateKeyKeepsLastValue(t *testing.T) {
	v, err := Decode([]byte(`{"a":1,"b":2,"a":3}`))
	require.NoError(t, err)

	got, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", got.JSON())
	assert.Equal(t, `{"a":3,"b":2}`, v.JSON())
}

func TestConstructors(t *testing.T) {
	v := Object(
		Member{Key: "tags", Value: Array(String("a"), String("b"))},
		Member{Key: "score", Value: Number("9.8")},
		Member{Key: "ok", Value: Bool(false)},
		Member{Key: "none", Value: Null()},
	)
	assert.Equal(t, `{"tags":["a","b"],"score":9.8,"ok":false,"none":null}`, v.JSON())
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, "[]", Array().JSON())
	assert.Equal(t, "{}", Object().JSON())
}
