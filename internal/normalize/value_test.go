package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`12.50`, KindNumber},
		{`"hi"`, KindString},
		{`[1, "a"]`, KindArray},
		{`{"a": 1}`, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{``, `{not json}`, `{"a": 1`, `{"a": 1} {"b": 2}`, `[1,]`} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParse_PreservesKeyOrderAndNumbers(t *testing.T) {
	v, err := Parse([]byte(`{"z": 1.0, "a": 100000000000000000001, "m": [true, null]}`))
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1.0,"a":100000000000000000001,"m":[true,null]}`, string(out))
}

func TestParse_DuplicateKeys(t *testing.T) {
	v, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	obj, _ := v.Object()
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	a, _ := obj.Get("a")
	n, _ := a.Number()
	assert.Equal(t, json.Number("3"), n)
}

func TestObject_SetDelete(t *testing.T) {
	v := NewObject()
	obj, _ := v.Object()

	obj.Set("a", NewString("1"))
	obj.Set("b", nil)
	obj.SetDefault("a", NewString("ignored"))
	obj.Set("c", NewBool(true))

	assert.Equal(t, []string{"a", "b", "c"}, obj.Keys())
	b, ok := obj.Get("b")
	require.True(t, ok)
	assert.True(t, b.IsNull())

	removed, ok := obj.Delete("b")
	require.True(t, ok)
	assert.True(t, removed.IsNull())
	assert.Equal(t, []string{"a", "c"}, obj.Keys())

	_, ok = obj.Delete("missing")
	assert.False(t, ok)

	a, _ := obj.Get("a")
	s, _ := a.Str()
	assert.Equal(t, "1", s)
}

func TestValue_CloneIsDeep(t *testing.T) {
	orig, err := Parse([]byte(`{"list": [{"k": "v"}]}`))
	require.NoError(t, err)

	clone := orig.Clone()
	obj, _ := clone.Object()
	list, _ := obj.Get("list")
	inner, _ := list.Items()[0].Object()
	inner.Set("k", NewString("changed"))

	assert.False(t, orig.Equal(clone))
	out, _ := json.Marshal(orig)
	assert.JSONEq(t, `{"list": [{"k": "v"}]}`, string(out))
}

func TestValue_Equal(t *testing.T) {
	a, _ := Parse([]byte(`{"x": [1, "a", null], "y": {"z": false}}`))
	b, _ := Parse([]byte(`{"y": {"z": false}, "x": [1, "a", null]}`))
	c, _ := Parse([]byte(`{"y": {"z": true}, "x": [1, "a", null]}`))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, NewString("1").Equal(NewNumber("1")))
}

func TestValue_Accessors(t *testing.T) {
	var nilValue *Value
	assert.Equal(t, KindNull, nilValue.Kind())
	assert.Nil(t, NewString("x").Items())

	_, ok := NewNumber("1").Str()
	assert.False(t, ok)
	_, ok = NewString("1").Bool()
	assert.False(t, ok)
	_, ok = NewArray().Object()
	assert.False(t, ok)

	assert.Equal(t, "boolean", KindBool.String())
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var doc struct {
		Payload *Value `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payload": {"b": [1, 2]}}`), &doc))
	assert.Equal(t, KindObject, doc.Payload.Kind())
}
