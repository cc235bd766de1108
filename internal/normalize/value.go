// Package normalize reshapes loosely structured LLM output into the canonical
// candidate profile shape before schema validation.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies which variant a Value holds.
type Kind int

// Value kinds
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON value of any shape. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []*Value
	obj  *Object
}

// Object is a JSON object that remembers key insertion order.
type Object struct {
	keys []string
	vals map[string]*Value
}

// NewNull returns a null value.
func NewNull() *Value { return &Value{kind: KindNull} }

// NewBool returns a boolean value.
func NewBool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// NewNumber returns a number value. The literal is kept verbatim.
func NewNumber(n json.Number) *Value { return &Value{kind: KindNumber, num: n} }

// NewString returns a string value.
func NewString(s string) *Value { return &Value{kind: KindString, str: s} }

// NewArray returns an array holding items in order.
func NewArray(items ...*Value) *Value {
	arr := make([]*Value, 0, len(items))
	arr = append(arr, items...)
	return &Value{kind: KindArray, arr: arr}
}

// NewStringArray returns an array of string values.
func NewStringArray(items []string) *Value {
	arr := make([]*Value, 0, len(items))
	for _, s := range items {
		arr = append(arr, NewString(s))
	}
	return &Value{kind: KindArray, arr: arr}
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{kind: KindObject, obj: newObject()}
}

func newObject() *Object {
	return &Object{vals: make(map[string]*Value)}
}

// Kind reports the variant held by v. A nil Value is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// Str returns the string payload and whether v is a string.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.str, true
}

// Bool returns the boolean payload and whether v is a boolean.
func (v *Value) Bool() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.b, true
}

// Number returns the number literal and whether v is a number.
func (v *Value) Number() (json.Number, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.num, true
}

// Items returns the elements of an array, or nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the object payload and whether v is an object.
func (v *Value) Object() (*Object, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return NewNull()
	}
	out := &Value{kind: v.kind, b: v.b, num: v.num, str: v.str}
	switch v.kind {
	case KindArray:
		out.arr = make([]*Value, len(v.arr))
		for i, item := range v.arr {
			out.arr[i] = item.Clone()
		}
	case KindObject:
		out.obj = newObject()
		for _, k := range v.obj.keys {
			out.obj.Set(k, v.obj.vals[k].Clone())
		}
	}
	return out
}

// Equal reports whether v and other hold the same JSON value.
// Object key order is ignored; numbers compare by literal.
func (v *Value) Equal(other *Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, k := range v.obj.keys {
			ov, ok := other.obj.Get(k)
			if !ok || !v.obj.vals[k].Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Len returns the number of keys in o.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys of o in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Has reports whether key is present, including when its value is null.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Set stores val under key. An existing key keeps its position.
func (o *Object) Set(key string, val *Value) {
	if val == nil {
		val = NewNull()
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = val
}

// SetDefault stores val under key only when key is absent.
func (o *Object) SetDefault(key string, val *Value) {
	if !o.Has(key) {
		o.Set(key, val)
	}
}

// Delete removes key. It returns the removed value, if any.
func (o *Object) Delete(key string) (*Value, bool) {
	v, ok := o.vals[key]
	if !ok {
		return nil, false
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Parse decodes a single JSON document into a Value.
// Duplicate object keys keep their first position and last value.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.arr = append(arr.arr, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// MarshalJSON encodes v, writing object keys in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		buf.WriteString(v.num.String())
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := v.obj.vals[k].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes data into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}
