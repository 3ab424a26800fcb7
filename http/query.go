package http

import (
	"sort"
	"strings"
)

// Value holds every value bound to one query key. A key seen once holds a
// single value, a repeated key holds the ordered list of its values.
type Value struct {
	values   []string
	multiple bool
}

func Single(value string) Value {
	return Value{values: []string{value}}
}

func Multiple(values ...string) Value {
	return Value{values: values, multiple: true}
}

func (v Value) IsMultiple() bool {
	return v.multiple
}

// First returns the first value bound to the key.
func (v Value) First() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

// All returns a copy of the values in the order they appeared.
func (v Value) All() []string {
	out := make([]string, len(v.values))
	copy(out, v.values)
	return out
}

func (v Value) String() string {
	if !v.multiple {
		return v.First()
	}
	return "[" + strings.Join(v.values, ", ") + "]"
}

func (v Value) hasContent() bool {
	for _, s := range v.values {
		if s != "" {
			return true
		}
	}
	return false
}

func (v Value) with(value string) Value {
	values := make([]string, len(v.values), len(v.values)+1)
	copy(values, v.values)
	return Multiple(append(values, value)...)
}

// QueryString is the decoded form of the part of a request path after '?'.
type QueryString struct {
	data map[string]Value
}

// ParseQueryString decodes raw as a form-urlencoded query. It never fails:
// malformed escapes are decoded lossily.
//
// A repeated key collects its values in order. An empty value for a key
// that already holds a non-empty value is dropped, so "z=10&z=" maps z to
// "10" alone. A pair without '=' binds the empty string, and an empty pair
// (as in "a&&b") binds the empty key.
func ParseQueryString(raw string) QueryString {
	data := make(map[string]Value)

	for _, pair := range strings.Split(raw, "&") {
		key, value, _ := strings.Cut(pair, "=")
		key, value = formDecode(key), formDecode(value)

		prev, found := data[key]
		if !found {
			data[key] = Single(value)
			continue
		}

		if value == "" && prev.hasContent() {
			continue
		}

		data[key] = prev.with(value)
	}

	return QueryString{data: data}
}

func (qs QueryString) Get(key string) (Value, bool) {
	v, found := qs.data[key]
	return v, found
}

func (qs QueryString) Has(key string) bool {
	_, found := qs.data[key]
	return found
}

func (qs QueryString) Len() int {
	return len(qs.data)
}

// Keys returns the decoded keys in sorted order.
func (qs QueryString) Keys() []string {
	keys := make([]string, 0, len(qs.data))
	for k := range qs.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
