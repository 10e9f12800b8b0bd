package encstore

import (
	"bytes"
	"encoding/json"
)

// Items is the ordered result of a batch read. Order is the order keys were
// first requested; a key requested twice keeps its first position and its
// last value. Keys that were not found are present with found=false.
type Items struct {
	order []string
	vals  map[string]item
}

type item struct {
	value any
	found bool
}

func newItems(n int) *Items {
	return &Items{order: make([]string, 0, n), vals: make(map[string]item, n)}
}

func (it *Items) put(key string, value any, found bool) {
	if _, seen := it.vals[key]; !seen {
		it.order = append(it.order, key)
	}
	it.vals[key] = item{value: value, found: found}
}

// Len returns the number of distinct keys.
func (it *Items) Len() int {
	if it == nil {
		return 0
	}
	return len(it.order)
}

// Keys returns the keys in order.
func (it *Items) Keys() []string {
	if it == nil {
		return nil
	}
	out := make([]string, len(it.order))
	copy(out, it.order)
	return out
}

// Get returns the value for key and whether it was found in the backend.
func (it *Items) Get(key string) (any, bool) {
	if it == nil {
		return nil, false
	}
	v := it.vals[key]
	return v.value, v.found
}

// Has reports whether key was requested.
func (it *Items) Has(key string) bool {
	if it == nil {
		return false
	}
	_, ok := it.vals[key]
	return ok
}

// Range calls fn in order until it returns false.
func (it *Items) Range(fn func(key string, value any, found bool) bool) {
	if it == nil {
		return
	}
	for _, k := range it.order {
		v := it.vals[k]
		if !fn(k, v.value, v.found) {
			return
		}
	}
}

// Map flattens the result. Missing keys map to nil.
func (it *Items) Map() map[string]any {
	out := make(map[string]any, it.Len())
	it.Range(func(k string, v any, _ bool) bool {
		out[k] = v
		return true
	})
	return out
}

// MarshalJSON writes an object in key order.
func (it *Items) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	it.Range(func(k string, v any, _ bool) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var kb, vb []byte
		if kb, err = json.Marshal(k); err != nil {
			return false
		}
		if vb, err = json.Marshal(v); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
