package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a slot of a partial update. It is one of
//
// - unset (the zero value): leave the attribute as is.
//
// - set to null: clear the attribute.
//
// - set to a value.
//
// In JSON, an absent key is unset and `null` is "set to null".
type Field[T any] struct {
	set   bool
	value *T
}

func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: &v}
}

func Null[T any]() Field[T] {
	return Field[T]{set: true}
}

// SetPtr sets the field to *v, or to null when v is nil.
func SetPtr[T any](v *T) Field[T] {
	if v == nil {
		return Null[T]()
	}
	return Set(*v)
}

func (f Field[T]) IsSet() bool {
	return f.set
}

// Value is the requested value. It is nil when unset or set to null.
func (f Field[T]) Value() *T {
	if f.value == nil {
		return nil
	}
	v := *f.value
	return &v
}

// Or returns the requested value when the field is set, otherwise current.
func (f Field[T]) Or(current *T) *T {
	if !f.set {
		return current
	}
	return f.Value()
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.value)
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.value = nil
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	f.value = v
	return nil
}

type patchEntry struct {
	key   string
	set   bool
	value json.Marshaler
}

func entry[T any](key string, f Field[T]) patchEntry {
	return patchEntry{key: key, set: f.IsSet(), value: f}
}

// marshalPatch encodes only the set fields, so decoding the result gives the same patch.
func marshalPatch(entries ...patchEntry) ([]byte, error) {
	m := map[string]json.Marshaler{}
	for _, e := range entries {
		if e.set {
			m[e.key] = e.value
		}
	}
	return json.Marshal(m)
}

func samePtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
