package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Record is a snapshot of an entity, keyed by attribute name.
//
// Values should be JSON-encodable. Records are compared by their JSON encodings.
type Record map[string]any

// FieldChange is a change of an attribute.
//
// Old is absent for new rows, New is absent for deleted rows. An absent side is
// left out of the JSON encoding, while a null side is written as null.
type FieldChange struct {
	Old any
	New any

	OldAbsent bool
	NewAbsent bool
}

func (fc FieldChange) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if !fc.OldAbsent {
		m["old"] = fc.Old
	}
	if !fc.NewAbsent {
		m["new"] = fc.New
	}
	return json.Marshal(m)
}

func (fc *FieldChange) UnmarshalJSON(b []byte) error {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := FieldChange{}
	var err error
	if out.Old, out.OldAbsent, err = side(m, "old"); err != nil {
		return err
	}
	if out.New, out.NewAbsent, err = side(m, "new"); err != nil {
		return err
	}
	*fc = out
	return nil
}

// side decodes m[key] as a plain JSON value. absent is true when key is missing.
func side(m map[string]json.RawMessage, key string) (v any, absent bool, err error) {
	raw, ok := m[key]
	if !ok {
		return nil, true, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	err = dec.Decode(&v)
	return v, false, err
}

// Changes maps attribute names to their changes.
type Changes map[string]FieldChange

// Keys in sorted order.
func (c Changes) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c Changes) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Diff compares two snapshots of the same entity.
//
// Attributes present in only one side are treated as null on the other.
func Diff(old, new Record) Changes {
	ch := Changes{}
	keys := map[string]struct{}{}
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range new {
		keys[k] = struct{}{}
	}
	for k := range keys {
		o, n := normalize(old[k]), normalize(new[k])
		if jsonEqual(o, n) {
			continue
		}
		ch[k] = FieldChange{Old: o, New: n}
	}
	return ch
}

// Created expresses a new row as changes.
func Created(new Record) Changes {
	ch := Changes{}
	for k, v := range new {
		ch[k] = FieldChange{New: normalize(v), OldAbsent: true}
	}
	return ch
}

// Deleted expresses a deleted row as changes.
func Deleted(old Record) Changes {
	ch := Changes{}
	for k, v := range old {
		ch[k] = FieldChange{Old: normalize(v), NewAbsent: true}
	}
	return ch
}

// normalize turns v into plain JSON values (string, json.Number, bool, nil, []any, map[string]any).
func normalize(v any) any {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

func jsonEqual(a, b any) bool {
	ja, erra := json.Marshal(a)
	jb, errb := json.Marshal(b)
	if erra != nil || errb != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}
