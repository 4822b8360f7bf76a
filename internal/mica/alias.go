package mica

import (
	"encoding/json"
	"fmt"
	"strings"
)

// aliasTable maps internal field names onto the namespaced keys Mica puts on
// the wire. It is applied to the top-level keys of an object, on decode and
// on encode alike.
type aliasTable struct {
	toWire  map[string]string
	toField map[string]string
}

// newAliasTable panics when two fields share a wire key, since the mapping
// could not be reversed.
func newAliasTable(fieldToWire map[string]string) aliasTable {
	t := aliasTable{
		toWire:  make(map[string]string, len(fieldToWire)),
		toField: make(map[string]string, len(fieldToWire)),
	}
	for field, wire := range fieldToWire {
		if other, ok := t.toField[wire]; ok {
			panic(fmt.Sprintf("mica: wire key %q aliased by both %q and %q", wire, other, field))
		}
		if _, ok := fieldToWire[wire]; ok && wire != field {
			panic(fmt.Sprintf("mica: wire key %q is also a field name", wire))
		}
		t.toWire[field] = wire
		t.toField[wire] = field
	}
	return t
}

func (t aliasTable) wireName(field string) string {
	if wire, ok := t.toWire[field]; ok {
		return wire
	}
	return field
}

// wirePath rewrites the first segment of a dotted field path into its wire
// key.
func (t aliasTable) wirePath(path string) string {
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return t.wireName(path)
	}
	return t.wireName(head) + "." + rest
}

// decode renames wire keys to field names. An internal name showing up on
// the wire is rejected so that every object has exactly one accepted form.
func (t aliasTable) decode(data []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return data, nil
	}
	for field, wire := range t.toWire {
		if _, ok := obj[field]; ok {
			return nil, &fieldError{Path: field, Err: fmt.Errorf("unexpected key, expected %q", wire)}
		}
		if v, ok := obj[wire]; ok {
			delete(obj, wire)
			obj[field] = v
		}
	}
	return json.Marshal(obj)
}

func (t aliasTable) encode(data []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for field, wire := range t.toWire {
		if v, ok := obj[field]; ok {
			delete(obj, field)
			obj[wire] = v
		}
	}
	return json.Marshal(obj)
}
