// Package patch turns partial-update request bodies into column operations.
//
// The convention mirrors what the editor forms send: a field that is absent
// from the body is left untouched, an explicit empty string or null clears
// the stored value, anything else replaces it. Form bodies may also spell out
// nested JSON documents with dotted keys ("services.0.name", "basic_info.city",
// "facilities.premises[]"); those are reconstituted before being stored.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// FieldKind tells the decoder how a column stores its value.
type FieldKind int

const (
	Text FieldKind = iota
	JSON
)

// Schema lists the fields a patch may touch.
type Schema map[string]FieldKind

// Mode is the operation applied to one column.
type Mode int

const (
	Set Mode = iota + 1
	Clear
	// Merge shallow-merges a JSON object into the stored object.
	Merge
)

type Op struct {
	Mode  Mode
	Value string
}

// Patch maps field name to the operation on that field.
type Patch map[string]Op

// Column is one SET target produced by a patch, in deterministic order.
type Column struct {
	Name  string
	Kind  FieldKind
	Mode  Mode
	Value interface{}
}

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// FromJSON decodes a JSON object body.
func FromJSON(body []byte, schema Schema) (Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidValue)
	}

	p := Patch{}
	for key, val := range raw {
		kind, ok := schema[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		op, err := decodeJSONValue(kind, val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		p[key] = op
	}
	return p, nil
}

func decodeJSONValue(kind FieldKind, val json.RawMessage) (Op, error) {
	trimmed := bytes.TrimSpace(val)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Op{Mode: Clear}, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Op{}, fmt.Errorf("%w: malformed string", ErrInvalidValue)
		}
		if strings.TrimSpace(s) == "" {
			return Op{Mode: Clear}, nil
		}
		if kind == Text {
			return Op{Mode: Set, Value: s}, nil
		}
		// JSON columns posted as an encoded string, the way form libraries send them.
		return decodeFormValue(kind, s)
	}

	if kind == Text {
		return Op{}, fmt.Errorf("%w: must be a string", ErrInvalidValue)
	}
	if !json.Valid(trimmed) {
		return Op{}, fmt.Errorf("%w: malformed JSON", ErrInvalidValue)
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return Op{}, fmt.Errorf("%w: expected a JSON object or array", ErrInvalidValue)
	}
	return Op{Mode: Set, Value: string(trimmed)}, nil
}

// FromForm decodes a form-encoded body.
func FromForm(values url.Values, schema Schema) (Patch, error) {
	p := Patch{}
	nested := map[string]url.Values{}

	for key, vals := range values {
		field, rest, isNested := strings.Cut(key, ".")
		kind, ok := schema[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}

		if !isNested {
			v := ""
			if len(vals) > 0 {
				v = vals[len(vals)-1]
			}
			op, err := decodeFormValue(kind, v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", field, err)
			}
			p[field] = op
			continue
		}

		if kind != JSON {
			return nil, fmt.Errorf("%w: %s does not accept nested keys", ErrInvalidValue, field)
		}
		if nested[field] == nil {
			nested[field] = url.Values{}
		}
		nested[field][rest] = vals
	}

	for field, sub := range nested {
		if _, whole := p[field]; whole {
			return nil, fmt.Errorf("%w: %s given both whole and nested", ErrInvalidValue, field)
		}
		doc, isArray, err := build(sub)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		if isBlank(doc) {
			continue
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		mode := Merge
		if isArray {
			mode = Set
		}
		p[field] = Op{Mode: mode, Value: string(raw)}
	}

	return p, nil
}

func decodeFormValue(kind FieldKind, v string) (Op, error) {
	if strings.TrimSpace(v) == "" {
		return Op{Mode: Clear}, nil
	}
	if kind == Text {
		return Op{Mode: Set, Value: v}, nil
	}
	v = strings.TrimSpace(v)
	if !json.Valid([]byte(v)) || (v[0] != '{' && v[0] != '[') {
		return Op{}, fmt.Errorf("%w: expected a JSON object or array", ErrInvalidValue)
	}
	return Op{Mode: Set, Value: v}, nil
}

// build reconstitutes a nested document from dotted keys relative to one field.
// Integer heads produce an array ordered by index; other heads produce an object.
func build(sub url.Values) (interface{}, bool, error) {
	groups := map[string]url.Values{}
	leaves := map[string][]string{}

	for key, vals := range sub {
		head, rest, deeper := strings.Cut(key, ".")
		if head == "" {
			return nil, false, fmt.Errorf("%w: empty key segment", ErrInvalidValue)
		}
		if deeper {
			if groups[head] == nil {
				groups[head] = url.Values{}
			}
			groups[head][rest] = vals
			continue
		}
		leaves[head] = vals
	}

	heads := make([]string, 0, len(groups)+len(leaves))
	for h := range groups {
		heads = append(heads, h)
	}
	for h := range leaves {
		if _, dup := groups[h]; dup {
			return nil, false, fmt.Errorf("%w: %s is both a value and a group", ErrInvalidValue, h)
		}
		heads = append(heads, h)
	}

	indexed := 0
	for _, h := range heads {
		if _, err := strconv.Atoi(strings.TrimSuffix(h, "[]")); err == nil {
			indexed++
		}
	}
	if indexed > 0 && indexed != len(heads) {
		return nil, false, fmt.Errorf("%w: mixed indexed and named keys", ErrInvalidValue)
	}

	element := func(h string) (interface{}, error) {
		if g, ok := groups[h]; ok {
			v, _, err := build(g)
			return v, err
		}
		return leafValue(h, leaves[h]), nil
	}

	if indexed > 0 {
		sort.Slice(heads, func(i, j int) bool {
			a, _ := strconv.Atoi(strings.TrimSuffix(heads[i], "[]"))
			b, _ := strconv.Atoi(strings.TrimSuffix(heads[j], "[]"))
			return a < b
		})
		items := make([]interface{}, 0, len(heads))
		for _, h := range heads {
			v, err := element(h)
			if err != nil {
				return nil, false, err
			}
			if isBlank(v) {
				continue
			}
			items = append(items, v)
		}
		return items, true, nil
	}

	obj := make(map[string]interface{}, len(heads))
	for _, h := range heads {
		v, err := element(h)
		if err != nil {
			return nil, false, err
		}
		// blank keys stay untouched in the stored object
		if isBlank(v) {
			continue
		}
		obj[strings.TrimSuffix(h, "[]")] = v
	}
	return obj, false, nil
}

func leafValue(head string, vals []string) interface{} {
	if strings.HasSuffix(head, "[]") {
		list := make([]string, 0, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				list = append(list, v)
			}
		}
		return list
	}
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[len(vals)-1])
}

func isBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		for _, inner := range t {
			if !isBlank(inner) {
				return false
			}
		}
		return true
	}
	return false
}

// Restrict returns an error when the patch touches a field outside names.
func (p Patch) Restrict(names ...string) error {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}
	for field := range p {
		if _, ok := allowed[field]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}
	return nil
}

// Cleared reports whether the patch explicitly clears field.
func (p Patch) Cleared(field string) bool {
	op, ok := p[field]
	return ok && op.Mode == Clear
}

// Text returns the new value of a text field, if the patch sets one.
func (p Patch) Text(field string) (string, bool) {
	op, ok := p[field]
	if !ok || op.Mode != Set {
		return "", false
	}
	return op.Value, true
}

// Columns returns the patch as ordered SET targets. Cleared fields carry a nil value.
func (p Patch) Columns(schema Schema) []Column {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]Column, 0, len(names))
	for _, name := range names {
		op := p[name]
		col := Column{Name: name, Kind: schema[name], Mode: op.Mode}
		if op.Mode != Clear {
			col.Value = op.Value
		}
		cols = append(cols, col)
	}
	return cols
}
