package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies which member of the Value union is set.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindBool
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is a single status attribute: exactly one of number, bool, string
// or string list. The zero Value is KindInvalid.
type Value struct {
	kind Kind
	num  float64
	b    bool
	s    string
	list []string
}

func Number(v float64) Value { return Value{kind: KindNumber, num: v} }
func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }

// List copies items so the caller cannot alias the stored slice.
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Items returns a copy of the list members.
func (v Value) Items() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]string{}, v.list...), true
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindList:
		return fmt.Sprint(v.list)
	default:
		return "<invalid>"
	}
}

// UnmarshalYAML never fails on an unexpected node shape; it yields
// KindInvalid so a single odd entry cannot reject a whole effect map.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	*v = Value{}
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!int", "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return nil
			}
			*v = finiteNumber(f)
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil
			}
			*v = Bool(b)
		case "!!str":
			*v = String(node.Value)
		}
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, c := range node.Content {
			if c.Kind != yaml.ScalarNode || c.ShortTag() != "!!str" {
				return nil
			}
			items = append(items, c.Value)
		}
		*v = List(items...)
	}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case KindNumber:
		return v.num, nil
	case KindBool:
		return v.b, nil
	case KindString:
		return v.s, nil
	case KindList:
		return v.list, nil
	default:
		return nil, nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = valueFromAny(raw)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.s)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func valueFromAny(raw any) Value {
	switch x := raw.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}
		}
		return finiteNumber(f)
	case float64:
		return finiteNumber(x)
	case int:
		return Number(float64(x))
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case []any:
		items := make([]string, 0, len(x))
		for _, it := range x {
			s, ok := it.(string)
			if !ok {
				return Value{}
			}
			items = append(items, s)
		}
		return List(items...)
	default:
		return Value{}
	}
}

// finiteNumber rejects NaN and the infinities; they are not valid amounts.
func finiteNumber(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Number(f)
}
