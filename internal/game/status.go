package game

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known status attributes.
const (
	AttrCultivation = "cultivation"
	AttrSpirit      = "spirit"
	AttrStamina     = "stamina"
	AttrDaoHeart    = "dao_heart"
	AttrKarma       = "karma"
	AttrObsession   = "obsession"
	AttrSwordIntent = "sword_intent"
	AttrSect        = "sect"

	// AttrItem is the effect key whose string values are collected into
	// AttrInventory instead of being stored as a scalar.
	AttrItem      = "item"
	AttrInventory = "inventory"
)

// StatCap is the upper bound for bounded attributes.
const StatCap = 100

var boundedAttrs = map[string]bool{
	AttrSpirit:   true,
	AttrStamina:  true,
	AttrDaoHeart: true,
}

// IsBounded reports whether attr is clamped to [0, StatCap].
func IsBounded(attr string) bool { return boundedAttrs[attr] }

// Status is the player's attribute record. Keys keep insertion order and the
// record only grows. Methods that change it are on *Status; Apply works on a
// Clone so callers can diff before and after.
type Status struct {
	keys []string
	vals map[string]Value
}

// NewStatus returns the starting record of a fresh playthrough.
func NewStatus() Status {
	var s Status
	s.Set(AttrCultivation, Number(0))
	s.Set(AttrSpirit, Number(100))
	s.Set(AttrStamina, Number(100))
	s.Set(AttrDaoHeart, Number(50))
	s.Set(AttrKarma, Number(0))
	s.Set(AttrObsession, Number(0))
	s.Set(AttrSwordIntent, String("none"))
	s.Set(AttrSect, String("none"))
	return s
}

func (s Status) Len() int { return len(s.keys) }

// Keys returns attribute names in insertion order.
func (s Status) Keys() []string { return append([]string{}, s.keys...) }

func (s Status) Get(attr string) (Value, bool) {
	v, ok := s.vals[attr]
	return v, ok
}

// Num returns the numeric value of attr, or 0 when absent or not numeric.
func (s Status) Num(attr string) float64 {
	if v, ok := s.vals[attr]; ok {
		if n, ok := v.Num(); ok {
			return n
		}
	}
	return 0
}

// Inventory returns the collected items in acquisition order.
func (s Status) Inventory() []string {
	items, _ := s.vals[AttrInventory].Items()
	return items
}

// Set stores v under attr, appending attr to the key order when new.
func (s *Status) Set(attr string, v Value) {
	if s.vals == nil {
		s.vals = make(map[string]Value)
	}
	if _, ok := s.vals[attr]; !ok {
		s.keys = append(s.keys, attr)
	}
	s.vals[attr] = v
}

// Clone returns a deep copy.
func (s Status) Clone() Status {
	out := Status{
		keys: append([]string(nil), s.keys...),
		vals: make(map[string]Value, len(s.vals)),
	}
	for k, v := range s.vals {
		if v.kind == KindList {
			v = List(v.list...)
		}
		out.vals[k] = v
	}
	return out
}

// Equal compares values; key order is ignored.
func (s Status) Equal(o Status) bool {
	if len(s.vals) != len(o.vals) {
		return false
	}
	for k, v := range s.vals {
		ov, ok := o.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Merge overwrites s with every entry of o, in o's order. Used to lay story
// variables over the default record.
func (s *Status) Merge(o Status) {
	for _, k := range o.keys {
		s.Set(k, o.vals[k])
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := s.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	*s = Status{}
	return decodeOrderedJSON(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		if v.Kind() != KindInvalid {
			s.Set(key, v)
		}
		return nil
	})
}

func (s *Status) UnmarshalYAML(node *yaml.Node) error {
	*s = Status{}
	return decodeOrderedYAML(node, func(key string, val *yaml.Node) error {
		var v Value
		if err := val.Decode(&v); err != nil {
			return err
		}
		if v.Kind() != KindInvalid {
			s.Set(key, v)
		}
		return nil
	})
}

// decodeOrderedJSON walks a JSON object keeping source key order.
func decodeOrderedJSON(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", kt)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// decodeOrderedYAML walks a YAML mapping keeping source key order.
func decodeOrderedYAML(node *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
