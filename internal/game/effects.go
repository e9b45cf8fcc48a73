package game

import (
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

// Effect is a single keyed change to the status record.
type Effect struct {
	Attr  string
	Value Value
}

// Effects keeps entries in authoring order; Apply walks them in that order.
type Effects []Effect

func (e *Effects) UnmarshalYAML(node *yaml.Node) error {
	*e = nil
	return decodeOrderedYAML(node, func(key string, val *yaml.Node) error {
		var v Value
		if err := val.Decode(&v); err != nil {
			return err
		}
		*e = append(*e, Effect{Attr: key, Value: v})
		return nil
	})
}

func (e *Effects) UnmarshalJSON(data []byte) error {
	*e = nil
	return decodeOrderedJSON(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*e = append(*e, Effect{Attr: key, Value: v})
		return nil
	})
}

func (e Effects) MarshalJSON() ([]byte, error) {
	var s Status
	for _, ef := range e {
		s.Set(ef.Attr, ef.Value)
	}
	return s.MarshalJSON()
}

// Negate flips the sign of every numeric entry. Skill costs are authored as
// magnitudes and charged through Apply(status, cost.Negate()).
func (e Effects) Negate() Effects {
	out := make(Effects, 0, len(e))
	for _, ef := range e {
		if n, ok := ef.Value.Num(); ok {
			ef.Value = Number(-n)
		}
		out = append(out, ef)
	}
	return out
}

// Increases lists the attributes whose numeric effect is strictly positive,
// regardless of what clamping later does to the stored value.
func (e Effects) Increases() []string {
	var out []string
	for _, ef := range e {
		if n, ok := ef.Value.Num(); ok && n > 0 && !math.IsInf(n, 1) {
			out = append(out, ef.Attr)
		}
	}
	return out
}

// Apply returns a new status with effects merged in. status is not modified.
//
//   - number: added to an existing number, otherwise set; floored at 0 and
//     capped at StatCap for bounded attributes
//   - bool: set
//   - string: appended to the inventory for AttrItem, otherwise set
//
// Entries of any other kind, and NaN or infinite numbers, are skipped.
func Apply(status Status, effects Effects) Status {
	out := status.Clone()
	for _, ef := range effects {
		switch ef.Value.Kind() {
		case KindNumber:
			delta, _ := ef.Value.Num()
			if math.IsNaN(delta) || math.IsInf(delta, 0) {
				continue
			}
			next := delta
			if cur, ok := out.vals[ef.Attr]; ok {
				if n, ok := cur.Num(); ok {
					next = n + delta
				}
			}
			out.Set(ef.Attr, Number(clampStat(ef.Attr, next)))
		case KindBool:
			out.Set(ef.Attr, ef.Value)
		case KindString:
			s, _ := ef.Value.Str()
			if ef.Attr == AttrItem {
				items := out.Inventory()
				out.Set(AttrInventory, List(append(items, s)...))
				continue
			}
			out.Set(ef.Attr, ef.Value)
		}
	}
	return out
}

func clampStat(attr string, v float64) float64 {
	v = math.Max(0, v)
	if IsBounded(attr) {
		v = math.Min(StatCap, v)
	}
	return v
}
