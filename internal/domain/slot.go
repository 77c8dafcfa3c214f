package domain

import (
	"fmt"
	"strings"
)

// SlotType determines the validation and shape of a slot's values.
type SlotType string

const (
	SlotTypeString  SlotType = "string"
	SlotTypeInt     SlotType = "int"
	SlotTypeDate    SlotType = "date"
	SlotTypeDict    SlotType = "dict"
	SlotTypeBoolean SlotType = "boolean"
)

// rawValues reports whether values of this type are stored as-is
// instead of being wrapped under a "value" key.
func (t SlotType) rawValues() bool {
	return t == SlotTypeDate || t == SlotTypeDict
}

// Numeric resolution markers carried in the "resolved" field.
const (
	ResolvedMark   = 1
	UnresolvedMark = -1
)

// Alternate resolution-state vocabulary carried in the "status" field.
// Both vocabularies appear on the wire and are preserved; see Confirm.
const (
	StatusExtracted = "EXTRACTED"
	StatusMapped    = "MAPPED"
	StatusConfirmed = "CONFIRMED"
	StatusDelete    = "DELETE"
)

// CanonicalSlotName normalizes a slot name to its canonical form:
// upper-case, wrapped in a single leading and trailing underscore.
// Idempotent: canonicalizing twice yields the same string as once.
func CanonicalSlotName(name string) string {
	if !strings.HasPrefix(name, "_") {
		return "_" + strings.ToUpper(name) + "_"
	}
	return strings.ToUpper(name)
}

// SlotValue is one candidate value for a slot. Well-known keys are
// "tokens" (raw utterance evidence, nil for programmatic values),
// "value" (the resolved value, absent until resolution), "resolved"
// (1/-1) and "status"; any extra keys (e.g. "currency") ride along.
type SlotValue map[string]any

func (v SlotValue) Clone() SlotValue { return SlotValue(cloneMap(v)) }

// Tokens returns the raw evidence for this value, nil when absent.
func (v SlotValue) Tokens() any { return v["tokens"] }

// Value returns the resolved value, nil when not yet resolved.
func (v SlotValue) Value() any { return v["value"] }

// HasValue reports whether a resolved value has been assigned.
func (v SlotValue) HasValue() bool {
	_, ok := v["value"]
	return ok
}

func (v SlotValue) IsResolved() bool   { return markOf(v["resolved"]) == ResolvedMark }
func (v SlotValue) IsUnresolved() bool { return markOf(v["resolved"]) == UnresolvedMark }

func (v SlotValue) SetResolved(mark int) { v["resolved"] = mark }

// Status returns the alternate-vocabulary state, if the value carries one.
func (v SlotValue) Status() (string, bool) {
	s, ok := v["status"].(string)
	return s, ok
}

func (v SlotValue) SetStatus(status string) { v["status"] = status }

// Confirm forces the value into the resolved/confirmed state. Values
// already carrying the status vocabulary are confirmed in that
// vocabulary; all others get the numeric marker. A missing value is
// synthesized from tokens. Idempotent.
func (v SlotValue) Confirm() {
	if _, ok := v["status"]; ok {
		v["status"] = StatusConfirmed
	} else {
		v["resolved"] = ResolvedMark
	}
	if !v.HasValue() {
		v["value"] = v.Tokens()
	}
}

// markOf reads a resolution marker that may arrive as a JSON number.
func markOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// Slot holds the ordered candidate values for one canonical slot name.
// Type is fixed at first reference for the life of the turn. Meta
// carries slot-level wire fields beyond type/values (candidates,
// mappings) and round-trips untouched.
type Slot struct {
	Type   SlotType
	Values []SlotValue
	Meta   map[string]any
}

func (s *Slot) Clone() *Slot {
	out := &Slot{Type: s.Type, Meta: cloneMap(s.Meta)}
	if s.Values != nil {
		out.Values = make([]SlotValue, len(s.Values))
		for i, v := range s.Values {
			out.Values[i] = v.Clone()
		}
	}
	return out
}

// decodeSlot builds a Slot from the wire object {type, values: [...]}.
func decodeSlot(name string, raw any) (*Slot, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("slot [%s]: not an object", name)
	}
	s := &Slot{}
	if t, ok := m["type"].(string); ok {
		s.Type = SlotType(t)
	}
	if rawValues, ok := m["values"].([]any); ok {
		s.Values = make([]SlotValue, 0, len(rawValues))
		for i, rv := range rawValues {
			vm, ok := rv.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("slot [%s]: value %d is not an object", name, i)
			}
			s.Values = append(s.Values, SlotValue(cloneMap(vm)))
		}
	}
	for k, v := range m {
		if k == "type" || k == "values" {
			continue
		}
		if s.Meta == nil {
			s.Meta = make(map[string]any)
		}
		s.Meta[k] = cloneValue(v)
	}
	return s, nil
}

// encode reassembles the wire object.
func (s *Slot) encode() map[string]any {
	values := make([]any, len(s.Values))
	for i, v := range s.Values {
		values[i] = map[string]any(v.Clone())
	}
	out := map[string]any{
		"type":   string(s.Type),
		"values": values,
	}
	for k, v := range s.Meta {
		out[k] = cloneValue(v)
	}
	return out
}
