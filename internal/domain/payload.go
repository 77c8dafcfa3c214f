package domain

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// Payload owns one dialog-turn document for the duration of a request.
// It is constructed from a deep copy of the inbound wire document, is
// mutated in place by exactly one dispatched fulfiller, and never
// aliases the caller's data: every read returns a clone and Snapshot
// returns an owned outbound document. A Payload does not survive past
// one request and is never shared between requests.
type Payload struct {
	fields   map[string]any // top-level fields except slots/response_slots
	slots    map[string]*Slot
	response *ResponseSlots
}

// requiredFields are the fields every dialog turn must carry.
var requiredFields = []string{"state", "intent", "session_info", "slots"}

// NewPayload deep-copies the inbound document and materializes the
// slot models. It fails when a required field is missing or a slot does
// not have the {type, values} wire shape.
func NewPayload(doc map[string]any) (*Payload, error) {
	for _, f := range requiredFields {
		if _, ok := doc[f]; !ok {
			return nil, &FieldNotFoundError{Field: f}
		}
	}
	p := &Payload{
		fields: make(map[string]any, len(doc)),
		slots:  make(map[string]*Slot),
	}
	for k, v := range doc {
		switch k {
		case "slots":
			rawSlots, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("field [slots] is not an object")
			}
			for name, raw := range rawSlots {
				s, err := decodeSlot(name, raw)
				if err != nil {
					return nil, err
				}
				p.slots[CanonicalSlotName(name)] = s
			}
		case "response_slots":
			p.response = decodeResponseSlots(v)
		default:
			p.fields[k] = cloneValue(v)
		}
	}
	return p, nil
}

// Snapshot returns an owned copy of the document in wire shape.
func (p *Payload) Snapshot() map[string]any {
	out := cloneMap(p.fields)
	slots := make(map[string]any, len(p.slots))
	for name, s := range p.slots {
		slots[name] = s.encode()
	}
	out["slots"] = slots
	if p.response != nil {
		out["response_slots"] = p.response.encode()
	}
	return out
}

// State returns the current dialog-state name.
func (p *Payload) State() string {
	s, _ := p.fields["state"].(string)
	return s
}

// Intent returns the recognized intent name.
func (p *Payload) Intent() string {
	s, _ := p.fields["intent"].(string)
	return s
}

// Field returns a copy of a top-level field. Absence is an error; there
// is no default.
func (p *Payload) Field(name string) (any, error) {
	switch name {
	case "slots":
		snapshot := p.Snapshot()
		return snapshot["slots"], nil
	case "response_slots":
		if p.response == nil {
			return nil, &FieldNotFoundError{Field: name}
		}
		return p.response.encode(), nil
	}
	v, ok := p.fields[name]
	if !ok {
		return nil, &FieldNotFoundError{Field: name}
	}
	return cloneValue(v), nil
}

// SetField writes a copy of value into a top-level field. Slots and the
// response sub-document are managed through their own operations.
func (p *Payload) SetField(name string, value any) {
	p.fields[name] = cloneValue(value)
}

func (p *Payload) ContainsField(name string) bool {
	switch name {
	case "slots":
		return true
	case "response_slots":
		return p.response != nil
	}
	_, ok := p.fields[name]
	return ok
}

// IDs returns the opaque identifier fields of the turn.
func (p *Payload) IDs() (map[string]any, error) {
	ids := make(map[string]any, 6)
	for _, f := range []string{"ai_version", "device", "dialog", "external_user_id", "qid", "session_id"} {
		v, err := p.Field(f)
		if err != nil {
			return nil, err
		}
		ids[f] = v
	}
	return ids, nil
}

// Location returns the latitudinal and longitudinal values together.
func (p *Payload) Location() (map[string]any, error) {
	lat, err := p.Field("lat")
	if err != nil {
		return nil, err
	}
	lon, err := p.Field("lon")
	if err != nil {
		return nil, err
	}
	return map[string]any{"lat": lat, "lon": lon}, nil
}

// SessionValue reads one key from session_info.
func (p *Payload) SessionValue(key string) (any, bool) {
	si, _ := p.fields["session_info"].(map[string]any)
	v, ok := si[key]
	return cloneValue(v), ok
}

// SetSessionValue writes one key into session_info.
func (p *Payload) SetSessionValue(key string, value any) {
	si, ok := p.fields["session_info"].(map[string]any)
	if !ok {
		si = make(map[string]any)
		p.fields["session_info"] = si
	}
	si[key] = cloneValue(value)
}

func (p *Payload) SlotExists(name string) bool {
	_, ok := p.slots[CanonicalSlotName(name)]
	return ok
}

// SlotNames returns the canonical names of all slots, sorted.
func (p *Payload) SlotNames() []string {
	names := make([]string, 0, len(p.slots))
	for name := range p.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Slot returns a copy of the named slot.
func (p *Payload) Slot(name string) (*Slot, error) {
	s, err := p.slot(name)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// SetSlot installs a copy of the slot under the canonical name,
// replacing any existing slot wholesale.
func (p *Payload) SetSlot(name string, s *Slot) {
	p.slots[CanonicalSlotName(name)] = s.Clone()
}

func (p *Payload) slot(name string) (*Slot, error) {
	canonical := CanonicalSlotName(name)
	s, ok := p.slots[canonical]
	if !ok {
		return nil, &SlotNotFoundError{Name: canonical}
	}
	return s, nil
}

// CreateSlot creates the slot with the given type if absent, then
// inserts (or, with overwrite, replaces) the given values.
func (p *Payload) CreateSlot(name string, slotType SlotType, values []any, squash, overwrite bool) error {
	canonical := CanonicalSlotName(name)
	if _, ok := p.slots[canonical]; !ok {
		p.slots[canonical] = &Slot{Type: slotType}
	}
	if overwrite {
		return p.OverwriteSlotValues(canonical, values, squash)
	}
	return p.InsertSlotValues(canonical, values, squash)
}

// InsertSlotValues appends new values to a slot and marks them resolved.
func (p *Payload) InsertSlotValues(name string, values []any, squash bool) error {
	return p.addSlotValues(name, values, false, squash)
}

// OverwriteSlotValues unresolves all currently-resolved values of the
// slot, then appends the new values as resolved. At most one generation
// of resolved values is authoritative; history is retained unresolved.
func (p *Payload) OverwriteSlotValues(name string, values []any, squash bool) error {
	return p.addSlotValues(name, values, true, squash)
}

func (p *Payload) addSlotValues(name string, values []any, replace, squash bool) error {
	s, err := p.slot(name)
	if err != nil {
		return err
	}
	if replace {
		unresolveResolved(s)
	}
	for _, value := range values {
		if s.Type.rawValues() {
			vm, ok := asSlotValue(value)
			if !ok {
				return fmt.Errorf("slot [%s]: %s values must be objects", CanonicalSlotName(name), s.Type)
			}
			v := vm.Clone()
			v["resolved"] = ResolvedMark
			s.Values = append(s.Values, v)
			continue
		}
		if vm, ok := asSlotValue(value); ok && squash {
			v := SlotValue{"tokens": nil, "resolved": ResolvedMark}
			for k, fv := range vm {
				v[k] = cloneValue(fv)
			}
			s.Values = append(s.Values, v)
			continue
		}
		s.Values = append(s.Values, SlotValue{"tokens": nil, "resolved": ResolvedMark, "value": cloneValue(value)})
	}
	return nil
}

// ResolvedSlotValues returns the currently-resolved values of a slot as
// simplified records: bookkeeping fields are stripped and a record with
// exactly one remaining field is flattened to the bare scalar. A missing
// slot yields an empty sequence, never an error.
func (p *Payload) ResolvedSlotValues(name string) []any {
	return p.filteredSlotValues(name, ResolvedMark, []string{"resolved", "tokens"})
}

// UnresolvedSlotValues is the unresolved counterpart of
// ResolvedSlotValues; tokens are retained since they are the evidence
// still awaiting resolution.
func (p *Payload) UnresolvedSlotValues(name string) []any {
	return p.filteredSlotValues(name, UnresolvedMark, []string{"resolved"})
}

func (p *Payload) filteredSlotValues(name string, mark int, blacklist []string) []any {
	s, err := p.slot(name)
	if err != nil {
		return nil
	}
	var result []any
	for _, v := range s.Values {
		if markOf(v["resolved"]) != mark {
			continue
		}
		current := make(map[string]any)
		for k, fv := range v {
			if !slices.Contains(blacklist, k) {
				current[k] = cloneValue(fv)
			}
		}
		if len(current) == 1 {
			for _, only := range current {
				result = append(result, only)
			}
			continue
		}
		result = append(result, current)
	}
	return result
}

// ResolvePair pairs the raw tokens extracted from the utterance with
// the value constructed by the fulfiller. For date/dict slots only
// Tokens is consulted; the stored record is kept as-is.
type ResolvePair struct {
	Tokens any
	Value  any
}

// ResolveAppend resolves unresolved values matched by tokens without
// touching the currently-resolved generation.
func (p *Payload) ResolveAppend(name string, pairs []ResolvePair, squash bool) error {
	return p.resolve(name, pairs, false, squash)
}

// ResolveReplace unresolves the currently-resolved generation, then
// resolves the unresolved values matched by tokens.
func (p *Payload) ResolveReplace(name string, pairs []ResolvePair, squash bool) error {
	return p.resolve(name, pairs, true, squash)
}

func (p *Payload) resolve(name string, pairs []ResolvePair, replace, squash bool) error {
	s, err := p.slot(name)
	if err != nil {
		return err
	}
	// Candidates are collected before the replace pass so that freshly
	// unresolved values of the old generation cannot be re-matched.
	unresolved := make([]SlotValue, 0, len(s.Values))
	for _, v := range s.Values {
		if v.IsUnresolved() {
			unresolved = append(unresolved, v)
		}
	}
	if replace {
		unresolveResolved(s)
	}
	for _, pair := range pairs {
		target, ok := lastByTokens(unresolved, pair.Tokens)
		if !ok {
			return &TokenNotFoundError{Slot: CanonicalSlotName(name), Tokens: pair.Tokens}
		}
		if !s.Type.rawValues() {
			if vm, ok := asSlotValue(pair.Value); ok && squash {
				for k, fv := range vm {
					target[k] = cloneValue(fv)
				}
			} else {
				target["value"] = cloneValue(pair.Value)
			}
		}
		target.SetResolved(ResolvedMark)
	}
	return nil
}

// ClearSlot unresolves all resolved values of the slot. Clearing a slot
// that does not exist is a no-op, not an error.
func (p *Payload) ClearSlot(name string) {
	s, err := p.slot(name)
	if err != nil {
		return
	}
	unresolveResolved(s)
}

// SetValueStatus marks a single slot value with the given
// alternate-vocabulary status (typically StatusDelete).
func (p *Payload) SetValueStatus(name string, index int, status string) error {
	s, err := p.slot(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.Values) {
		return fmt.Errorf("slot [%s] has no value at index %d", CanonicalSlotName(name), index)
	}
	s.Values[index].SetStatus(status)
	return nil
}

// Transition overrides the current state in the state graph. An
// existing response sub-document has its response_type kept in sync.
func (p *Payload) Transition(newState string) {
	p.fields["state"] = newState
	if p.response != nil {
		p.response.ResponseType = newState
	}
}

// AddResponseVisual writes into the visuals mapping of the response
// sub-document, creating it lazily; the speakables mapping is seeded
// with the same value when the key is absent there.
func (p *Payload) AddResponseVisual(key string, value any) {
	p.addResponse("visuals", key, value)
}

// AddResponseSpeakable is the speakables counterpart of
// AddResponseVisual.
func (p *Payload) AddResponseSpeakable(key string, value any) {
	p.addResponse("speakables", key, value)
}

func (p *Payload) addResponse(field, key string, value any) {
	if p.response == nil {
		p.response = newResponseSlots(p.State())
	}
	p.response.add(field, key, cloneValue(value))
}

// BlindResolve forces every value of every slot into the
// resolved/confirmed state, synthesizing missing values from tokens.
// Idempotent; nearly every fulfiller applies it as a closing step.
func (p *Payload) BlindResolve() {
	for _, s := range p.slots {
		for _, v := range s.Values {
			v.Confirm()
		}
	}
}

func unresolveResolved(s *Slot) {
	for _, v := range s.Values {
		if v.IsResolved() {
			v.SetResolved(UnresolvedMark)
		}
	}
}

// lastByTokens finds the most recent unresolved value whose tokens
// match; with duplicate evidence the latest extraction wins.
func lastByTokens(values []SlotValue, tokens any) (SlotValue, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if reflect.DeepEqual(values[i]["tokens"], tokens) {
			return values[i], true
		}
	}
	return nil, false
}

func asSlotValue(v any) (SlotValue, bool) {
	switch m := v.(type) {
	case SlotValue:
		return m, true
	case map[string]any:
		return SlotValue(m), true
	}
	return nil, false
}
