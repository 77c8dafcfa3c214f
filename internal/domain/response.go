package domain

// ResponseSlots is the response sub-document, created lazily on first
// use. Visuals and speakables are parallel mappings: writing a key into
// either also seeds the other with the same value if the key is absent
// there, but never overwrites an existing entry.
type ResponseSlots struct {
	ResponseType string
	Visuals      map[string]any
	Speakables   map[string]any
}

func newResponseSlots(state string) *ResponseSlots {
	return &ResponseSlots{
		ResponseType: state,
		Visuals:      make(map[string]any),
		Speakables:   make(map[string]any),
	}
}

func decodeResponseSlots(raw any) *ResponseSlots {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	r := newResponseSlots("")
	if t, ok := m["response_type"].(string); ok {
		r.ResponseType = t
	}
	if visuals, ok := m["visuals"].(map[string]any); ok {
		r.Visuals = cloneMap(visuals)
	}
	if speakables, ok := m["speakables"].(map[string]any); ok {
		r.Speakables = cloneMap(speakables)
	}
	return r
}

func (r *ResponseSlots) encode() map[string]any {
	return map[string]any{
		"response_type": r.ResponseType,
		"visuals":       cloneMap(r.Visuals),
		"speakables":    cloneMap(r.Speakables),
	}
}

// add writes key into the named mapping and defaults the sibling
// mapping per the propagation rule.
func (r *ResponseSlots) add(field, key string, value any) {
	primary, other := r.Visuals, r.Speakables
	if field == "speakables" {
		primary, other = r.Speakables, r.Visuals
	}
	primary[key] = value
	if _, ok := other[key]; !ok {
		other[key] = cloneValue(value)
	}
}
