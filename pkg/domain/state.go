package domain

// State is the mutable record shared by every node of a run.
// Values are JSON-like: strings, numbers, bools, nil, []any and map[string]any.
type State map[string]any

// NewState creates an empty state.
func NewState() State {
	return make(State)
}

// Clone returns a shallow copy of the state.
// Nested maps and slices are shared with the original.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Lookup returns the value stored under key.
// A key holding nil is reported as missing.
func (s State) Lookup(key string) (any, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
