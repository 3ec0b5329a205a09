package domain

import "encoding/json"

// ValueState is the persisted state of one value-acquisition control. The
// leaf state machine is encoded implicitly on these fields: no value,
// value set but unconfirmed, awaiting elicitation, awaiting confirmation,
// confirmed.
type ValueState struct {
	// Value is the current value; nil means no value has been acquired.
	Value *string `json:"value,omitempty"`

	// PreviousValue is the value replaced by the most recent set. It must be
	// defined whenever a ValueChangedAct is emitted.
	PreviousValue *string `json:"previous_value,omitempty"`

	// ERMatch records whether the current value matched the controlled
	// vocabulary via entity resolution.
	ERMatch bool `json:"er_match,omitempty"`

	// ElicitationAction is the pending elicitation ("set" or "change"), or
	// empty when no elicitation is open.
	ElicitationAction string `json:"elicitation_action,omitempty"`

	// Confirmed reports whether the user affirmed the current value. It
	// resets to false whenever the value is set or changed.
	Confirmed bool `json:"confirmed,omitempty"`

	// LastInitiative is the name of the last initiative act this control
	// issued. Bare confirmations are only legal while it names a
	// confirmation request.
	LastInitiative string `json:"last_initiative,omitempty"`
}

// HasValue reports whether a value is present.
func (s *ValueState) HasValue() bool {
	return s.Value != nil
}

// ValueOrEmpty returns the current value, or "" when absent.
func (s *ValueState) ValueOrEmpty() string {
	if s.Value == nil {
		return ""
	}
	return *s.Value
}

// SetValue stores a new value, captures the previous one, and resets the
// confirmation flag per the value lifecycle.
func (s *ValueState) SetValue(value string, erMatch bool) {
	s.PreviousValue = s.Value
	v := value
	s.Value = &v
	s.ERMatch = erMatch
	s.Confirmed = false
	s.ElicitationAction = ""
}

// SessionState is the persisted blob for one dialog session: each control's
// serialized state keyed by control id. The live tree is rebuilt from it at
// turn start and re-serialized at turn end.
type SessionState struct {
	Controls map[string]json.RawMessage `json:"controls"`
}

// NewSessionState returns an empty session state.
func NewSessionState() *SessionState {
	return &SessionState{Controls: make(map[string]json.RawMessage)}
}

// Clone returns a deep copy, so stores can hand out isolated snapshots.
func (s *SessionState) Clone() *SessionState {
	out := NewSessionState()
	for id, raw := range s.Controls {
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		out.Controls[id] = cp
	}
	return out
}
