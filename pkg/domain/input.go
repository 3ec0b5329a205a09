package domain

// RequestKind categorizes the normalized request delivered by the transport
// layer. NLU has already happened upstream: intent requests arrive with the
// intent name and resolved slot values.
type RequestKind string

const (
	RequestLaunch RequestKind = "launch"
	RequestIntent RequestKind = "intent"
	RequestEvent  RequestKind = "event"
)

// Reserved slot names shared by every control intent. Each control may
// additionally consume one value-bearing slot named after itself (or its
// configured slot name).
const (
	SlotFeedback = "feedback"
	SlotAction   = "action"
	SlotTarget   = "target"
	SlotHead     = "head"
	SlotTail     = "tail"
)

// Feedback slot values for the confirmation path.
const (
	FeedbackAffirm    = "affirm"
	FeedbackDisaffirm = "disaffirm"
)

// Built-in intents the platform maps bare "yes"/"no" utterances to.
const (
	IntentAffirm = "Affirm"
	IntentDeny   = "Deny"
)

// Elicitation actions. A control is either acquiring a first value ("set")
// or replacing an existing one ("change").
const (
	ActionSet    = "set"
	ActionChange = "change"
)

// Slot is one resolved slot value. ERMatch reports whether the recognized
// value matched a canonical entry of a controlled vocabulary (entity
// resolution), as opposed to a free-form recognition.
type Slot struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	ERMatch bool   `json:"er_match,omitempty"`
}

// ControlInput is the normalized request routed through the control tree.
// It is immutable for the duration of a turn.
type ControlInput struct {
	Kind   RequestKind     `json:"kind"`
	Intent string          `json:"intent,omitempty"`
	Slots  map[string]Slot `json:"slots,omitempty"`

	// Raw carries the untouched platform payload for handlers that need
	// out-of-vocabulary data. The core never inspects it.
	Raw any `json:"-"`
}

// Slot returns the named slot and whether it carries a non-empty value.
func (in *ControlInput) Slot(name string) (Slot, bool) {
	if in == nil || in.Slots == nil {
		return Slot{}, false
	}
	s, ok := in.Slots[name]
	return s, ok && s.Value != ""
}

// Action returns the action slot value ("" when absent).
func (in *ControlInput) Action() string {
	s, _ := in.Slot(SlotAction)
	return s.Value
}

// Target returns the target slot value ("" when absent).
func (in *ControlInput) Target() string {
	s, _ := in.Slot(SlotTarget)
	return s.Value
}

// Feedback returns the feedback slot value ("" when absent).
func (in *ControlInput) Feedback() string {
	s, _ := in.Slot(SlotFeedback)
	return s.Value
}

// Value returns the value of the named value-bearing slot, or "" when the
// slot is absent or empty.
func (in *ControlInput) Value(name string) string {
	s, _ := in.Slot(name)
	return s.Value
}
