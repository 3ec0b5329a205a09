package domain

// Act names. These double as the LastInitiative marker persisted on control
// state, so renames are a state-compatibility break.
const (
	ActValueSet            = "ValueSet"
	ActValueChanged        = "ValueChanged"
	ActInvalidValue        = "InvalidValue"
	ActValueConfirmed      = "ValueConfirmed"
	ActValueDisconfirmed   = "ValueDisconfirmed"
	ActRequestValue        = "RequestValue"
	ActRequestChangedValue = "RequestChangedValue"
	ActConfirmValue        = "ConfirmValue"
)

// SystemAct is a typed record of something the system did this turn (content
// act) or proactively wants next (initiative act). Acts drive both state
// updates and rendering; each act is rendered by its originating control.
type SystemAct interface {
	// Control returns the id of the originating control.
	Control() string
	// Name returns the stable act name.
	Name() string
}

// ContentAct marks acts that describe what happened during the turn.
type ContentAct interface {
	SystemAct
	contentAct()
}

// InitiativeAct marks acts that request the user's next contribution.
// A ControlResult contains at most one of these.
type InitiativeAct interface {
	SystemAct
	initiativeAct()
}

type actBase struct {
	ControlID string `json:"control_id"`
}

func (a actBase) Control() string { return a.ControlID }

type contentBase struct{ actBase }

func (contentBase) contentAct() {}

type initiativeBase struct{ actBase }

func (initiativeBase) initiativeAct() {}

// ValueSetAct reports that a control accepted a new value via a "set" action.
type ValueSetAct struct {
	contentBase
	Value string `json:"value"`
}

func (ValueSetAct) Name() string { return ActValueSet }

// NewValueSetAct builds a ValueSetAct for the given control.
func NewValueSetAct(controlID, value string) ValueSetAct {
	return ValueSetAct{contentBase{actBase{controlID}}, value}
}

// ValueChangedAct reports that a control replaced an existing value.
// PreviousValue is always defined; emitting this act without one is a
// programming error caught by the control.
type ValueChangedAct struct {
	contentBase
	Value         string `json:"value"`
	PreviousValue string `json:"previous_value"`
}

func (ValueChangedAct) Name() string { return ActValueChanged }

// NewValueChangedAct builds a ValueChangedAct for the given control.
func NewValueChangedAct(controlID, value, previous string) ValueChangedAct {
	return ValueChangedAct{contentBase{actBase{controlID}}, value, previous}
}

// InvalidValueAct reports that a candidate value failed validation.
type InvalidValueAct struct {
	contentBase
	Value  string `json:"value"`
	Reason string `json:"reason"`
	// Message is an optional human-readable rendering of Reason supplied by
	// the failing validator.
	Message string `json:"message,omitempty"`
}

func (InvalidValueAct) Name() string { return ActInvalidValue }

// NewInvalidValueAct builds an InvalidValueAct for the given control.
func NewInvalidValueAct(controlID, value, reason, message string) InvalidValueAct {
	return InvalidValueAct{contentBase{actBase{controlID}}, value, reason, message}
}

// ValueConfirmedAct reports that the user affirmed the current value.
type ValueConfirmedAct struct {
	contentBase
	Value string `json:"value"`
}

func (ValueConfirmedAct) Name() string { return ActValueConfirmed }

// NewValueConfirmedAct builds a ValueConfirmedAct for the given control.
func NewValueConfirmedAct(controlID, value string) ValueConfirmedAct {
	return ValueConfirmedAct{contentBase{actBase{controlID}}, value}
}

// ValueDisconfirmedAct reports that the user rejected the current value.
type ValueDisconfirmedAct struct {
	contentBase
	Value string `json:"value"`
}

func (ValueDisconfirmedAct) Name() string { return ActValueDisconfirmed }

// NewValueDisconfirmedAct builds a ValueDisconfirmedAct for the given control.
func NewValueDisconfirmedAct(controlID, value string) ValueDisconfirmedAct {
	return ValueDisconfirmedAct{contentBase{actBase{controlID}}, value}
}

// RequestValueAct asks the user to supply a value for a control.
type RequestValueAct struct {
	initiativeBase
}

func (RequestValueAct) Name() string { return ActRequestValue }

// NewRequestValueAct builds a RequestValueAct for the given control.
func NewRequestValueAct(controlID string) RequestValueAct {
	return RequestValueAct{initiativeBase{actBase{controlID}}}
}

// RequestChangedValueAct asks the user to supply a replacement value.
type RequestChangedValueAct struct {
	initiativeBase
}

func (RequestChangedValueAct) Name() string { return ActRequestChangedValue }

// NewRequestChangedValueAct builds a RequestChangedValueAct for the given control.
func NewRequestChangedValueAct(controlID string) RequestChangedValueAct {
	return RequestChangedValueAct{initiativeBase{actBase{controlID}}}
}

// ConfirmValueAct asks the user to confirm the current value.
type ConfirmValueAct struct {
	initiativeBase
	Value string `json:"value"`
}

func (ConfirmValueAct) Name() string { return ActConfirmValue }

// NewConfirmValueAct builds a ConfirmValueAct for the given control.
func NewConfirmValueAct(controlID, value string) ConfirmValueAct {
	return ConfirmValueAct{initiativeBase{actBase{controlID}}, value}
}
