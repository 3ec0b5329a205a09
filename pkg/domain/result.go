package domain

// ControlResult is the finalized outcome of one turn: the ordered system
// acts plus the session-continuation decision.
type ControlResult struct {
	Acts       []SystemAct
	EndSession bool
}

// Initiative returns the initiative act of the result, or nil.
func (r *ControlResult) Initiative() InitiativeAct {
	for _, act := range r.Acts {
		if ia, ok := act.(InitiativeAct); ok {
			return ia
		}
	}
	return nil
}

// ResultBuilder accumulates system acts in the order controls produce them
// and derives the session-continuation decision. It enforces the invariant
// that a result carries at most one initiative act.
type ResultBuilder struct {
	acts          []SystemAct
	hasInitiative bool
	endOverride   *bool
}

// NewResultBuilder returns an empty builder.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{}
}

// Add appends an act. Adding a second initiative act is a dispatch protocol
// violation and returns a DispatchError.
func (b *ResultBuilder) Add(act SystemAct) error {
	if _, ok := act.(InitiativeAct); ok {
		if b.hasInitiative {
			return &DispatchError{
				ControlID: act.Control(),
				Reason:    "second initiative act " + act.Name() + " in one turn",
			}
		}
		b.hasInitiative = true
	}
	b.acts = append(b.acts, act)
	return nil
}

// HasInitiative reports whether an initiative act was already added. The
// turn engine uses this to gate the second dispatch phase.
func (b *ResultBuilder) HasInitiative() bool {
	return b.hasInitiative
}

// Acts returns the acts added so far, in order.
func (b *ResultBuilder) Acts() []SystemAct {
	return b.acts
}

// SetEndSession overrides the derived session-continuation decision.
// Recovery hooks must call this explicitly.
func (b *ResultBuilder) SetEndSession(end bool) {
	b.endOverride = &end
}

// Result finalizes the turn. Unless overridden, the session stays open iff
// an initiative act is present.
func (b *ResultBuilder) Result() *ControlResult {
	end := !b.hasInitiative
	if b.endOverride != nil {
		end = *b.endOverride
	}
	return &ControlResult{
		Acts:       b.acts,
		EndSession: end,
	}
}
