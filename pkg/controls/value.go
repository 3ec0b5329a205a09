package controls

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/ports"
)

// Built-in handler names.
const (
	HandlerSetWithValue       = "SetWithValue"
	HandlerSetWithoutValue    = "SetWithoutValue"
	HandlerChangeWithValue    = "ChangeWithValue"
	HandlerChangeWithoutValue = "ChangeWithoutValue"
	HandlerBareValue          = "BareValue"
	HandlerAffirmed           = "ConfirmationAffirmed"
	HandlerDisaffirmed        = "ConfirmationDisaffirmed"
)

// Initiative decision names.
const (
	initiativeConfirm = "initiative.ConfirmValue"
	initiativeChange  = "initiative.RequestChangedValue"
	initiativeRequest = "initiative.RequestValue"
)

// Option configures a leaf control.
type Option func(*leafConfig)

type leafConfig struct {
	logger     *slog.Logger
	prompts    ports.PromptSource
	onConflict ConflictObserver
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *leafConfig) { c.logger = logger }
}

// WithPromptSource overrides literal prompts with a localized bundle.
// Lookup keys are "<control id>.<prompt key>", e.g. "date.request_value".
func WithPromptSource(src ports.PromptSource) Option {
	return func(c *leafConfig) { c.prompts = src }
}

// WithConflictObserver registers a callback for handler-conflict diagnostics.
func WithConflictObserver(obs ConflictObserver) Option {
	return func(c *leafConfig) { c.onConflict = obs }
}

// ValueControl acquires one free-form value: it elicits, validates and
// optionally confirms it, implementing the full value lifecycle. Other leaf
// kinds (list, number, date) build on it with stricter validation.
type ValueControl struct {
	props    Props
	state    domain.ValueState
	handlers handlerSet
	prompts  ports.PromptSource
	logger   *slog.Logger
}

var _ Control = (*ValueControl)(nil)

// NewValueControl builds a value control, deep-merging props over defaults.
func NewValueControl(p Props, opts ...Option) (*ValueControl, error) {
	return newValueControl(p, defaultProps(), opts...)
}

func newValueControl(p, defaults Props, opts ...Option) (*ValueControl, error) {
	cfg := leafConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	resolved, err := resolveProps(p, defaults)
	if err != nil {
		return nil, err
	}

	c := &ValueControl{
		props:   resolved,
		prompts: cfg.prompts,
		logger:  cfg.logger,
	}
	c.handlers = handlerSet{logger: cfg.logger, onConflict: cfg.onConflict}
	c.registerBuiltins()
	for _, h := range resolved.CustomHandlers {
		c.handlers.addCustom(h)
	}
	return c, nil
}

func (c *ValueControl) registerBuiltins() {
	c.handlers.addBuiltin(HandlerSetWithValue,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return c.intentOK(in) && c.targetOK(in) && c.actionOK(in, c.props.SetActions) && c.slotValue(in) != ""
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			return c.applyValue(domain.ActionSet, in, s, rb)
		})

	c.handlers.addBuiltin(HandlerSetWithoutValue,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return c.intentOK(in) && c.addressesMe(in) && c.actionOK(in, c.props.SetActions) && c.slotValue(in) == ""
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			return c.elicit(domain.ActionSet, s, rb)
		})

	c.handlers.addBuiltin(HandlerChangeWithValue,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return c.intentOK(in) && c.targetOK(in) && c.actionOK(in, c.props.ChangeActions) && c.slotValue(in) != ""
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			return c.applyValue(domain.ActionChange, in, s, rb)
		})

	c.handlers.addBuiltin(HandlerChangeWithoutValue,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return c.intentOK(in) && c.addressesMe(in) && c.actionOK(in, c.props.ChangeActions) && c.slotValue(in) == ""
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			return c.elicit(domain.ActionChange, s, rb)
		})

	// A bare value (no action slot) is claimed only while this control has
	// an open elicitation; the recorded action decides set vs change.
	c.handlers.addBuiltin(HandlerBareValue,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return c.intentOK(in) && in.Action() == "" && in.Feedback() == "" &&
				c.slotValue(in) != "" && s.ElicitationAction != ""
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			return c.applyValue(s.ElicitationAction, in, s, rb)
		})

	// Bare yes/no is legal only while our last initiative act was a
	// confirmation request.
	c.handlers.addBuiltin(HandlerAffirmed,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return s.LastInitiative == domain.ActConfirmValue && c.isAffirm(in)
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			s.Confirmed = true
			s.LastInitiative = ""
			return rb.Add(domain.NewValueConfirmedAct(c.props.ID, s.ValueOrEmpty()))
		})

	c.handlers.addBuiltin(HandlerDisaffirmed,
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return s.LastInitiative == domain.ActConfirmValue && c.isDisaffirm(in)
		},
		func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			s.Confirmed = false
			s.LastInitiative = ""
			if err := rb.Add(domain.NewValueDisconfirmedAct(c.props.ID, s.ValueOrEmpty())); err != nil {
				return err
			}
			return c.elicit(domain.ActionSet, s, rb)
		})
}

// ID returns the control's identifier.
func (c *ValueControl) ID() string { return c.props.ID }

// Children returns nil: value controls are leaves.
func (c *ValueControl) Children() []Control { return nil }

// Value returns the current value, or "" when none is set.
func (c *ValueControl) Value() string { return c.state.ValueOrEmpty() }

// State returns a copy of the control's persisted state, for inspection.
func (c *ValueControl) State() domain.ValueState { return c.state }

// CanHandle evaluates the handler registry without mutating state and
// returns the selected handler as an explicit decision.
func (c *ValueControl) CanHandle(ctx context.Context, in *domain.ControlInput) (*Decision, error) {
	name, ok := c.handlers.match(ctx, c.props.ID, in, &c.state)
	if !ok {
		return nil, nil
	}
	return &Decision{ControlID: c.props.ID, Handler: name}, nil
}

// Handle runs the previously selected handler. A missing or foreign
// decision returns a DispatchError.
func (c *ValueControl) Handle(ctx context.Context, in *domain.ControlInput, d *Decision, rb *domain.ResultBuilder) error {
	if d == nil || d.ControlID != c.props.ID || d.Handler == "" {
		return &domain.DispatchError{
			ControlID: c.props.ID,
			Reason:    "handle called without a prior canHandle decision",
		}
	}
	return c.handlers.run(ctx, c.props.ID, d.Handler, in, &c.state, rb)
}

// CanTakeInitiative applies the initiative-decision order. The order is
// load-bearing: an invalid value keeps its open elicitation, so it is
// re-elicited rather than confirmed, and a missing value is elicited rather
// than re-validated.
func (c *ValueControl) CanTakeInitiative(ctx context.Context, in *domain.ControlInput) (*Decision, error) {
	switch {
	case c.props.Confirmation && c.state.HasValue() && !c.state.Confirmed && c.state.ElicitationAction == "":
		return &Decision{ControlID: c.props.ID, Handler: initiativeConfirm}, nil
	case c.state.HasValue() && runValidators(c.props.Validators, &c.state, in) != nil:
		return &Decision{ControlID: c.props.ID, Handler: initiativeChange}, nil
	case !c.state.HasValue() && c.props.Required:
		return &Decision{ControlID: c.props.ID, Handler: initiativeRequest}, nil
	}
	return nil, nil
}

// TakeInitiative executes an initiative decision.
func (c *ValueControl) TakeInitiative(ctx context.Context, in *domain.ControlInput, d *Decision, rb *domain.ResultBuilder) error {
	if d == nil || d.ControlID != c.props.ID {
		return &domain.DispatchError{
			ControlID: c.props.ID,
			Reason:    "takeInitiative called without a prior decision",
		}
	}
	switch d.Handler {
	case initiativeConfirm:
		return c.emitInitiative(domain.NewConfirmValueAct(c.props.ID, c.state.ValueOrEmpty()), rb)
	case initiativeChange:
		return c.elicit(domain.ActionChange, &c.state, rb)
	case initiativeRequest:
		return c.elicit(domain.ActionSet, &c.state, rb)
	}
	return &domain.DispatchError{
		ControlID: c.props.ID,
		Reason:    "unknown initiative decision " + d.Handler,
	}
}

// applyValue stores the slot value, validates it, and emits the matching
// content act. Validation failures surface as InvalidValueAct followed by
// re-elicitation for the same action that triggered the attempt.
func (c *ValueControl) applyValue(action string, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
	slot, _ := in.Slot(c.props.SlotName)
	hadPrevious := s.HasValue()
	s.SetValue(slot.Value, slot.ERMatch)

	if failure := runValidators(c.props.Validators, s, in); failure != nil {
		if err := rb.Add(domain.NewInvalidValueAct(c.props.ID, slot.Value, failure.Reason, failure.Message)); err != nil {
			return err
		}
		return c.elicit(action, s, rb)
	}

	// A ValueChangedAct requires a defined previous value; a "change"
	// arriving before any value was set degrades to a plain set.
	if action == domain.ActionChange && hadPrevious && s.PreviousValue != nil {
		return rb.Add(domain.NewValueChangedAct(c.props.ID, slot.Value, *s.PreviousValue))
	}
	return rb.Add(domain.NewValueSetAct(c.props.ID, slot.Value))
}

// elicit opens (or re-opens) an elicitation for the given action and emits
// the matching request act.
func (c *ValueControl) elicit(action string, s *domain.ValueState, rb *domain.ResultBuilder) error {
	s.ElicitationAction = action
	if action == domain.ActionChange {
		return c.emitInitiative(domain.NewRequestChangedValueAct(c.props.ID), rb)
	}
	return c.emitInitiative(domain.NewRequestValueAct(c.props.ID), rb)
}

// emitInitiative appends an initiative act and records it as the control's
// last initiative.
func (c *ValueControl) emitInitiative(act domain.InitiativeAct, rb *domain.ResultBuilder) error {
	if err := rb.Add(act); err != nil {
		return err
	}
	c.state.LastInitiative = act.Name()
	return nil
}

// RenderAct maps this control's acts to prompt fragments and directives.
func (c *ValueControl) RenderAct(act domain.SystemAct, rb *domain.ResponseBuilder) error {
	switch a := act.(type) {
	case domain.ValueSetAct:
		rb.AddPrompt(c.prompt("value_set", c.props.Prompts.ValueSet, a.Value))
	case domain.ValueChangedAct:
		rb.AddPrompt(c.prompt("value_changed", c.props.Prompts.ValueChanged, a.Value))
	case domain.InvalidValueAct:
		if a.Message != "" {
			rb.AddPrompt(a.Message)
		} else {
			rb.AddPrompt(c.prompt("invalid_value", c.props.Prompts.InvalidValue, a.Value))
		}
	case domain.ValueConfirmedAct:
		rb.AddPrompt(c.prompt("value_confirmed", c.props.Prompts.ValueConfirmed, a.Value))
	case domain.ValueDisconfirmedAct:
		rb.AddPrompt(c.prompt("value_disconfirmed", c.props.Prompts.ValueDisconfirmed, a.Value))
	case domain.RequestValueAct:
		p := c.prompt("request_value", c.props.Prompts.RequestValue, c.props.SlotName)
		rb.AddPrompt(p)
		rb.AddReprompt(p)
		rb.AddDirective(domain.Directive{
			Type:   domain.DirectiveElicitSlot,
			Slot:   c.props.SlotName,
			Intent: c.props.Intent,
		})
	case domain.RequestChangedValueAct:
		p := c.prompt("request_changed_value", c.props.Prompts.RequestChangedValue, c.props.SlotName)
		rb.AddPrompt(p)
		rb.AddReprompt(p)
		rb.AddDirective(domain.Directive{
			Type:   domain.DirectiveElicitSlot,
			Slot:   c.props.SlotName,
			Intent: c.props.Intent,
		})
	case domain.ConfirmValueAct:
		p := c.prompt("confirm_value", c.props.Prompts.ConfirmValue, a.Value)
		rb.AddPrompt(p)
		rb.AddReprompt(p)
		rb.AddDirective(domain.Directive{
			Type:   domain.DirectiveConfirmSlot,
			Slot:   c.props.SlotName,
			Intent: c.props.Intent,
		})
	default:
		return &domain.UnhandledActError{ControlID: c.props.ID, Act: act.Name()}
	}
	return nil
}

// LoadState rehydrates persisted state; nil restores defaults.
func (c *ValueControl) LoadState(raw json.RawMessage) error {
	if raw == nil {
		c.state = domain.ValueState{}
		return nil
	}
	var s domain.ValueState
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("control %q: failed to load state: %w", c.props.ID, err)
	}
	c.state = s
	return nil
}

// SaveState serializes the control's state.
func (c *ValueControl) SaveState() (json.RawMessage, error) {
	data, err := json.Marshal(c.state)
	if err != nil {
		return nil, fmt.Errorf("control %q: failed to save state: %w", c.props.ID, err)
	}
	return data, nil
}

// prompt resolves a fragment: PromptSource key first, literal template as
// fallback. Templates without a format verb render as-is.
func (c *ValueControl) prompt(key, tpl string, args ...any) string {
	if c.prompts != nil {
		if full := c.props.ID + "." + key; c.prompts.Has(full) {
			return c.prompts.Get(full, args...)
		}
	}
	if !strings.Contains(tpl, "%") {
		return tpl
	}
	return fmt.Sprintf(tpl, args...)
}

func (c *ValueControl) intentOK(in *domain.ControlInput) bool {
	if in.Kind != domain.RequestIntent {
		return false
	}
	return c.props.Intent == "" || in.Intent == c.props.Intent ||
		in.Intent == domain.IntentAffirm || in.Intent == domain.IntentDeny
}

// targetOK accepts an empty target slot (ambient addressing) or one of the
// configured targets.
func (c *ValueControl) targetOK(in *domain.ControlInput) bool {
	t := in.Target()
	if t == "" {
		return true
	}
	return slices.Contains(c.props.Targets, t) || t == c.props.ID
}

// addressesMe requires explicit addressing: a matching target slot, or an
// open elicitation on this control when the target is absent. Unlike
// targetOK it never claims an un-targeted input for an idle control, so a
// bare "set" does not fan out to every sibling.
func (c *ValueControl) addressesMe(in *domain.ControlInput) bool {
	t := in.Target()
	if t == "" {
		return c.state.ElicitationAction != ""
	}
	return slices.Contains(c.props.Targets, t) || t == c.props.ID
}

func (c *ValueControl) actionOK(in *domain.ControlInput, actions []string) bool {
	a := in.Action()
	return a != "" && slices.Contains(actions, a)
}

func (c *ValueControl) slotValue(in *domain.ControlInput) string {
	return in.Value(c.props.SlotName)
}

func (c *ValueControl) isAffirm(in *domain.ControlInput) bool {
	return in.Feedback() == domain.FeedbackAffirm || in.Intent == domain.IntentAffirm
}

func (c *ValueControl) isDisaffirm(in *domain.ControlInput) bool {
	return in.Feedback() == domain.FeedbackDisaffirm || in.Intent == domain.IntentDeny
}
