package controls

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/mbruna/espalier/pkg/domain"
)

// PromptSet holds the literal prompt fragments a control renders per act,
// keyed by act kind. Empty fields fall back to the built-in defaults during
// props resolution; a PromptSource (if configured) overrides both.
type PromptSet struct {
	RequestValue        string `mapstructure:"request_value"`
	RequestChangedValue string `mapstructure:"request_changed_value"`
	ConfirmValue        string `mapstructure:"confirm_value"`
	ValueSet            string `mapstructure:"value_set"`
	ValueChanged        string `mapstructure:"value_changed"`
	InvalidValue        string `mapstructure:"invalid_value"`
	ValueConfirmed      string `mapstructure:"value_confirmed"`
	ValueDisconfirmed   string `mapstructure:"value_disconfirmed"`
}

// Props configures a value-acquisition control. User props are deep-merged
// with the control kind's defaults into one immutable value at construction
// time; nothing consults partial configuration later.
type Props struct {
	// ID is the control's identifier, unique within the tree. Required.
	ID string

	// SlotName is the value-bearing slot this control consumes. Defaults to ID.
	SlotName string

	// Intent restricts handling to one intent name; empty accepts any
	// intent request carrying matching slots.
	Intent string

	// Targets are the target-slot values that address this control. A
	// populated target slot must match one of them; an empty target slot
	// matches any control.
	Targets []string

	// SetActions and ChangeActions are the action-slot vocabularies mapped
	// to the "set" and "change" elicitation actions.
	SetActions    []string
	ChangeActions []string

	// Required makes the control elicit proactively while it has no value.
	Required bool

	// Confirmation makes the control ask the user to confirm each value
	// before treating it as final.
	Confirmation bool

	// Validators run in order after each set; the first failure wins and
	// drives re-elicitation.
	Validators []ValidationFunc

	// CustomHandlers extend the built-in handler list. They are considered
	// after built-ins when both match (logged as a conflict).
	CustomHandlers []InputHandler

	// Prompts are the literal render fragments, merged over defaults.
	Prompts PromptSet
}

// defaultProps are the base values every value control starts from.
func defaultProps() Props {
	return Props{
		SetActions:    []string{"set", "select"},
		ChangeActions: []string{"change", "update"},
		Prompts: PromptSet{
			RequestValue:        "What value for %s?",
			RequestChangedValue: "What should the new value for %s be?",
			ConfirmValue:        "Was that %s?",
			ValueSet:            "OK, %s.",
			ValueChanged:        "OK, updated to %s.",
			InvalidValue:        "Sorry, %s is not a valid choice.",
			ValueConfirmed:      "Great.",
			ValueDisconfirmed:   "My mistake.",
		},
	}
}

// resolveProps deep-merges user props over defaults and validates the
// result. The declarative parts travel through mapstructure maps so nested
// zero values never clobber defaults; function-valued fields are overlaid
// directly.
func resolveProps(user Props, defaults Props) (Props, error) {
	if user.ID == "" {
		return Props{}, &domain.ConfigurationError{Reason: "control props require an ID"}
	}

	out := defaults
	out.ID = user.ID
	out.SlotName = user.SlotName
	if out.SlotName == "" {
		out.SlotName = user.ID
	}
	out.Intent = user.Intent
	out.Required = user.Required
	out.Confirmation = user.Confirmation
	if len(user.Targets) > 0 {
		out.Targets = user.Targets
	}
	if len(user.SetActions) > 0 {
		out.SetActions = user.SetActions
	}
	if len(user.ChangeActions) > 0 {
		out.ChangeActions = user.ChangeActions
	}
	out.Validators = append(out.Validators[:len(out.Validators):len(out.Validators)], user.Validators...)
	out.CustomHandlers = user.CustomHandlers

	merged, err := mergePrompts(defaults.Prompts, user.Prompts)
	if err != nil {
		return Props{}, err
	}
	out.Prompts = merged

	for _, a := range out.SetActions {
		for _, b := range out.ChangeActions {
			if a == b {
				return Props{}, &domain.ConfigurationError{
					Reason: fmt.Sprintf("control %q maps action %q to both set and change", out.ID, a),
				}
			}
		}
	}
	return out, nil
}

// mergePrompts overlays non-empty user prompt fields onto the defaults.
func mergePrompts(def, user PromptSet) (PromptSet, error) {
	var base, overlay map[string]any
	if err := mapstructure.Decode(def, &base); err != nil {
		return PromptSet{}, fmt.Errorf("failed to decode default prompts: %w", err)
	}
	if err := mapstructure.Decode(user, &overlay); err != nil {
		return PromptSet{}, fmt.Errorf("failed to decode prompt overrides: %w", err)
	}
	for k, v := range overlay {
		if s, ok := v.(string); ok && s != "" {
			base[k] = s
		}
	}
	var out PromptSet
	if err := mapstructure.Decode(base, &out); err != nil {
		return PromptSet{}, fmt.Errorf("failed to merge prompts: %w", err)
	}
	return out, nil
}
