package controls

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mbruna/espalier/pkg/domain"
)

// ListProps configures a ListControl.
type ListProps struct {
	Props

	// Choices is the controlled vocabulary the value must come from.
	Choices []string
}

// ListControl acquires one value out of a fixed choice list. A value is
// accepted when entity resolution matched it against the vocabulary, or
// when it literally equals one of the choices; anything else fails the
// built-in membership validator and is re-elicited.
type ListControl struct {
	*ValueControl
	choices []string
}

var _ Control = (*ListControl)(nil)

// NewListControl builds a list control.
func NewListControl(p ListProps, opts ...Option) (*ListControl, error) {
	if len(p.Choices) == 0 {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Sprintf("list control %q requires at least one choice", p.ID),
		}
	}
	choices := slices.Clone(p.Choices)

	membership := func(s *domain.ValueState, in *domain.ControlInput) *ValidationFailure {
		if s.ERMatch || slices.Contains(choices, s.ValueOrEmpty()) {
			return nil
		}
		return &ValidationFailure{
			Reason:  "not_in_choices",
			Message: fmt.Sprintf("Sorry, %s is not one of: %s.", s.ValueOrEmpty(), strings.Join(choices, ", ")),
		}
	}
	p.Props.Validators = append([]ValidationFunc{membership}, p.Props.Validators...)

	defaults := defaultProps()
	defaults.Prompts.RequestValue = "Which %s? Options are " + strings.Join(choices, ", ") + "."
	defaults.Prompts.RequestChangedValue = "What should the new %s be? Options are " + strings.Join(choices, ", ") + "."

	vc, err := newValueControl(p.Props, defaults, opts...)
	if err != nil {
		return nil, err
	}
	return &ListControl{ValueControl: vc, choices: choices}, nil
}

// Choices returns the configured vocabulary.
func (c *ListControl) Choices() []string {
	return slices.Clone(c.choices)
}
