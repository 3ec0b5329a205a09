package controls

import (
	"fmt"
	"strconv"

	"github.com/mbruna/espalier/pkg/domain"
)

// NumberProps configures a NumberControl.
type NumberProps struct {
	Props

	// Min and Max bound the accepted value when set.
	Min *int
	Max *int
}

// NumberControl acquires one integer value. Non-numeric input and values
// outside the configured bounds fail built-in validation and re-elicit.
type NumberControl struct {
	*ValueControl
}

var _ Control = (*NumberControl)(nil)

// NewNumberControl builds a number control.
func NewNumberControl(p NumberProps, opts ...Option) (*NumberControl, error) {
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Sprintf("number control %q has min %d above max %d", p.ID, *p.Min, *p.Max),
		}
	}
	min, max := p.Min, p.Max

	numeric := func(s *domain.ValueState, in *domain.ControlInput) *ValidationFailure {
		n, err := strconv.Atoi(s.ValueOrEmpty())
		if err != nil {
			return &ValidationFailure{
				Reason:  "not_a_number",
				Message: fmt.Sprintf("Sorry, %s is not a number.", s.ValueOrEmpty()),
			}
		}
		if min != nil && n < *min {
			return &ValidationFailure{
				Reason:  "below_minimum",
				Message: fmt.Sprintf("Sorry, it must be at least %d.", *min),
			}
		}
		if max != nil && n > *max {
			return &ValidationFailure{
				Reason:  "above_maximum",
				Message: fmt.Sprintf("Sorry, it must be at most %d.", *max),
			}
		}
		return nil
	}
	p.Props.Validators = append([]ValidationFunc{numeric}, p.Props.Validators...)

	defaults := defaultProps()
	defaults.Prompts.RequestValue = "What number for %s?"
	defaults.Prompts.RequestChangedValue = "What should the new number for %s be?"

	vc, err := newValueControl(p.Props, defaults, opts...)
	if err != nil {
		return nil, err
	}
	return &NumberControl{ValueControl: vc}, nil
}

// Int returns the current value as an integer; ok is false while no valid
// number is set.
func (c *NumberControl) Int() (int, bool) {
	n, err := strconv.Atoi(c.Value())
	if err != nil {
		return 0, false
	}
	return n, true
}
