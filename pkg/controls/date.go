package controls

import (
	"fmt"
	"time"

	"github.com/mbruna/espalier/pkg/domain"
)

// dateLayout is the wire format for date values (ISO-8601 calendar date).
const dateLayout = "2006-01-02"

// DateProps configures a DateControl.
type DateProps struct {
	Props

	// PastAllowed permits dates before today. Default is to reject them.
	PastAllowed bool

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// DateControl acquires one calendar date in ISO-8601 form. Unparseable
// dates, and past dates unless allowed, fail built-in validation.
type DateControl struct {
	*ValueControl
}

var _ Control = (*DateControl)(nil)

// NewDateControl builds a date control.
func NewDateControl(p DateProps, opts ...Option) (*DateControl, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	pastAllowed := p.PastAllowed

	wellFormed := func(s *domain.ValueState, in *domain.ControlInput) *ValidationFailure {
		d, err := time.Parse(dateLayout, s.ValueOrEmpty())
		if err != nil {
			return &ValidationFailure{
				Reason:  "not_a_date",
				Message: fmt.Sprintf("Sorry, %s is not a date I understand.", s.ValueOrEmpty()),
			}
		}
		if !pastAllowed {
			y, m, day := now().UTC().Date()
			today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
			if d.Before(today) {
				return &ValidationFailure{
					Reason:  "date_in_past",
					Message: fmt.Sprintf("Sorry, %s is in the past.", s.ValueOrEmpty()),
				}
			}
		}
		return nil
	}
	p.Props.Validators = append([]ValidationFunc{wellFormed}, p.Props.Validators...)

	defaults := defaultProps()
	defaults.Prompts.RequestValue = "What date for %s?"
	defaults.Prompts.RequestChangedValue = "What should the new date for %s be?"

	vc, err := newValueControl(p.Props, defaults, opts...)
	if err != nil {
		return nil, err
	}
	return &DateControl{ValueControl: vc}, nil
}

// Date returns the current value as a time; ok is false while no valid
// date is set.
func (c *DateControl) Date() (time.Time, bool) {
	d, err := time.Parse(dateLayout, c.Value())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
