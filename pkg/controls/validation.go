package controls

import "github.com/mbruna/espalier/pkg/domain"

// ValidationFailure is the expected outcome of a rejected value. It is a
// value, never an error: validation failures drive re-elicitation, they do
// not abort the turn.
type ValidationFailure struct {
	// Reason is a stable machine-readable code (e.g. "not_in_choices").
	Reason string
	// Message optionally carries a human-readable rendering of Reason.
	Message string
}

// ValidationFunc inspects a candidate state (the value has already been
// stored) against the input that produced it. It returns nil on success.
type ValidationFunc func(s *domain.ValueState, in *domain.ControlInput) *ValidationFailure

// runValidators applies the ordered validator list; the first failure wins.
func runValidators(validators []ValidationFunc, s *domain.ValueState, in *domain.ControlInput) *ValidationFailure {
	for _, v := range validators {
		if failure := v(s, in); failure != nil {
			return failure
		}
	}
	return nil
}
