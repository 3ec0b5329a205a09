// Package validators provides reusable validation functions for value
// controls, plus an expression-based validator for configuration-driven
// rules.
package validators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mbruna/espalier/pkg/controls"
	"github.com/mbruna/espalier/pkg/domain"
)

// NotEmpty rejects blank values.
func NotEmpty() controls.ValidationFunc {
	return func(s *domain.ValueState, _ *domain.ControlInput) *controls.ValidationFailure {
		if strings.TrimSpace(s.ValueOrEmpty()) == "" {
			return &controls.ValidationFailure{Reason: "empty_value", Message: "A value is required."}
		}
		return nil
	}
}

// MaxLength rejects values longer than n characters.
func MaxLength(n int) controls.ValidationFunc {
	return func(s *domain.ValueState, _ *domain.ControlInput) *controls.ValidationFailure {
		if len(s.ValueOrEmpty()) > n {
			return &controls.ValidationFailure{
				Reason:  "too_long",
				Message: fmt.Sprintf("Values are limited to %d characters.", n),
			}
		}
		return nil
	}
}

// Pattern rejects values that do not match the compiled expression.
func Pattern(re *regexp.Regexp, reason string) controls.ValidationFunc {
	return func(s *domain.ValueState, _ *domain.ControlInput) *controls.ValidationFailure {
		if !re.MatchString(s.ValueOrEmpty()) {
			return &controls.ValidationFailure{Reason: reason}
		}
		return nil
	}
}

// OneOf rejects values outside the allowed set. Matching is
// case-insensitive.
func OneOf(allowed ...string) controls.ValidationFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = struct{}{}
	}
	return func(s *domain.ValueState, _ *domain.ControlInput) *controls.ValidationFailure {
		if _, ok := set[strings.ToLower(s.ValueOrEmpty())]; !ok {
			return &controls.ValidationFailure{Reason: "not_allowed"}
		}
		return nil
	}
}

// Expr compiles a boolean expr-lang expression into a validator. The
// expression sees the candidate value and input context:
//
//	value      string  the candidate value
//	previous   string  the value it replaced, "" if none
//	er_match   bool    whether recognition matched the value
//	confirmed  bool    whether the value was previously confirmed
//	slots      map[string]string  all slots on the current input
//
// The validator fails with the given reason when the expression is false.
// Compile errors surface at configuration time, not per turn.
func Expr(expression, reason string) (controls.ValidationFunc, error) {
	program, err := expr.Compile(expression, expr.Env(exprEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile validator %q: %w", expression, err)
	}
	return exprValidator(program, expression, reason), nil
}

// MustExpr is Expr for static expressions; it panics on compile errors.
func MustExpr(expression, reason string) controls.ValidationFunc {
	fn, err := Expr(expression, reason)
	if err != nil {
		panic(err)
	}
	return fn
}

func exprValidator(program *vm.Program, expression, reason string) controls.ValidationFunc {
	return func(s *domain.ValueState, in *domain.ControlInput) *controls.ValidationFailure {
		output, err := expr.Run(program, buildEnv(s, in))
		if err != nil {
			return &controls.ValidationFailure{
				Reason:  "validator_error",
				Message: fmt.Sprintf("evaluating %q: %v", expression, err),
			}
		}
		if ok, _ := output.(bool); !ok {
			return &controls.ValidationFailure{Reason: reason}
		}
		return nil
	}
}

func exprEnv() map[string]any {
	return buildEnv(&domain.ValueState{}, &domain.ControlInput{})
}

func buildEnv(s *domain.ValueState, in *domain.ControlInput) map[string]any {
	previous := ""
	if s.PreviousValue != nil {
		previous = *s.PreviousValue
	}
	slots := make(map[string]string)
	if in != nil {
		for _, slot := range in.Slots {
			slots[slot.Name] = slot.Value
		}
	}
	return map[string]any{
		"value":     s.ValueOrEmpty(),
		"previous":  previous,
		"er_match":  s.ERMatch,
		"confirmed": s.Confirmed,
		"slots":     slots,
	}
}
