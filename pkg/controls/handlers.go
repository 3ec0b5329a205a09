package controls

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mbruna/espalier/pkg/domain"
)

// Predicate decides whether a handler applies to the input given the
// control's current state. Predicates must be pure: dispatch may evaluate
// them repeatedly before anything runs.
type Predicate func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool

// Effect mutates control state and appends system acts. It runs at most
// once per turn, after its predicate was selected.
type Effect func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error

// InputHandler is one named (predicate, effect) pair on a control.
type InputHandler struct {
	Name string
	When Predicate
	Do   Effect

	builtin bool
}

// ConflictObserver is notified when more than one handler matches the same
// input on one control. Wired by hosts that count or alert on conflicts.
type ConflictObserver func(controlID string, handlers []string)

// handlerSet is the ordered handler registry of a single control: built-ins
// first, then user-supplied custom handlers in registration order.
type handlerSet struct {
	handlers   []InputHandler
	logger     *slog.Logger
	onConflict ConflictObserver
}

func (hs *handlerSet) addBuiltin(name string, when Predicate, do Effect) {
	hs.handlers = append(hs.handlers, InputHandler{Name: name, When: when, Do: do, builtin: true})
}

func (hs *handlerSet) addCustom(h InputHandler) {
	h.builtin = false
	hs.handlers = append(hs.handlers, h)
}

// match evaluates every predicate and selects the acting handler. When more
// than one predicate matches the selection is logged as a diagnostic naming
// all of them, since simultaneous matches usually indicate misconfigured
// handlers. Precedence is a documented safety net, not a contract: built-in
// handlers win over custom ones, ties break by registration order.
func (hs *handlerSet) match(ctx context.Context, controlID string, in *domain.ControlInput, s *domain.ValueState) (string, bool) {
	var matches []InputHandler
	for _, h := range hs.handlers {
		if h.When != nil && h.When(ctx, in, s) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return "", false
	case 1:
		return matches[0].Name, true
	}

	names := make([]string, len(matches))
	for i, h := range matches {
		names[i] = h.Name
	}
	if hs.logger != nil {
		hs.logger.Warn("multiple input handlers matched one input",
			"control", controlID,
			"handlers", strings.Join(names, ","),
		)
	}
	if hs.onConflict != nil {
		hs.onConflict(controlID, names)
	}

	for _, h := range matches {
		if h.builtin {
			return h.Name, true
		}
	}
	return matches[0].Name, true
}

// run executes the named handler. An unknown name means Handle was called
// with a stale or foreign decision.
func (hs *handlerSet) run(ctx context.Context, controlID, name string, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
	for _, h := range hs.handlers {
		if h.Name == name {
			return h.Do(ctx, in, s, rb)
		}
	}
	return &domain.DispatchError{
		ControlID: controlID,
		Reason:    "decision names unknown handler " + name,
	}
}
