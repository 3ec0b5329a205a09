// Package runtime contains the per-turn resolution engine: it rebuilds the
// control tree from persisted state, runs the two-phase dispatch (handle,
// then initiative), renders the accumulated acts, and applies the error
// containment policy.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbruna/espalier/internal/logging"
	"github.com/mbruna/espalier/pkg/controls"
	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/observability"
)

// Manager builds the control tree for a turn. A fresh tree is created every
// turn and discarded after state is re-serialized, so implementations must
// not share mutable control instances across calls.
type Manager interface {
	CreateControlTree() (controls.Control, error)
}

// Engine executes turns against trees supplied by a Manager.
type Engine struct {
	manager Manager
	policy  domain.RecoveryPolicy
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecoveryPolicy sets the error containment policy.
func WithRecoveryPolicy(policy domain.RecoveryPolicy) Option {
	return func(e *Engine) { e.policy = policy }
}

// WithMetrics enables turn metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a turn engine.
func NewEngine(manager Manager, opts ...Option) *Engine {
	e := &Engine{
		manager: manager,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn routes one normalized input through the control tree and
// returns the rendered response. The session state is mutated in place with
// the re-serialized control states.
//
// Fatal errors inside controls are converted per the recovery policy; only
// infrastructure failures (tree construction, state serialization) surface
// as returned errors regardless of policy.
func (e *Engine) HandleTurn(ctx context.Context, in *domain.ControlInput, sess *domain.SessionState) (*domain.Response, error) {
	started := time.Now()

	tree, index, err := e.buildTree(sess)
	if err != nil {
		return nil, err
	}

	rb := domain.NewResultBuilder()

	// Phase 1: find exactly one acting handler and run it.
	decision, err := tree.CanHandle(ctx, in)
	if err != nil {
		switch e.policy.Strategy {
		case domain.RecoverPropagate:
			if e.policy.Hook == nil {
				e.observeError()
				return nil, fmt.Errorf("canHandle failed: %w", err)
			}
			return e.recoverTurn(ctx, err, in, "canHandle")
		case domain.RecoverNoMatch:
			e.logger.Warn("canHandle failed, treating as no match", "err", err)
			decision = nil
		default:
			return e.recoverTurn(ctx, err, in, "canHandle")
		}
	}

	if decision != nil {
		e.logger.Debug("input claimed",
			"control", decision.Target(),
			"handler", decision.Leaf().Handler,
		)
		if err := tree.Handle(ctx, in, decision, rb); err != nil {
			return e.claimedPhaseFailure(ctx, err, in, "handle")
		}
	} else {
		e.logger.Debug("no control claimed the input", "intent", in.Intent)
	}

	// Phase 2: if the turn still lacks a proactive follow-up, let exactly
	// one control take initiative. The control that just handled input is
	// eligible again.
	if !rb.HasInitiative() {
		initiative, err := tree.CanTakeInitiative(ctx, in)
		if err != nil {
			return e.claimedPhaseFailure(ctx, err, in, "canTakeInitiative")
		}
		if initiative != nil {
			if err := tree.TakeInitiative(ctx, in, initiative, rb); err != nil {
				return e.claimedPhaseFailure(ctx, err, in, "takeInitiative")
			}
		}
	}

	result := rb.Result()

	response, err := e.render(result, index)
	if err != nil {
		return e.claimedPhaseFailure(ctx, err, in, "render")
	}

	if err := e.saveStates(index, sess); err != nil {
		return nil, err
	}

	e.observeTurn(result, started)
	return response, nil
}

// buildTree creates the turn's tree, rejects duplicate ids, and hydrates
// per-control state from the session blob.
func (e *Engine) buildTree(sess *domain.SessionState) (controls.Control, map[string]controls.Control, error) {
	tree, err := e.manager.CreateControlTree()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create control tree: %w", err)
	}

	index := make(map[string]controls.Control)
	var walk func(c controls.Control) error
	walk = func(c controls.Control) error {
		if _, dup := index[c.ID()]; dup {
			return &domain.ConfigurationError{Reason: "duplicate control id " + c.ID()}
		}
		index[c.ID()] = c
		for _, child := range c.Children() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree); err != nil {
		return nil, nil, err
	}

	for id, ctrl := range index {
		if raw, ok := sess.Controls[id]; ok {
			if err := ctrl.LoadState(raw); err != nil {
				return nil, nil, err
			}
		}
	}
	return tree, index, nil
}

// render maps every act to output via its originating control.
func (e *Engine) render(result *domain.ControlResult, index map[string]controls.Control) (*domain.Response, error) {
	rb := domain.NewResponseBuilder()
	for _, act := range result.Acts {
		ctrl, ok := index[act.Control()]
		if !ok {
			return nil, &domain.UnhandledActError{ControlID: act.Control(), Act: act.Name()}
		}
		if err := ctrl.RenderAct(act, rb); err != nil {
			return nil, err
		}
	}
	rb.SetEndSession(result.EndSession)
	return rb.Response(), nil
}

// saveStates re-serializes every control back into the session blob.
func (e *Engine) saveStates(index map[string]controls.Control, sess *domain.SessionState) error {
	if sess.Controls == nil {
		sess.Controls = make(map[string]json.RawMessage)
	}
	for id, ctrl := range index {
		raw, err := ctrl.SaveState()
		if err != nil {
			return err
		}
		if raw != nil {
			sess.Controls[id] = raw
		}
	}
	return nil
}

// claimedPhaseFailure contains errors thrown after the input was claimed.
// "Treat as no match" is not legal here, so that strategy degrades to the
// default fallback.
func (e *Engine) claimedPhaseFailure(ctx context.Context, err error, in *domain.ControlInput, phase string) (*domain.Response, error) {
	if e.policy.Strategy == domain.RecoverPropagate && e.policy.Hook == nil {
		e.observeError()
		return nil, fmt.Errorf("%s failed: %w", phase, err)
	}
	return e.recoverTurn(ctx, err, in, phase)
}

// recoverTurn converts a fatal error into the user-visible outcome: the
// custom hook's response when configured, otherwise the generic fallback
// utterance with the session ended.
func (e *Engine) recoverTurn(ctx context.Context, turnErr error, in *domain.ControlInput, phase string) (*domain.Response, error) {
	e.logger.Error("turn failed", "phase", phase, "err", turnErr)
	e.observeError()

	rb := domain.NewResponseBuilder()
	if e.policy.Hook != nil {
		e.policy.Hook(ctx, turnErr, in, rb)
		return rb.Response(), nil
	}
	rb.AddPrompt(e.policy.Fallback())
	rb.SetEndSession(true)
	return rb.Response(), nil
}

func (e *Engine) observeTurn(result *domain.ControlResult, started time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveTurn(time.Since(started))
	for _, act := range result.Acts {
		e.metrics.ObserveAct(act.Name())
	}
}

func (e *Engine) observeError() {
	if e.metrics != nil {
		e.metrics.ObserveTurnError()
	}
}
