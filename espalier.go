package espalier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mbruna/espalier/internal/logging"
	"github.com/mbruna/espalier/internal/runtime"
	"github.com/mbruna/espalier/pkg/adapters/memory"
	"github.com/mbruna/espalier/pkg/controls"
	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/observability"
	"github.com/mbruna/espalier/pkg/ports"
	"github.com/mbruna/espalier/pkg/session"
)

// Manager builds the control tree of a skill. The engine calls it once per
// turn: the tree is hydrated from session state, used for that turn, and
// discarded after re-serialization.
type Manager interface {
	CreateControlTree() (controls.Control, error)
}

// Engine is the high-level entry point for the espalier library. It wraps
// the internal turn runtime with session loading, locking and persistence.
type Engine struct {
	runtime  *runtime.Engine
	sessions *session.Manager
	logger   *slog.Logger

	store   ports.StateStore
	locker  ports.DistributedLocker
	policy  domain.RecoveryPolicy
	metrics *observability.Metrics
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStore injects a custom state store, bypassing the in-memory default.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithRecoveryPolicy configures error containment for failed turns.
func WithRecoveryPolicy(policy domain.RecoveryPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithMetrics enables Prometheus turn metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New initializes an espalier Engine for the given skill manager.
// By default it keeps session state in memory; inject a store for
// durability.
func New(manager Manager, opts ...Option) (*Engine, error) {
	if manager == nil {
		return nil, fmt.Errorf("manager is required")
	}

	eng := &Engine{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	eng.runtime = runtime.NewEngine(manager,
		runtime.WithLogger(eng.logger),
		runtime.WithRecoveryPolicy(eng.policy),
		runtime.WithMetrics(eng.metrics),
	)
	return eng, nil
}

// HandleTurn processes one normalized input for a session. The session's
// lock is held for the whole turn, so state hydration, dispatch and
// re-serialization see an exclusively owned blob.
func (e *Engine) HandleTurn(ctx context.Context, sessionID string, in *domain.ControlInput) (*domain.Response, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	var response *domain.Response
	err := e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := e.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to load session: %w", err)
			}
			state = domain.NewSessionState()
		}

		response, err = e.runtime.HandleTurn(ctx, in, state)
		if err != nil {
			return err
		}

		if err := e.sessions.Store().Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Reset discards a session's state. It returns ErrSessionNotFound when the
// session does not exist.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := e.sessions.Store().Load(ctx, sessionID); err != nil {
			return err
		}
		return e.sessions.Store().Delete(ctx, sessionID)
	})
}

// Sessions returns the session manager, for hosts that list or expire
// sessions out of band.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
