// Package runner provides an interactive loop for driving a dialog engine
// from a terminal. It pairs a small deterministic utterance grammar with an
// IO strategy, so skills can be exercised end to end without a voice
// platform in front.
package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mbruna/espalier"
	"github.com/mbruna/espalier/pkg/domain"
)

// Runner executes the turn loop of a dialog engine using provided IO.
type Runner struct {
	// Handler is the IO strategy. If nil, a stdin/stdout TextHandler is
	// used.
	Handler IOHandler

	// Parser maps utterances to control inputs. Required.
	Parser *Parser

	// Logger is used for internal debug logging. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// Renderer transforms prompt text before output.
	Renderer ContentRenderer

	// SessionID identifies the conversation. If empty, a fresh id is
	// minted per Run.
	SessionID string
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures a custom IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) { r.Handler = handler }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.Logger = logger }
}

// WithRenderer configures the content renderer (e.g. TUI markdown).
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) { r.Renderer = renderer }
}

// WithSessionID pins the session used across Run invocations.
func WithSessionID(id string) Option {
	return func(r *Runner) { r.SessionID = id }
}

// NewRunner creates a Runner around the given utterance parser.
func NewRunner(parser *Parser, opts ...Option) *Runner {
	r := &Runner{
		Parser: parser,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the loop until the engine ends the session or input is
// exhausted. The first turn is a launch request, which gives the tree a
// chance to open the conversation.
func (r *Runner) Run(ctx context.Context, engine *espalier.Engine) error {
	handler := r.Handler
	if handler == nil {
		h := NewTextHandler(nil, nil)
		h.Renderer = r.Renderer
		handler = h
	}

	sessionID := r.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	r.Logger.Debug("runner starting", "session_id", sessionID)

	resp, err := engine.HandleTurn(ctx, sessionID, &domain.ControlInput{Kind: domain.RequestLaunch})
	if err != nil {
		return err
	}
	if err := handler.Output(ctx, resp); err != nil {
		return err
	}

	for !resp.EndSession {
		text, err := handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		clean, err := SanitizeInput(text)
		if err != nil {
			r.Logger.Warn("input rejected", "err", err, "size", len(text))
			continue
		}

		in := r.Parser.Parse(clean)
		if in == nil {
			continue
		}

		resp, err = engine.HandleTurn(ctx, sessionID, in)
		if err != nil {
			return err
		}
		if err := handler.Output(ctx, resp); err != nil {
			return err
		}
	}

	r.Logger.Debug("session ended", "session_id", sessionID)
	return nil
}
