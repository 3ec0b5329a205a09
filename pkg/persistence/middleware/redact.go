package middleware

import (
	"context"
	"regexp"

	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/ports"
)

type redactMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that withholds the state of
// controls whose id matches any of the patterns. The matching controls
// restart from defaults on the next turn, so use this only for controls
// whose values must not reach the store (e.g. payment or identity fields).
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	// Clone so the in-memory state used by the engine keeps every control.
	cloned := state.Clone()
	for id := range cloned.Controls {
		for _, p := range m.patterns {
			if p.MatchString(id) {
				delete(cloned.Controls, id)
				break
			}
		}
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
