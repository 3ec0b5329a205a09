package ports

import (
	"context"

	"github.com/mbruna/espalier/pkg/domain"
)

// StateStore persists session state blobs between turns. The blob is
// exclusively owned by whichever turn is currently executing; the session
// manager serializes access.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.SessionState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of known sessions.
	List(ctx context.Context) ([]string, error)
}
