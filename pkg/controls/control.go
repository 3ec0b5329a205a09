package controls

import (
	"context"
	"encoding/json"

	"github.com/mbruna/espalier/pkg/domain"
)

// Control is one reusable unit of dialog capability: a node in the control
// tree. Implementations are state machines that elicit, validate and confirm
// one piece of information, or containers that compose children.
//
// The dispatch protocol is two-phase. CanHandle inspects the input and
// returns an explicit Decision (nil means "no match") without mutating
// state; Handle executes exactly that decision. CanHandle is idempotent:
// repeated calls without an intervening Handle return the same decision.
// CanTakeInitiative/TakeInitiative follow the same shape for the proactive
// phase of a turn.
type Control interface {
	// ID returns the control's identifier, unique within a tree.
	ID() string

	// Children returns the ordered child controls, or nil for leaves.
	Children() []Control

	// CanHandle decides whether this control (or a descendant) can act on
	// the input. It returns nil when nothing matches.
	CanHandle(ctx context.Context, in *domain.ControlInput) (*Decision, error)

	// Handle executes a decision previously produced by CanHandle, mutating
	// state and appending acts. Calling it with a nil or foreign decision
	// returns a DispatchError.
	Handle(ctx context.Context, in *domain.ControlInput, d *Decision, rb *domain.ResultBuilder) error

	// CanTakeInitiative decides whether this control wants to contribute
	// proactively when the turn still lacks an initiative act.
	CanTakeInitiative(ctx context.Context, in *domain.ControlInput) (*Decision, error)

	// TakeInitiative executes an initiative decision.
	TakeInitiative(ctx context.Context, in *domain.ControlInput, d *Decision, rb *domain.ResultBuilder) error

	// RenderAct maps one of this control's own acts to prompt fragments and
	// directives. It must not alter dialog state. Unknown acts return an
	// UnhandledActError.
	RenderAct(act domain.SystemAct, rb *domain.ResponseBuilder) error

	// LoadState rehydrates persisted state. A nil raw message restores
	// defaults.
	LoadState(raw json.RawMessage) error

	// SaveState serializes the control's state for persistence. Stateless
	// controls return nil.
	SaveState() (json.RawMessage, error)
}

// Decision records the outcome of a CanHandle or CanTakeInitiative call:
// which control acts and, for leaves, which named handler runs. Containers
// wrap the winning child's decision, so a decision is a path from the asked
// control down to the acting leaf. Keeping the choice in an explicit value
// (instead of scratch state on the control) makes repeated CanHandle calls
// side-effect free.
type Decision struct {
	// ControlID is the control this decision belongs to.
	ControlID string

	// Handler names the chosen input handler on a leaf control.
	Handler string

	// Child is the winning descendant's decision, set on containers.
	Child *Decision
}

// Leaf descends to the decision of the acting leaf control.
func (d *Decision) Leaf() *Decision {
	cur := d
	for cur.Child != nil {
		cur = cur.Child
	}
	return cur
}

// Target returns the id of the acting leaf control.
func (d *Decision) Target() string {
	return d.Leaf().ControlID
}
