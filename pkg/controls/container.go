package controls

import (
	"context"
	"encoding/json"

	"github.com/mbruna/espalier/pkg/domain"
)

// Container is a composite control: it owns an ordered list of children and
// delegates dispatch to them. Dispatch is depth-first in registration order
// and first-match-wins; a container never compares results from multiple
// children, so later siblings of a matching child are not even asked.
type Container struct {
	id       string
	children []Control
}

var _ Control = (*Container)(nil)

// NewContainer creates a container with the given children, in dispatch order.
func NewContainer(id string, children ...Control) *Container {
	return &Container{id: id, children: children}
}

// Add appends a child, keeping registration order. It returns the container
// for chaining.
func (c *Container) Add(child Control) *Container {
	c.children = append(c.children, child)
	return c
}

// ID returns the container's identifier.
func (c *Container) ID() string { return c.id }

// Children returns the ordered children.
func (c *Container) Children() []Control { return c.children }

// CanHandle asks children in order and wraps the first match. The winning
// child's decision is recorded on the returned decision so Handle executes
// it without re-deciding.
func (c *Container) CanHandle(ctx context.Context, in *domain.ControlInput) (*Decision, error) {
	for _, child := range c.children {
		d, err := child.CanHandle(ctx, in)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return &Decision{ControlID: c.id, Child: d}, nil
		}
	}
	return nil, nil
}

// Handle delegates to the child named by the decision.
func (c *Container) Handle(ctx context.Context, in *domain.ControlInput, d *Decision, rb *domain.ResultBuilder) error {
	child, err := c.resolve(d)
	if err != nil {
		return err
	}
	return child.Handle(ctx, in, d.Child, rb)
}

// CanTakeInitiative asks children in order and wraps the first willing one.
func (c *Container) CanTakeInitiative(ctx context.Context, in *domain.ControlInput) (*Decision, error) {
	for _, child := range c.children {
		d, err := child.CanTakeInitiative(ctx, in)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return &Decision{ControlID: c.id, Child: d}, nil
		}
	}
	return nil, nil
}

// TakeInitiative delegates to the child named by the decision.
func (c *Container) TakeInitiative(ctx context.Context, in *domain.ControlInput, d *Decision, rb *domain.ResultBuilder) error {
	child, err := c.resolve(d)
	if err != nil {
		return err
	}
	return child.TakeInitiative(ctx, in, d.Child, rb)
}

// RenderAct fails: containers emit no acts of their own, so being asked to
// render one means the act was misrouted.
func (c *Container) RenderAct(act domain.SystemAct, rb *domain.ResponseBuilder) error {
	return &domain.UnhandledActError{ControlID: c.id, Act: act.Name()}
}

// LoadState is a no-op: containers are stateless.
func (c *Container) LoadState(raw json.RawMessage) error { return nil }

// SaveState returns nil: containers are stateless.
func (c *Container) SaveState() (json.RawMessage, error) { return nil, nil }

// resolve checks that the decision belongs to this container and locates the
// acting child.
func (c *Container) resolve(d *Decision) (Control, error) {
	if d == nil || d.ControlID != c.id || d.Child == nil {
		return nil, &domain.DispatchError{
			ControlID: c.id,
			Reason:    "handle called without a matching decision",
		}
	}
	for _, child := range c.children {
		if child.ID() == d.Child.ControlID {
			return child, nil
		}
	}
	return nil, &domain.DispatchError{
		ControlID: c.id,
		Reason:    "decision names unknown child " + d.Child.ControlID,
	}
}
