package dsl

import (
	"github.com/mbruna/espalier/pkg/controls"
)

// Builder assembles a control tree fluently. Build returns a Manager that
// constructs a fresh tree per call, which is what the engine's
// tree-per-turn lifecycle requires.
type Builder struct {
	id    string
	specs []spec
	opts  []controls.Option
}

// spec is a deferred control constructor; deferral keeps every turn's tree
// built from scratch instead of sharing stateful control instances.
type spec func(opts ...controls.Option) (controls.Control, error)

// New creates a builder for a tree rooted at a container with the given id.
// The options apply to every leaf in the tree.
func New(rootID string, opts ...controls.Option) *Builder {
	return &Builder{id: rootID, opts: opts}
}

// Value adds a free-form value control.
func (b *Builder) Value(p controls.Props) *Builder {
	b.specs = append(b.specs, func(opts ...controls.Option) (controls.Control, error) {
		return controls.NewValueControl(p, opts...)
	})
	return b
}

// List adds a choice control over a fixed vocabulary.
func (b *Builder) List(p controls.ListProps) *Builder {
	b.specs = append(b.specs, func(opts ...controls.Option) (controls.Control, error) {
		return controls.NewListControl(p, opts...)
	})
	return b
}

// Number adds an integer control.
func (b *Builder) Number(p controls.NumberProps) *Builder {
	b.specs = append(b.specs, func(opts ...controls.Option) (controls.Control, error) {
		return controls.NewNumberControl(p, opts...)
	})
	return b
}

// Date adds a calendar-date control.
func (b *Builder) Date(p controls.DateProps) *Builder {
	b.specs = append(b.specs, func(opts ...controls.Option) (controls.Control, error) {
		return controls.NewDateControl(p, opts...)
	})
	return b
}

// Control adds an externally constructed control kind. The constructor is
// invoked once per turn.
func (b *Builder) Control(build func(opts ...controls.Option) (controls.Control, error)) *Builder {
	b.specs = append(b.specs, build)
	return b
}

// Build compiles the tree into a Manager.
func (b *Builder) Build() *Manager {
	return &Manager{id: b.id, specs: b.specs, opts: b.opts}
}

// Manager implements the engine's Manager contract for a DSL-built tree.
type Manager struct {
	id    string
	specs []spec
	opts  []controls.Option
}

// CreateControlTree constructs a fresh tree in registration order.
func (m *Manager) CreateControlTree() (controls.Control, error) {
	root := controls.NewContainer(m.id)
	for _, build := range m.specs {
		child, err := build(m.opts...)
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}
