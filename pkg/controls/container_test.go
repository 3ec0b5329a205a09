package controls_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbruna/espalier/internal/testutils"
	"github.com/mbruna/espalier/pkg/controls"
	"github.com/mbruna/espalier/pkg/domain"
)

func TestContainer_FirstMatchWins(t *testing.T) {
	first := newValue(t, controls.Props{ID: "first", SlotName: "shared"})
	second := newValue(t, controls.Props{ID: "second", SlotName: "shared"})
	root := controls.NewContainer("root", first, second)

	// Both children consume the same slot; dispatch must stop at the first.
	in := testutils.IntentInput("AnyIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("shared", "x"),
	)
	d, err := root.CanHandle(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "root", d.ControlID)
	assert.Equal(t, "first", d.Target())

	rb := domain.NewResultBuilder()
	require.NoError(t, root.Handle(context.Background(), in, d, rb))
	assert.Equal(t, "x", first.Value())
	assert.Empty(t, second.Value())
}

func TestContainer_InitiativeOrder(t *testing.T) {
	optional := newValue(t, controls.Props{ID: "optional"})
	required := newValue(t, controls.Props{ID: "required", Required: true})
	root := controls.NewContainer("root", optional, required)

	d, err := root.CanTakeInitiative(context.Background(), testutils.LaunchInput())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "required", d.Target(), "only the required empty control volunteers")
}

func TestContainer_NestedDispatch(t *testing.T) {
	leaf := newValue(t, controls.Props{ID: "leaf", Required: true})
	inner := controls.NewContainer("inner", leaf)
	root := controls.NewContainer("root", inner)

	d, err := root.CanTakeInitiative(context.Background(), testutils.LaunchInput())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "leaf", d.Target())

	rb := domain.NewResultBuilder()
	require.NoError(t, root.TakeInitiative(context.Background(), testutils.LaunchInput(), d, rb))
	require.Len(t, rb.Acts(), 1)
	assert.Equal(t, domain.ActRequestValue, rb.Acts()[0].Name())
}

func TestContainer_RejectsForeignDecision(t *testing.T) {
	root := controls.NewContainer("root", newValue(t, controls.Props{ID: "leaf"}))

	rb := domain.NewResultBuilder()
	err := root.Handle(context.Background(), testutils.LaunchInput(), &controls.Decision{ControlID: "other"}, rb)

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
}

func TestContainer_RenderActFails(t *testing.T) {
	root := controls.NewContainer("root")
	err := root.RenderAct(domain.NewValueSetAct("root", "x"), domain.NewResponseBuilder())

	var ue *domain.UnhandledActError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "root", ue.ControlID)
}

func TestContainer_Stateless(t *testing.T) {
	root := controls.NewContainer("root")
	require.NoError(t, root.LoadState([]byte(`{"anything":true}`)))

	raw, err := root.SaveState()
	require.NoError(t, err)
	assert.Nil(t, raw)
}
