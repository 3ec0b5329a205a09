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

func newValue(t *testing.T, p controls.Props, opts ...controls.Option) *controls.ValueControl {
	t.Helper()
	c, err := controls.NewValueControl(p, opts...)
	require.NoError(t, err)
	return c
}

// handle runs the full canHandle/handle sequence and returns the acts.
func handle(t *testing.T, c controls.Control, in *domain.ControlInput) []domain.SystemAct {
	t.Helper()
	d, err := c.CanHandle(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, d, "expected the control to claim the input")

	rb := domain.NewResultBuilder()
	require.NoError(t, c.Handle(context.Background(), in, d, rb))
	return rb.Acts()
}

func TestValueControl_SetWithValue(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})

	in := testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	)
	acts := handle(t, c, in)

	require.Len(t, acts, 1)
	set, ok := acts[0].(domain.ValueSetAct)
	require.True(t, ok, "got %T", acts[0])
	assert.Equal(t, "cat", set.Value)
	assert.Equal(t, "pet", set.Control())
	assert.Equal(t, "cat", c.Value())
}

func TestValueControl_CanHandleIsIdempotent(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})
	in := testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	)

	before := c.State()
	d1, err := c.CanHandle(context.Background(), in)
	require.NoError(t, err)
	d2, err := c.CanHandle(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Equal(t, before, c.State(), "canHandle must not mutate state")
}

func TestValueControl_NoMatchCases(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})
	ctx := context.Background()

	t.Run("launch request", func(t *testing.T) {
		d, err := c.CanHandle(ctx, testutils.LaunchInput())
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("bare value without open elicitation", func(t *testing.T) {
		d, err := c.CanHandle(ctx, testutils.IntentInput("PetIntent", testutils.SlotValue("pet", "cat")))
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("foreign target", func(t *testing.T) {
		d, err := c.CanHandle(ctx, testutils.IntentInput("PetIntent",
			testutils.Action(domain.ActionSet),
			testutils.Target("color"),
			testutils.SlotValue("pet", "cat"),
		))
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("bare yes without pending confirmation", func(t *testing.T) {
		d, err := c.CanHandle(ctx, testutils.IntentInput(domain.IntentAffirm))
		require.NoError(t, err)
		assert.Nil(t, d)
	})
}

func TestValueControl_BareValueDuringElicitation(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet", Required: true})
	ctx := context.Background()

	// The launch turn yields no handler match; initiative opens the
	// elicitation.
	init, err := c.CanTakeInitiative(ctx, testutils.LaunchInput())
	require.NoError(t, err)
	require.NotNil(t, init)
	rb := domain.NewResultBuilder()
	require.NoError(t, c.TakeInitiative(ctx, testutils.LaunchInput(), init, rb))
	require.Len(t, rb.Acts(), 1)
	assert.Equal(t, domain.ActRequestValue, rb.Acts()[0].Name())

	// A bare value now resolves against the open elicitation.
	acts := handle(t, c, testutils.IntentInput("PetIntent", testutils.SlotValue("pet", "dog")))
	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActValueSet, acts[0].Name())
	assert.Equal(t, "dog", c.Value())
	assert.Empty(t, c.State().ElicitationAction, "accepting a value closes the elicitation")
}

func TestValueControl_ChangeEmitsValueChanged(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})

	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))

	acts := handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionChange),
		testutils.SlotValue("pet", "dog"),
	))

	require.Len(t, acts, 1)
	changed, ok := acts[0].(domain.ValueChangedAct)
	require.True(t, ok, "got %T", acts[0])
	assert.Equal(t, "dog", changed.Value)
	assert.Equal(t, "cat", changed.PreviousValue)
}

func TestValueControl_ChangeWithoutPreviousDegradesToSet(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})

	acts := handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionChange),
		testutils.SlotValue("pet", "dog"),
	))

	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActValueSet, acts[0].Name(),
		"a change before any value was acquired cannot reference a previous value")
}

func TestValueControl_ChangeWithoutValueElicits(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})

	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))

	acts := handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionChange),
		testutils.Target("pet"),
	))

	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActRequestChangedValue, acts[0].Name())
	assert.Equal(t, domain.ActionChange, c.State().ElicitationAction)
}

func TestValueControl_ValidationFailureReElicitsSameAction(t *testing.T) {
	reject := func(s *domain.ValueState, in *domain.ControlInput) *controls.ValidationFailure {
		if s.ValueOrEmpty() == "ferret" {
			return &controls.ValidationFailure{Reason: "no_ferrets"}
		}
		return nil
	}
	c := newValue(t, controls.Props{ID: "pet", Validators: []controls.ValidationFunc{reject}})

	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))

	acts := handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionChange),
		testutils.SlotValue("pet", "ferret"),
	))

	require.Len(t, acts, 2)
	invalid, ok := acts[0].(domain.InvalidValueAct)
	require.True(t, ok, "got %T", acts[0])
	assert.Equal(t, "no_ferrets", invalid.Reason)
	assert.Equal(t, domain.ActRequestChangedValue, acts[1].Name(),
		"re-elicitation keeps the action that triggered the attempt")
	assert.Equal(t, domain.ActionChange, c.State().ElicitationAction)
}

func TestValueControl_ConfirmationFlow(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet", Required: true, Confirmation: true})
	ctx := context.Background()

	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))

	// The unconfirmed value triggers a confirmation initiative.
	init, err := c.CanTakeInitiative(ctx, testutils.LaunchInput())
	require.NoError(t, err)
	require.NotNil(t, init)
	rb := domain.NewResultBuilder()
	require.NoError(t, c.TakeInitiative(ctx, testutils.LaunchInput(), init, rb))
	require.Len(t, rb.Acts(), 1)
	assert.Equal(t, domain.ActConfirmValue, rb.Acts()[0].Name())
	assert.Equal(t, domain.ActConfirmValue, c.State().LastInitiative)

	// Bare yes is now legal and confirms.
	acts := handle(t, c, testutils.IntentInput(domain.IntentAffirm))
	require.Len(t, acts, 1)
	assert.Equal(t, domain.ActValueConfirmed, acts[0].Name())
	assert.True(t, c.State().Confirmed)

	// Nothing left to do.
	init, err = c.CanTakeInitiative(ctx, testutils.LaunchInput())
	require.NoError(t, err)
	assert.Nil(t, init)
}

func TestValueControl_DisaffirmReElicits(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet", Required: true, Confirmation: true})
	ctx := context.Background()

	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))
	init, err := c.CanTakeInitiative(ctx, testutils.LaunchInput())
	require.NoError(t, err)
	rb := domain.NewResultBuilder()
	require.NoError(t, c.TakeInitiative(ctx, testutils.LaunchInput(), init, rb))

	acts := handle(t, c, testutils.IntentInput(domain.IntentDeny))
	require.Len(t, acts, 2)
	assert.Equal(t, domain.ActValueDisconfirmed, acts[0].Name())
	assert.Equal(t, domain.ActRequestValue, acts[1].Name())
	assert.False(t, c.State().Confirmed)
	assert.Equal(t, domain.ActionSet, c.State().ElicitationAction)
}

func TestValueControl_InvalidValueNeverConfirmed(t *testing.T) {
	reject := func(s *domain.ValueState, in *domain.ControlInput) *controls.ValidationFailure {
		if s.ValueOrEmpty() == "bad" {
			return &controls.ValidationFailure{Reason: "bad_value"}
		}
		return nil
	}
	c := newValue(t, controls.Props{
		ID:           "pet",
		Required:     true,
		Confirmation: true,
		Validators:   []controls.ValidationFunc{reject},
	})
	ctx := context.Background()

	acts := handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "bad"),
	))
	require.Len(t, acts, 2)
	assert.Equal(t, domain.ActInvalidValue, acts[0].Name())

	// An invalid value is re-elicited, never confirmed.
	init, err := c.CanTakeInitiative(ctx, testutils.LaunchInput())
	require.NoError(t, err)
	require.NotNil(t, init)
	rb := domain.NewResultBuilder()
	require.NoError(t, c.TakeInitiative(ctx, testutils.LaunchInput(), init, rb))
	require.Len(t, rb.Acts(), 1)
	assert.Equal(t, domain.ActRequestChangedValue, rb.Acts()[0].Name())
}

func TestValueControl_HandleWithoutDecision(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})
	rb := domain.NewResultBuilder()

	err := c.Handle(context.Background(), testutils.LaunchInput(), nil, rb)
	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "pet", de.ControlID)
}

func TestValueControl_StateRoundTrip(t *testing.T) {
	c := newValue(t, controls.Props{ID: "pet"})
	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))

	raw, err := c.SaveState()
	require.NoError(t, err)

	fresh := newValue(t, controls.Props{ID: "pet"})
	require.NoError(t, fresh.LoadState(raw))
	assert.Equal(t, "cat", fresh.Value())
}

func TestValueControl_CustomHandler(t *testing.T) {
	custom := controls.InputHandler{
		Name: "ClearValue",
		When: func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState) bool {
			return in.Intent == "ClearIntent"
		},
		Do: func(ctx context.Context, in *domain.ControlInput, s *domain.ValueState, rb *domain.ResultBuilder) error {
			*s = domain.ValueState{}
			return rb.Add(domain.NewValueSetAct("pet", ""))
		},
	}
	c := newValue(t, controls.Props{ID: "pet", CustomHandlers: []controls.InputHandler{custom}})

	handle(t, c, testutils.IntentInput("PetIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("pet", "cat"),
	))

	d, err := c.CanHandle(context.Background(), testutils.IntentInput("ClearIntent"))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "ClearValue", d.Handler)
}
