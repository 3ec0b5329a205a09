package espalier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbruna/espalier"
	"github.com/mbruna/espalier/internal/testutils"
	"github.com/mbruna/espalier/pkg/adapters/memory"
	"github.com/mbruna/espalier/pkg/controls"
	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/dsl"
)

func newFormEngine(t *testing.T, opts ...espalier.Option) *espalier.Engine {
	t.Helper()
	manager := dsl.New("form").
		Value(controls.Props{ID: "name", Required: true}).
		Value(controls.Props{ID: "color", Required: true}).
		Build()
	engine, err := espalier.New(manager, opts...)
	require.NoError(t, err)
	return engine
}

func TestEngine_RequiresManager(t *testing.T) {
	_, err := espalier.New(nil)
	assert.Error(t, err)
}

func TestEngine_RequiresSessionID(t *testing.T) {
	engine := newFormEngine(t)

	_, err := engine.HandleTurn(context.Background(), "", testutils.LaunchInput())
	assert.Error(t, err)
}

func TestEngine_ConversationSpansTurns(t *testing.T) {
	engine := newFormEngine(t)
	ctx := context.Background()

	resp, err := engine.HandleTurn(ctx, "s1", testutils.LaunchInput())
	require.NoError(t, err)
	assert.Equal(t, "What value for name?", resp.PromptText())
	assert.False(t, resp.EndSession)

	resp, err = engine.HandleTurn(ctx, "s1", testutils.IntentInput("FormIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("name", "Ada"),
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"OK, Ada.", "What value for color?"}, resp.Prompt)

	resp, err = engine.HandleTurn(ctx, "s1", testutils.IntentInput("FormIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("color", "blue"),
	))
	require.NoError(t, err)
	assert.Equal(t, "OK, blue.", resp.PromptText())
	assert.True(t, resp.EndSession)
}

func TestEngine_SessionsAreIsolated(t *testing.T) {
	engine := newFormEngine(t)
	ctx := context.Background()

	_, err := engine.HandleTurn(ctx, "a", testutils.IntentInput("FormIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("name", "Ada"),
	))
	require.NoError(t, err)

	// A fresh session starts from the first required control.
	resp, err := engine.HandleTurn(ctx, "b", testutils.LaunchInput())
	require.NoError(t, err)
	assert.Equal(t, "What value for name?", resp.PromptText())
}

func TestEngine_Reset(t *testing.T) {
	engine := newFormEngine(t)
	ctx := context.Background()

	_, err := engine.HandleTurn(ctx, "s1", testutils.IntentInput("FormIntent",
		testutils.Action(domain.ActionSet),
		testutils.SlotValue("name", "Ada"),
	))
	require.NoError(t, err)

	require.NoError(t, engine.Reset(ctx, "s1"))
	assert.ErrorIs(t, engine.Reset(ctx, "s1"), domain.ErrSessionNotFound)

	// After a reset the conversation starts over.
	resp, err := engine.HandleTurn(ctx, "s1", testutils.LaunchInput())
	require.NoError(t, err)
	assert.Equal(t, "What value for name?", resp.PromptText())
}

func TestEngine_UsesInjectedStore(t *testing.T) {
	store := memory.NewStore()
	engine := newFormEngine(t, espalier.WithStore(store))
	ctx := context.Background()

	_, err := engine.HandleTurn(ctx, "s1", testutils.LaunchInput())
	require.NoError(t, err)

	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, state.Controls, "name")
}
