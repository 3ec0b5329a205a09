package prompts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbruna/espalier/pkg/prompts"
)

func TestLoad_FlattensNestedKeys(t *testing.T) {
	bundle, err := prompts.Load([]byte(`
greeting: "Hello!"
date:
  request_value: "Which day works for you?"
  invalid:
    past: "That date has already passed."
`))
	require.NoError(t, err)

	assert.Equal(t, "Hello!", bundle.Get("greeting"))
	assert.Equal(t, "Which day works for you?", bundle.Get("date.request_value"))
	assert.Equal(t, "That date has already passed.", bundle.Get("date.invalid.past"))
	assert.Equal(t, []string{"date.invalid.past", "date.request_value", "greeting"}, bundle.Keys())
}

func TestLoad_RejectsNonStringLeaf(t *testing.T) {
	_, err := prompts.Load([]byte(`retries: 3`))
	assert.ErrorContains(t, err, `"retries"`)
}

func TestBundle_GetFormatsArgs(t *testing.T) {
	bundle, err := prompts.Load([]byte(`
ask: "What %s would you like?"
plain: "No placeholders here"
`))
	require.NoError(t, err)

	assert.Equal(t, "What color would you like?", bundle.Get("ask", "color"))
	// Args are ignored when the template has no verbs.
	assert.Equal(t, "No placeholders here", bundle.Get("plain", "ignored"))
}

func TestBundle_MissingKey(t *testing.T) {
	bundle, err := prompts.Load([]byte(`greeting: "Hello!"`))
	require.NoError(t, err)

	assert.Equal(t, "", bundle.Get("farewell"))
	assert.False(t, bundle.Has("farewell"))
	assert.True(t, bundle.Has("greeting"))
}

func TestBundle_MergeOverlayWins(t *testing.T) {
	base, err := prompts.Load([]byte(`
greeting: "Hello!"
farewell: "Bye!"
`))
	require.NoError(t, err)

	locale, err := prompts.Load([]byte(`greeting: "Bonjour!"`))
	require.NoError(t, err)

	merged := base.Merge(locale)
	assert.Equal(t, "Bonjour!", merged.Get("greeting"))
	assert.Equal(t, "Bye!", merged.Get("farewell"))

	// The inputs are untouched.
	assert.Equal(t, "Hello!", base.Get("greeting"))
}
