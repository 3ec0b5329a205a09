package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/runner"
)

func TestParser_Affirmations(t *testing.T) {
	p := runner.NewParser("service")

	in := p.Parse("Yes")
	require.NotNil(t, in)
	assert.Equal(t, domain.IntentAffirm, in.Intent)

	in = p.Parse("nope")
	require.NotNil(t, in)
	assert.Equal(t, domain.IntentDeny, in.Intent)
}

func TestParser_ExplicitSet(t *testing.T) {
	p := runner.NewParser("service", "date")

	for _, utterance := range []string{
		"set service to haircut",
		"set service haircut",
		"pick service to haircut",
	} {
		in := p.Parse(utterance)
		require.NotNil(t, in, utterance)
		assert.Equal(t, domain.ActionSet, in.Action(), utterance)
		assert.Equal(t, "service", in.Target(), utterance)
		assert.Equal(t, "haircut", in.Value("service"), utterance)
	}
}

func TestParser_SlotIsValue(t *testing.T) {
	p := runner.NewParser("service")

	in := p.Parse("service is deep tissue massage")
	require.NotNil(t, in)
	assert.Equal(t, domain.ActionSet, in.Action())
	assert.Equal(t, "service", in.Target())
	assert.Equal(t, "deep tissue massage", in.Value("service"))
}

func TestParser_ChangeWithAndWithoutValue(t *testing.T) {
	p := runner.NewParser("date")

	in := p.Parse("change date to friday")
	require.NotNil(t, in)
	assert.Equal(t, domain.ActionChange, in.Action())
	assert.Equal(t, "friday", in.Value("date"))

	in = p.Parse("change date")
	require.NotNil(t, in)
	assert.Equal(t, domain.ActionChange, in.Action())
	assert.Equal(t, "date", in.Target())
	assert.Equal(t, "", in.Value("date"))
}

func TestParser_BareValueFansOutOverSlots(t *testing.T) {
	p := runner.NewParser("service", "party_size")

	in := p.Parse("haircut")
	require.NotNil(t, in)
	assert.Equal(t, "haircut", in.Value("service"))
	assert.Equal(t, "haircut", in.Value("party_size"))
	assert.Equal(t, "", in.Action())
	assert.Equal(t, "haircut", in.Raw)
}

func TestParser_UnknownSlotFallsBackToBareValue(t *testing.T) {
	p := runner.NewParser("service")

	// "set" followed by an unknown slot is treated as one bare utterance.
	in := p.Parse("set sail to adventure")
	require.NotNil(t, in)
	assert.Equal(t, "", in.Target())
	assert.Equal(t, "set sail to adventure", in.Value("service"))
}

func TestParser_EmptyInput(t *testing.T) {
	p := runner.NewParser("service")

	assert.Nil(t, p.Parse(""))
	assert.Nil(t, p.Parse("   "))
}
