package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_AnyToAny(t *testing.T) {
	all := []Status{
		StatusDraft, StatusPurchased, StatusEnroute, StatusWarehouse,
		StatusShipped, StatusDelivered, StatusCancelled,
	}
	// The workflow is permissive: every pair of known states is allowed,
	// including a state to itself and "backwards" moves.
	for _, from := range all {
		for _, to := range all {
			got, err := Transition(from, to)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, got)
		}
	}
}

func TestTransition_BackwardsFromTerminal(t *testing.T) {
	// Explicit design property, not a bug: no ordering is enforced, so a
	// delivered vehicle can go back to draft.
	got, err := Transition(StatusDelivered, StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got)
}

func TestTransition_UnknownStates(t *testing.T) {
	var transitionErr *TransitionError

	_, err := Transition(Status("limbo"), StatusDraft)
	require.ErrorAs(t, err, &transitionErr)

	_, err = Transition(StatusDraft, Status(""))
	require.ErrorAs(t, err, &transitionErr)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("warehouse")
	require.NoError(t, err)
	assert.Equal(t, StatusWarehouse, st)

	_, err = ParseStatus("WAREHOUSE")
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
}
