package actionstatus_test

import (
	"testing"

	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, s := range []actionstatus.Status{actionstatus.Unknown, actionstatus.Flagged, actionstatus.Blacklisted} {
		require.True(t, s.Valid())

		parsed, err := actionstatus.Parse(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	s, err := actionstatus.Parse("2")
	require.NoError(t, err)
	require.Equal(t, actionstatus.Blacklisted, s)

	s, err = actionstatus.Parse("Flagged")
	require.NoError(t, err)
	require.Equal(t, actionstatus.Flagged, s)

	_, err = actionstatus.Parse("cleared")
	require.Error(t, err)

	require.False(t, actionstatus.Status(3).Valid())
	require.Equal(t, "status(3)", actionstatus.Status(3).String())
}
