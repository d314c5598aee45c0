package canonical_test

import (
	"encoding/hex"
	"testing"

	"github.com/naughty-agents/protocol-contract/canonical"
	"github.com/stretchr/testify/require"
)

const (
	transferJSON = `{"action":"native_transfer","params":{"amount":100,"to":"0x0000000000000000000000000000000000000001"}}`
	transferHash = "806b7287a2da74039e73e3171087ca87ff859a08b743fc6e2a4ef168eefa0c52"
)

func TestCanonicalize(t *testing.T) {
	params, err := canonical.ParseParams([]byte(`{
		"to": "0x0000000000000000000000000000000000000001",
		"amount": 100
	}`))
	require.NoError(t, err)

	data, err := canonical.Canonicalize("native_transfer", params)
	require.NoError(t, err)
	require.Equal(t, transferJSON, string(data))

	t.Run("nested objects", func(t *testing.T) {
		data, err := canonical.Canonicalize("swap", map[string]any{
			"route": map[string]any{"to": "b", "from": "a"},
			"path":  []any{"x", "<y>"},
		})
		require.NoError(t, err)
		require.Equal(t, `{"action":"swap","params":{"path":["x","<y>"],"route":{"from":"a","to":"b"}}}`, string(data))
	})

	t.Run("no params", func(t *testing.T) {
		data, err := canonical.Canonicalize("noop", nil)
		require.NoError(t, err)
		require.Equal(t, `{"action":"noop","params":{}}`, string(data))
	})

	t.Run("empty action", func(t *testing.T) {
		_, err := canonical.Canonicalize("", nil)
		require.ErrorIs(t, err, canonical.ErrEmptyAction)
	})
}

func TestActionHash(t *testing.T) {
	h, err := canonical.ActionHash("native_transfer", map[string]any{
		"amount": 100,
		"to":     "0x0000000000000000000000000000000000000001",
	})
	require.NoError(t, err)
	require.Equal(t, transferHash, h.StringBE())
	require.Equal(t, transferHash, hex.EncodeToString(h.BytesBE()))

	params, err := canonical.ParseParams([]byte(`{"to":"0x0000000000000000000000000000000000000001","amount":100}`))
	require.NoError(t, err)

	parsed, err := canonical.ActionHash("native_transfer", params)
	require.NoError(t, err)
	require.Equal(t, h, parsed)

	other, err := canonical.ActionHash("native_transfer", map[string]any{
		"amount": 101,
		"to":     "0x0000000000000000000000000000000000000001",
	})
	require.NoError(t, err)
	require.NotEqual(t, h, other)
}

func TestKeccak256(t *testing.T) {
	require.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		canonical.Keccak256(nil).StringBE())
	require.Equal(t, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		canonical.Keccak256([]byte("abc")).StringBE())
}

func TestParseParams(t *testing.T) {
	for _, data := range []string{
		``,
		`[]`,
		`{"a":1} {"b":2}`,
		`{"a":`,
	} {
		_, err := canonical.ParseParams([]byte(data))
		require.Error(t, err, data)
	}
}
