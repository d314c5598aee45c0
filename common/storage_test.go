package common_test

import (
	"math/big"
	"testing"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/stretchr/testify/require"
)

type mapKV map[string][]byte

func (m mapKV) Get(key []byte) ([]byte, error) {
	return m[string(key)], nil
}

func (m mapKV) Put(key, value []byte) {
	m[string(key)] = value
}

func TestGetInteger(t *testing.T) {
	st := mapKV{}

	v, err := common.GetInteger(st, []byte("missing"))
	require.NoError(t, err)
	require.Zero(t, v.Sign())

	common.PutInteger(st, []byte("zero"), big.NewInt(0))

	v, err = common.GetInteger(st, []byte("zero"))
	require.NoError(t, err)
	require.Zero(t, v.Sign())

	common.PutInteger(st, []byte("value"), big.NewInt(-12345))

	v, err = common.GetInteger(st, []byte("value"))
	require.NoError(t, err)
	require.EqualValues(t, -12345, v.Int64())
}

func TestNextCounter(t *testing.T) {
	st := mapKV{}
	key := []byte("counter")

	for i := uint64(0); i < 3; i++ {
		n, err := common.NextCounter(st, key)
		require.NoError(t, err)
		require.Equal(t, i, n)
	}

	v, err := common.GetInteger(st, key)
	require.NoError(t, err)
	require.EqualValues(t, 3, v.Int64())
}
