package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	p := filepath.Join(t.TempDir(), "naughty.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("file", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, `
ledger:
  type: leveldb
  path: /var/lib/naughty
protocol:
  owner: "0x0000000000000000000000000000000000000001"
  requiredStake: 100
  quorum: 5
logger:
  level: debug
  encoding: json
metrics:
  textfile: /tmp/naughty.prom
`))
		require.NoError(t, err)

		expected := Default()
		expected.Ledger = LedgerConfig{Type: LedgerLevelDB, Path: "/var/lib/naughty"}
		expected.Protocol.Owner = "0x0000000000000000000000000000000000000001"
		expected.Protocol.RequiredStake = 100
		expected.Protocol.Quorum = 5
		expected.Logger = LoggerConfig{Level: "debug", Encoding: "json"}
		expected.Metrics.Textfile = "/tmp/naughty.prom"

		require.Equal(t, expected, cfg)

		db := cfg.Ledger.DBConfiguration()
		require.Equal(t, LedgerLevelDB, db.Type)
		require.Equal(t, "/var/lib/naughty", db.LevelDBOptions.DataDirectoryPath)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("NAUGHTY_PROTOCOL_REQUIRED_STAKE", "42")
		t.Setenv("NAUGHTY_PROTOCOL_QUORUM", "7")
		t.Setenv("NAUGHTY_LEDGER_PATH", "env.bolt")

		cfg, err := LoadConfig(writeConfig(t, `
protocol:
  requiredStake: 100
  quorum: 5
`))
		require.NoError(t, err)
		require.EqualValues(t, 42, cfg.Protocol.RequiredStake)
		require.EqualValues(t, 7, cfg.Protocol.Quorum)
		require.Equal(t, "env.bolt", cfg.Ledger.Path)
		require.Equal(t, "env.bolt", cfg.Ledger.DBConfiguration().BoltDBOptions.FilePath)
	})

	t.Run("invalid", func(t *testing.T) {
		for name, content := range map[string]string{
			"ledger type":     "ledger: {type: redis}",
			"ledger path":     "ledger: {type: boltdb, path: ''}",
			"zero quorum":     "protocol: {quorum: 0}",
			"negative stake":  "protocol: {requiredStake: -1}",
			"bad authority":   "protocol: {slashAuthority: nope}",
			"security module": "protocol: {securityModule: nope}",
			"malformed":       "ledger: [",
		} {
			_, err := LoadConfig(writeConfig(t, content))
			require.Error(t, err, name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestParseAccount(t *testing.T) {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)

	acc := k.GetScriptHash()

	for _, s := range []string{
		address.Uint160ToString(acc),
		acc.StringLE(),
		"0x" + acc.StringLE(),
	} {
		u, err := ParseAccount(s)
		require.NoError(t, err, s)
		require.Equal(t, acc, u, s)
	}

	_, err = ParseAccount("not an account")
	require.Error(t, err)

	t.Run("owner", func(t *testing.T) {
		_, err := ProtocolConfig{}.OwnerAccount()
		require.Error(t, err)

		u, err := ProtocolConfig{Owner: acc.StringLE()}.OwnerAccount()
		require.NoError(t, err)
		require.Equal(t, acc, u)
	})
}

func TestProtocolConfig(t *testing.T) {
	acc := util.Uint160{1, 2, 3}

	pc := Default().Protocol
	pc.GenesisStake = 500
	pc.SlashAuthority = acc.StringLE()
	pc.SecurityModule = acc.StringLE()

	tc, err := pc.TrustConfig()
	require.NoError(t, err)
	require.EqualValues(t, DefaultRequiredStake, tc.RequiredStake.Int64())
	require.EqualValues(t, 500, tc.GenesisStake.Int64())
	require.Equal(t, acc, tc.SlashAuthority)

	oc, err := pc.OracleConfig()
	require.NoError(t, err)
	require.Equal(t, acc, oc.SecurityModule)
	require.EqualValues(t, 3, oc.Quorum)
}

func TestContext(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))

	cfg := Default()
	require.Same(t, cfg, FromContext(WithContext(context.Background(), cfg)))
}

func TestBuildLogger(t *testing.T) {
	l, err := LoggerConfig{Level: "warn", Encoding: "json"}.BuildLogger(false)
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(-1))

	l, err = LoggerConfig{Level: "warn", Encoding: "console"}.BuildLogger(true)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(-1))

	_, err = LoggerConfig{Level: "loud", Encoding: "json"}.BuildLogger(false)
	require.Error(t, err)
}
