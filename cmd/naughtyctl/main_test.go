package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naughty-agents/protocol-contract/internal/ledgertest"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

const (
	transferParams = `{"to":"0x0000000000000000000000000000000000000001","amount":100}`
	transferHash   = "806b7287a2da74039e73e3171087ca87ff859a08b743fc6e2a4ef168eefa0c52"
)

type testEnv struct {
	dir     string
	config  string
	metrics string
	owner   util.Uint160
}

func newTestEnv(t *testing.T, db string) *testEnv {
	dir := t.TempDir()

	e := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "naughty.yaml"),
		metrics: filepath.Join(dir, "naughty.prom"),
		owner:   ledgertest.NewAccount(t),
	}

	require.NoError(t, os.WriteFile(e.config, []byte(fmt.Sprintf(`
ledger:
  type: boltdb
  path: %s
protocol:
  owner: %s
  requiredStake: 100
  quorum: 1
logger:
  level: error
metrics:
  textfile: %s
`, filepath.Join(dir, db), address.Uint160ToString(e.owner), e.metrics)), 0o644))

	return e
}

func (e *testEnv) run(t *testing.T, args ...string) string {
	out, err := e.exec(args...)
	require.NoError(t, err, out)
	return out
}

func (e *testEnv) exec(args ...string) (string, error) {
	var buf bytes.Buffer

	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	err := cmd.Execute()

	return buf.String(), err
}

func valueOf(t *testing.T, out, key string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, key+": "); ok {
			return v
		}
	}

	t.Fatalf("no %q in output:\n%s", key, out)

	return ""
}

func TestReviewProcedure(t *testing.T) {
	e := newTestEnv(t, "ledger.bolt")

	out := e.run(t, "deploy")
	require.Contains(t, out, "TrustLedger: ")
	require.Contains(t, out, "ActionRegistry: ")
	require.Contains(t, out, "ReviewOracle: ")

	// deployment is idempotent
	e.run(t, "deploy")

	reviewer := ledgertest.NewAccount(t)

	code := valueOf(t, e.run(t, "invite"), "Code")

	_, err := e.exec("register", code, "99", "--from", reviewer.StringLE())
	require.Error(t, err)

	e.run(t, "register", code, "100", "--from", address.Uint160ToString(reviewer))

	_, err = e.exec("register", code, "100", "--from", ledgertest.NewAccount(t).StringLE())
	require.Error(t, err)

	require.Equal(t, transferHash+"\n", e.run(t, "hash", "native_transfer", "--params", transferParams))
	require.Equal(t, "unknown\n", e.run(t, "status", transferHash))

	out = e.run(t, "flag", "--action", "native_transfer", "--params", transferParams,
		"--from", reviewer.StringLE())
	require.Equal(t, "0", valueOf(t, out, "Task"))
	require.Contains(t, out, "ActionFlagged")
	require.Equal(t, "flagged\n", e.run(t, "status", "0x"+transferHash))

	_, err = e.exec("resolve", "0")
	require.Error(t, err)

	e.run(t, "vote", "0", "--from", reviewer.StringLE())

	_, err = e.exec("vote", "0", "--from", reviewer.StringLE())
	require.Error(t, err)

	out = e.run(t, "task", "0")
	require.Contains(t, out, "Votes: 1 for, 0 against")
	require.Contains(t, out, "Ballot: "+reviewer.StringLE()+" support=true")

	out = e.run(t, "resolve", "0")
	require.Contains(t, out, "Task #0 outcome: blacklisted")
	require.Equal(t, "blacklisted\n", e.run(t, "status", transferHash))
	require.Contains(t, e.run(t, "tasks"), "Resolved: true")

	out = e.run(t, "report", reviewer.StringLE())
	require.Contains(t, out, "Slashed 10 from "+reviewer.StringLE())
	require.Equal(t, "90", valueOf(t, e.run(t, "member", reviewer.StringLE()), "  Stake"))

	out = e.run(t, "events")
	for _, name := range []string{"InviteCodeCreated", "MemberRegistered", "ActionFlagged", "VoteCast", "TaskResolved", "MemberSlashed"} {
		require.Contains(t, out, name)
	}

	metrics, err := os.ReadFile(e.metrics)
	require.NoError(t, err)
	require.Contains(t, string(metrics), "naughty_ledger_audit_height")

	t.Run("dump and restore", func(t *testing.T) {
		dumps := filepath.Join(e.dir, "dumps")

		id := valueOf(t, e.run(t, "dump", dumps, "--label", "cli-test"), "Dump")
		require.True(t, strings.HasPrefix(id, "cli-test-"))

		restored := newTestEnv(t, "restored.bolt")

		require.Contains(t, restored.run(t, "restore", dumps), "Restored "+id)
		require.Equal(t, "blacklisted\n", restored.run(t, "status", transferHash))

		_, err := restored.exec("restore", dumps, id)
		require.Error(t, err)
	})
}

func TestAssessCommand(t *testing.T) {
	e := newTestEnv(t, "ledger.bolt")

	out := e.run(t, "assess", "native_transfer", "--params", transferParams)
	require.Contains(t, out, `"riskScore": 0.7`)
	require.Contains(t, out, `"label": "suspicious"`)

	_, err := e.exec("assess", "native_transfer", "--params", "[]")
	require.Error(t, err)
}

func TestMissingProtocol(t *testing.T) {
	e := newTestEnv(t, "ledger.bolt")

	_, err := e.exec("status", transferHash)
	require.Error(t, err)

	_, err = e.exec("flag")
	require.Error(t, err)
}
