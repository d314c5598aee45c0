package deploy

import (
	"context"
	"math/big"
	"testing"

	"github.com/naughty-agents/protocol-contract/canonical"
	"github.com/naughty-agents/protocol-contract/contracts/oracle"
	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/naughty-agents/protocol-contract/contracts/trust"
	"github.com/naughty-agents/protocol-contract/internal/ledgertest"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testPrm(t *testing.T) Prm {
	return Prm{
		Logger: zaptest.NewLogger(t),
		Ledger: ledgertest.NewLedger(t),
		Owner:  ledgertest.NewAccount(t),
		TrustLedger: TrustLedgerPrm{
			Config: trust.DefaultConfig(big.NewInt(100)),
		},
	}
}

func TestDeploy(t *testing.T) {
	prm := testPrm(t)

	p, err := Deploy(context.Background(), prm)
	require.NoError(t, err)

	err = prm.Ledger.Read(func(ic *ledger.Context) error {
		o, ok, err := p.Registry.ReviewOracle(ic)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, p.Oracle.Hash(), o)

		cfg, err := p.Oracle.Config(ic)
		require.NoError(t, err)
		require.EqualValues(t, oracle.DefaultQuorum, cfg.Quorum)

		ok, err = p.Trust.IsActiveMember(ic, prm.Owner)
		require.NoError(t, err)
		require.True(t, ok)

		return nil
	})
	require.NoError(t, err)

	t.Run("repeated", func(t *testing.T) {
		height := prm.Ledger.AuditHeight()

		again, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, p.Trust.Hash(), again.Trust.Hash())
		require.Equal(t, p.Registry.Hash(), again.Registry.Hash())
		require.Equal(t, p.Oracle.Hash(), again.Oracle.Hash())
		require.Equal(t, height, prm.Ledger.AuditHeight())
	})

	t.Run("another owner", func(t *testing.T) {
		other := prm
		other.Owner = ledgertest.NewAccount(t)

		_, err := Deploy(context.Background(), other)
		require.ErrorIs(t, err, ledger.ErrAlreadyDeployed)
	})

	t.Run("open", func(t *testing.T) {
		opened, err := Open(prm.Ledger)
		require.NoError(t, err)
		require.Equal(t, p.Trust.Hash(), opened.Trust.Hash())
		require.Equal(t, p.Registry.Hash(), opened.Registry.Hash())
		require.Equal(t, p.Oracle.Hash(), opened.Oracle.Hash())
	})
}

func TestDeploy_Context(t *testing.T) {
	prm := testPrm(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Deploy(ctx, prm)
	require.ErrorIs(t, err, context.Canceled)

	_, err = Open(prm.Ledger)
	require.ErrorIs(t, err, ledger.ErrContractNotFound)
}

func TestDeploy_MissingOwner(t *testing.T) {
	prm := testPrm(t)
	prm.Owner = util.Uint160{}

	_, err := Deploy(context.Background(), prm)
	require.Error(t, err)
}

// TestReviewFlow walks an agent action through the whole review procedure.
func TestReviewFlow(t *testing.T) {
	prm := testPrm(t)

	p, err := Deploy(context.Background(), prm)
	require.NoError(t, err)

	owner := ledgertest.NewInvoker(prm.Ledger, prm.Owner)

	reviewers := []*ledgertest.Invoker{owner}
	for i := 0; i < 3; i++ {
		var code util.Uint256
		reviewers[i].Invoke(t, "createInviteCode", func(ic *ledger.Context) error {
			code, err = p.Trust.CreateInviteCode(ic)
			return err
		})

		r := owner.WithSender(ledgertest.NewAccount(t))
		r.Invoke(t, "register", func(ic *ledger.Context) error {
			return p.Trust.Register(ic, code, big.NewInt(100))
		})

		reviewers = append(reviewers, r)
	}

	h, err := canonical.ActionHash("native_transfer", map[string]any{
		"to":     "0x0000000000000000000000000000000000000001",
		"amount": 100,
	})
	require.NoError(t, err)

	status := func() actionstatus.Status {
		var s actionstatus.Status
		owner.Read(t, func(ic *ledger.Context) error {
			s, err = p.Registry.GetActionStatus(ic, h.BytesBE())
			return err
		})
		return s
	}

	require.Equal(t, actionstatus.Unknown, status())

	var taskID uint64
	reviewers[3].Invoke(t, "flagActionForReview", func(ic *ledger.Context) error {
		taskID, err = p.Oracle.FlagActionForReview(ic, h.BytesBE())
		return err
	})
	require.Zero(t, taskID)
	require.Equal(t, actionstatus.Flagged, status())

	for _, r := range reviewers[1:] {
		r.Invoke(t, "castBlacklistVote", func(ic *ledger.Context) error {
			return p.Oracle.CastBlacklistVote(ic, taskID, true)
		})
	}

	owner.Invoke(t, "resolveBlacklistVote", func(ic *ledger.Context) error {
		return p.Oracle.ResolveBlacklistVote(ic, taskID)
	})
	require.Equal(t, actionstatus.Blacklisted, status())

	// reviewer misbehaved, its inviter shares responsibility
	owner.Invoke(t, "reportBadReview", func(ic *ledger.Context) error {
		return p.Trust.ReportBadReview(ic, reviewers[3].Sender())
	})

	owner.Read(t, func(ic *ledger.Context) error {
		m, err := p.Trust.Member(ic, reviewers[3].Sender())
		require.NoError(t, err)
		require.EqualValues(t, 90, m.Stake.Int64())

		m, err = p.Trust.Member(ic, reviewers[2].Sender())
		require.NoError(t, err)
		require.EqualValues(t, 95, m.Stake.Int64())

		return nil
	})
}
