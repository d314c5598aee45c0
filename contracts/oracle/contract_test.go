package oracle_test

import (
	"math/big"
	"testing"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/contracts/oracle"
	"github.com/naughty-agents/protocol-contract/contracts/registry"
	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/naughty-agents/protocol-contract/contracts/trust"
	"github.com/naughty-agents/protocol-contract/internal/ledgertest"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

type env struct {
	owner    *ledgertest.Invoker
	trust    *trust.Contract
	registry *registry.Contract
	oracle   *oracle.Contract
}

func newEnv(t *testing.T, cfg oracle.Config, bind bool) *env {
	e := &env{
		owner: ledgertest.NewInvoker(ledgertest.NewLedger(t), ledgertest.NewAccount(t)),
	}

	e.owner.Invoke(t, "deploy", func(ic *ledger.Context) error {
		var err error

		e.trust, err = trust.Deploy(ic, trust.DefaultConfig(big.NewInt(10)))
		if err != nil {
			return err
		}

		e.registry, err = registry.Deploy(ic)
		if err != nil {
			return err
		}

		e.oracle, err = oracle.Deploy(ic, cfg, e.trust, e.registry)
		if err != nil {
			return err
		}

		if bind {
			return e.registry.SetReviewOracleAddress(ic, e.oracle.Hash())
		}

		return nil
	})

	return e
}

func newDefaultEnv(t *testing.T) *env {
	return newEnv(t, oracle.DefaultConfig(), true)
}

func (e *env) newReviewer(t *testing.T) *ledgertest.Invoker {
	var code util.Uint256
	e.owner.Invoke(t, "createInviteCode", func(ic *ledger.Context) error {
		var err error
		code, err = e.trust.CreateInviteCode(ic)
		return err
	})

	r := e.owner.WithSender(ledgertest.NewAccount(t))
	r.Invoke(t, "register", func(ic *ledger.Context) error {
		return e.trust.Register(ic, code, big.NewInt(10))
	})

	return r
}

func (e *env) flag(h []byte) func(*ledger.Context) error {
	return func(ic *ledger.Context) error {
		_, err := e.oracle.FlagActionForReview(ic, h)
		return err
	}
}

func (e *env) vote(id uint64, support bool) func(*ledger.Context) error {
	return func(ic *ledger.Context) error {
		return e.oracle.CastBlacklistVote(ic, id, support)
	}
}

func (e *env) resolve(id uint64) func(*ledger.Context) error {
	return func(ic *ledger.Context) error {
		return e.oracle.ResolveBlacklistVote(ic, id)
	}
}

func (e *env) task(t *testing.T, id uint64) *oracle.Task {
	var task *oracle.Task
	e.owner.Read(t, func(ic *ledger.Context) error {
		var err error
		task, err = e.oracle.Task(ic, id)
		return err
	})
	return task
}

func (e *env) status(t *testing.T, h []byte) actionstatus.Status {
	var s actionstatus.Status
	e.owner.Read(t, func(ic *ledger.Context) error {
		var err error
		s, err = e.registry.GetActionStatus(ic, h)
		return err
	})
	return s
}

func actionHash(b byte) []byte {
	h := make([]byte, util.Uint256Size)
	h[util.Uint256Size-1] = b
	return h
}

func TestDeploy(t *testing.T) {
	e := newDefaultEnv(t)

	e.owner.Read(t, func(ic *ledger.Context) error {
		cfg, err := e.oracle.Config(ic)
		require.NoError(t, err)
		require.EqualValues(t, oracle.DefaultQuorum, cfg.Quorum)
		require.Equal(t, e.trust.Hash(), cfg.TrustLedger)
		require.Equal(t, e.registry.Hash(), cfg.ActionRegistry)
		require.Equal(t, util.Uint160{}, cfg.SecurityModule)

		v, err := e.oracle.Version(ic)
		require.NoError(t, err)
		require.Equal(t, common.Version, v)

		return nil
	})

	t.Run("zero quorum", func(t *testing.T) {
		e.owner.InvokeFail(t, oracle.ErrInvalidConfig, "deploy", func(ic *ledger.Context) error {
			_, err := oracle.Deploy(ic, oracle.Config{}, e.trust, e.registry)
			return err
		})
	})
}

func TestFlagActionForReview(t *testing.T) {
	e := newDefaultEnv(t)
	reviewer := e.newReviewer(t)

	t.Run("not a member", func(t *testing.T) {
		stranger := e.owner.WithSender(ledgertest.NewAccount(t))
		stranger.InvokeFail(t, oracle.ErrNotReviewer, "flagActionForReview", e.flag(actionHash(1)))
		require.Equal(t, actionstatus.Unknown, e.status(t, actionHash(1)))
	})

	t.Run("invalid hash", func(t *testing.T) {
		reviewer.InvokeFail(t, registry.ErrInvalidActionHash, "flagActionForReview", e.flag(make([]byte, 31)))
	})

	for i := 0; i < 3; i++ {
		h := actionHash(byte(i))

		var id uint64
		res := reviewer.Invoke(t, "flagActionForReview", func(ic *ledger.Context) error {
			var err error
			id, err = e.oracle.FlagActionForReview(ic, h)
			return err
		})
		require.EqualValues(t, i, id)
		require.Equal(t, []string{"ActionStatusChanged", "ActionFlagged"}, ledgertest.EventNames(res))

		evs, err := e.oracle.ActionFlaggedEventsFromResult(res)
		require.NoError(t, err)
		require.Len(t, evs, 1)
		require.Equal(t, id, evs[0].TaskID)
		require.Equal(t, h, evs[0].ActionHash.BytesBE())

		task := e.task(t, id)
		require.Equal(t, h, task.ActionHash.BytesBE())
		require.Equal(t, reviewer.Sender(), task.Flagger)
		require.False(t, task.Resolved)
		require.Zero(t, task.VotesFor)
		require.Zero(t, task.VotesAgainst)

		require.Equal(t, actionstatus.Flagged, e.status(t, h))
	}

	t.Run("already flagged", func(t *testing.T) {
		e.owner.InvokeFail(t, oracle.ErrAlreadyDecided, "flagActionForReview", e.flag(actionHash(0)))
	})

	e.owner.Read(t, func(ic *ledger.Context) error {
		n, err := e.oracle.TaskCount(ic)
		require.NoError(t, err)
		require.EqualValues(t, 3, n)

		var ids []uint64
		err = e.oracle.Tasks(ic, func(task oracle.Task) bool {
			ids = append(ids, task.ID)
			return true
		})
		require.NoError(t, err)
		require.Equal(t, []uint64{0, 1, 2}, ids)

		_, err = e.oracle.Task(ic, 3)
		require.ErrorIs(t, err, oracle.ErrUnknownTask)
		require.ErrorIs(t, err, common.ErrValidation)

		return nil
	})
}

func TestFlagActionForReview_OracleNotBound(t *testing.T) {
	e := newEnv(t, oracle.DefaultConfig(), false)

	e.owner.InvokeFail(t, common.ErrCallerNotAllowed, "flagActionForReview", e.flag(actionHash(1)))

	// task allocation is discarded with the failed invocation
	e.owner.Read(t, func(ic *ledger.Context) error {
		n, err := e.oracle.TaskCount(ic)
		require.NoError(t, err)
		require.Zero(t, n)
		return nil
	})

	e.owner.Invoke(t, "setReviewOracleAddress", func(ic *ledger.Context) error {
		return e.registry.SetReviewOracleAddress(ic, e.oracle.Hash())
	})

	var id uint64
	e.owner.Invoke(t, "flagActionForReview", func(ic *ledger.Context) error {
		var err error
		id, err = e.oracle.FlagActionForReview(ic, actionHash(1))
		return err
	})
	require.Zero(t, id)
}

func TestFlagActionForReview_SecurityModule(t *testing.T) {
	module := ledgertest.NewAccount(t)

	cfg := oracle.DefaultConfig()
	cfg.SecurityModule = module

	e := newEnv(t, cfg, true)

	e.owner.WithSender(module).Invoke(t, "flagActionForReview", e.flag(actionHash(1)))
	require.Equal(t, module, e.task(t, 0).Flagger)

	// module is not a reviewer
	e.owner.WithSender(module).InvokeFail(t, oracle.ErrNotReviewer, "castBlacklistVote", e.vote(0, true))
}

func TestCastBlacklistVote(t *testing.T) {
	e := newDefaultEnv(t)
	reviewer := e.newReviewer(t)

	reviewer.Invoke(t, "flagActionForReview", e.flag(actionHash(1)))

	t.Run("unknown task", func(t *testing.T) {
		reviewer.InvokeFail(t, oracle.ErrUnknownTask, "castBlacklistVote", e.vote(1, true))
	})

	t.Run("not a member", func(t *testing.T) {
		stranger := e.owner.WithSender(ledgertest.NewAccount(t))
		stranger.InvokeFail(t, oracle.ErrNotReviewer, "castBlacklistVote", e.vote(0, true))
	})

	res := reviewer.Invoke(t, "castBlacklistVote", e.vote(0, true))

	evs, err := e.oracle.VoteCastEventsFromResult(res)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Zero(t, evs[0].TaskID)
	require.Equal(t, reviewer.Sender(), evs[0].Voter)
	require.True(t, evs[0].Support)

	e.owner.Invoke(t, "castBlacklistVote", e.vote(0, false))

	t.Run("double vote", func(t *testing.T) {
		reviewer.InvokeFail(t, oracle.ErrAlreadyVoted, "castBlacklistVote", e.vote(0, true))
		reviewer.InvokeFail(t, oracle.ErrAlreadyVoted, "castBlacklistVote", e.vote(0, false))
	})

	task := e.task(t, 0)
	require.EqualValues(t, 1, task.VotesFor)
	require.EqualValues(t, 1, task.VotesAgainst)

	e.owner.Read(t, func(ic *ledger.Context) error {
		ballots, err := e.oracle.Ballots(ic, 0)
		require.NoError(t, err)
		require.ElementsMatch(t, []common.Ballot{
			{Voter: reviewer.Sender(), Support: true},
			{Voter: e.owner.Sender(), Support: false},
		}, ballots)
		return nil
	})
}

func TestResolveBlacklistVote(t *testing.T) {
	e := newDefaultEnv(t)

	reviewers := []*ledgertest.Invoker{e.owner}
	for i := 0; i < 3; i++ {
		reviewers = append(reviewers, e.newReviewer(t))
	}

	h := actionHash(7)
	reviewers[1].Invoke(t, "flagActionForReview", e.flag(h))

	anyone := e.owner.WithSender(ledgertest.NewAccount(t))

	t.Run("unknown task", func(t *testing.T) {
		anyone.InvokeFail(t, oracle.ErrUnknownTask, "resolveBlacklistVote", e.resolve(1))
	})

	reviewers[0].Invoke(t, "castBlacklistVote", e.vote(0, false))
	reviewers[1].Invoke(t, "castBlacklistVote", e.vote(0, true))
	reviewers[2].Invoke(t, "castBlacklistVote", e.vote(0, true))

	t.Run("quorum not met", func(t *testing.T) {
		anyone.InvokeFail(t, oracle.ErrQuorumNotMet, "resolveBlacklistVote", e.resolve(0))
		require.False(t, e.task(t, 0).Resolved)
		require.Equal(t, actionstatus.Flagged, e.status(t, h))
	})

	reviewers[3].Invoke(t, "castBlacklistVote", e.vote(0, true))

	res := anyone.Invoke(t, "resolveBlacklistVote", e.resolve(0))
	require.Equal(t, []string{"ActionStatusChanged", "TaskResolved"}, ledgertest.EventNames(res))

	evs, err := e.oracle.TaskResolvedEventsFromResult(res)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Zero(t, evs[0].TaskID)
	require.Equal(t, actionstatus.Blacklisted, evs[0].Outcome)

	task := e.task(t, 0)
	require.True(t, task.Resolved)
	require.EqualValues(t, 3, task.VotesFor)
	require.EqualValues(t, 1, task.VotesAgainst)
	require.Equal(t, actionstatus.Blacklisted, e.status(t, h))

	t.Run("resolved task", func(t *testing.T) {
		anyone.InvokeFail(t, oracle.ErrAlreadyResolved, "resolveBlacklistVote", e.resolve(0))

		late := e.newReviewer(t)
		late.InvokeFail(t, oracle.ErrAlreadyResolved, "castBlacklistVote", e.vote(0, true))
	})

	t.Run("blacklisted action", func(t *testing.T) {
		reviewers[0].InvokeFail(t, oracle.ErrAlreadyDecided, "flagActionForReview", e.flag(h))
	})
}

func TestResolveBlacklistVote_Quorum(t *testing.T) {
	cfg := oracle.DefaultConfig()
	cfg.Quorum = 1

	e := newEnv(t, cfg, true)

	e.owner.Invoke(t, "flagActionForReview", e.flag(actionHash(1)))
	e.owner.InvokeFail(t, oracle.ErrQuorumNotMet, "resolveBlacklistVote", e.resolve(0))

	e.owner.Invoke(t, "castBlacklistVote", e.vote(0, true))
	e.owner.Invoke(t, "resolveBlacklistVote", e.resolve(0))

	require.Equal(t, actionstatus.Blacklisted, e.status(t, actionHash(1)))
}
