package oracle

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/contracts/registry"
	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/naughty-agents/protocol-contract/contracts/trust"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Name of the ReviewOracle component.
const Name = "ReviewOracle"

const (
	configKey   = "config"
	versionKey  = "version"
	nextTaskKey = "nextTask"

	taskPrefix   = 't'
	ballotPrefix = 'b'
)

var (
	// ErrNotReviewer is returned when the caller is not allowed to flag
	// actions or vote.
	ErrNotReviewer = common.NewAuthorizationError("caller is not an active member")
	// ErrAlreadyDecided is returned on flagging the action which is not in
	// Unknown status.
	ErrAlreadyDecided = common.NewStateError("action is already flagged or blacklisted")
	// ErrUnknownTask is returned for task IDs never allocated.
	ErrUnknownTask = common.NewValidationError("unknown task")
	// ErrAlreadyResolved is returned on voting for or resolving the resolved
	// task.
	ErrAlreadyResolved = common.NewStateError("task is already resolved")
	// ErrAlreadyVoted is returned on repeated ballot of the same member.
	ErrAlreadyVoted = common.NewStateError("already voted")
	// ErrQuorumNotMet is returned on resolving the task with less supporting
	// ballots than the quorum.
	ErrQuorumNotMet = common.NewStateError("quorum not met")
)

// Contract is a ReviewOracle component bound to its address and the
// components it depends on.
type Contract struct {
	hash     util.Uint160
	trust    *trust.Contract
	registry *registry.Contract
}

// Bind returns Contract deployed at the given address and working with the
// given TrustLedger and ActionRegistry.
func Bind(h util.Uint160, t *trust.Contract, r *registry.Contract) *Contract {
	return &Contract{
		hash:     h,
		trust:    t,
		registry: r,
	}
}

// Deploy deploys ReviewOracle working with the given TrustLedger and
// ActionRegistry. The oracle still has to be bound in the ActionRegistry by
// its owner.
func Deploy(ic *ledger.Context, cfg Config, t *trust.Contract, r *registry.Contract) (*Contract, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	cfg.TrustLedger = t.Hash()
	cfg.ActionRegistry = r.Hash()

	cs, err := ic.Deploy(Name, func(ic *ledger.Context) error {
		st := ic.Storage()

		err := common.SetSerialized(st, []byte(configKey), &cfg)
		if err != nil {
			return fmt.Errorf("store config: %w", err)
		}

		common.PutInteger(st, []byte(versionKey), big.NewInt(common.Version))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Bind(cs.Hash, t, r), nil
}

// Hash returns address of the component.
func (c *Contract) Hash() util.Uint160 {
	return c.hash
}

// FlagActionForReview creates review task for the action of Unknown status
// and marks the action as Flagged. Caller must be an active member or the
// security module. Returns ID of the new task.
func (c *Contract) FlagActionForReview(ic *ledger.Context, actionHash []byte) (uint64, error) {
	ic, st, err := c.enter(ic)
	if err != nil {
		return 0, err
	}

	cfg, err := getConfig(st)
	if err != nil {
		return 0, err
	}

	flagger := ic.CallingScriptHash()

	if cfg.SecurityModule.Equals(util.Uint160{}) || !flagger.Equals(cfg.SecurityModule) {
		err = c.checkReviewer(ic, flagger)
		if err != nil {
			return 0, err
		}
	}

	status, err := c.registry.GetActionStatus(ic, actionHash)
	if err != nil {
		return 0, err
	}
	if status != actionstatus.Unknown {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyDecided, status)
	}

	id, err := common.NextCounter(st, []byte(nextTaskKey))
	if err != nil {
		return 0, fmt.Errorf("allocate task ID: %w", err)
	}

	h, err := util.Uint256DecodeBytesBE(actionHash)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", registry.ErrInvalidActionHash, err)
	}

	err = putTask(st, &Task{
		ID:         id,
		ActionHash: h,
		Flagger:    flagger,
	})
	if err != nil {
		return 0, err
	}

	err = c.registry.MarkFlagged(ic, actionHash)
	if err != nil {
		return 0, err
	}

	ic.Notify("ActionFlagged",
		stackitem.NewBigInteger(new(big.Int).SetUint64(id)),
		stackitem.NewByteArray(actionHash))

	return id, nil
}

// CastBlacklistVote records ballot of the caller for the unresolved task.
// Caller must be an active member which has not voted for this task yet.
func (c *Contract) CastBlacklistVote(ic *ledger.Context, taskID uint64, support bool) error {
	ic, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	task, err := getTask(st, taskID)
	if err != nil {
		return err
	}
	if task.Resolved {
		return fmt.Errorf("%w: #%d", ErrAlreadyResolved, taskID)
	}

	voter := ic.CallingScriptHash()

	err = c.checkReviewer(ic, voter)
	if err != nil {
		return err
	}

	counted, err := common.Vote(st, []byte{ballotPrefix}, taskIDBytes(taskID), common.Ballot{
		Voter:   voter,
		Support: support,
	})
	if err != nil {
		return err
	}
	if !counted {
		return fmt.Errorf("%w: task #%d", ErrAlreadyVoted, taskID)
	}

	if support {
		task.VotesFor++
	} else {
		task.VotesAgainst++
	}

	err = putTask(st, task)
	if err != nil {
		return err
	}

	ic.Notify("VoteCast",
		stackitem.NewBigInteger(new(big.Int).SetUint64(taskID)),
		stackitem.NewByteArray(voter.BytesBE()),
		stackitem.NewBool(support))

	return nil
}

// ResolveBlacklistVote resolves the task which collected at least quorum
// supporting ballots and blacklists its action. Anyone may resolve.
func (c *Contract) ResolveBlacklistVote(ic *ledger.Context, taskID uint64) error {
	ic, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	task, err := getTask(st, taskID)
	if err != nil {
		return err
	}
	if task.Resolved {
		return fmt.Errorf("%w: #%d", ErrAlreadyResolved, taskID)
	}

	cfg, err := getConfig(st)
	if err != nil {
		return err
	}

	if task.VotesFor < cfg.Quorum {
		return fmt.Errorf("%w: %d of %d", ErrQuorumNotMet, task.VotesFor, cfg.Quorum)
	}

	task.Resolved = true

	err = putTask(st, task)
	if err != nil {
		return err
	}

	err = c.registry.MarkBlacklisted(ic, task.ActionHash.BytesBE())
	if err != nil {
		return err
	}

	ic.Notify("TaskResolved",
		stackitem.NewBigInteger(new(big.Int).SetUint64(taskID)),
		stackitem.NewBigInteger(big.NewInt(int64(actionstatus.Blacklisted))))

	return nil
}

// Task returns review task by ID.
func (c *Contract) Task(ic *ledger.Context, taskID uint64) (*Task, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}
	return getTask(st, taskID)
}

// Tasks passes all review tasks to f in ascending ID order until f returns
// false.
func (c *Contract) Tasks(ic *ledger.Context, f func(Task) bool) error {
	_, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	var ferr error

	err = st.Find([]byte{taskPrefix}, func(k, v []byte) bool {
		var t Task

		ferr = common.DecodeSerialized(v, &t)
		if ferr != nil {
			ferr = fmt.Errorf("decode task %x: %w", k, ferr)
			return false
		}

		return f(t)
	})
	if err == nil {
		err = ferr
	}

	return err
}

// TaskCount returns number of created tasks.
func (c *Contract) TaskCount(ic *ledger.Context) (uint64, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return 0, err
	}

	n, err := common.GetInteger(st, []byte(nextTaskKey))
	if err != nil {
		return 0, err
	}

	return n.Uint64(), nil
}

// Ballots returns ballots cast for the task.
func (c *Contract) Ballots(ic *ledger.Context, taskID uint64) ([]common.Ballot, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}

	_, err = getTask(st, taskID)
	if err != nil {
		return nil, err
	}

	return common.Ballots(st, []byte{ballotPrefix}, taskIDBytes(taskID))
}

// Config returns parameters set on deployment.
func (c *Contract) Config(ic *ledger.Context) (*Config, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}
	return getConfig(st)
}

// Version returns version of the component state.
func (c *Contract) Version(ic *ledger.Context) (int, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return 0, err
	}

	v, err := common.GetInteger(st, []byte(versionKey))
	if err != nil {
		return 0, err
	}

	return int(v.Int64()), nil
}

func (c *Contract) enter(ic *ledger.Context) (*ledger.Context, *ledger.Storage, error) {
	ic, err := ic.Enter(c.hash)
	if err != nil {
		return nil, nil, err
	}
	return ic, ic.Storage(), nil
}

func (c *Contract) checkReviewer(ic *ledger.Context, addr util.Uint160) error {
	ok, err := c.trust.IsActiveMember(ic, addr)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotReviewer, addr.StringLE())
	}
	return nil
}

func getConfig(st *ledger.Storage) (*Config, error) {
	cfg := new(Config)

	found, err := common.GetSerialized(st, []byte(configKey), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: missing config", ErrInvalidConfig)
	}

	return cfg, nil
}

func getTask(st *ledger.Storage, id uint64) (*Task, error) {
	t := new(Task)

	found, err := common.GetSerialized(st, taskKey(id), t)
	if err != nil {
		return nil, fmt.Errorf("read task #%d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: #%d", ErrUnknownTask, id)
	}

	return t, nil
}

func putTask(st *ledger.Storage, t *Task) error {
	err := common.SetSerialized(st, taskKey(t.ID), t)
	if err != nil {
		return fmt.Errorf("store task #%d: %w", t.ID, err)
	}
	return nil
}

func taskIDBytes(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func taskKey(id uint64) []byte {
	return append([]byte{taskPrefix}, taskIDBytes(id)...)
}
