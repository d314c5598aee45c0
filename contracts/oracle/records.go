package oracle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// DefaultQuorum is a number of supporting ballots required to blacklist the
// action.
const DefaultQuorum = 3

// ErrInvalidConfig is returned on deployment with inconsistent Config.
var ErrInvalidConfig = common.NewConfigurationError("invalid review oracle configuration")

// Config groups ReviewOracle parameters fixed on deployment.
type Config struct {
	// Number of supporting ballots required to resolve the task. Must be
	// positive.
	Quorum uint64
	// Upstream component allowed to flag actions without being a member.
	// Zero means no such component.
	SecurityModule util.Uint160

	// Set on deployment.
	TrustLedger    util.Uint160
	ActionRegistry util.Uint160
}

// DefaultConfig returns Config with the default quorum.
func DefaultConfig() Config {
	return Config{Quorum: DefaultQuorum}
}

// Validate checks Config consistency.
func (c Config) Validate() error {
	if c.Quorum == 0 {
		return fmt.Errorf("%w: quorum must be positive", ErrInvalidConfig)
	}
	return nil
}

// ToStackItem implements common.Record.
func (c *Config) ToStackItem() (stackitem.Item, error) {
	var sm *util.Uint160
	if !c.SecurityModule.Equals(util.Uint160{}) {
		sm = &c.SecurityModule
	}

	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(new(big.Int).SetUint64(c.Quorum)),
		common.OptionalUint160Item(sm),
		stackitem.NewByteArray(c.TrustLedger.BytesBE()),
		stackitem.NewByteArray(c.ActionRegistry.BytesBE()),
	}), nil
}

// FromStackItem implements common.Record.
func (c *Config) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 4 {
		return errors.New("invalid config structure")
	}

	var err error

	c.Quorum, err = common.Uint64FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Quorum: %w", err)
	}

	sm, err := common.OptionalUint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field SecurityModule: %w", err)
	}
	c.SecurityModule = util.Uint160{}
	if sm != nil {
		c.SecurityModule = *sm
	}

	c.TrustLedger, err = common.Uint160FromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field TrustLedger: %w", err)
	}

	c.ActionRegistry, err = common.Uint160FromItem(arr[3])
	if err != nil {
		return fmt.Errorf("field ActionRegistry: %w", err)
	}

	return nil
}

// Task is a review task of the flagged action.
type Task struct {
	// Sequential number starting from 0.
	ID uint64
	// Hash of the flagged action.
	ActionHash util.Uint256
	// Number of supporting and opposing ballots.
	VotesFor     uint64
	VotesAgainst uint64
	// Whether the task has been resolved.
	Resolved bool
	// Account flagged the action.
	Flagger util.Uint160
}

// ToStackItem implements common.Record.
func (t *Task) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(new(big.Int).SetUint64(t.ID)),
		stackitem.NewByteArray(t.ActionHash.BytesBE()),
		stackitem.NewBigInteger(new(big.Int).SetUint64(t.VotesFor)),
		stackitem.NewBigInteger(new(big.Int).SetUint64(t.VotesAgainst)),
		stackitem.NewBool(t.Resolved),
		stackitem.NewByteArray(t.Flagger.BytesBE()),
	}), nil
}

// FromStackItem implements common.Record.
func (t *Task) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 6 {
		return errors.New("invalid task structure")
	}

	var err error

	t.ID, err = common.Uint64FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	t.ActionHash, err = common.Uint256FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field ActionHash: %w", err)
	}

	t.VotesFor, err = common.Uint64FromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field VotesFor: %w", err)
	}

	t.VotesAgainst, err = common.Uint64FromItem(arr[3])
	if err != nil {
		return fmt.Errorf("field VotesAgainst: %w", err)
	}

	t.Resolved, err = arr[4].TryBool()
	if err != nil {
		return fmt.Errorf("field Resolved: %w", err)
	}

	t.Flagger, err = common.Uint160FromItem(arr[5])
	if err != nil {
		return fmt.Errorf("field Flagger: %w", err)
	}

	return nil
}
