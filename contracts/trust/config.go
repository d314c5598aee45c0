package trust

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Default slashing parameters.
const (
	DefaultPrimarySlashPercent   = 10
	DefaultDelegatedSlashPercent = 5
)

// ErrInvalidConfig is returned on deployment with inconsistent Config.
var ErrInvalidConfig = common.NewConfigurationError("invalid trust ledger configuration")

// Config groups TrustLedger parameters fixed on deployment.
type Config struct {
	// Genesis member. Deployer is used if zero.
	Owner util.Uint160
	// Minimum stake required for registration. Nil means zero.
	RequiredStake *big.Int
	// Percentage of the stake slashed from the reported member.
	PrimarySlashPercent int64
	// Percentage of the stake slashed from the direct inviter of the
	// reported member.
	DelegatedSlashPercent int64
	// Account allowed to report bad reviews. Owner is used if zero.
	SlashAuthority util.Uint160
	// Stake of the genesis member. Nil means zero.
	GenesisStake *big.Int
}

// DefaultConfig returns Config with default slashing parameters and the given
// required stake.
func DefaultConfig(requiredStake *big.Int) Config {
	return Config{
		RequiredStake:         requiredStake,
		PrimarySlashPercent:   DefaultPrimarySlashPercent,
		DelegatedSlashPercent: DefaultDelegatedSlashPercent,
	}
}

// Validate checks Config consistency.
func (c Config) Validate() error {
	switch {
	case c.RequiredStake != nil && c.RequiredStake.Sign() < 0:
		return fmt.Errorf("%w: negative required stake", ErrInvalidConfig)
	case c.GenesisStake != nil && c.GenesisStake.Sign() < 0:
		return fmt.Errorf("%w: negative genesis stake", ErrInvalidConfig)
	case c.PrimarySlashPercent < 0 || c.PrimarySlashPercent > 100:
		return fmt.Errorf("%w: primary slash percent %d out of [0, 100]", ErrInvalidConfig, c.PrimarySlashPercent)
	case c.DelegatedSlashPercent < 0 || c.DelegatedSlashPercent > 100:
		return fmt.Errorf("%w: delegated slash percent %d out of [0, 100]", ErrInvalidConfig, c.DelegatedSlashPercent)
	}
	return nil
}

// withDefaults returns Config with unset fields filled.
func (c Config) withDefaults(deployer util.Uint160) Config {
	if c.Owner.Equals(util.Uint160{}) {
		c.Owner = deployer
	}
	if c.SlashAuthority.Equals(util.Uint160{}) {
		c.SlashAuthority = c.Owner
	}
	c.RequiredStake = intOrZero(c.RequiredStake)
	c.GenesisStake = intOrZero(c.GenesisStake)
	return c
}

// ToStackItem implements common.Record.
func (c *Config) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(c.Owner.BytesBE()),
		stackitem.NewBigInteger(intOrZero(c.RequiredStake)),
		stackitem.NewBigInteger(big.NewInt(c.PrimarySlashPercent)),
		stackitem.NewBigInteger(big.NewInt(c.DelegatedSlashPercent)),
		stackitem.NewByteArray(c.SlashAuthority.BytesBE()),
		stackitem.NewBigInteger(intOrZero(c.GenesisStake)),
	}), nil
}

// FromStackItem implements common.Record.
func (c *Config) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 6 {
		return errors.New("invalid config structure")
	}

	var err error

	c.Owner, err = common.Uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	c.RequiredStake, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field RequiredStake: %w", err)
	}

	c.PrimarySlashPercent, err = common.Int64FromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field PrimarySlashPercent: %w", err)
	}

	c.DelegatedSlashPercent, err = common.Int64FromItem(arr[3])
	if err != nil {
		return fmt.Errorf("field DelegatedSlashPercent: %w", err)
	}

	c.SlashAuthority, err = common.Uint160FromItem(arr[4])
	if err != nil {
		return fmt.Errorf("field SlashAuthority: %w", err)
	}

	c.GenesisStake, err = arr[5].TryInteger()
	if err != nil {
		return fmt.Errorf("field GenesisStake: %w", err)
	}

	return nil
}

func intOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
