package trust

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Member groups information about the web of trust participant.
type Member struct {
	// Account of the member. Not stored in the record itself.
	Address util.Uint160
	// Currently locked stake. Only decreases through slashing.
	Stake *big.Int
	// Member which issued the invite code consumed by this member. Nil for
	// the genesis member.
	Inviter *util.Uint160
	// Whether the member participates in reviews.
	Active bool
}

// ToStackItem implements common.Record.
func (m *Member) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(intOrZero(m.Stake)),
		common.OptionalUint160Item(m.Inviter),
		stackitem.NewBool(m.Active),
	}), nil
}

// FromStackItem implements common.Record.
func (m *Member) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 3 {
		return errors.New("invalid member structure")
	}

	var err error

	m.Stake, err = arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("field Stake: %w", err)
	}

	m.Inviter, err = common.OptionalUint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Inviter: %w", err)
	}

	m.Active, err = arr[2].TryBool()
	if err != nil {
		return fmt.Errorf("field Active: %w", err)
	}

	return nil
}

// Invite groups information about the issued invite code.
type Invite struct {
	// Invite code. Not stored in the record itself.
	Code util.Uint256
	// Member which issued the code.
	Issuer util.Uint160
	// Whether the code has already been used for registration.
	Consumed bool
	// Member registered with the code. Nil until the code is consumed.
	Consumer *util.Uint160
}

// ToStackItem implements common.Record.
func (i *Invite) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(i.Issuer.BytesBE()),
		stackitem.NewBool(i.Consumed),
		common.OptionalUint160Item(i.Consumer),
	}), nil
}

// FromStackItem implements common.Record.
func (i *Invite) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 3 {
		return errors.New("invalid invite structure")
	}

	var err error

	i.Issuer, err = common.Uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Issuer: %w", err)
	}

	i.Consumed, err = arr[1].TryBool()
	if err != nil {
		return fmt.Errorf("field Consumed: %w", err)
	}

	i.Consumer, err = common.OptionalUint160FromItem(arr[2])
	if err != nil {
		return fmt.Errorf("field Consumer: %w", err)
	}

	return nil
}
