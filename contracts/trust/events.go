package trust

import (
	"fmt"
	"math/big"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// InviteCodeCreatedEvent represents "InviteCodeCreated" event emitted by the
// component.
type InviteCodeCreatedEvent struct {
	Code   util.Uint256
	Issuer util.Uint160
}

// MemberRegisteredEvent represents "MemberRegistered" event emitted by the
// component.
type MemberRegisteredEvent struct {
	Member  util.Uint160
	Inviter *util.Uint160
	Stake   *big.Int
}

// MemberSlashedEvent represents "MemberSlashed" event emitted by the
// component.
type MemberSlashedEvent struct {
	Member util.Uint160
	Amount *big.Int
	Cause  string
}

// InviteCodeCreatedEventsFromResult retrieves a set of all emitted events
// with "InviteCodeCreated" name from the provided [ledger.Result].
func (c *Contract) InviteCodeCreatedEventsFromResult(res *ledger.Result) ([]*InviteCodeCreatedEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "InviteCodeCreated")
	out := make([]*InviteCodeCreatedEvent, len(evs))
	for i := range evs {
		out[i] = new(InviteCodeCreatedEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize InviteCodeCreatedEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// MemberRegisteredEventsFromResult retrieves a set of all emitted events
// with "MemberRegistered" name from the provided [ledger.Result].
func (c *Contract) MemberRegisteredEventsFromResult(res *ledger.Result) ([]*MemberRegisteredEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "MemberRegistered")
	out := make([]*MemberRegisteredEvent, len(evs))
	for i := range evs {
		out[i] = new(MemberRegisteredEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize MemberRegisteredEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// MemberSlashedEventsFromResult retrieves a set of all emitted events
// with "MemberSlashed" name from the provided [ledger.Result].
func (c *Contract) MemberSlashedEventsFromResult(res *ledger.Result) ([]*MemberSlashedEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "MemberSlashed")
	out := make([]*MemberSlashedEvent, len(evs))
	for i := range evs {
		out[i] = new(MemberSlashedEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize MemberSlashedEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// FromStackItem converts provided [stackitem.Array] to InviteCodeCreatedEvent
// or returns an error if it's not possible to do to so.
func (e *InviteCodeCreatedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 2)
	if err != nil {
		return err
	}

	e.Code, err = common.Uint256FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Code: %w", err)
	}

	e.Issuer, err = common.Uint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Issuer: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to MemberRegisteredEvent
// or returns an error if it's not possible to do to so.
func (e *MemberRegisteredEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 3)
	if err != nil {
		return err
	}

	e.Member, err = common.Uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Member: %w", err)
	}

	e.Inviter, err = common.OptionalUint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Inviter: %w", err)
	}

	e.Stake, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Stake: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to MemberSlashedEvent
// or returns an error if it's not possible to do to so.
func (e *MemberSlashedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 3)
	if err != nil {
		return err
	}

	e.Member, err = common.Uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Member: %w", err)
	}

	e.Amount, err = arr[1].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	cause, err := arr[2].TryBytes()
	if err != nil {
		return fmt.Errorf("field Cause: %w", err)
	}
	e.Cause = string(cause)

	return nil
}
