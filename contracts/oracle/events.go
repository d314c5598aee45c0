package oracle

import (
	"fmt"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ActionFlaggedEvent represents "ActionFlagged" event emitted by the
// component.
type ActionFlaggedEvent struct {
	TaskID     uint64
	ActionHash util.Uint256
}

// VoteCastEvent represents "VoteCast" event emitted by the component.
type VoteCastEvent struct {
	TaskID  uint64
	Voter   util.Uint160
	Support bool
}

// TaskResolvedEvent represents "TaskResolved" event emitted by the component.
type TaskResolvedEvent struct {
	TaskID  uint64
	Outcome actionstatus.Status
}

// ActionFlaggedEventsFromResult retrieves a set of all emitted events with
// "ActionFlagged" name from the provided [ledger.Result].
func (c *Contract) ActionFlaggedEventsFromResult(res *ledger.Result) ([]*ActionFlaggedEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "ActionFlagged")
	out := make([]*ActionFlaggedEvent, len(evs))
	for i := range evs {
		out[i] = new(ActionFlaggedEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize ActionFlaggedEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// VoteCastEventsFromResult retrieves a set of all emitted events with
// "VoteCast" name from the provided [ledger.Result].
func (c *Contract) VoteCastEventsFromResult(res *ledger.Result) ([]*VoteCastEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "VoteCast")
	out := make([]*VoteCastEvent, len(evs))
	for i := range evs {
		out[i] = new(VoteCastEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize VoteCastEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// TaskResolvedEventsFromResult retrieves a set of all emitted events with
// "TaskResolved" name from the provided [ledger.Result].
func (c *Contract) TaskResolvedEventsFromResult(res *ledger.Result) ([]*TaskResolvedEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "TaskResolved")
	out := make([]*TaskResolvedEvent, len(evs))
	for i := range evs {
		out[i] = new(TaskResolvedEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize TaskResolvedEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// FromStackItem converts provided [stackitem.Array] to ActionFlaggedEvent or
// returns an error if it's not possible to do to so.
func (e *ActionFlaggedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 2)
	if err != nil {
		return err
	}

	e.TaskID, err = common.Uint64FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field TaskID: %w", err)
	}

	e.ActionHash, err = common.Uint256FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field ActionHash: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to VoteCastEvent or
// returns an error if it's not possible to do to so.
func (e *VoteCastEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 3)
	if err != nil {
		return err
	}

	e.TaskID, err = common.Uint64FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field TaskID: %w", err)
	}

	e.Voter, err = common.Uint160FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Voter: %w", err)
	}

	e.Support, err = arr[2].TryBool()
	if err != nil {
		return fmt.Errorf("field Support: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to TaskResolvedEvent or
// returns an error if it's not possible to do to so.
func (e *TaskResolvedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 2)
	if err != nil {
		return err
	}

	e.TaskID, err = common.Uint64FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field TaskID: %w", err)
	}

	outcome, err := common.Int64FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Outcome: %w", err)
	}
	if outcome < 0 || outcome > int64(actionstatus.Blacklisted) {
		return fmt.Errorf("field Outcome: invalid value %d", outcome)
	}
	e.Outcome = actionstatus.Status(outcome)

	return nil
}
