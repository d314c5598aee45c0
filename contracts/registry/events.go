package registry

import (
	"fmt"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ReviewOracleBoundEvent represents "ReviewOracleBound" event emitted by the
// component.
type ReviewOracleBoundEvent struct {
	Oracle util.Uint160
}

// ActionStatusChangedEvent represents "ActionStatusChanged" event emitted by
// the component.
type ActionStatusChangedEvent struct {
	ActionHash util.Uint256
	Status     actionstatus.Status
}

// ActionStatusChangedEventsFromResult retrieves a set of all emitted events
// with "ActionStatusChanged" name from the provided [ledger.Result].
func (c *Contract) ActionStatusChangedEventsFromResult(res *ledger.Result) ([]*ActionStatusChangedEvent, error) {
	evs := ledger.EventsFromResult(res, c.hash, "ActionStatusChanged")
	out := make([]*ActionStatusChangedEvent, len(evs))
	for i := range evs {
		out[i] = new(ActionStatusChangedEvent)
		err := out[i].FromStackItem(evs[i].Item)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize ActionStatusChangedEvent from stackitem (event #%d): %w", i, err)
		}
	}
	return out, nil
}

// FromStackItem converts provided [stackitem.Array] to ReviewOracleBoundEvent
// or returns an error if it's not possible to do to so.
func (e *ReviewOracleBoundEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 1)
	if err != nil {
		return err
	}

	e.Oracle, err = common.Uint160FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field Oracle: %w", err)
	}

	return nil
}

// FromStackItem converts provided [stackitem.Array] to
// ActionStatusChangedEvent or returns an error if it's not possible to do to
// so.
func (e *ActionStatusChangedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := common.EventFields(item, 2)
	if err != nil {
		return err
	}

	e.ActionHash, err = common.Uint256FromItem(arr[0])
	if err != nil {
		return fmt.Errorf("field ActionHash: %w", err)
	}

	s, err := common.Int64FromItem(arr[1])
	if err != nil {
		return fmt.Errorf("field Status: %w", err)
	}
	if s < 0 || s > int64(actionstatus.Blacklisted) {
		return fmt.Errorf("field Status: invalid value %d", s)
	}
	e.Status = actionstatus.Status(s)

	return nil
}
