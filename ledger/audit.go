package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Event is an entry of the append-only audit log.
type Event struct {
	// Position in the audit log starting from 0.
	Index uint64
	// Sequence number of the invocation emitted the event.
	Invocation uint64
	// Method of the invocation emitted the event.
	Method string

	state.NotificationEvent
}

// Bytes returns serialized Event. Index is not included as it is a part of
// the storage key.
func (e *Event) Bytes() ([]byte, error) {
	item := e.Item
	if item == nil {
		item = stackitem.NewArray([]stackitem.Item{})
	}

	return stackitem.Serialize(stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(new(big.Int).SetUint64(e.Invocation)),
		stackitem.NewByteArray([]byte(e.Method)),
		stackitem.NewByteArray(e.ScriptHash.BytesBE()),
		stackitem.NewByteArray([]byte(e.Name)),
		item,
	}))
}

// decode decodes Event from its serialized form.
func (e *Event) decode(data []byte) error {
	item, err := stackitem.Deserialize(data)
	if err != nil {
		return err
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 5 {
		return errors.New("invalid audit log entry structure")
	}

	inv, err := arr[0].TryInteger()
	if err != nil || !inv.IsUint64() {
		return errors.New("invalid invocation number")
	}

	method, err := arr[1].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid method: %w", err)
	}

	b, err := arr[2].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid script hash: %w", err)
	}

	h, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return fmt.Errorf("invalid script hash: %w", err)
	}

	name, err := arr[3].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	payload, ok := arr[4].(*stackitem.Array)
	if !ok {
		return errors.New("invalid payload")
	}

	e.Invocation = inv.Uint64()
	e.Method = string(method)
	e.ScriptHash = h
	e.Name = string(name)
	e.Item = payload

	return nil
}

// AuditLog passes audit log entries starting from the given index to f in
// ascending order until f returns false.
func (l *Ledger) AuditLog(from uint64, f func(Event) bool) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	var ferr error

	l.store.Seek(storage.SeekRange{Prefix: []byte{prefixAudit}}, func(k, v []byte) bool {
		if len(k) != 9 {
			return true
		}

		index := binary.BigEndian.Uint64(k[1:])
		if index < from {
			return true
		}

		ev := Event{Index: index}

		ferr = ev.decode(v)
		if ferr != nil {
			ferr = fmt.Errorf("decode audit log entry #%d: %w", index, ferr)
			return false
		}

		return f(ev)
	})

	return ferr
}

// EventsFromResult returns notifications with the given name emitted by the
// component at h during the invocation.
func EventsFromResult(res *Result, h util.Uint160, name string) []state.NotificationEvent {
	if res == nil {
		return nil
	}

	var evs []state.NotificationEvent
	for i := range res.Events {
		if res.Events[i].Name == name && res.Events[i].ScriptHash.Equals(h) {
			evs = append(evs, res.Events[i])
		}
	}

	return evs
}
