package ledger

import (
	"fmt"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"go.uber.org/zap"
)

// ErrNotEmpty is returned by Restore when the ledger already has deployed
// components.
var ErrNotEmpty = common.NewStateError("ledger is not empty")

// SnapshotSource provides states and storages of the components to restore.
type SnapshotSource interface {
	// IterateContractStates passes all component states to f.
	IterateContractStates(f func(name string, st ContractState)) error
	// IterateContractStorages passes all storage items of the components
	// to f.
	IterateContractStorages(f func(name string, key, value []byte)) error
}

// Restore fills empty Ledger with the components from src. Audit log is not
// a part of the snapshot, so it stays empty.
func (l *Ledger) Restore(src SnapshotSource) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	empty := true
	l.store.Seek(storage.SeekRange{Prefix: []byte{prefixContract}}, func(_, _ []byte) bool {
		empty = false
		return false
	})
	if !empty {
		return ErrNotEmpty
	}

	var (
		st     = storage.NewMemCachedStore(l.store)
		ids    = make(map[string]int32)
		nextID int32
		ferr   error
	)

	err := src.IterateContractStates(func(name string, cs ContractState) {
		if ferr != nil {
			return
		}
		if _, ok := ids[name]; ok {
			ferr = fmt.Errorf("%w: %s", ErrAlreadyDeployed, name)
			return
		}

		cs.Name = name
		ferr = putContract(st, &cs)
		ids[name] = cs.ID

		if cs.ID >= nextID {
			nextID = cs.ID + 1
		}
	})
	if err == nil {
		err = ferr
	}
	if err != nil {
		return fmt.Errorf("restore component states: %w", err)
	}

	var items int

	err = src.IterateContractStorages(func(name string, key, value []byte) {
		if ferr != nil {
			return
		}

		id, ok := ids[name]
		if !ok {
			ferr = fmt.Errorf("%w: %s", ErrContractNotFound, name)
			return
		}

		st.Put(append(storagePrefix(id), key...), value)
		items++
	})
	if err == nil {
		err = ferr
	}
	if err != nil {
		return fmt.Errorf("restore component storages: %w", err)
	}

	putUint64(st, []byte{keyNextID}, uint64(nextID))

	_, err = st.PersistSync()
	if err != nil {
		return fmt.Errorf("persist restored state: %w", err)
	}

	l.log.Info("ledger restored from snapshot",
		zap.Int("components", len(ids)),
		zap.Int("items", items))

	return nil
}
