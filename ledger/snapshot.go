package ledger

// Snapshot is a consistent view of the Ledger state. It is valid only inside
// the function passed to Ledger.Snapshot.
type Snapshot struct {
	l *Ledger
}

// Snapshot runs f against the state which no invocation modifies until f
// returns.
func (l *Ledger) Snapshot(f func(Snapshot) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return f(Snapshot{l: l})
}

// AuditHeight returns number of entries in the audit log.
func (s Snapshot) AuditHeight() uint64 {
	return s.l.height
}

// Contracts returns states of all deployed components ordered by ID.
func (s Snapshot) Contracts() ([]ContractState, error) {
	return s.l.contracts()
}

// IterateStorage passes all storage items of the component with the given
// ID to f until it returns false.
func (s Snapshot) IterateStorage(id int32, f func(key, value []byte) bool) {
	s.l.iterateStorage(id, f)
}
