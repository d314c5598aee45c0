package ledger

import (
	"bytes"
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// Storage is a storage of the particular component. Its items are isolated
// from other components.
type Storage struct {
	store  *storage.MemCachedStore
	prefix []byte
}

// Get returns value stored by the key or nil if there is no such value.
func (s *Storage) Get(key []byte) ([]byte, error) {
	v, err := s.store.Get(s.key(key))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// Put stores value by the key.
func (s *Storage) Put(key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	s.store.Put(s.key(key), value)
}

// Delete removes value stored by the key.
func (s *Storage) Delete(key []byte) {
	s.store.Delete(s.key(key))
}

// Find passes all items with the given key prefix to f in ascending key
// order until f returns false. Keys are passed without the prefix. f must not
// modify the storage.
func (s *Storage) Find(prefix []byte, f func(key, value []byte) bool) error {
	full := s.key(prefix)

	s.store.Seek(storage.SeekRange{Prefix: full}, func(k, v []byte) bool {
		if !bytes.HasPrefix(k, full) {
			return true
		}
		return f(bytes.Clone(k[len(full):]), bytes.Clone(v))
	})

	return nil
}

func (s *Storage) key(key []byte) []byte {
	res := make([]byte, 0, len(s.prefix)+len(key))
	res = append(res, s.prefix...)
	return append(res, key...)
}
