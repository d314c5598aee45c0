package common

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// KV is a component storage.
type KV interface {
	// Get returns value stored by the key or nil if there is no such value.
	Get(key []byte) ([]byte, error)
	// Put stores value by the key.
	Put(key, value []byte)
}

// Finder is a component storage able to iterate over items.
type Finder interface {
	KV
	// Find passes all items with the given key prefix to f until it returns
	// false. Keys are passed without the prefix.
	Find(prefix []byte, f func(key, value []byte) bool) error
}

// Record is a stack item representable value stored in the component
// storage.
type Record interface {
	ToStackItem() (stackitem.Item, error)
	FromStackItem(stackitem.Item) error
}

// SetSerialized serializes data and puts it into the component storage.
func SetSerialized(st KV, key []byte, value Record) error {
	item, err := value.ToStackItem()
	if err != nil {
		return fmt.Errorf("convert to stack item: %w", err)
	}

	data, err := stackitem.Serialize(item)
	if err != nil {
		return fmt.Errorf("serialize stack item: %w", err)
	}

	st.Put(key, data)

	return nil
}

// GetSerialized reads serialized value stored by the key into value and
// reports whether it was found.
func GetSerialized(st KV, key []byte, value Record) (bool, error) {
	data, err := st.Get(key)
	if err != nil || data == nil {
		return false, err
	}

	return true, DecodeSerialized(data, value)
}

// DecodeSerialized decodes value from its serialized form.
func DecodeSerialized(data []byte, value Record) error {
	item, err := stackitem.Deserialize(data)
	if err != nil {
		return fmt.Errorf("deserialize stack item: %w", err)
	}

	err = value.FromStackItem(item)
	if err != nil {
		return fmt.Errorf("convert from stack item: %w", err)
	}

	return nil
}

// GetInteger returns integer stored by the key. Missing value is zero.
func GetInteger(st KV, key []byte) (*big.Int, error) {
	data, err := st.Get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return new(big.Int), nil
	}
	return bigint.FromBytes(data), nil
}

// PutInteger stores integer by the key.
func PutInteger(st KV, key []byte, v *big.Int) {
	st.Put(key, bigint.ToBytes(v))
}

// NextCounter increments the counter stored by the key and returns its
// value before the increment. Counters start from zero.
func NextCounter(st KV, key []byte) (uint64, error) {
	cur, err := GetInteger(st, key)
	if err != nil {
		return 0, err
	}
	if !cur.IsUint64() {
		return 0, fmt.Errorf("counter overflow: %s", cur)
	}

	PutInteger(st, key, new(big.Int).Add(cur, big.NewInt(1)))

	return cur.Uint64(), nil
}
