package common

import (
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Int64FromItem converts stack item to int64.
func Int64FromItem(item stackitem.Item) (int64, error) {
	v, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() {
		return 0, errors.New("integer overflow")
	}
	return v.Int64(), nil
}

// Uint64FromItem converts stack item to uint64.
func Uint64FromItem(item stackitem.Item) (uint64, error) {
	v, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.New("integer out of uint64 range")
	}
	return v.Uint64(), nil
}

// Uint160FromItem converts byte array stack item to big-endian util.Uint160.
func Uint160FromItem(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

// Uint256FromItem converts byte array stack item to big-endian util.Uint256.
func Uint256FromItem(item stackitem.Item) (util.Uint256, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}

// OptionalUint160FromItem is the same as Uint160FromItem but returns nil for
// stackitem.Null.
func OptionalUint160FromItem(item stackitem.Item) (*util.Uint160, error) {
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	u, err := Uint160FromItem(item)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// OptionalUint160Item returns stack item representing u, stackitem.Null if
// u is nil.
func OptionalUint160Item(u *util.Uint160) stackitem.Item {
	if u == nil {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(u.BytesBE())
}

// EventFields returns exactly n fields of the notification payload.
func EventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}
