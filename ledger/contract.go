package ledger

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

var (
	// ErrContractNotFound is returned when the requested component is not
	// deployed.
	ErrContractNotFound = common.NewConfigurationError("component not found")
	// ErrAlreadyDeployed is returned on repeated deployment of the
	// component with the same name.
	ErrAlreadyDeployed = common.NewStateError("component is already deployed")
	// ErrInvalidName is returned on deployment of the component with
	// empty name.
	ErrInvalidName = common.NewValidationError("invalid component name")
)

// ContractState describes the deployed component.
type ContractState struct {
	ID       int32        `json:"id"`
	Hash     util.Uint160 `json:"hash"`
	Name     string       `json:"name"`
	Deployer util.Uint160 `json:"deployer"`
}

// ContractHash returns address of the component with the given name deployed
// by the given account.
func ContractHash(deployer util.Uint160, name string) util.Uint160 {
	return hash.Hash160(append(deployer.BytesBE(), name...))
}

// ToStackItem implements common.Record.
func (c *ContractState) ToStackItem() (stackitem.Item, error) {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewBigInteger(big.NewInt(int64(c.ID))),
		stackitem.NewByteArray(c.Hash.BytesBE()),
		stackitem.NewByteArray([]byte(c.Name)),
		stackitem.NewByteArray(c.Deployer.BytesBE()),
	}), nil
}

// FromStackItem implements common.Record.
func (c *ContractState) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok || len(arr) != 4 {
		return errors.New("invalid component state structure")
	}

	id, err := arr[0].TryInteger()
	if err != nil {
		return fmt.Errorf("invalid ID: %w", err)
	}
	if !id.IsInt64() || id.Int64() < 0 || id.Int64() > math.MaxInt32 {
		return fmt.Errorf("ID out of range: %s", id)
	}

	b, err := arr[1].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}
	h, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return fmt.Errorf("invalid hash: %w", err)
	}

	name, err := arr[2].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	b, err = arr[3].TryBytes()
	if err != nil {
		return fmt.Errorf("invalid deployer: %w", err)
	}
	deployer, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return fmt.Errorf("invalid deployer: %w", err)
	}

	c.ID = int32(id.Int64())
	c.Hash = h
	c.Name = string(name)
	c.Deployer = deployer

	return nil
}

// Deploy deploys new component with the given name on behalf of the sender
// and runs init in the frame of the new component. Deploy fails with
// ErrAlreadyDeployed if the name is already taken.
func (ic *Context) Deploy(name string, init func(*Context) error) (*ContractState, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	st := ic.inv.store

	_, err := st.Get(contractNameKey(name))
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDeployed, name)
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("read component index: %w", err)
	}

	id, err := getUint64(st, []byte{keyNextID})
	if err != nil {
		return nil, fmt.Errorf("read next component ID: %w", err)
	}
	if id > math.MaxInt32 {
		return nil, errors.New("component ID overflow")
	}

	cs := &ContractState{
		ID:       int32(id),
		Hash:     ContractHash(ic.inv.sender, name),
		Name:     name,
		Deployer: ic.inv.sender,
	}

	err = putContract(st, cs)
	if err != nil {
		return nil, err
	}

	putUint64(st, []byte{keyNextID}, id+1)

	if init != nil {
		frame, err := ic.Enter(cs.Hash)
		if err != nil {
			return nil, err
		}

		err = init(frame)
		if err != nil {
			return nil, fmt.Errorf("init %s: %w", name, err)
		}
	}

	return cs, nil
}

// GetContract returns state of the component deployed with the given name.
func (ic *Context) GetContract(name string) (*ContractState, error) {
	data, err := ic.inv.store.Get(contractNameKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrContractNotFound, name)
		}
		return nil, fmt.Errorf("read component index: %w", err)
	}

	h, err := util.Uint160DecodeBytesBE(data)
	if err != nil {
		return nil, fmt.Errorf("invalid component index: %w", err)
	}

	return ic.GetContractByHash(h)
}

// GetContractByHash returns state of the component deployed at h.
func (ic *Context) GetContractByHash(h util.Uint160) (*ContractState, error) {
	data, err := ic.inv.store.Get(contractKey(h))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrContractNotFound, h.StringLE())
		}
		return nil, fmt.Errorf("read component state: %w", err)
	}

	cs := new(ContractState)

	err = common.DecodeSerialized(data, cs)
	if err != nil {
		return nil, fmt.Errorf("decode component state: %w", err)
	}

	return cs, nil
}

// GetContract returns state of the component deployed with the given name.
func (l *Ledger) GetContract(name string) (*ContractState, error) {
	var cs *ContractState

	err := l.Read(func(ic *Context) error {
		var err error
		cs, err = ic.GetContract(name)
		return err
	})

	return cs, err
}

// Contracts returns states of all deployed components ordered by ID.
func (l *Ledger) Contracts() ([]ContractState, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.contracts()
}

func (l *Ledger) contracts() ([]ContractState, error) {
	var (
		res  []ContractState
		ferr error
	)

	l.store.Seek(storage.SeekRange{Prefix: []byte{prefixContract}}, func(_, v []byte) bool {
		var cs ContractState

		ferr = common.DecodeSerialized(v, &cs)
		if ferr != nil {
			return false
		}

		res = append(res, cs)
		return true
	})
	if ferr != nil {
		return nil, fmt.Errorf("decode component state: %w", ferr)
	}

	slices.SortFunc(res, func(a, b ContractState) int { return cmp.Compare(a.ID, b.ID) })

	return res, nil
}

// IterateStorage passes all storage items of the component with the given
// ID to f until it returns false.
func (l *Ledger) IterateStorage(id int32, f func(key, value []byte) bool) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.iterateStorage(id, f)
}

func (l *Ledger) iterateStorage(id int32, f func(key, value []byte) bool) {
	prefix := storagePrefix(id)

	l.store.Seek(storage.SeekRange{Prefix: prefix}, func(k, v []byte) bool {
		return f(k[len(prefix):], v)
	})
}

func putContract(st *storage.MemCachedStore, cs *ContractState) error {
	item, err := cs.ToStackItem()
	if err != nil {
		return err
	}

	data, err := stackitem.Serialize(item)
	if err != nil {
		return fmt.Errorf("serialize component state: %w", err)
	}

	st.Put(contractKey(cs.Hash), data)
	st.Put(contractNameKey(cs.Name), cs.Hash.BytesBE())

	return nil
}

func contractKey(h util.Uint160) []byte {
	return append([]byte{prefixContract}, h.BytesBE()...)
}

func contractNameKey(name string) []byte {
	return append([]byte{prefixContractName}, name...)
}
