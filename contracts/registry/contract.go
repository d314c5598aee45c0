package registry

import (
	"fmt"
	"math/big"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/contracts/registry/actionstatus"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Name of the ActionRegistry component.
const Name = "ActionRegistry"

const (
	ownerKey   = "owner"
	oracleKey  = "oracle"
	versionKey = "version"

	actionPrefix = 'a'
)

var (
	// ErrInvalidActionHash is returned when action hash is not 32 bytes long.
	ErrInvalidActionHash = common.NewValidationError("invalid action hash")
	// ErrInvalidOracleAddress is returned on binding the zero address.
	ErrInvalidOracleAddress = common.NewValidationError("invalid review oracle address")
	// ErrAlreadyConfigured is returned on repeated ReviewOracle binding.
	ErrAlreadyConfigured = common.NewConfigurationError("review oracle is already set")
	// ErrInvalidTransition is returned when the action is not in the status
	// required by the transition.
	ErrInvalidTransition = common.NewStateError("invalid action status transition")
)

// Action groups action hash with its status.
type Action struct {
	Hash   util.Uint256
	Status actionstatus.Status
}

// Contract is an ActionRegistry component bound to its address.
type Contract struct {
	hash util.Uint160
}

// Bind returns Contract deployed at the given address.
func Bind(h util.Uint160) *Contract {
	return &Contract{hash: h}
}

// Deploy deploys ActionRegistry owned by the sender.
func Deploy(ic *ledger.Context) (*Contract, error) {
	owner := ic.Sender()

	cs, err := ic.Deploy(Name, func(ic *ledger.Context) error {
		st := ic.Storage()
		st.Put([]byte(ownerKey), owner.BytesBE())
		common.PutInteger(st, []byte(versionKey), big.NewInt(common.Version))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Bind(cs.Hash), nil
}

// Hash returns address of the component.
func (c *Contract) Hash() util.Uint160 {
	return c.hash
}

// GetActionStatus returns status of the action. Actions never flagged are
// Unknown.
func (c *Contract) GetActionStatus(ic *ledger.Context, actionHash []byte) (actionstatus.Status, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return 0, err
	}

	err = checkActionHash(actionHash)
	if err != nil {
		return 0, err
	}

	return getStatus(st, actionHash)
}

// SetReviewOracleAddress binds the ReviewOracle allowed to change action
// statuses. Only the owner may bind, and only once.
func (c *Contract) SetReviewOracleAddress(ic *ledger.Context, oracle util.Uint160) error {
	ic, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	owner, err := getAddress(st, ownerKey)
	if err != nil {
		return err
	}

	err = common.CheckOwnerWitness(ic, *owner)
	if err != nil {
		return err
	}

	bound, err := getAddress(st, oracleKey)
	if err != nil {
		return err
	}
	if bound != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyConfigured, bound.StringLE())
	}

	if oracle.Equals(util.Uint160{}) {
		return ErrInvalidOracleAddress
	}

	st.Put([]byte(oracleKey), oracle.BytesBE())

	ic.Notify("ReviewOracleBound", stackitem.NewByteArray(oracle.BytesBE()))

	return nil
}

// ReviewOracle returns address of the bound ReviewOracle and reports whether
// it is bound.
func (c *Contract) ReviewOracle(ic *ledger.Context) (util.Uint160, bool, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return util.Uint160{}, false, err
	}

	oracle, err := getAddress(st, oracleKey)
	if err != nil || oracle == nil {
		return util.Uint160{}, false, err
	}

	return *oracle, true, nil
}

// Owner returns deployer of the component.
func (c *Contract) Owner(ic *ledger.Context) (util.Uint160, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return util.Uint160{}, err
	}

	owner, err := getAddress(st, ownerKey)
	if err != nil {
		return util.Uint160{}, err
	}

	return *owner, nil
}

// MarkFlagged moves the action from Unknown to Flagged. Only the bound
// ReviewOracle may call it.
func (c *Contract) MarkFlagged(ic *ledger.Context, actionHash []byte) error {
	return c.transit(ic, actionHash, actionstatus.Unknown, actionstatus.Flagged)
}

// MarkBlacklisted moves the action from Flagged to Blacklisted. Only the bound
// ReviewOracle may call it.
func (c *Contract) MarkBlacklisted(ic *ledger.Context, actionHash []byte) error {
	return c.transit(ic, actionHash, actionstatus.Flagged, actionstatus.Blacklisted)
}

func (c *Contract) transit(ic *ledger.Context, actionHash []byte, from, to actionstatus.Status) error {
	ic, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	oracle, err := getAddress(st, oracleKey)
	if err != nil {
		return err
	}
	if oracle == nil {
		return fmt.Errorf("%w: review oracle is not set", common.ErrCallerNotAllowed)
	}

	err = common.CheckCaller(ic, *oracle)
	if err != nil {
		return err
	}

	err = checkActionHash(actionHash)
	if err != nil {
		return err
	}

	cur, err := getStatus(st, actionHash)
	if err != nil {
		return err
	}
	if cur != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, to)
	}

	st.Put(actionKey(actionHash), []byte{byte(to)})

	ic.Notify("ActionStatusChanged",
		stackitem.NewByteArray(actionHash),
		stackitem.NewBigInteger(big.NewInt(int64(to))))

	return nil
}

// Actions passes all flagged and blacklisted actions to f in ascending hash
// order until f returns false.
func (c *Contract) Actions(ic *ledger.Context, f func(Action) bool) error {
	_, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	var ferr error

	err = st.Find([]byte{actionPrefix}, func(k, v []byte) bool {
		var a Action

		a.Hash, ferr = util.Uint256DecodeBytesBE(k)
		if ferr == nil {
			a.Status, ferr = decodeStatus(v)
		}
		if ferr != nil {
			ferr = fmt.Errorf("decode action %x: %w", k, ferr)
			return false
		}

		return f(a)
	})
	if err == nil {
		err = ferr
	}

	return err
}

// Version returns version of the component state.
func (c *Contract) Version(ic *ledger.Context) (int, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return 0, err
	}

	v, err := common.GetInteger(st, []byte(versionKey))
	if err != nil {
		return 0, err
	}

	return int(v.Int64()), nil
}

func (c *Contract) enter(ic *ledger.Context) (*ledger.Context, *ledger.Storage, error) {
	ic, err := ic.Enter(c.hash)
	if err != nil {
		return nil, nil, err
	}
	return ic, ic.Storage(), nil
}

func checkActionHash(h []byte) error {
	if len(h) != util.Uint256Size {
		return fmt.Errorf("%w: length %d", ErrInvalidActionHash, len(h))
	}
	return nil
}

func getStatus(st *ledger.Storage, actionHash []byte) (actionstatus.Status, error) {
	v, err := st.Get(actionKey(actionHash))
	if err != nil {
		return 0, fmt.Errorf("read action status: %w", err)
	}
	if v == nil {
		return actionstatus.Unknown, nil
	}
	return decodeStatus(v)
}

func decodeStatus(v []byte) (actionstatus.Status, error) {
	if len(v) != 1 || !actionstatus.Status(v[0]).Valid() {
		return 0, fmt.Errorf("invalid stored status %x", v)
	}
	return actionstatus.Status(v[0]), nil
}

func getAddress(st *ledger.Storage, key string) (*util.Uint160, error) {
	v, err := st.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("read '%s': %w", key, err)
	}
	if v == nil {
		if key == ownerKey {
			return nil, fmt.Errorf("%w: missing owner", common.ErrConfiguration)
		}
		return nil, nil
	}

	u, err := util.Uint160DecodeBytesBE(v)
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %w", key, err)
	}

	return &u, nil
}

func actionKey(actionHash []byte) []byte {
	return append([]byte{actionPrefix}, actionHash...)
}
