package trust

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Name of the TrustLedger component.
const Name = "TrustLedger"

// Causes of the MemberSlashed notification.
const (
	CauseBadReview        = "bad review"
	CauseInviteeBadReview = "invitee bad review"
)

const (
	configKey       = "config"
	versionKey      = "version"
	nonceKey        = "nonce"
	totalSlashedKey = "slashed"

	memberPrefix = 'm'
	invitePrefix = 'i'

	inviteDomain = "invite"
)

var (
	// ErrInvalidOrUsedCode is returned by Register when invite code is unknown
	// or has already been consumed.
	ErrInvalidOrUsedCode = common.NewValidationError("invalid or used code")
	// ErrInsufficientStake is returned by Register when attached stake is
	// less than the required one.
	ErrInsufficientStake = common.NewValidationError("insufficient stake")
	// ErrAlreadyRegistered is returned by Register when the caller is
	// already a member.
	ErrAlreadyRegistered = common.NewStateError("already registered")
	// ErrUnknownMember is returned when requested account is not a member.
	ErrUnknownMember = common.NewValidationError("unknown member")
	// ErrNotActiveMember is returned when the operation requires the caller
	// to be an active member.
	ErrNotActiveMember = common.NewAuthorizationError("caller is not an active member")
	// ErrUnknownInvite is returned when requested invite code has never been
	// issued.
	ErrUnknownInvite = common.NewValidationError("unknown invite code")
	// ErrCodeCollision is returned by CreateInviteCode when derived code
	// matches already issued one.
	ErrCodeCollision = common.NewStateError("invite code collision")
)

// Contract is a TrustLedger component bound to its address.
type Contract struct {
	hash      util.Uint160
	freshness func() ([]byte, error)
}

// Option is a Contract option.
type Option func(*Contract)

// WithFreshness sets source of the random part of invite codes. Random
// UUIDv4 is used by default.
func WithFreshness(f func() ([]byte, error)) Option {
	return func(c *Contract) {
		c.freshness = f
	}
}

// Bind returns Contract deployed at the given address.
func Bind(h util.Uint160, opts ...Option) *Contract {
	c := &Contract{
		hash:      h,
		freshness: randomFreshness,
	}

	for i := range opts {
		opts[i](c)
	}

	return c
}

// Deploy deploys TrustLedger with the given Config and registers the genesis
// member.
func Deploy(ic *ledger.Context, cfg Config, opts ...Option) (*Contract, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults(ic.Sender())

	cs, err := ic.Deploy(Name, func(ic *ledger.Context) error {
		st := ic.Storage()

		err := common.SetSerialized(st, []byte(configKey), &cfg)
		if err != nil {
			return fmt.Errorf("store config: %w", err)
		}

		common.PutInteger(st, []byte(versionKey), big.NewInt(common.Version))

		genesis := Member{
			Address: cfg.Owner,
			Stake:   cfg.GenesisStake,
			Active:  true,
		}

		err = putMember(st, &genesis)
		if err != nil {
			return err
		}

		ic.Notify("MemberRegistered",
			stackitem.NewByteArray(genesis.Address.BytesBE()),
			stackitem.Null{},
			stackitem.NewBigInteger(genesis.Stake))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Bind(cs.Hash, opts...), nil
}

// Hash returns address of the component.
func (c *Contract) Hash() util.Uint160 {
	return c.hash
}

// CreateInviteCode issues new single-use invite code on behalf of the caller.
// The caller must be an active member.
func (c *Contract) CreateInviteCode(ic *ledger.Context) (util.Uint256, error) {
	ic, st, err := c.enter(ic)
	if err != nil {
		return util.Uint256{}, err
	}

	issuer := ic.CallingScriptHash()

	err = checkActiveMember(st, issuer)
	if err != nil {
		return util.Uint256{}, err
	}

	nonce, err := common.NextCounter(st, []byte(nonceKey))
	if err != nil {
		return util.Uint256{}, fmt.Errorf("read nonce: %w", err)
	}

	fresh, err := c.freshness()
	if err != nil {
		return util.Uint256{}, fmt.Errorf("generate invite code: %w", err)
	}

	code := common.InvokeID([][]byte{
		issuer.BytesBE(),
		binary.BigEndian.AppendUint64(nil, nonce),
		fresh,
	}, []byte(inviteDomain))

	_, found, err := getInvite(st, code)
	if err != nil {
		return util.Uint256{}, err
	}
	if found {
		return util.Uint256{}, fmt.Errorf("%w: %s", ErrCodeCollision, code.StringLE())
	}

	err = putInvite(st, &Invite{Code: code, Issuer: issuer})
	if err != nil {
		return util.Uint256{}, err
	}

	ic.Notify("InviteCodeCreated",
		stackitem.NewByteArray(code.BytesBE()),
		stackitem.NewByteArray(issuer.BytesBE()))

	return code, nil
}

// Register makes the caller an active member with the given stake. The code
// must be issued and not consumed, the stake must be at least the required
// one and the caller must not be a member yet. Code is consumed only on
// success.
func (c *Contract) Register(ic *ledger.Context, code util.Uint256, stake *big.Int) error {
	ic, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	caller := ic.CallingScriptHash()

	inv, found, err := getInvite(st, code)
	if err != nil {
		return err
	}
	if !found || inv.Consumed {
		return ErrInvalidOrUsedCode
	}

	cfg, err := getConfig(st)
	if err != nil {
		return err
	}

	if stake == nil || stake.Cmp(cfg.RequiredStake) < 0 || stake.Sign() < 0 {
		return ErrInsufficientStake
	}

	_, found, err = getMember(st, caller)
	if err != nil {
		return err
	}
	if found {
		return ErrAlreadyRegistered
	}

	inv.Consumed = true
	inv.Consumer = &caller

	err = putInvite(st, inv)
	if err != nil {
		return err
	}

	m := Member{
		Address: caller,
		Stake:   new(big.Int).Set(stake),
		Inviter: &inv.Issuer,
		Active:  true,
	}

	err = putMember(st, &m)
	if err != nil {
		return err
	}

	ic.Notify("MemberRegistered",
		stackitem.NewByteArray(caller.BytesBE()),
		stackitem.NewByteArray(inv.Issuer.BytesBE()),
		stackitem.NewBigInteger(m.Stake))

	return nil
}

// ReportBadReview slashes the target member by the primary percentage of its
// stake and its direct inviter, if any, by the delegated percentage of the
// inviter's stake. Only the slashing authority may report.
func (c *Contract) ReportBadReview(ic *ledger.Context, target util.Uint160) error {
	ic, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	cfg, err := getConfig(st)
	if err != nil {
		return err
	}

	err = common.CheckWitness(ic, cfg.SlashAuthority)
	if err != nil {
		return err
	}

	m, found, err := getMember(st, target)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownMember, target.StringLE())
	}

	total, err := common.GetInteger(st, []byte(totalSlashedKey))
	if err != nil {
		return fmt.Errorf("read total slashed: %w", err)
	}

	amount, err := slash(ic, st, m, cfg.PrimarySlashPercent, CauseBadReview)
	if err != nil {
		return err
	}
	total.Add(total, amount)

	if m.Inviter != nil {
		inviter, found, err := getMember(st, *m.Inviter)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("inviter %s of %s is missing", m.Inviter.StringLE(), target.StringLE())
		}

		amount, err = slash(ic, st, inviter, cfg.DelegatedSlashPercent, CauseInviteeBadReview)
		if err != nil {
			return err
		}
		total.Add(total, amount)
	}

	common.PutInteger(st, []byte(totalSlashedKey), total)

	return nil
}

// SlashAmount returns floor(stake * percent / 100).
func SlashAmount(stake *big.Int, percent int64) *big.Int {
	res := new(big.Int).Mul(stake, big.NewInt(percent))
	return res.Quo(res, big.NewInt(100))
}

func slash(ic *ledger.Context, st *ledger.Storage, m *Member, percent int64, cause string) (*big.Int, error) {
	amount := SlashAmount(m.Stake, percent)
	if amount.Cmp(m.Stake) > 0 {
		amount.Set(m.Stake)
	}

	m.Stake = new(big.Int).Sub(m.Stake, amount)

	err := putMember(st, m)
	if err != nil {
		return nil, err
	}

	ic.Notify("MemberSlashed",
		stackitem.NewByteArray(m.Address.BytesBE()),
		stackitem.NewBigInteger(amount),
		stackitem.NewByteArray([]byte(cause)))

	return amount, nil
}

// Member returns record of the member.
func (c *Contract) Member(ic *ledger.Context, addr util.Uint160) (*Member, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}

	m, found, err := getMember(st, addr)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, addr.StringLE())
	}

	return m, nil
}

// IsActiveMember checks whether addr is an active member.
func (c *Contract) IsActiveMember(ic *ledger.Context, addr util.Uint160) (bool, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return false, err
	}

	m, found, err := getMember(st, addr)
	if err != nil {
		return false, err
	}

	return found && m.Active, nil
}

// Members passes all members to f in ascending address order until f returns
// false.
func (c *Contract) Members(ic *ledger.Context, f func(Member) bool) error {
	_, st, err := c.enter(ic)
	if err != nil {
		return err
	}

	var ferr error

	err = st.Find([]byte{memberPrefix}, func(k, v []byte) bool {
		var m Member

		m.Address, ferr = util.Uint160DecodeBytesBE(k)
		if ferr == nil {
			ferr = common.DecodeSerialized(v, &m)
		}
		if ferr != nil {
			ferr = fmt.Errorf("decode member %x: %w", k, ferr)
			return false
		}

		return f(m)
	})
	if err == nil {
		err = ferr
	}

	return err
}

// Invite returns record of the invite code.
func (c *Contract) Invite(ic *ledger.Context, code util.Uint256) (*Invite, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}

	inv, found, err := getInvite(st, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInvite, code.StringLE())
	}

	return inv, nil
}

// Config returns parameters set on deployment.
func (c *Contract) Config(ic *ledger.Context) (*Config, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}
	return getConfig(st)
}

// RequiredStake returns minimum stake required for registration.
func (c *Contract) RequiredStake(ic *ledger.Context) (*big.Int, error) {
	cfg, err := c.Config(ic)
	if err != nil {
		return nil, err
	}
	return cfg.RequiredStake, nil
}

// TotalSlashed returns total amount slashed from all members.
func (c *Contract) TotalSlashed(ic *ledger.Context) (*big.Int, error) {
	_, st, err := c.enter(ic)
	if err != nil {
		return nil, err
	}
	return common.GetInteger(st, []byte(totalSlashedKey))
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

func checkActiveMember(st *ledger.Storage, addr util.Uint160) error {
	m, found, err := getMember(st, addr)
	if err != nil {
		return err
	}
	if !found || !m.Active {
		return ErrNotActiveMember
	}
	return nil
}

func getConfig(st *ledger.Storage) (*Config, error) {
	cfg := new(Config)

	found, err := common.GetSerialized(st, []byte(configKey), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: missing config", ErrInvalidConfig)
	}

	return cfg, nil
}

func getMember(st *ledger.Storage, addr util.Uint160) (*Member, bool, error) {
	m := &Member{Address: addr}

	found, err := common.GetSerialized(st, memberKey(addr), m)
	if err != nil {
		return nil, false, fmt.Errorf("read member %s: %w", addr.StringLE(), err)
	}

	return m, found, nil
}

func putMember(st *ledger.Storage, m *Member) error {
	err := common.SetSerialized(st, memberKey(m.Address), m)
	if err != nil {
		return fmt.Errorf("store member %s: %w", m.Address.StringLE(), err)
	}
	return nil
}

func getInvite(st *ledger.Storage, code util.Uint256) (*Invite, bool, error) {
	inv := &Invite{Code: code}

	found, err := common.GetSerialized(st, inviteKey(code), inv)
	if err != nil {
		return nil, false, fmt.Errorf("read invite %s: %w", code.StringLE(), err)
	}

	return inv, found, nil
}

func putInvite(st *ledger.Storage, inv *Invite) error {
	err := common.SetSerialized(st, inviteKey(inv.Code), inv)
	if err != nil {
		return fmt.Errorf("store invite %s: %w", inv.Code.StringLE(), err)
	}
	return nil
}

func memberKey(addr util.Uint160) []byte {
	return append([]byte{memberPrefix}, addr.BytesBE()...)
}

func inviteKey(code util.Uint256) []byte {
	return append([]byte{invitePrefix}, code.BytesBE()...)
}

func randomFreshness() ([]byte, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return u[:], nil
}
