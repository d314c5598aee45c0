package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/contracts/oracle"
	"github.com/naughty-agents/protocol-contract/contracts/registry"
	"github.com/naughty-agents/protocol-contract/contracts/trust"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// TrustLedgerPrm groups deployment parameters of the TrustLedger component.
type TrustLedgerPrm struct {
	Config trust.Config

	// Options applied to the bound component.
	Options []trust.Option
}

// ReviewOraclePrm groups deployment parameters of the ReviewOracle component.
type ReviewOraclePrm struct {
	// Zero Config.Quorum means oracle.DefaultQuorum.
	Config oracle.Config
}

// Prm groups all parameters of the protocol deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Ledger to deploy the components to.
	Ledger *ledger.Ledger

	// Account deploying the components. It owns the ActionRegistry and, unless
	// overridden by the TrustLedger config, becomes the genesis member.
	Owner util.Uint160

	TrustLedger  TrustLedgerPrm
	ReviewOracle ReviewOraclePrm
}

// Protocol groups components of the deployed protocol.
type Protocol struct {
	Ledger *ledger.Ledger

	Trust    *trust.Contract
	Registry *registry.Contract
	Oracle   *oracle.Contract
}

// Deploy makes Prm.Ledger a full-featured review protocol instance.
//
// Deploy is idempotent: components already deployed by Prm.Owner are bound
// and checked for version compatibility instead of being deployed again.
// Summary of stages:
//  1. TrustLedger deployment with the genesis member
//  2. ActionRegistry deployment
//  3. ReviewOracle deployment
//  4. ReviewOracle binding in the ActionRegistry
//
// Deploy checks ctx between the stages, each stage is atomic.
func Deploy(ctx context.Context, prm Prm) (*Protocol, error) {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}

	if prm.Owner.Equals(util.Uint160{}) {
		return nil, fmt.Errorf("%w: missing owner account", common.ErrConfiguration)
	}

	syncPrm := syncComponentPrm{
		logger: prm.Logger,
		ledger: prm.Ledger,
		owner:  prm.Owner,
	}

	// 1. TrustLedger
	syncPrm.name = trust.Name

	prm.Logger.Info("synchronizing TrustLedger component...")

	trustContract, err := syncComponent(ctx, syncPrm, func(ic *ledger.Context) (*trust.Contract, error) {
		return trust.Deploy(ic, prm.TrustLedger.Config, prm.TrustLedger.Options...)
	}, func(h util.Uint160) *trust.Contract {
		return trust.Bind(h, prm.TrustLedger.Options...)
	})
	if err != nil {
		return nil, fmt.Errorf("sync TrustLedger component: %w", err)
	}

	prm.Logger.Info("TrustLedger component successfully synchronized", zap.Stringer("address", trustContract.Hash()))

	// 2. ActionRegistry
	syncPrm.name = registry.Name

	prm.Logger.Info("synchronizing ActionRegistry component...")

	registryContract, err := syncComponent(ctx, syncPrm, registry.Deploy, registry.Bind)
	if err != nil {
		return nil, fmt.Errorf("sync ActionRegistry component: %w", err)
	}

	prm.Logger.Info("ActionRegistry component successfully synchronized", zap.Stringer("address", registryContract.Hash()))

	// 3. ReviewOracle
	//
	// Depends on both components above.
	syncPrm.name = oracle.Name

	oracleCfg := prm.ReviewOracle.Config
	if oracleCfg.Quorum == 0 {
		oracleCfg.Quorum = oracle.DefaultQuorum
	}

	prm.Logger.Info("synchronizing ReviewOracle component...")

	oracleContract, err := syncComponent(ctx, syncPrm, func(ic *ledger.Context) (*oracle.Contract, error) {
		return oracle.Deploy(ic, oracleCfg, trustContract, registryContract)
	}, func(h util.Uint160) *oracle.Contract {
		return oracle.Bind(h, trustContract, registryContract)
	})
	if err != nil {
		return nil, fmt.Errorf("sync ReviewOracle component: %w", err)
	}

	prm.Logger.Info("ReviewOracle component successfully synchronized", zap.Stringer("address", oracleContract.Hash()))

	// 4. binding
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	prm.Logger.Info("binding ReviewOracle in the ActionRegistry...")

	err = bindReviewOracle(prm, registryContract, oracleContract.Hash())
	if err != nil {
		return nil, fmt.Errorf("bind ReviewOracle: %w", err)
	}

	prm.Logger.Info("ReviewOracle successfully bound")

	return &Protocol{
		Ledger:   prm.Ledger,
		Trust:    trustContract,
		Registry: registryContract,
		Oracle:   oracleContract,
	}, nil
}

// Open binds components of the protocol previously deployed to l. Open fails
// with ledger.ErrContractNotFound if any component is missing and with
// common.ErrVersionMismatch if any component state is incompatible.
func Open(l *ledger.Ledger, opts ...trust.Option) (*Protocol, error) {
	p := &Protocol{Ledger: l}

	for _, name := range []string{trust.Name, registry.Name, oracle.Name} {
		cs, err := l.GetContract(name)
		if err != nil {
			return nil, err
		}

		switch name {
		case trust.Name:
			p.Trust = trust.Bind(cs.Hash, opts...)
			err = checkVersion(l, p.Trust)
		case registry.Name:
			p.Registry = registry.Bind(cs.Hash)
			err = checkVersion(l, p.Registry)
		case oracle.Name:
			p.Oracle = oracle.Bind(cs.Hash, p.Trust, p.Registry)
			err = checkVersion(l, p.Oracle)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	return p, nil
}

type component interface {
	Hash() util.Uint160
	Version(*ledger.Context) (int, error)
}

type syncComponentPrm struct {
	logger *zap.Logger
	ledger *ledger.Ledger
	owner  util.Uint160
	name   string
}

// syncComponent deploys the component unless it is already deployed by the
// owner.
func syncComponent[C component](ctx context.Context, prm syncComponentPrm,
	deploy func(*ledger.Context) (C, error), bind func(util.Uint160) C) (C, error) {
	var c C

	if err := ctx.Err(); err != nil {
		return c, err
	}

	cs, err := prm.ledger.GetContract(prm.name)
	if err == nil {
		if !cs.Deployer.Equals(prm.owner) {
			return c, fmt.Errorf("%w: deployed by another account %s", ledger.ErrAlreadyDeployed, cs.Deployer.StringLE())
		}

		c = bind(cs.Hash)

		err = checkVersion(prm.ledger, c)
		if err != nil {
			return c, err
		}

		prm.logger.Info("component is already deployed, skip",
			zap.String("name", prm.name), zap.Stringer("address", cs.Hash))

		return c, nil
	} else if !errors.Is(err, ledger.ErrContractNotFound) {
		return c, fmt.Errorf("get component state: %w", err)
	}

	prm.logger.Info("component is missing, deploying...", zap.String("name", prm.name))

	_, err = prm.ledger.Invoke(prm.owner, "deploy", func(ic *ledger.Context) error {
		var err error
		c, err = deploy(ic)
		return err
	})
	if err != nil {
		return c, fmt.Errorf("deploy: %w", err)
	}

	return c, nil
}

func checkVersion(l *ledger.Ledger, c component) error {
	var v int

	err := l.Read(func(ic *ledger.Context) error {
		var err error
		v, err = c.Version(ic)
		return err
	})
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	return common.CheckVersion(v)
}

func bindReviewOracle(prm Prm, r *registry.Contract, oracleAddr util.Uint160) error {
	var (
		bound util.Uint160
		ok    bool
	)

	err := prm.Ledger.Read(func(ic *ledger.Context) error {
		var err error
		bound, ok, err = r.ReviewOracle(ic)
		return err
	})
	if err != nil {
		return fmt.Errorf("read bound ReviewOracle: %w", err)
	}

	if ok {
		if !bound.Equals(oracleAddr) {
			return fmt.Errorf("%w: bound to %s", registry.ErrAlreadyConfigured, bound.StringLE())
		}

		prm.Logger.Info("ReviewOracle is already bound, skip")

		return nil
	}

	_, err = prm.Ledger.Invoke(prm.Owner, "setReviewOracleAddress", func(ic *ledger.Context) error {
		return r.SetReviewOracleAddress(ic, oracleAddr)
	})

	return err
}
