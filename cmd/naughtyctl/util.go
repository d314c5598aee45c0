package main

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/naughty-agents/protocol-contract/deploy"
	"github.com/naughty-agents/protocol-contract/internal/config"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const fromFlag = "from"

func configFromCmd(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, fmt.Errorf("no config found in context")
	}
	return cfg, nil
}

func openLedger(cmd *cobra.Command) (*ledger.Ledger, error) {
	cfg, err := configFromCmd(cmd)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("opening ledger",
		zap.String("type", cfg.Ledger.Type), zap.String("path", cfg.Ledger.Path))

	return ledger.Open(cfg.Ledger.DBConfiguration(),
		ledger.WithLogger(zap.L()),
		ledger.WithMetrics(metricsRegistry),
	)
}

// withProtocol runs f over the protocol previously deployed to the
// configured ledger.
func withProtocol(cmd *cobra.Command, f func(*deploy.Protocol) error) error {
	l, err := openLedger(cmd)
	if err != nil {
		return err
	}

	defer func() {
		if err := l.Close(); err != nil {
			zap.L().Warn("failed to close ledger", zap.Error(err))
		}
	}()

	p, err := deploy.Open(l)
	if err != nil {
		return fmt.Errorf("open protocol: %w", err)
	}

	return f(p)
}

func addFromFlag(cmd *cobra.Command) {
	cmd.Flags().String(fromFlag, "", "sender account, protocol owner if empty")
}

// sender returns account the command is executed on behalf of.
func sender(cmd *cobra.Command) (util.Uint160, error) {
	from, err := cmd.Flags().GetString(fromFlag)
	if err != nil {
		return util.Uint160{}, err
	}

	if from != "" {
		return config.ParseAccount(from)
	}

	cfg, err := configFromCmd(cmd)
	if err != nil {
		return util.Uint160{}, err
	}

	return cfg.Protocol.OwnerAccount()
}

func parseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer '%s'", s)
	}
	return v, nil
}

func parseTaskID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID '%s': %w", s, err)
	}
	return id, nil
}

// parseActionHash decodes action hash from hex digest with optional 0x
// prefix.
func parseActionHash(s string) (util.Uint256, error) {
	h, err := util.Uint256DecodeStringBE(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return h, fmt.Errorf("invalid action hash '%s': %w", s, err)
	}
	return h, nil
}

func printResult(w io.Writer, res *ledger.Result) {
	fmt.Fprintf(w, "Invocation #%d\n", res.Invocation)
	for _, ev := range res.Events {
		fmt.Fprintf(w, "  %s (%s)\n", ev.Name, address.Uint160ToString(ev.ScriptHash))
	}
}

func printAccount(w io.Writer, name string, acc util.Uint160) {
	fmt.Fprintf(w, "%s: %s (%s)\n", name, address.Uint160ToString(acc), acc.StringLE())
}
