package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/naughty-agents/protocol-contract/common"
	"github.com/naughty-agents/protocol-contract/deploy"
	"github.com/naughty-agents/protocol-contract/dump"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func deployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy protocol components to the configured ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}

			owner, err := cfg.Protocol.OwnerAccount()
			if err != nil {
				return err
			}

			trustCfg, err := cfg.Protocol.TrustConfig()
			if err != nil {
				return err
			}

			oracleCfg, err := cfg.Protocol.OracleConfig()
			if err != nil {
				return err
			}

			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			p, err := deploy.Deploy(cmd.Context(), deploy.Prm{
				Logger:       zap.L(),
				Ledger:       l,
				Owner:        owner,
				TrustLedger:  deploy.TrustLedgerPrm{Config: trustCfg},
				ReviewOracle: deploy.ReviewOraclePrm{Config: oracleCfg},
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printAccount(w, "TrustLedger", p.Trust.Hash())
			printAccount(w, "ActionRegistry", p.Registry.Hash())
			printAccount(w, "ReviewOracle", p.Oracle.Hash())

			return nil
		},
	}
}

func eventsCommand() *cobra.Command {
	var from uint64

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print audit log of the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			w := cmd.OutOrStdout()

			return l.AuditLog(from, func(ev ledger.Event) bool {
				payload, err := stackitem.ToJSONWithTypes(ev.Item)
				if err != nil {
					zap.L().Warn("failed to encode event payload",
						zap.Uint64("index", ev.Index), zap.Error(err))
				}

				fmt.Fprintf(w, "#%d [%d %s] %s@%s %s\n", ev.Index, ev.Invocation, ev.Method,
					ev.Name, address.Uint160ToString(ev.ScriptHash), payload)

				return true
			})
		},
	}

	cmd.Flags().Uint64Var(&from, "from-index", 0, "first audit log entry to print")

	return cmd
}

func dumpCommand() *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "dump <dir>",
		Short: "Dump states of the protocol components into the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if label == "" {
				label = uuid.NewString()
			}

			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			id, err := dump.DumpLedger(args[0], label, l)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Dump: %s\n", id)

			return nil
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "dump label, random UUID if empty")

	return cmd
}

func restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <dir> [dump]",
		Short: "Restore protocol components from the dump into the empty ledger",
		Long: "Restore protocol components from the dump into the empty ledger. " +
			"The latest dump in the directory is used if dump ID is omitted.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				id  dump.ID
				err error
			)

			if len(args) > 1 {
				id, err = dump.ParseID(args[1])
				if err != nil {
					return err
				}
			} else {
				var found bool

				err = dump.IterateDumps(args[0], func(x dump.ID, _ *dump.Reader) {
					if !found || x.Height > id.Height {
						id, found = x, true
					}
				})
				if err != nil {
					return err
				}

				if !found {
					return fmt.Errorf("no dumps in %s", args[0])
				}
			}

			r, err := dump.Open(args[0], id)
			if err != nil {
				return err
			}

			l, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer l.Close()

			err = l.Restore(r)
			if err != nil {
				return err
			}

			p, err := deploy.Open(l)
			if err != nil {
				return fmt.Errorf("open restored protocol: %w", err)
			}

			err = l.Read(func(ic *ledger.Context) error {
				v, err := p.Trust.Version(ic)
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Restored %s at height %d, version %s\n",
						id, l.AuditHeight(), common.VersionString(v))
				}
				return err
			})

			return err
		},
	}
}
