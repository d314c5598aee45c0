package main

import (
	"fmt"
	"io"

	"github.com/naughty-agents/protocol-contract/contracts/trust"
	"github.com/naughty-agents/protocol-contract/deploy"
	"github.com/naughty-agents/protocol-contract/internal/config"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/cobra"
)

func inviteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Issue single-use invite code on behalf of the active member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := sender(cmd)
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				var code util.Uint256

				res, err := p.Ledger.Invoke(from, "createInviteCode", func(ic *ledger.Context) error {
					var err error
					code, err = p.Trust.CreateInviteCode(ic)
					return err
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				printResult(w, res)
				fmt.Fprintf(w, "Code: %s\n", trust.EncodeCode(code))
				fmt.Fprintf(w, "Hex: %s\n", code.StringLE())

				return nil
			})
		},
	}

	addFromFlag(cmd)

	return cmd
}

func registerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <code> <stake>",
		Short: "Join the web of trust with the invite code and stake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := sender(cmd)
			if err != nil {
				return err
			}

			code, err := trust.DecodeCode(args[0])
			if err != nil {
				return err
			}

			stake, err := parseBigInt(args[1])
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				res, err := p.Ledger.Invoke(from, "register", func(ic *ledger.Context) error {
					return p.Trust.Register(ic, code, stake)
				})
				if err != nil {
					return err
				}

				printResult(cmd.OutOrStdout(), res)

				return nil
			})
		},
	}

	addFromFlag(cmd)

	return cmd
}

func reportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <member>",
		Short: "Slash the member for the bad review along with its inviter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := sender(cmd)
			if err != nil {
				return err
			}

			target, err := config.ParseAccount(args[0])
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				res, err := p.Ledger.Invoke(from, "reportBadReview", func(ic *ledger.Context) error {
					return p.Trust.ReportBadReview(ic, target)
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				printResult(w, res)

				evs, err := p.Trust.MemberSlashedEventsFromResult(res)
				if err != nil {
					return err
				}

				for _, ev := range evs {
					fmt.Fprintf(w, "Slashed %s from %s (%s)\n", ev.Amount, ev.Member.StringLE(), ev.Cause)
				}

				return nil
			})
		},
	}

	addFromFlag(cmd)

	return cmd
}

func memberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "member [account]",
		Short: "Print the member record or list all members",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				acc util.Uint160
				err error
			)

			if len(args) > 0 {
				acc, err = config.ParseAccount(args[0])
				if err != nil {
					return err
				}
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				w := cmd.OutOrStdout()

				return p.Ledger.Read(func(ic *ledger.Context) error {
					if len(args) == 0 {
						return p.Trust.Members(ic, func(m trust.Member) bool {
							printMember(w, m)
							return true
						})
					}

					m, err := p.Trust.Member(ic, acc)
					if err != nil {
						return err
					}

					printMember(w, *m)

					return nil
				})
			})
		},
	}
}

func printMember(w io.Writer, m trust.Member) {
	printAccount(w, "Member", m.Address)
	fmt.Fprintf(w, "  Stake: %s\n", m.Stake)
	fmt.Fprintf(w, "  Active: %t\n", m.Active)
	if m.Inviter != nil {
		fmt.Fprintf(w, "  Inviter: %s\n", m.Inviter.StringLE())
	} else {
		fmt.Fprintln(w, "  Inviter: none (genesis)")
	}
}
