package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/naughty-agents/protocol-contract/canonical"
	"github.com/naughty-agents/protocol-contract/contracts/oracle"
	"github.com/naughty-agents/protocol-contract/deploy"
	"github.com/naughty-agents/protocol-contract/ledger"
	"github.com/naughty-agents/protocol-contract/riskscore"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/cobra"
)

func addParamsFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVar(p, "params", "{}", "action parameters as JSON object")
}

func hashCommand() *cobra.Command {
	var params string

	cmd := &cobra.Command{
		Use:   "hash <action>",
		Short: "Calculate canonical hash of the agent action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := actionHash(args[0], params)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), h.StringBE())

			return nil
		},
	}

	addParamsFlag(cmd, &params)

	return cmd
}

func assessCommand() *cobra.Command {
	var params string

	cmd := &cobra.Command{
		Use:   "assess <action>",
		Short: "Assess risk of the agent action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := canonical.ParseParams([]byte(params))
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(riskscore.Assess(args[0], pm), "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return nil
		},
	}

	addParamsFlag(cmd, &params)

	return cmd
}

func flagCommand() *cobra.Command {
	var action, params string

	cmd := &cobra.Command{
		Use:   "flag [hash]",
		Short: "Flag the agent action for review",
		Long: "Flag the agent action for review. Action is referenced either by its " +
			"hash or by --action and --params.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				h   util.Uint256
				err error
			)

			switch {
			case len(args) > 0 && action != "":
				return fmt.Errorf("either hash or --action must be specified, not both")
			case len(args) > 0:
				h, err = parseActionHash(args[0])
			case action != "":
				h, err = actionHash(action, params)
			default:
				return fmt.Errorf("missing action hash")
			}
			if err != nil {
				return err
			}

			from, err := sender(cmd)
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				var id uint64

				res, err := p.Ledger.Invoke(from, "flagActionForReview", func(ic *ledger.Context) error {
					var err error
					id, err = p.Oracle.FlagActionForReview(ic, h.BytesBE())
					return err
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				printResult(w, res)
				fmt.Fprintf(w, "Task: %d\n", id)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "action name")
	addParamsFlag(cmd, &params)
	addFromFlag(cmd)

	return cmd
}

func voteCommand() *cobra.Command {
	var against bool

	cmd := &cobra.Command{
		Use:   "vote <task>",
		Short: "Vote for blacklisting of the flagged action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			from, err := sender(cmd)
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				res, err := p.Ledger.Invoke(from, "castBlacklistVote", func(ic *ledger.Context) error {
					return p.Oracle.CastBlacklistVote(ic, id, !against)
				})
				if err != nil {
					return err
				}

				printResult(cmd.OutOrStdout(), res)

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&against, "against", false, "vote against blacklisting")
	addFromFlag(cmd)

	return cmd
}

func resolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <task>",
		Short: "Resolve the review task blacklisting the action on quorum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			from, err := sender(cmd)
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				res, err := p.Ledger.Invoke(from, "resolveBlacklistVote", func(ic *ledger.Context) error {
					return p.Oracle.ResolveBlacklistVote(ic, id)
				})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				printResult(w, res)

				evs, err := p.Oracle.TaskResolvedEventsFromResult(res)
				if err != nil {
					return err
				}

				for _, ev := range evs {
					fmt.Fprintf(w, "Task #%d outcome: %s\n", ev.TaskID, ev.Outcome)
				}

				return nil
			})
		},
	}

	addFromFlag(cmd)

	return cmd
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <hash>",
		Short: "Print status of the agent action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseActionHash(args[0])
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				return p.Ledger.Read(func(ic *ledger.Context) error {
					s, err := p.Registry.GetActionStatus(ic, h.BytesBE())
					if err != nil {
						return err
					}

					fmt.Fprintln(cmd.OutOrStdout(), s)

					return nil
				})
			})
		},
	}
}

func taskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "task <id>",
		Short: "Print the review task with its ballots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			return withProtocol(cmd, func(p *deploy.Protocol) error {
				w := cmd.OutOrStdout()

				return p.Ledger.Read(func(ic *ledger.Context) error {
					t, err := p.Oracle.Task(ic, id)
					if err != nil {
						return err
					}

					printTask(w, *t)

					ballots, err := p.Oracle.Ballots(ic, id)
					if err != nil {
						return err
					}

					for _, b := range ballots {
						fmt.Fprintf(w, "  Ballot: %s support=%t\n", b.Voter.StringLE(), b.Support)
					}

					return nil
				})
			})
		},
	}
}

func tasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List all review tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProtocol(cmd, func(p *deploy.Protocol) error {
				w := cmd.OutOrStdout()

				return p.Ledger.Read(func(ic *ledger.Context) error {
					return p.Oracle.Tasks(ic, func(t oracle.Task) bool {
						printTask(w, t)
						return true
					})
				})
			})
		},
	}
}

func printTask(w io.Writer, t oracle.Task) {
	fmt.Fprintf(w, "Task #%d: %s\n", t.ID, t.ActionHash.StringBE())
	fmt.Fprintf(w, "  Flagger: %s\n", t.Flagger.StringLE())
	fmt.Fprintf(w, "  Votes: %d for, %d against\n", t.VotesFor, t.VotesAgainst)
	fmt.Fprintf(w, "  Resolved: %t\n", t.Resolved)
}

func actionHash(action, params string) (util.Uint256, error) {
	pm, err := canonical.ParseParams([]byte(params))
	if err != nil {
		return util.Uint256{}, err
	}

	return canonical.ActionHash(action, pm)
}
