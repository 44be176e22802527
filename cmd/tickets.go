package cmd

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiradesk/internal/desk"
)

// ticketsCmd lists the caller's open tickets grouped by sprint.
var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "List your open tickets",
	Long: `List the open tickets assigned to you, most recently updated first,
grouped by sprint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDesk(cmd, (*desk.Facade).FetchMyTickets, func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderTickets(ev.Tickets))
		})
	},
}

// issueCmd groups the single-issue read commands.
var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Show details of one issue",
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-key>",
	Short: "Show the editable fields of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.FetchIssueFieldSnapshot(key)
		}, func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderSnapshot(ev.IssueKey, ev.Snapshot))
		})
	},
}

var issueCommentsCmd = &cobra.Command{
	Use:   "comments <issue-key>",
	Short: "List the comments of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.FetchComments(key)
		}, func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderComments(ev.Comments))
		})
	},
}

var issueHistoryCmd = &cobra.Command{
	Use:   "history <issue-key>",
	Short: "Show the change history of an issue, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.FetchHistory(key)
		}, func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(ev.History))
		})
	},
}

var issueTransitionsCmd = &cobra.Command{
	Use:   "transitions <issue-key>",
	Short: "List the workflow transitions available for an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.FetchTransitions(key)
		}, func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderTransitions(ev.Transitions))
		})
	},
}

// sprintCmd groups the sprint commands.
var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Find the current sprint and its issues",
}

var sprintCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the most recently started active sprint across scrum boards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDesk(cmd, (*desk.Facade).FetchMostRecentActiveSprint, func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderSprint(ev.Sprint))
		})
	},
}

var sprintIssuesCmd = &cobra.Command{
	Use:   "issues [sprint-id]",
	Short: "List the issues of a sprint (default: the current sprint)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openDesk(cmd)
		if err != nil {
			return err
		}
		defer f.Close()

		var sprintID int
		if len(args) == 1 {
			sprintID, err = strconv.Atoi(args[0])
			if err != nil || sprintID <= 0 {
				return fmt.Errorf("invalid sprint id %q", args[0])
			}
		} else {
			err := await(cmd, f, f.FetchMostRecentActiveSprint(), func(ev desk.Event) {
				if ev.Sprint != nil {
					sprintID = ev.Sprint.ID
					fmt.Fprintln(cmd.OutOrStdout(), renderSprint(ev.Sprint))
				}
			})
			if err != nil {
				return err
			}
			if sprintID == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderSprint(nil))
				return nil
			}
		}

		return await(cmd, f, f.FetchSprintIssues(sprintID), func(ev desk.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderTickets(ev.Tickets))
		})
	},
}

func init() {
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueCommentsCmd)
	issueCmd.AddCommand(issueHistoryCmd)
	issueCmd.AddCommand(issueTransitionsCmd)

	sprintCmd.AddCommand(sprintCurrentCmd)
	sprintCmd.AddCommand(sprintIssuesCmd)
}
