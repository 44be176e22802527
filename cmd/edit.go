package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiradesk/internal/desk"
)

// clearValue is accepted by the field commands to remove a value.
const clearValue = "none"

// textArg returns the text given on the command line, or stdin when it is "-".
func textArg(cmd *cobra.Command, args []string) (string, error) {
	text := strings.Join(args, " ")
	if text != "-" {
		return text, nil
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(raw), "\n"), nil
}

func isClear(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), clearValue)
}

func parsePoints(s string) (*float64, error) {
	if isClear(s) {
		return nil, nil
	}
	points, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || points < 0 {
		return nil, fmt.Errorf("invalid story points %q", s)
	}
	return &points, nil
}

func parseDueDate(s string) (*time.Time, error) {
	if isClear(s) {
		return nil, nil
	}
	due, err := time.Parse(displayDate, strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", s)
	}
	return &due, nil
}

func parseSprintID(s string) (*int, error) {
	if isClear(s) {
		return nil, nil
	}
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid sprint id %q", s)
	}
	return &id, nil
}

var describeCmd = &cobra.Command{
	Use:   "describe <issue-key> <text...|->",
	Short: "Replace the description of an issue",
	Long: `Replace the description of an issue. Each line becomes a paragraph.
Pass "-" to read the description from stdin.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textArg(cmd, args[1:])
		if err != nil {
			return err
		}
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.UpdateDescription(key, text)
		}, nil)
	},
}

// commentCmd groups the comment write commands.
var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Add or edit comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <issue-key> <text...|->",
	Short: "Post a comment on an issue",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textArg(cmd, args[1:])
		if err != nil {
			return err
		}
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.AddComment(key, text)
		}, nil)
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <issue-key> <comment-id> <text...|->",
	Short: "Replace the body of a comment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := textArg(cmd, args[2:])
		if err != nil {
			return err
		}
		key, id := args[0], args[1]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.UpdateComment(key, id, text)
		}, nil)
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points <issue-key> <points|none>",
	Short: "Set or clear the story points of an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePoints(args[1])
		if err != nil {
			return err
		}
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.UpdateStoryPoints(key, points)
		}, nil)
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <issue-key> [user]",
	Short: "Assign an issue to a user, or unassign it",
	Long: `Assign an issue. The user is looked up by name or email; when nothing
matches the value is used as an account id. Without a user the issue is
unassigned.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, user := args[0], ""
		if len(args) == 2 {
			user = args[1]
		}
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.UpdateAssignee(key, user)
		}, nil)
	},
}

var dueCmd = &cobra.Command{
	Use:   "due <issue-key> <YYYY-MM-DD|none>",
	Short: "Set or clear the due date of an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		due, err := parseDueDate(args[1])
		if err != nil {
			return err
		}
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.UpdateDueDate(key, due)
		}, nil)
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <issue-key> <sprint-id|none>",
	Short: "Move an issue into a sprint, or out of its sprint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sprintID, err := parseSprintID(args[1])
		if err != nil {
			return err
		}
		key := args[0]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.UpdateSprint(key, sprintID)
		}, nil)
	},
}

var transitionCmd = &cobra.Command{
	Use:   "transition <issue-key> <transition-id>",
	Short: "Apply a workflow transition to an issue",
	Long: `Apply a workflow transition. List the available transitions with
"jiradesk issue transitions <issue-key>".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, id := args[0], args[1]
		return runDesk(cmd, func(f *desk.Facade) uuid.UUID {
			return f.TransitionIssue(key, id)
		}, nil)
	},
}

func init() {
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentEditCmd)
}
