package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/danielolaszy/jiradesk/internal/config"
	"github.com/danielolaszy/jiradesk/internal/desk"
	"github.com/danielolaszy/jiradesk/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "jiradesk",
	Short: "Jiradesk works with your Jira Cloud tickets from the terminal",
	Long: `Jiradesk is a client for Jira Cloud. It lists the tickets assigned to you,
shows issue details, comments and history, finds the current sprint and
edits issues: description, comments, story points, assignee, due date,
sprint and workflow status.

Credentials are read from appsettings.json (working directory, then
~/.jiradesk) and the JIRA_URL, JIRA_USERNAME and JIRA_TOKEN environment
variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "settings file (default: appsettings.json)")

	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(issueCmd)
	rootCmd.AddCommand(sprintCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(pointsCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(transitionCmd)
	rootCmd.AddCommand(configCmd)
}

// openDesk loads the configuration and returns a configured facade. The
// caller must Close it.
func openDesk(cmd *cobra.Command) (*desk.Facade, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	f := desk.New(cmd.Context(), desk.Options{Buffer: cfg.Events.Buffer})
	if err := f.Configure(cfg.Jira); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to configure jira connection: %w", err)
	}
	return f, nil
}

// await waits for operation id to finish. Result events go to handle,
// write summaries are printed, and failures are returned as one error.
func await(cmd *cobra.Command, f *desk.Facade, id uuid.UUID, handle func(desk.Event)) error {
	events, err := desk.Await(cmd.Context(), f.Events(), id, nil)
	if err != nil {
		return err
	}

	var errs error
	for _, ev := range events {
		switch ev.Kind {
		case desk.AuthRequired:
			errs = multierr.Append(errs, fmt.Errorf("%s Run 'jiradesk config set --token <token>'", ev.Message))
		case desk.Failed:
			logging.Debug("operation failed", "operation", ev.Operation, "error", ev.Err)
			errs = multierr.Append(errs, ev.Err)
		case desk.Succeeded:
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(ev.Message))
		default:
			if handle != nil {
				handle(ev)
			}
		}
	}
	return errs
}

// runDesk opens a facade, starts one operation with start and waits for it.
func runDesk(cmd *cobra.Command, start func(*desk.Facade) uuid.UUID, handle func(desk.Event)) error {
	f, err := openDesk(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	return await(cmd, f, start(f), handle)
}
