package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/jiradesk/internal/config"
	"github.com/danielolaszy/jiradesk/internal/logging"
)

// shownConfig is the YAML form printed by "config show".
type shownConfig struct {
	Jira struct {
		URL       string  `yaml:"url"`
		Username  string  `yaml:"username"`
		Token     string  `yaml:"token"`
		RateLimit float64 `yaml:"rate_limit"`
		RateBurst int     `yaml:"rate_burst"`
		Timeout   string  `yaml:"timeout"`
	} `yaml:"jira"`
	Events struct {
		Buffer int `yaml:"buffer"`
	} `yaml:"events"`
}

// renderConfig renders cfg as YAML with the API token masked.
func renderConfig(cfg *config.Config) (string, error) {
	var shown shownConfig
	shown.Jira.URL = cfg.Jira.URL
	shown.Jira.Username = cfg.Jira.Username
	shown.Jira.Token = logging.MaskSensitive(cfg.Jira.Token)
	shown.Jira.RateLimit = cfg.Jira.RateLimit
	shown.Jira.RateBurst = cfg.Jira.RateBurst
	shown.Jira.Timeout = cfg.Jira.Timeout.String()
	shown.Events.Buffer = cfg.Events.Buffer

	out, err := yaml.Marshal(shown)
	if err != nil {
		return "", fmt.Errorf("failed to render configuration: %w", err)
	}
	return string(out), nil
}

// configCmd groups the configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the connection settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		out, err := renderConfig(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)

		if err := config.ValidateJiraConfig(cfg); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(err.Error()))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Write connection settings to the settings file",
	Long: `Write connection settings to the settings file. Only the given flags
change; other values are kept. Without --config the file is
~/.jiradesk/appsettings.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("url") {
			cfg.Jira.URL, _ = flags.GetString("url")
		}
		if flags.Changed("username") {
			cfg.Jira.Username, _ = flags.GetString("username")
		}
		if flags.Changed("token") {
			cfg.Jira.Token, _ = flags.GetString("token")
		}
		if flags.Changed("rate-limit") {
			cfg.Jira.RateLimit, _ = flags.GetFloat64("rate-limit")
		}
		if flags.Changed("timeout") {
			cfg.Jira.Timeout, _ = flags.GetDuration("timeout")
		}

		path := configPath
		if path == "" {
			dir, err := config.DefaultDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, config.DefaultFileName)
		}

		if err := config.Save(cfg, path); err != nil {
			return err
		}

		logging.Info("settings saved", "path", path)
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Settings saved to "+path))
		return nil
	},
}

func init() {
	configSetCmd.Flags().String("url", "", "Jira Cloud instance URL, e.g. https://example.atlassian.net")
	configSetCmd.Flags().String("username", "", "account email")
	configSetCmd.Flags().String("token", "", "API token")
	configSetCmd.Flags().Float64("rate-limit", 0, "maximum requests per second (0 disables limiting)")
	configSetCmd.Flags().Duration("timeout", 0, "request timeout")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
