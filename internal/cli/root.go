package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	baseURL    string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envBase := os.Getenv("SCRUTINY_BASE_URL")

	cmd := &cobra.Command{
		Use:   "scrutiny-client",
		Short: "Participant-side quiz client, pure poll-based",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&baseURL, "base-url", envBase, "backend base URL (overrides config)")
	cmd.AddCommand(NewWatchCmd(&configPath, &baseURL))
	cmd.AddCommand(NewSubmitCmd(&configPath, &baseURL))
	return cmd
}
