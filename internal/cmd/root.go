package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talentloop/portal/internal/pkg/config"
	"github.com/talentloop/portal/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Session and onboarding routing for the hiring portal",
	Long: `portal runs the hiring portal's session service and talks to the hosted
account backend on behalf of browsers and the command line.

Use "portal serve" for the HTTP service, "portal stub-api" for a local
stand-in of the hosted backend, and the login/signup/whoami/logout commands
to drive a session from the terminal.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	appConfig   *config.Config
	apiURL      string
	sessionFile string
)

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides PORTAL_API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "Session file for CLI commands (default $HOME/.portal/session.yaml)")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	appConfig = cfg

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Output:  os.Stderr,
		Service: "portal",
	})
	return nil
}

func sessionPath() (string, error) {
	if sessionFile != "" {
		return sessionFile, nil
	}
	if appConfig.Session.File != "" {
		return appConfig.Session.File, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".portal", "session.yaml"), nil
}
