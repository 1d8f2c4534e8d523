package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/pipeship/internal/shell/cloud"
)

// =============================================================================
// Application
// =============================================================================

// app holds the wiring shared by all commands. Each invocation constructs
// its own app; there is no global state.
type app struct {
	overrides  []string
	configPath string

	cfg    *Config
	logger *slog.Logger
	client cloud.Client
	stdout io.Writer

	// newClient builds the cloud client after configuration is loaded.
	// Tests replace client directly instead.
	newClient func(cfg *Config) cloud.Client
}

func newApp(overrides []string) *app {
	return &app{
		overrides: overrides,
		stdout:    os.Stdout,
		newClient: func(cfg *Config) cloud.Client {
			return cloud.NewHTTPClient(cloud.ClientConfig{
				BaseURL: cfg.Cloud.Endpoint,
				APIKey:  cfg.Cloud.APIKey,
				Timeout: cfg.Cloud.Timeout,
			})
		},
	}
}

// setup loads the tool configuration and builds the logger and cloud client.
// It runs before every command.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return &exitError{code: ExitFailure, message: err.Error()}
	}
	a.cfg = cfg

	if a.logger == nil {
		a.logger = SetupLogger(cfg)
	}
	if a.client == nil {
		a.client = a.newClient(cfg)
	}
	return nil
}

// =============================================================================
// Command Tree
// =============================================================================

// rootCommand builds the pipeship command tree:
//
//	pipeship deploy <pipeline> [flags] [--Service.attr=value ...]
//	pipeship deployment create|get|list|delete
func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "pipeship",
		Short:   "Deploy multi-service pipelines to Pipeship Cloud",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),

		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to pipeship config file")

	deployment := &cobra.Command{
		Use:   "deployment",
		Short: "Manage deployments on Pipeship Cloud",
	}
	deployment.AddCommand(
		a.createCommand("create"),
		a.getCommand(),
		a.listCommand(),
		a.deleteCommand(),
	)

	root.AddCommand(deployment)
	root.AddCommand(a.createCommand("deploy")) // top-level shorthand

	return root
}
