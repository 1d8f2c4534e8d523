package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/spf13/cobra"

	"github.com/artpar/pipeship/internal/core/deployment"
	"github.com/artpar/pipeship/internal/core/domain"
	"github.com/artpar/pipeship/internal/core/serviceconfig"
	"github.com/artpar/pipeship/internal/shell/cloud"
)

// =============================================================================
// Create / Deploy
// =============================================================================

type createFlags struct {
	name       string
	configFile string
	wait       bool
	noWait     bool
	timeout    time.Duration
	dev        bool
}

// createCommand builds the create command; use is "create" for the
// deployment subcommand and "deploy" for the top-level shorthand.
func (a *app) createCommand(use string) *cobra.Command {
	var flags createFlags

	cmd := &cobra.Command{
		Use:   use + " [pipeline]",
		Short: "Create a deployment on Pipeship Cloud",
		Long: "Create a deployment on Pipeship Cloud.\n\n" +
			"Per-service configuration comes from --config-file and from override\n" +
			"flags of the form --<Service>.<attribute>=<value>, overrides winning.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd, args, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "Deployment name")
	cmd.Flags().StringVarP(&flags.configFile, "config-file", "f", "", "Per-service configuration file path")
	cmd.Flags().BoolVar(&flags.wait, "wait", true, "Wait for the deployment to be ready")
	cmd.Flags().BoolVar(&flags.noWait, "no-wait", false, "Do not wait for the deployment to be ready")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Timeout for the deployment to be ready")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "Create a development deployment")

	return cmd
}

func (a *app) runCreate(cmd *cobra.Command, args []string, flags *createFlags) error {
	var pipeline string
	if len(args) > 0 {
		pipeline = args[0]
	}

	var file io.Reader
	if flags.configFile != "" {
		fh, err := os.Open(flags.configFile)
		if err != nil {
			return &exitError{code: ExitFailure, message: fmt.Sprintf("cannot read config file %s: %v", flags.configFile, err)}
		}
		defer fh.Close()
		file = fh
	}

	// Resolution failures abort before any remote call is made.
	resolved, err := serviceconfig.Resolve(file, a.overrides)
	if err != nil {
		return &exitError{code: ExitFailure, message: err.Error()}
	}

	if !resolved.Empty() {
		fmt.Fprintf(a.stdout, "Service configuration: %s\n", resolved.Serialize())
		a.logger.Info("deployment service configuration", "config", resolved.Serialize())
	}

	req := deployment.BuildCreateRequest(pipeline, flags.name, resolved, flags.dev)
	if err := req.Verify(); err != nil {
		return &exitError{code: ExitFailure, message: err.Error()}
	}

	wait := a.cfg.Deploy.Wait
	if cmd.Flags().Changed("wait") {
		wait = flags.wait
	}
	if flags.noWait {
		wait = false
	}

	timeout := flags.timeout
	if timeout <= 0 {
		timeout = a.cfg.Deploy.Timeout
	}

	orch := cloud.NewOrchestrator(a.client, clock.NewClock(), cloud.OrchestratorConfig{
		PollInterval: a.cfg.Deploy.PollInterval,
	}, a.logger)

	outcome := orch.Create(cmd.Context(), cloud.CreateOptions{
		Request: req,
		Wait:    wait,
		Timeout: timeout,
	})
	return a.reportOutcome(outcome)
}

// reportOutcome prints the outcome's message and converts non-ready kinds
// into their distinct exit codes.
func (a *app) reportOutcome(outcome domain.Outcome) error {
	if outcome.Kind == domain.OutcomeReady {
		fmt.Fprintln(a.stdout, outcome.Summary())
		if outcome.Handle != nil && outcome.Handle.DashboardURL != "" {
			fmt.Fprintf(a.stdout, "Dashboard: %s\n", outcome.Handle.DashboardURL)
		}
		return nil
	}
	return &exitError{code: exitCodeFor(outcome.Kind), message: outcome.Summary()}
}

// =============================================================================
// Get
// =============================================================================

func (a *app) getCommand() *cobra.Command {
	var cluster string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Get deployment details from Pipeship Cloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := a.client.GetDeployment(cmd.Context(), args[0], cluster)
			if err != nil {
				return a.clientError(err)
			}
			fmt.Fprintf(a.stdout, "Deployment %q in cluster %q\n", handle.Name, handle.Cluster)
			if handle.DashboardURL != "" {
				fmt.Fprintf(a.stdout, "Dashboard: %s\n", handle.DashboardURL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cluster, "cluster", "", "Cluster name")

	return cmd
}

// =============================================================================
// List
// =============================================================================

func (a *app) listCommand() *cobra.Command {
	var filter deployment.ListFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployments on Pipeship Cloud",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			handles, err := a.client.ListDeployments(cmd.Context(), filter)
			if err != nil {
				return a.clientError(err)
			}
			if len(handles) == 0 {
				fmt.Fprintln(a.stdout, "No deployments found")
				return nil
			}
			for _, h := range handles {
				fmt.Fprintf(a.stdout, "%s (cluster: %s)\n", h.Name, h.Cluster)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Cluster, "cluster", "", "Cluster name")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search query")
	cmd.Flags().BoolVar(&filter.Dev, "dev", false, "List development deployments")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Advanced query string")

	return cmd
}

// =============================================================================
// Delete
// =============================================================================

func (a *app) deleteCommand() *cobra.Command {
	var cluster string

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a deployment from Pipeship Cloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteDeployment(cmd.Context(), args[0], cluster); err != nil {
				return a.clientError(err)
			}
			fmt.Fprintf(a.stdout, "Deleted deployment %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&cluster, "cluster", "", "Cluster name")

	return cmd
}

// clientError maps a direct client error onto the classified exit codes.
func (a *app) clientError(err error) error {
	if errors.Is(err, cloud.ErrUnauthorized) {
		return &exitError{code: ExitAuthRequired, message: domain.AuthRequiredOutcome(err.Error()).Summary()}
	}
	return &exitError{code: ExitFailure, message: err.Error()}
}
