// Package main provides the pipeship binary: a CLI for deploying
// multi-service pipelines to Pipeship Cloud.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/pipeship/internal/core/domain"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

// Each classified outcome maps to a distinct exit code so CI callers can
// branch without parsing message text.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // generic failure, configuration or validation error
	ExitConflict     = 2
	ExitAuthRequired = 3
	ExitTimedOut     = 4
)

// exitCodeFor maps an outcome kind to its process exit code.
func exitCodeFor(kind domain.OutcomeKind) int {
	switch kind {
	case domain.OutcomeReady:
		return ExitSuccess
	case domain.OutcomeConflict:
		return ExitConflict
	case domain.OutcomeAuthRequired:
		return ExitAuthRequired
	case domain.OutcomeTimedOut:
		return ExitTimedOut
	default:
		return ExitFailure
	}
}

// exitError carries a specific exit code and message out of a command.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string {
	return e.message
}

// =============================================================================
// Entrypoint
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Service override tokens are split off before cobra parses flags; their
	// dotted-path namespace never collides with real flags.
	overrides, rest := extractOverrides(args)

	a := newApp(overrides)
	root := a.rootCommand()
	root.SetArgs(rest)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		var xerr *exitError
		if errors.As(err, &xerr) {
			if xerr.message != "" {
				fmt.Fprintln(os.Stderr, "Error: "+xerr.message)
			}
			return xerr.code
		}
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return ExitFailure
	}
	return ExitSuccess
}
