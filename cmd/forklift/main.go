package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▀ █▀█ █▀█ █▄▀ █   █ █▀▀ ▀█▀"
	logoText2 = "█▀  █▄█ █▀▄ █ █ █▄▄ █ █▀   █ "
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "forklift",
	Short:         "Create Forklift jobs from your terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

forklift is a terminal client for the Forklift backend. Sign in with your
GitHub session, browse your repositories, and walk through the job wizard
(issue, branch, files, commands) to send a job to the backend.

Every submission is also kept in a local journal backed by an embedded
NATS JetStream server; see 'forklift jobs history'.`

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(setupCmd)
}
