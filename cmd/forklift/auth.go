package main

import (
	"errors"
	"fmt"

	"github.com/forklift-dev/forklift/internal/auth"
	"github.com/forklift-dev/forklift/internal/state"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	"github.com/spf13/cobra"
)

var loginFlags struct {
	token    string
	errParam string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Forklift backend",
	Long: `Sign in to the Forklift backend.

Without flags, prints the backend's GitHub login URL. After signing in in the
browser, copy the auth_token cookie and store it with --token.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the backend session and forget the stored user",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginFlags.token, "token", "t", "", "Session token (auth_token cookie) to store")
	loginCmd.Flags().StringVar(&loginFlags.errParam, "error", "", "Error reported by the login callback")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	s := theme.Current().S()
	out := cmd.OutOrStdout()

	if loginFlags.errParam != "" {
		_, _ = fmt.Fprintln(out, s.ErrorBanner.Render("Login failed: "+loginFlags.errParam))
	}

	if loginFlags.token == "" {
		_, _ = fmt.Fprintf(out, "Open %s in a browser to sign in with GitHub.\n", s.HintKey.Render(a.client.LoginURL()))
		_, _ = fmt.Fprintln(out, "Then run 'forklift login --token <auth_token>'.")
		return nil
	}

	if err := state.SaveToken(a.cfg.DataDir, loginFlags.token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	a.client.SetToken(loginFlags.token)
	a.token = loginFlags.token

	user, err := a.guard(cmd.Context())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, s.SuccessBanner.Render(fmt.Sprintf("Signed in as %s (%s)", user.Name, user.Username)))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := auth.Logout(cmd.Context(), a.client, a.cfg.DataDir); err != nil {
		if errors.Is(err, auth.ErrNotSignedIn) {
			return fmt.Errorf("%w: run 'forklift login' first", err)
		}
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	user, err := a.guard(cmd.Context())
	if err != nil {
		return err
	}

	s := theme.Current().S()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s %s\n", s.HeaderTitle.Render(user.Name), s.Subtitle.Render("@"+user.Username))
	if user.AvatarURL != "" {
		_, _ = fmt.Fprintln(out, s.ItemMuted.Render(user.AvatarURL))
	}
	return nil
}
