package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/repos"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	"github.com/spf13/cobra"
)

var reposFlags struct {
	search         string
	page           int
	appInstalled   bool
	installationID string
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Browse your GitHub repositories",
	Long: `Browse your GitHub repositories.

Lists repositories 30 per page (see per_page) with visibility totals,
language and last update. --githubapp-installed and --installation-id are
the parameters GitHub appends after installing the Forklift app.`,
	RunE: runRepos,
}

var reposInstallCmd = &cobra.Command{
	Use:   "install <owner>",
	Short: "Print the GitHub App installation URL for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposInstall,
}

func init() {
	reposCmd.Flags().StringVarP(&reposFlags.search, "search", "s", "", "Filter by name, description or language")
	reposCmd.Flags().IntVarP(&reposFlags.page, "page", "p", 1, "Page to show")
	reposCmd.Flags().BoolVar(&reposFlags.appInstalled, "githubapp-installed", false, "Show the app installation confirmation")
	reposCmd.Flags().StringVar(&reposFlags.installationID, "installation-id", "", "Installation id reported by GitHub")
	reposCmd.AddCommand(reposInstallCmd)
}

func runRepos(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if _, err := a.guard(cmd.Context()); err != nil {
		return err
	}

	list, err := a.client.Repos(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load repositories: %w", err)
	}

	b := repos.NewBrowser(list, a.cfg.PerPage)
	b.Search(reposFlags.search)
	b.SetPage(reposFlags.page)

	printRepos(cmd.OutOrStdout(), b, time.Now())
	return nil
}

func printRepos(out io.Writer, b *repos.Browser, now time.Time) {
	s := theme.Current().S()

	if reposFlags.appInstalled {
		msg := "GitHub App installed successfully"
		if reposFlags.installationID != "" {
			msg += fmt.Sprintf(" (installation %s)", reposFlags.installationID)
		}
		_, _ = fmt.Fprintln(out, s.SuccessBanner.Render("✓ "+msg))
		_, _ = fmt.Fprintln(out)
	}

	stats := b.Stats()
	_, _ = fmt.Fprintf(out, "%s  %s  %s\n\n",
		s.HeaderTitle.Render(fmt.Sprintf("%d repositories", stats.Total)),
		s.Public.Render(fmt.Sprintf("%d public", stats.Public)),
		s.Private.Render(fmt.Sprintf("%d private", stats.Private)),
	)

	for _, r := range b.Items() {
		_, _ = fmt.Fprintln(out, formatRepo(r, now))
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, s.ItemMuted.Render(b.PageInfo()))
}

func formatRepo(r api.Repository, now time.Time) string {
	s := theme.Current().S()

	visibility := s.Public.Render("public")
	if r.Private {
		visibility = s.Private.Render("private")
	}
	title := s.Item.Bold(true).Render(r.FullName) + " " + visibility
	if r.AppAccess {
		title += " " + s.Checked.Render("● app")
	}

	var meta []string
	if r.Language != "" {
		meta = append(meta, theme.LabelStyle(repos.LanguageColor(r.Language)).Render(r.Language))
	}
	meta = append(meta,
		fmt.Sprintf("★ %d", r.StargazersCount),
		fmt.Sprintf("⑂ %d", r.ForksCount),
		"updated "+repos.TimeAgo(r.UpdatedAt, now),
	)

	lines := []string{title}
	if r.Description != "" {
		lines = append(lines, "  "+s.Subtitle.Render(r.Description))
	}
	lines = append(lines, "  "+s.ItemMuted.Render(strings.Join(meta, "  ")))
	return strings.Join(lines, "\n")
}

func runReposInstall(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if _, err := a.guard(cmd.Context()); err != nil {
		return err
	}

	u, err := a.client.InstallURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get install url: %w", err)
	}
	s := theme.Current().S()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Install the Forklift GitHub App for %s:\n  %s\n", args[0], s.HintKey.Render(u))
	return nil
}
