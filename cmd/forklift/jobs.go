package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/git"
	"github.com/forklift-dev/forklift/internal/journal"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/tui/picker"
	"github.com/forklift-dev/forklift/internal/tui/theme"
	"github.com/forklift-dev/forklift/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var jobsFlags struct {
	limit int
	repo  string
}

var createFlags struct {
	repo string
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Pick an installed repository and create a job",
	Long: `Pick one of the repositories the Forklift GitHub App can access, then
walk through the job wizard for it.`,
	RunE: runJobs,
}

var jobsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List jobs submitted from this machine",
	RunE:  runJobsHistory,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a job for a repository",
	Long: `Create a job for a repository with the four-step wizard:
select an issue, a branch, the files to index and the commands to run.`,
	RunE: runCreate,
}

func init() {
	jobsHistoryCmd.Flags().IntVarP(&jobsFlags.limit, "limit", "n", 20, "Maximum entries to show, 0 for all")
	jobsHistoryCmd.Flags().StringVarP(&jobsFlags.repo, "repo", "r", "", "Only show jobs for this repository")
	jobsCmd.AddCommand(jobsHistoryCmd)

	createCmd.Flags().StringVarP(&createFlags.repo, "repo", "r", "", "Repository name (default: origin of the current checkout)")
}

func runJobs(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	user, err := a.guard(cmd.Context())
	if err != nil {
		return err
	}

	res, err := picker.Run(cmd.Context(), a.client, user.Username, a.cfg.RequestTimeout())
	if err != nil {
		return err
	}
	if res.Cancelled {
		return nil
	}
	return createJob(cmd.Context(), cmd.OutOrStdout(), a, user, res.Name())
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	user, err := a.guard(cmd.Context())
	if err != nil {
		return err
	}
	repo := createFlags.repo
	if repo == "" {
		repo = detectRepo()
	}
	return createJob(cmd.Context(), cmd.OutOrStdout(), a, user, repo)
}

// detectRepo names the repository of the working directory's origin remote.
// An empty result leaves the wizard to report the missing repository.
func detectRepo() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	remote, err := git.DetectRemote(wd)
	if err != nil {
		logger.Warn("detecting repository: %v", err)
		return ""
	}
	if remote == nil {
		return ""
	}
	logger.Debug("using repository %s/%s from origin", remote.Owner, remote.Name)
	return remote.Name
}

// createJob runs the wizard for repo and reports the submission. A failed
// submission is printed and journaled; the command still lands on the job
// list.
func createJob(ctx context.Context, out io.Writer, a *app, user *api.User, repo string) error {
	res, err := wizard.RunWizard(ctx, wizard.Options{
		Owner:   user.Username,
		Repo:    repo,
		Backend: a.client,
		Timeout: a.cfg.RequestTimeout(),
	})
	if err != nil {
		return err
	}

	s := theme.Current().S()
	switch {
	case res.AppNotInstalled:
		return fmt.Errorf("the Forklift GitHub App cannot access %s: run 'forklift repos install %s'", repo, user.Username)
	case res.Cancelled:
		_, _ = fmt.Fprintln(out, s.ItemMuted.Render("Job creation cancelled."))
		return nil
	case !res.Submitted:
		return res.Err
	}

	a.persistToken()

	entry := journal.NewEntry(res.Request, res.Response, res.Err)
	if a.cfg.Journal {
		recordJob(ctx, a.cfg.DataDir, entry)
	}

	if res.Err != nil {
		_, _ = fmt.Fprintln(out, s.ErrorBanner.Render("✗ Failed to create job: "+res.Err.Error()))
	} else {
		msg := "Job created for " + repo
		if res.Response != nil && res.Response.FilesProcessed > 0 {
			msg += fmt.Sprintf(" (%d files, %d chunks)", res.Response.FilesProcessed, res.Response.ChunksCreated)
		}
		_, _ = fmt.Fprintln(out, s.SuccessBanner.Render("✓ "+msg))
	}

	if a.cfg.Journal {
		_, _ = fmt.Fprintln(out)
		return showHistory(ctx, out, a.cfg.DataDir, repo, 5)
	}
	return nil
}

func recordJob(ctx context.Context, dataDir string, entry journal.Entry) {
	j, err := journal.Open(ctx, dataDir)
	if err != nil {
		logger.Warn("Journal unavailable, job not recorded: %v", err)
		return
	}
	defer func() { _ = j.Close() }()
	if err := j.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record job: %v", err)
	}
}

func runJobsHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if !a.cfg.Journal {
		return errors.New("the job journal is disabled (journal: false)")
	}
	return showHistory(cmd.Context(), cmd.OutOrStdout(), a.cfg.DataDir, jobsFlags.repo, jobsFlags.limit)
}

func showHistory(ctx context.Context, out io.Writer, dataDir, repo string, limit int) error {
	j, err := journal.Open(ctx, dataDir)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	entries, err := j.List(ctx, repo, limit)
	if err != nil {
		return err
	}
	printHistory(out, entries)
	return nil
}

func printHistory(out io.Writer, entries []journal.Entry) {
	s := theme.Current().S()
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, s.ItemMuted.Render("No jobs yet."))
		return
	}

	_, _ = fmt.Fprintln(out, s.HeaderTitle.Render("Jobs"))
	for _, e := range entries {
		status := s.Checked.Render("✓ submitted")
		if e.Status == journal.StatusFailed {
			status = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Error)).Render("✗ failed")
		}
		issue := e.IssueTitle
		if e.ManualIssue {
			issue += " (manual)"
		}
		_, _ = fmt.Fprintf(out, "#%s  %s  %s  %s@%s\n", e.ID, e.Timestamp.Local().Format(time.DateTime), status, e.RepoName, e.Branch)
		details := []string{
			issue,
			fmt.Sprintf("%d files", len(e.Files)),
			fmt.Sprintf("%d commands", e.Commands),
		}
		_, _ = fmt.Fprintln(out, "    "+s.ItemMuted.Render(strings.Join(details, " · ")))
		if e.Error != "" {
			_, _ = fmt.Fprintln(out, "    "+s.ItemMuted.Render(e.Error))
		}
	}
}
