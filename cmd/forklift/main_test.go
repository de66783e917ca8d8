package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/journal"
	"github.com/forklift-dev/forklift/internal/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"login", "logout", "whoami", "repos", "jobs", "create", "setup"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestFormatRepo(t *testing.T) {
	out := ansi.Strip(formatRepo(api.Repository{
		Name:            "hello-world",
		FullName:        "octo/hello-world",
		Description:     "My first repository",
		Language:        "Go",
		StargazersCount: 42,
		ForksCount:      3,
		AppAccess:       true,
		UpdatedAt:       now.Add(-3 * time.Hour),
	}, now))

	assert.Contains(t, out, "octo/hello-world public")
	assert.Contains(t, out, "● app")
	assert.Contains(t, out, "My first repository")
	assert.Contains(t, out, "★ 42")
	assert.Contains(t, out, "updated 3 hours ago")
}

func TestPrintRepos(t *testing.T) {
	list := []api.Repository{
		{Name: "a", FullName: "octo/a", UpdatedAt: now},
		{Name: "b", FullName: "octo/b", Private: true, UpdatedAt: now},
		{Name: "c", FullName: "octo/c", UpdatedAt: now},
	}
	b := repos.NewBrowser(list, 2)
	b.SetPage(2)

	reposFlags.appInstalled = true
	reposFlags.installationID = "77"
	t.Cleanup(func() {
		reposFlags.appInstalled = false
		reposFlags.installationID = ""
	})

	var buf bytes.Buffer
	printRepos(&buf, b, now)
	out := ansi.Strip(buf.String())

	assert.Contains(t, out, "GitHub App installed successfully (installation 77)")
	assert.Contains(t, out, "3 repositories")
	assert.Contains(t, out, "2 public")
	assert.Contains(t, out, "1 private")
	assert.Contains(t, out, "octo/c")
	assert.NotContains(t, out, "octo/a")
	assert.Contains(t, out, "Page 2 of 2")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	require.Contains(t, buf.String(), "No jobs yet.")

	buf.Reset()
	printHistory(&buf, []journal.Entry{
		{ID: "2", Timestamp: now, RepoName: "hello-world", Branch: "main", IssueTitle: "Fix", ManualIssue: true,
			Files: []string{"a.go"}, Commands: 1, Status: journal.StatusFailed, Error: "submitting job: boom"},
		{ID: "1", Timestamp: now, RepoName: "hello-world", Branch: "dev", IssueTitle: "Crash",
			Files: []string{"a.go", "b.go"}, Commands: 2, Status: journal.StatusSubmitted},
	})
	out := ansi.Strip(buf.String())

	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "✗ failed  hello-world@main")
	assert.Contains(t, out, "Fix (manual) · 1 files · 1 commands")
	assert.Contains(t, out, "submitting job: boom")
	assert.Contains(t, out, "✓ submitted  hello-world@dev")
}
