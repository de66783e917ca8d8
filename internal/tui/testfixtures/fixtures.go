package testfixtures

import (
	"time"

	"github.com/forklift-dev/forklift/internal/api"
)

// Fixed test values for consistent output
const (
	FixedOwner = "octo"
	FixedRepo  = "hello-world"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// Issues returns two open issues, one with labels.
func Issues() []api.Issue {
	return []api.Issue{
		{
			ID:     101,
			Number: 12,
			Title:  "Login crash on empty password",
			Body:   "Submitting the login form with an empty password panics.\n\n- open /login\n- press enter",
			Labels: []api.Label{{Name: "bug", Color: "d73a4a"}},
		},
		{
			ID:     102,
			Number: 15,
			Title:  "Add dark mode",
			Body:   "Support a dark colour scheme.",
		},
	}
}

// Branches returns main and a feature branch.
func Branches() []api.Branch {
	return []api.Branch{{Name: "main"}, {Name: "feature/auth"}}
}

// Files returns the tree of branch. Unknown branches are empty.
func Files(branch string) []api.RepoFile {
	switch branch {
	case "main":
		return []api.RepoFile{
			{Path: "README.md", Type: "file", Size: 1024},
			{Path: "cmd/server/main.go", Type: "file", Size: 2048},
			{Path: "internal/auth/login.go", Type: "file", Size: 4096},
		}
	case "feature/auth":
		return []api.RepoFile{
			{Path: "internal/auth/login.go", Type: "file", Size: 4200},
			{Path: "internal/auth/session.go", Type: "file", Size: 900},
		}
	}
	return []api.RepoFile{}
}

// InstalledRepos returns repositories the GitHub App can access.
func InstalledRepos() []api.InstalledRepo {
	return []api.InstalledRepo{
		{ID: 1, Name: "hello-world", FullName: "octo/hello-world"},
		{ID: 2, Name: "dotfiles", FullName: "octo/dotfiles", Private: true},
	}
}

// Repositories returns a small /user/repos listing.
func Repositories() []api.Repository {
	return []api.Repository{
		{
			ID: 1, Name: "hello-world", FullName: "octo/hello-world",
			Description: "My first repository", Language: "Go",
			StargazersCount: 42, UpdatedAt: FixedTime, AppAccess: true,
			Owner: api.Owner{Login: FixedOwner},
		},
		{
			ID: 2, Name: "dotfiles", FullName: "octo/dotfiles",
			Private: true, Language: "Shell", UpdatedAt: FixedTime.Add(-48 * time.Hour),
			Owner: api.Owner{Login: FixedOwner},
		},
	}
}
