package api

import "time"

// User is the profile returned by /auth/me. It is also the record kept in
// local state between runs.
type User struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	ID        string `json:"id,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Label is a GitHub issue label. Color is hex without the leading '#'.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Issue is an open issue of the repository being configured.
type Issue struct {
	ID     int64   `json:"id"`
	Number int     `json:"number"`
	Title  string  `json:"title"`
	Body   string  `json:"body"`
	Labels []Label `json:"labels"`
}

// Branch is a repository branch.
type Branch struct {
	Name string `json:"name"`
}

// RepoFile is a blob of the repository tree for one branch.
type RepoFile struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type treeResponse struct {
	Tree []treeEntry `json:"tree"`
}

// Owner is the account owning a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Repository is one entry of /user/repos.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	Private         bool      `json:"private"`
	AppAccess       bool      `json:"app_access"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	UpdatedAt       time.Time `json:"updated_at"`
	HTMLURL         string    `json:"html_url"`
	Owner           Owner     `json:"owner"`
}

// InstalledRepo is a repository the GitHub App can access.
type InstalledRepo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

type installedReposResponse struct {
	Repositories []InstalledRepo `json:"repositories"`
}

type installResponse struct {
	InstallURL string `json:"install_url"`
}

// Command is a shell command run as part of a job.
type Command struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// EnvVar is an environment variable exported for a job.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// JobIssue is the issue attached to a job: either a fetched issue or a
// manually written one (Manual set, no ID).
type JobIssue struct {
	ID     int64   `json:"id,omitempty"`
	Number int     `json:"number,omitempty"`
	Title  string  `json:"title"`
	Body   string  `json:"body"`
	Labels []Label `json:"labels,omitempty"`
	Manual bool    `json:"manual,omitempty"`
}

// JobRequest is the payload of POST /job/index-repository.
type JobRequest struct {
	RepoName       string    `json:"repo_name"`
	Issue          *JobIssue `json:"issue"`
	Branch         string    `json:"branch"`
	Files          []string  `json:"files"`
	EnvVars        []EnvVar  `json:"envVars"`
	InstallCommand *Command  `json:"installCommand"`
	Commands       []Command `json:"commands"`
}

// JobResponse is the backend's answer to a job submission.
type JobResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	FilesProcessed int    `json:"files_processed"`
	ChunksCreated  int    `json:"chunks_created"`
}

type logoutRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}
