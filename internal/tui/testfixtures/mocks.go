// Package testfixtures provides mock implementations and test utilities for TUI testing.
//
// MockBackend stands in for the Forklift API client behind the job wizard.
// It is thread-safe, since wizard commands run off the UI goroutine, and
// records every call for assertions.
//
// Example usage:
//
//	func TestMyComponent(t *testing.T) {
//	    backend := testfixtures.NewMockBackend()
//	    backend.CheckErr = api.ErrAppNotInstalled
//
//	    // Use the mock in your test...
//	    // Later verify calls:
//	    require.Equal(t, 1, backend.Calls("check"))
//	}
package testfixtures

import (
	"context"
	"sync"

	"github.com/forklift-dev/forklift/internal/api"
)

// MockBackend implements the wizard backend with canned data.
type MockBackend struct {
	mu sync.Mutex

	IssueList  []api.Issue
	BranchList []api.Branch
	// FilesByBranch overrides Files(branch) when set.
	FilesByBranch map[string][]api.RepoFile
	Response      *api.JobResponse

	CheckErr    error
	IssuesErr   error
	BranchesErr error
	FilesErr    error
	SubmitErr   error

	calls     map[string]int
	submitted []api.JobRequest
}

// NewMockBackend returns a backend serving the fixture issues, branches
// and files.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		IssueList:  Issues(),
		BranchList: Branches(),
		FilesByBranch: map[string][]api.RepoFile{
			"main":         Files("main"),
			"feature/auth": Files("feature/auth"),
		},
		Response: &api.JobResponse{Status: "success", FilesProcessed: 2, ChunksCreated: 17},
		calls:    map[string]int{},
	}
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

// CheckRepo returns CheckErr.
func (m *MockBackend) CheckRepo(ctx context.Context, owner, repo string) error {
	m.record("check")
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CheckErr
}

// Issues returns IssueList or IssuesErr.
func (m *MockBackend) Issues(ctx context.Context, repo string) ([]api.Issue, error) {
	m.record("issues")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IssuesErr != nil {
		return nil, m.IssuesErr
	}
	return append([]api.Issue(nil), m.IssueList...), nil
}

// Branches returns BranchList or BranchesErr.
func (m *MockBackend) Branches(ctx context.Context, repo string) ([]api.Branch, error) {
	m.record("branches")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BranchesErr != nil {
		return nil, m.BranchesErr
	}
	return append([]api.Branch(nil), m.BranchList...), nil
}

// Files returns the files of branch or FilesErr.
func (m *MockBackend) Files(ctx context.Context, branch, repo string) ([]api.RepoFile, error) {
	m.record("files")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FilesErr != nil {
		return nil, m.FilesErr
	}
	return append([]api.RepoFile(nil), m.FilesByBranch[branch]...), nil
}

// IndexRepository records job and returns Response or SubmitErr.
func (m *MockBackend) IndexRepository(ctx context.Context, job api.JobRequest) (*api.JobResponse, error) {
	m.record("submit")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, job)
	if m.SubmitErr != nil {
		return nil, m.SubmitErr
	}
	return m.Response, nil
}

// Calls returns how often name ("check", "issues", "branches", "files",
// "submit") was called.
func (m *MockBackend) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Submitted returns the jobs received so far.
func (m *MockBackend) Submitted() []api.JobRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.JobRequest(nil), m.submitted...)
}
