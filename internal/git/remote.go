// Package git reads repository facts from a local checkout.
package git

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Remote identifies a GitHub repository by owner and name.
type Remote struct {
	Owner string
	Name  string
}

// runGit runs git in dir and returns trimmed stdout.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// DetectRemote returns the repository the origin remote of dir points at.
// Returns nil without error when dir is not a checkout or has no origin.
func DetectRemote(dir string) (*Remote, error) {
	if _, err := runGit(dir, "rev-parse", "--git-dir"); err != nil {
		return nil, nil
	}
	url, err := runGit(dir, "remote", "get-url", "origin")
	if err != nil || url == "" {
		return nil, nil
	}
	r, ok := ParseRemoteURL(url)
	if !ok {
		return nil, fmt.Errorf("unrecognised origin url: %s", url)
	}
	return &r, nil
}

// ParseRemoteURL extracts owner and name from scp-style
// (git@github.com:owner/name.git) and URL-style
// (https://github.com/owner/name) remotes.
func ParseRemoteURL(url string) (Remote, bool) {
	path := url
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
		slash := strings.Index(path, "/")
		if slash < 0 {
			return Remote{}, false
		}
		path = path[slash+1:]
	} else if i := strings.Index(path, ":"); i >= 0 {
		path = path[i+1:]
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return Remote{}, false
	}
	owner, name := parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || name == "" {
		return Remote{}, false
	}
	return Remote{Owner: owner, Name: name}, true
}
