// Package api is the HTTP client for the Forklift backend.
//
// The backend authenticates with an `auth_token` cookie issued by its GitHub
// OAuth callback. The client keeps that cookie in a jar so every request
// carries it, the same way a browser session would.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/forklift-dev/forklift/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CookieName is the session cookie set by the backend.
const CookieName = "auth_token"

var (
	// ErrAuthRequired is returned when the backend rejects the session (401).
	ErrAuthRequired = errors.New("authentication required")
	// ErrAppNotInstalled is returned by CheckRepo when the GitHub App has no
	// access to the repository.
	ErrAppNotInstalled = errors.New("github app is not installed on this repository")
)

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Op     string // Endpoint description, e.g. "get issues"
	Code   int    // HTTP status code
	Detail string // FastAPI "detail" field when present
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Code)
}

// Client talks to the backend REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithTransport replaces the underlying round tripper. It is still wrapped
// for tracing.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = newTransport(rt)
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		http: &http.Client{
			Jar:       jar,
			Transport: newTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "forklift " + r.Method + " " + r.URL.Path
		}),
	)
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// LoginURL is where a browser starts the GitHub OAuth flow.
func (c *Client) LoginURL() string {
	return c.BaseURL() + "/auth/login"
}

// SetToken installs the session credential.
func (c *Client) SetToken(token string) {
	if token == "" {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	}})
}

// Token returns the current session credential, which may have been
// refreshed by a Set-Cookie from the backend.
func (c *Client) Token() string {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name == CookieName {
			return ck.Value
		}
	}
	return ""
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, "get profile", http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the backend session for user.
func (c *Client) Logout(ctx context.Context, user User) error {
	body := logoutRequest{Username: user.Username, Name: user.Name}
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", body, nil)
}

// CheckRepo verifies the GitHub App is installed on owner/repo.
// Returns ErrAppNotInstalled on 401.
func (c *Client) CheckRepo(ctx context.Context, owner, repo string) error {
	err := c.do(ctx, "check repository", http.MethodGet, join("githubapp", "check-repo", owner, repo), nil, nil)
	if errors.Is(err, ErrAuthRequired) {
		return ErrAppNotInstalled
	}
	return err
}

// Issues returns the repository's issues.
func (c *Client) Issues(ctx context.Context, repo string) ([]Issue, error) {
	var issues []Issue
	if err := c.do(ctx, "get issues", http.MethodGet, join("user", "get-issues", repo), nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// Branches returns the repository's branches.
func (c *Client) Branches(ctx context.Context, repo string) ([]Branch, error) {
	var branches []Branch
	if err := c.do(ctx, "get branches", http.MethodGet, join("user", "get-branches", repo), nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// Files returns the blobs of the repository tree on branch. Trees and
// submodules are skipped.
//
// The branch is sent as one escaped path segment, so "feature/x" goes out as
// "feature%2Fx". The backend matches routes on the decoded path and answers
// 404 for branch names containing a slash.
func (c *Client) Files(ctx context.Context, branch, repo string) ([]RepoFile, error) {
	var tree treeResponse
	if err := c.do(ctx, "get files", http.MethodGet, join("user", "get-files", branch, repo), nil, &tree); err != nil {
		return nil, err
	}

	files := make([]RepoFile, 0, len(tree.Tree))
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		files = append(files, RepoFile{Path: entry.Path, Type: "file", Size: entry.Size})
	}
	return files, nil
}

// IndexRepository submits a job.
func (c *Client) IndexRepository(ctx context.Context, job JobRequest) (*JobResponse, error) {
	var resp JobResponse
	if err := c.do(ctx, "create job", http.MethodPost, "/job/index-repository", job, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InstalledRepos lists repositories the GitHub App can access for username.
func (c *Client) InstalledRepos(ctx context.Context, username string) ([]InstalledRepo, error) {
	var resp installedReposResponse
	if err := c.do(ctx, "get installed repositories", http.MethodGet, join("githubapp", "get-installed-repos", username), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Repositories, nil
}

// Repos lists the user's repositories.
func (c *Client) Repos(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	if err := c.do(ctx, "get repositories", http.MethodGet, "/user/repos", nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// InstallURL returns the GitHub App installation page for owner.
func (c *Client) InstallURL(ctx context.Context, owner string) (string, error) {
	var resp installResponse
	if err := c.do(ctx, "get install url", http.MethodGet, join("githubapp", "install", owner), nil, &resp); err != nil {
		return "", err
	}
	if resp.InstallURL == "" {
		return "", fmt.Errorf("get install url: empty response")
	}
	return resp.InstallURL, nil
}

// join builds an escaped path from segments.
func join(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (err error) {
	ctx, span := otel.Tracer("github.com/forklift-dev/forklift/internal/api").Start(ctx, op)
	span.SetAttributes(attribute.String("forklift.api.path", path))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("api %s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("api %s %s failed: %v", method, path, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Op: op, Code: resp.StatusCode, Detail: readDetail(resp.Body)}
		logger.Warn("api %s %s: %v", method, path, serr)
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

// readDetail extracts FastAPI's {"detail": "..."} error message.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok {
		return s
	}
	return ""
}
