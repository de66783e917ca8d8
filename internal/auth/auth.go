// Package auth implements the session guard every command runs behind and
// the logout flow.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	"github.com/forklift-dev/forklift/internal/state"
)

// ErrNotSignedIn is returned by Logout when no complete user record is stored.
var ErrNotSignedIn = errors.New("not signed in")

// Backend is the subset of the API client the auth flows need.
type Backend interface {
	Me(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context, user api.User) error
}

// LoginRequiredError tells the user where to sign in.
type LoginRequiredError struct {
	LoginURL string
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("login required: open %s in a browser, then run `forklift login --token <auth_token>`", e.LoginURL)
}

func (e *LoginRequiredError) Unwrap() error {
	return api.ErrAuthRequired
}

// Guard confirms the backend session and records the user profile locally.
func Guard(ctx context.Context, b Backend, dataDir, loginURL string) (*api.User, error) {
	user, err := b.Me(ctx)
	if errors.Is(err, api.ErrAuthRequired) {
		logger.Info("Session rejected, login required")
		return nil, &LoginRequiredError{LoginURL: loginURL}
	}
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}

	if err := state.SaveUser(dataDir, *user); err != nil {
		// The session is valid; only the local cache failed.
		logger.Warn("Failed to persist user: %v", err)
	}
	logger.Debug("Session confirmed for %s", user.Username)
	return user, nil
}

// Logout ends the backend session for the stored user and removes the local
// record. The record is kept when the backend refuses.
func Logout(ctx context.Context, b Backend, dataDir string) error {
	st := state.Load(dataDir)
	if st.User == nil || st.User.Username == "" || st.User.Name == "" {
		return ErrNotSignedIn
	}

	if err := b.Logout(ctx, *st.User); err != nil {
		logger.Error("Logout failed: %v", err)
		return fmt.Errorf("logout failed: %w", err)
	}

	if err := state.Clear(dataDir); err != nil {
		return err
	}
	logger.Info("Logged out %s", st.User.Username)
	return nil
}
