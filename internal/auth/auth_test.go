package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	user      *api.User
	meErr     error
	logoutErr error
	loggedOut []api.User
}

func (f *fakeBackend) Me(context.Context) (*api.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func (f *fakeBackend) Logout(_ context.Context, u api.User) error {
	f.loggedOut = append(f.loggedOut, u)
	return f.logoutErr
}

func TestGuard_PersistsUser(t *testing.T) {
	dir := t.TempDir()
	b := &fakeBackend{user: &api.User{Username: "octo", Name: "Octo Cat"}}

	user, err := Guard(context.Background(), b, dir, "http://api/auth/login")
	require.NoError(t, err)
	assert.Equal(t, "octo", user.Username)

	st := state.Load(dir)
	require.True(t, st.SignedIn())
	assert.Equal(t, "Octo Cat", st.User.Name)
}

func TestGuard_Unauthorized(t *testing.T) {
	b := &fakeBackend{meErr: api.ErrAuthRequired}

	_, err := Guard(context.Background(), b, t.TempDir(), "http://api/auth/login")

	var lre *LoginRequiredError
	require.ErrorAs(t, err, &lre)
	assert.Equal(t, "http://api/auth/login", lre.LoginURL)
	assert.ErrorIs(t, err, api.ErrAuthRequired)
	assert.Contains(t, err.Error(), "http://api/auth/login")
}

func TestGuard_NetworkError(t *testing.T) {
	b := &fakeBackend{meErr: errors.New("connection refused")}

	_, err := Guard(context.Background(), b, t.TempDir(), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, api.ErrAuthRequired)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLogout(t *testing.T) {
	t.Run("clears record on success", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, state.SaveUser(dir, api.User{Username: "octo", Name: "Octo"}))
		b := &fakeBackend{}

		require.NoError(t, Logout(context.Background(), b, dir))
		assert.Equal(t, []api.User{{Username: "octo", Name: "Octo"}}, b.loggedOut)
		assert.False(t, state.Load(dir).SignedIn())
	})

	t.Run("keeps record when backend refuses", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, state.SaveUser(dir, api.User{Username: "octo", Name: "Octo"}))
		b := &fakeBackend{logoutErr: &api.StatusError{Op: "logout", Code: 500}}

		require.Error(t, Logout(context.Background(), b, dir))
		assert.True(t, state.Load(dir).SignedIn())
	})

	t.Run("requires username and name", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, state.SaveUser(dir, api.User{Username: "octo"}))
		b := &fakeBackend{}

		require.ErrorIs(t, Logout(context.Background(), b, dir), ErrNotSignedIn)
		assert.Empty(t, b.loggedOut)
	})
}
