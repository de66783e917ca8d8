package testfixtures

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/forklift-dev/forklift/internal/api"
	"github.com/stretchr/testify/require"
)

func TestMockBackend_ServesFixtures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMockBackend()

	require.NoError(t, backend.CheckRepo(ctx, FixedOwner, FixedRepo))

	issues, err := backend.Issues(ctx, FixedRepo)
	require.NoError(t, err)
	require.Equal(t, Issues(), issues)

	files, err := backend.Files(ctx, "feature/auth", FixedRepo)
	require.NoError(t, err)
	require.Len(t, files, 2)

	files, err = backend.Files(ctx, "missing", FixedRepo)
	require.NoError(t, err)
	require.Empty(t, files)

	require.Equal(t, 1, backend.Calls("check"))
	require.Equal(t, 1, backend.Calls("issues"))
	require.Equal(t, 2, backend.Calls("files"))
}

func TestMockBackend_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMockBackend()
	backend.CheckErr = api.ErrAppNotInstalled
	backend.SubmitErr = errors.New("boom")

	require.ErrorIs(t, backend.CheckRepo(ctx, FixedOwner, FixedRepo), api.ErrAppNotInstalled)

	resp, err := backend.IndexRepository(ctx, api.JobRequest{RepoName: FixedRepo})
	require.Error(t, err)
	require.Nil(t, resp)
	require.Len(t, backend.Submitted(), 1)
}

func TestMockBackend_ThreadSafety(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := NewMockBackend()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = backend.Branches(ctx, FixedRepo)
			_, _ = backend.IndexRepository(ctx, api.JobRequest{RepoName: FixedRepo})
		}()
	}
	wg.Wait()

	require.Equal(t, 20, backend.Calls("branches"))
	require.Len(t, backend.Submitted(), 20)
}

func TestKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "enter", Key("enter").String())
	require.Equal(t, "shift+tab", Key("shift+tab").String())
	require.Equal(t, "ctrl+s", Key("ctrl+s").String())
	require.Equal(t, "x", Key("x").String())
	require.Equal(t, tea.KeyDown, Key("down").Code)

	keys := Type("ab")
	require.Len(t, keys, 2)
	require.Equal(t, "b", keys[1].String())
}
