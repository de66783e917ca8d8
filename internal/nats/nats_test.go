package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectForRepo(t *testing.T) {
	tests := []struct {
		repo string
		want string
	}{
		{"hello-world", "forklift.jobs.hello-world"},
		{"My.Repo", "forklift.jobs.my-repo"},
		{"a*b>c", "forklift.jobs.a-b-c"},
		{"", "forklift.jobs._"},
	}
	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectForRepo(tt.repo))
		})
	}
}

func TestEmbeddedServerLifecycle(t *testing.T) {
	ns, err := StartEmbedded(t.TempDir())
	require.NoError(t, err)

	nc, err := ConnectInProcess(ns)
	require.NoError(t, err)

	js, err := CreateJetStream(nc)
	require.NoError(t, err)

	stream, err := SetupStream(context.Background(), js)
	require.NoError(t, err)
	info, err := stream.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StreamName, info.Config.Name)
	assert.Equal(t, []string{"forklift.jobs.>"}, info.Config.Subjects)

	require.NoError(t, Shutdown(nc, ns))
}

func TestShutdownNil(t *testing.T) {
	require.NoError(t, Shutdown(nil, nil))
}
