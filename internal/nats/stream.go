package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding journal entries.
	StreamName = "forklift_jobs"

	subjectPrefix = "forklift.jobs"
	retention     = 90 * 24 * time.Hour
)

// SubjectToken turns a repository name into a single subject token. Dots
// and wildcards are not allowed inside a token, so the name is slugged.
func SubjectToken(repo string) string {
	token := slug.Make(repo)
	if token == "" {
		return "_"
	}
	return token
}

// SubjectForRepo is the subject entries for repo are published on.
// Example: "forklift.jobs.hello-world"
func SubjectForRepo(repo string) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, SubjectToken(repo))
}

// SubjectAll matches entries of every repository.
func SubjectAll() string {
	return subjectPrefix + ".>"
}

// SetupStream creates or updates the journal stream with 90-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectAll()},
		Storage:  jetstream.FileStorage,
		MaxAge:   retention,
	})
}
