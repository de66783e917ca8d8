// Package journal keeps a local, append-only record of job submissions in
// an embedded JetStream stream. Submissions are optimistic: the wizard
// leaves even when the backend rejects a job, so the journal is where a
// failed attempt can still be found.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
	fnats "github.com/forklift-dev/forklift/internal/nats"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Status of a recorded submission.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// Entry is one submission attempt.
type Entry struct {
	ID             string    `json:"id"` // Stream sequence
	Timestamp      time.Time `json:"timestamp"`
	RepoName       string    `json:"repo_name"`
	Branch         string    `json:"branch"`
	IssueTitle     string    `json:"issue_title"`
	ManualIssue    bool      `json:"manual_issue,omitempty"`
	Files          []string  `json:"files"`
	Commands       int       `json:"commands"`
	Status         Status    `json:"status"`
	Error          string    `json:"error,omitempty"`
	FilesProcessed int       `json:"files_processed,omitempty"`
	ChunksCreated  int       `json:"chunks_created,omitempty"`
}

// NewEntry describes the outcome of submitting req.
func NewEntry(req api.JobRequest, resp *api.JobResponse, err error) Entry {
	e := Entry{
		RepoName: req.RepoName,
		Branch:   req.Branch,
		Files:    slices.Clone(req.Files),
		Commands: len(req.Commands),
		Status:   StatusSubmitted,
	}
	if req.Issue != nil {
		e.IssueTitle = req.Issue.Title
		e.ManualIssue = req.Issue.Manual
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	if resp != nil {
		e.FilesProcessed = resp.FilesProcessed
		e.ChunksCreated = resp.ChunksCreated
	}
	return e
}

// Journal is an open journal. Close it to stop the embedded server.
type Journal struct {
	ns     *server.Server
	nc     *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
}

// Open starts the embedded server under dataDir/journal and ensures the
// stream exists.
func Open(ctx context.Context, dataDir string) (*Journal, error) {
	ns, err := fnats.StartEmbedded(filepath.Join(dataDir, "journal"))
	if err != nil {
		return nil, fmt.Errorf("starting journal server: %w", err)
	}

	nc, err := fnats.ConnectInProcess(ns)
	if err != nil {
		_ = fnats.Shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to journal: %w", err)
	}

	j := &Journal{ns: ns, nc: nc}
	if j.js, err = fnats.CreateJetStream(nc); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	if j.stream, err = fnats.SetupStream(ctx, j.js); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("setting up journal stream: %w", err)
	}
	return j, nil
}

// Close shuts the embedded server down.
func (j *Journal) Close() error {
	return fnats.Shutdown(j.nc, j.ns)
}

// Record appends e. A zero Timestamp is set to now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.RepoName == "" {
		return errors.New("journal entry needs a repository name")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling journal entry: %w", err)
	}

	subject := fnats.SubjectForRepo(e.RepoName)
	ack, err := j.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish journal entry to %s: %v", subject, err)
		return fmt.Errorf("recording journal entry: %w", err)
	}
	logger.Debug("Journal entry recorded: repo=%s status=%s seq=%d", e.RepoName, e.Status, ack.Sequence)
	return nil
}

// List returns entries newest first. An empty repo lists every repository;
// limit <= 0 returns all.
func (j *Journal) List(ctx context.Context, repo string, limit int) ([]Entry, error) {
	filter := fnats.SubjectAll()
	if repo != "" {
		filter = fnats.SubjectForRepo(repo)
	}

	consumer, err := j.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: filter,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating journal consumer: %w", err)
	}

	const batchSize = 500
	var entries []Entry
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var e Entry
			if err := json.Unmarshal(msg.Data(), &e); err != nil {
				logger.Warn("Skipping malformed journal entry on %s: %v", msg.Subject(), err)
				_ = msg.Ack()
				continue
			}
			if meta, err := msg.Metadata(); err == nil {
				e.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
			}
			entries = append(entries, e)
			_ = msg.Ack()
		}
		if err := msgs.Error(); err != nil {
			logger.Debug("Journal fetch ended: %v", err)
			break
		}
		if count < batchSize {
			break
		}
	}

	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
