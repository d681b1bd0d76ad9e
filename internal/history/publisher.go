// Package history provides HistorySink implementations. The sink is the
// engine's audit feed: every assignment mutation produces one entry, emitted
// after the mutation commits. A failing sink never rolls a mutation back.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/legalops/caseload/types"
)

// Publisher is a HistorySink that publishes entries to a NATS JetStream
// stream, one subject per case.
//
// Subjects follow "<prefix>.<caseID>" with subject-unsafe characters in the
// case ID replaced, so downstream consumers can subscribe to a single case's
// audit trail or to the whole feed.
type Publisher struct {
	js      jetstream.JetStream
	prefix  string
	timeout time.Duration
	logger  types.Logger
}

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	// Stream is the JetStream stream name. Defaults to "CASELOAD_HISTORY".
	Stream string

	// SubjectPrefix is the subject prefix for entries.
	// Defaults to "caseload.history".
	SubjectPrefix string

	// PublishTimeout bounds each publish call. Defaults to 2s.
	PublishTimeout time.Duration

	// MaxAge bounds stream retention. Zero keeps entries indefinitely.
	MaxAge time.Duration

	// Logger for publish failures. Optional.
	Logger types.Logger
}

func (c *PublisherConfig) setDefaults() {
	if c.Stream == "" {
		c.Stream = "CASELOAD_HISTORY"
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "caseload.history"
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 2 * time.Second
	}
}

// NewPublisher creates a Publisher and ensures its stream exists.
//
// Parameters:
//   - ctx: Context for stream creation
//   - js: JetStream context
//   - cfg: Publisher configuration (zero value usable)
//
// Returns:
//   - *Publisher: A ready sink
//   - error: Nil on success, error when the stream cannot be ensured
func NewPublisher(ctx context.Context, js jetstream.JetStream, cfg PublisherConfig) (*Publisher, error) {
	cfg.setDefaults()

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   cfg.MaxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure history stream %s: %w", cfg.Stream, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Publisher{
		js:      js,
		prefix:  cfg.SubjectPrefix,
		timeout: cfg.PublishTimeout,
		logger:  logger,
	}, nil
}

// Append publishes the entry to the case's subject.
func (p *Publisher) Append(ctx context.Context, entry types.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry %s: %w", entry.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	subject := p.prefix + "." + subjectToken(entry.CaseID)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish history entry %s to %s: %w", entry.ID, subject, err)
	}

	p.logger.Debug("history entry published", "subject", subject, "event", entry.Event, "case_id", entry.CaseID)
	return nil
}

// subjectToken makes an ID safe for use as a NATS subject token.
func subjectToken(id string) string {
	if id == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}
		return r
	}, id)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}
