package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-results-api/internal/observability"
)

// Result lifecycle event types.
const (
	EventResultSubmitted   = "result.submitted"
	EventResultPublished   = "result.published"
	EventResultUnpublished = "result.unpublished"
)

// ResultEvent is broadcast after a result changes state.
type ResultEvent struct {
	Source        string     `json:"source"`
	Type          string     `json:"type"`
	ResultID      uint       `json:"result_id"`
	EnrollmentID  uint       `json:"enroll_id"`
	LetterGrade   string     `json:"letter_grade"`
	GradePoint    float64    `json:"grade_point"`
	IsPublished   bool       `json:"is_published"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	SentAt        time.Time  `json:"sent_at"`
}

// ResultEventPublisher hands result events to downstream consumers.
type ResultEventPublisher interface {
	Publish(ctx context.Context, event ResultEvent) error
}

type brokerEventPublisher struct {
	redis   *redis.Client
	channel string
	nats    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewResultEventPublisher publishes to a Redis channel and a NATS subject. Either
// client may be nil; with both nil Publish is a no-op.
func NewResultEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, subject string, logger zerolog.Logger) ResultEventPublisher {
	subject = strings.TrimSpace(subject)
	channel := ""
	if subject != "" {
		channel = strings.ReplaceAll(subject, ".", ":")
	}

	return &brokerEventPublisher{
		redis:   redisClient,
		channel: channel,
		nats:    natsConn,
		subject: subject,
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "result_events").Logger(),
		now:     time.Now,
	}
}

func (p *brokerEventPublisher) Publish(ctx context.Context, event ResultEvent) error {
	if p.subject == "" {
		return nil
	}

	event.Source = p.nodeID
	event.SentAt = p.now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.nats != nil {
		if err := p.nats.Publish(p.subject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	status := "ok"
	if len(errs) > 0 {
		status = "error"
	}
	observability.EventsPublished().WithLabelValues(event.Type, status).Inc()

	return errors.Join(errs...)
}

// emitEvent publishes and logs failures; delivery is best effort.
func emitEvent(ctx context.Context, publisher ResultEventPublisher, logger zerolog.Logger, event ResultEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Uint("result_id", event.ResultID).Msg("failed to publish result event")
	}
}
