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

	"github.com/noah-isme/tempo-go-api/internal/models"
	"github.com/noah-isme/tempo-go-api/internal/observability"
)

const (
	// GradeEventCorrected is emitted when an assignment receives a final score.
	GradeEventCorrected = "assignment.corrected"
	// GradeEventTurnedIn is emitted when free-text work awaits manual review.
	GradeEventTurnedIn = "assignment.turned_in"
)

// GradeEvent describes an assignment state transition.
type GradeEvent struct {
	Source       string          `json:"source"`
	Type         string          `json:"type"`
	AssignmentID uint            `json:"assignment_id"`
	StudentID    uint            `json:"student_id"`
	ActivityID   uint            `json:"activity_id"`
	Modality     models.Modality `json:"modality"`
	Status       string          `json:"status"`
	Score        *int            `json:"score"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// GradeEventPublisher fans grade events out to downstream consumers.
type GradeEventPublisher interface {
	Publish(ctx context.Context, event GradeEvent) error
}

type gradeEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewGradeEventPublisher builds a publisher over Redis pub/sub and NATS. Either transport may be nil.
func NewGradeEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) GradeEventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = GradeEventChannel(channelBase)
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".grades"
	}

	return &gradeEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "grade_events").Logger(),
		now:          time.Now,
	}
}

// GradeEventChannel returns the Redis channel used for a channel base.
func GradeEventChannel(channelBase string) string {
	return channelBase + ":grades"
}

func (p *gradeEventPublisher) Publish(ctx context.Context, event GradeEvent) error {
	event.Source = p.nodeID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			errs = append(errs, err)
		} else {
			observability.GradeEventsPublished().WithLabelValues("redis").Inc()
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			errs = append(errs, err)
		} else {
			observability.GradeEventsPublished().WithLabelValues("nats").Inc()
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.logger.Debug().
		Str("type", event.Type).
		Uint("student_id", event.StudentID).
		Uint("activity_id", event.ActivityID).
		Msg("grade event published")
	return nil
}
