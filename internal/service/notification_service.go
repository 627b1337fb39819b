package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

// NotificationService records gamification events for the delivery layer.
type NotificationService interface {
	// Emit stores the notification inside tx under a savepoint. A failed write
	// only rolls back the savepoint; it is logged and reported as false.
	Emit(ctx context.Context, tx repository.Store, notification *models.GamificationNotification) bool
	// Publish fans committed notifications out to Redis and NATS.
	Publish(ctx context.Context, notifications []models.GamificationNotification)
	List(ctx context.Context, studentID uint, req dto.NotificationListRequest) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, studentID uint) (dto.NotificationResponse, error)
	// Subscribe streams notifications published for one student. The returned
	// cleanup func must be called once the caller stops reading.
	Subscribe(ctx context.Context, studentID uint) (<-chan dto.NotificationResponse, func())
}

type notificationService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	store        repository.Store
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	nodeID       string
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs a notification service. Redis and NATS are optional.
func NewNotificationService(store repository.Store, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		store:        store,
		logger:       logger.With().Str("component", "notification_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/gema-progression/internal/service/notification"),
		sanitizer:    bluemonday.StrictPolicy(),
		nodeID:       uuid.NewString(),
	}
}

func (s *notificationService) Emit(ctx context.Context, tx repository.Store, notification *models.GamificationNotification) bool {
	notification.Title = strings.TrimSpace(s.sanitizer.Sanitize(notification.Title))
	notification.Message = strings.TrimSpace(s.sanitizer.Sanitize(notification.Message))

	err := tx.Transaction(ctx, func(savepoint repository.Store) error {
		return savepoint.Notifications().Create(ctx, notification)
	})
	if err != nil {
		observability.NotificationFailures().WithLabelValues(notification.Type, "store").Inc()
		s.logger.Warn().
			Err(err).
			Uint("student_id", notification.StudentID).
			Str("type", notification.Type).
			Msg("failed to store gamification notification")
		notification.ID = 0
		return false
	}

	observability.NotificationsEmitted().WithLabelValues(notification.Type).Inc()
	return true
}

func (s *notificationService) Publish(ctx context.Context, notifications []models.GamificationNotification) {
	for _, notification := range notifications {
		if err := s.publish(ctx, dto.NewNotificationResponse(notification)); err != nil {
			observability.NotificationFailures().WithLabelValues(notification.Type, "publish").Inc()
			s.logger.Warn().
				Err(err).
				Uint("student_id", notification.StudentID).
				Str("type", notification.Type).
				Msg("failed to publish notification to broker")
		}
	}
}

func (s *notificationService) publish(ctx context.Context, notification dto.NotificationResponse) error {
	if s.redis == nil && s.nats == nil {
		return nil
	}

	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, studentID uint, req dto.NotificationListRequest) ([]dto.NotificationResponse, error) {
	if studentID == 0 {
		return nil, invalidInput("notification.List", "student id is required")
	}

	notifications, err := s.store.Notifications().ListByStudent(ctx, studentID, req.UnreadOnly, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, studentID uint) (dto.NotificationResponse, error) {
	attrs := []attribute.KeyValue{
		attribute.Int64("notification.student_id", int64(studentID)),
		attribute.Int64("notification.id", int64(id)),
	}
	spanCtx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(attrs...))
	defer span.End()

	notification, err := s.store.Notifications().MarkRead(spanCtx, id, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) Subscribe(ctx context.Context, studentID uint) (<-chan dto.NotificationResponse, func()) {
	out := make(chan dto.NotificationResponse, 16)
	if s.redis == nil || s.redisChannel == "" {
		return out, func() {}
	}

	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to subscribe to notification channel")
		_ = pubsub.Close()
		return out, func() {}
	}

	done := make(chan struct{})
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event notificationEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Debug().Err(err).Msg("skipping malformed notification event")
				continue
			}
			if event.Notification.StudentID != studentID {
				continue
			}
			select {
			case out <- event.Notification:
			case <-done:
				return
			}
		}
	}()

	return out, cleanup
}
