package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

const reasonAlreadyAwarded = "already awarded"

// BadgeService records at-most-once badge awards. Criteria are evaluated by
// the caller.
type BadgeService interface {
	AwardBadge(ctx context.Context, req dto.AwardBadgeRequest) (dto.BadgeAwardResult, error)
	ListBadges(ctx context.Context) ([]dto.BadgeResponse, error)
	ListStudentBadges(ctx context.Context, studentID uint) ([]dto.StudentBadgeResponse, error)
}

type badgeService struct {
	store     repository.Store
	notifier  NotificationService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewBadgeService constructs a badge service.
func NewBadgeService(store repository.Store, notifier NotificationService, validate *validator.Validate, logger zerolog.Logger) BadgeService {
	return &badgeService{
		store:     store,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "badge_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-progression/internal/service/badge"),
	}
}

func (s *badgeService) AwardBadge(ctx context.Context, req dto.AwardBadgeRequest) (dto.BadgeAwardResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BadgeAwardResult{}, &DomainError{Op: "badge.Award", Kind: ErrInvalidInput, Message: "invalid badge award", Err: err}
	}
	code := normalizeCode(req.BadgeCode)

	attrs := []attribute.KeyValue{
		attribute.Int64("badge.student_id", int64(req.StudentID)),
		attribute.String("badge.code", code),
	}
	spanCtx, span := s.tracer.Start(ctx, "badges.award", trace.WithAttributes(attrs...))
	defer span.End()

	var (
		result  dto.BadgeAwardResult
		emitted []models.GamificationNotification
	)
	err := s.store.Transaction(spanCtx, func(tx repository.Store) error {
		emitted = emitted[:0]

		badge, err := tx.Badges().GetByCode(spanCtx, code)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrBadgeNotFound
			}
			return fmt.Errorf("load badge: %w", err)
		}
		result.Badge = dto.NewBadgeResponse(badge)

		award := models.StudentBadge{StudentID: req.StudentID, BadgeCode: badge.Code, AwardedAt: time.Now().UTC()}
		// The insert runs under a savepoint so a duplicate does not abort the
		// surrounding transaction on Postgres.
		err = tx.Transaction(spanCtx, func(sp repository.Store) error {
			return sp.Badges().Award(spanCtx, &award)
		})
		if repository.IsDuplicate(err) {
			result.Success = false
			result.Reason = reasonAlreadyAwarded
			return nil
		}
		if err != nil {
			return fmt.Errorf("award badge: %w", err)
		}
		result.Success = true
		result.Reason = ""

		notification := models.GamificationNotification{
			StudentID: req.StudentID,
			Type:      models.NotificationBadgeUnlocked,
			Title:     "Badge unlocked",
			Message:   fmt.Sprintf("You earned the %s badge.", badge.Name),
			Payload: datatypes.JSONMap{
				"badge_code": badge.Code,
				"badge_name": badge.Name,
				"icon":       badge.Icon,
			},
		}
		if s.notifier.Emit(spanCtx, tx, &notification) {
			emitted = append(emitted, notification)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.BadgeAwardResult{}, err
	}

	outcome := "awarded"
	if !result.Success {
		outcome = "duplicate"
	}
	observability.BadgesAwarded().WithLabelValues(code, outcome).Inc()
	s.logger.Info().Uint("student_id", req.StudentID).Str("badge", code).Str("outcome", outcome).Msg("badge award processed")
	s.notifier.Publish(spanCtx, emitted)

	return result, nil
}

func (s *badgeService) ListBadges(ctx context.Context) ([]dto.BadgeResponse, error) {
	badges, err := s.store.Badges().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.BadgeResponse, 0, len(badges))
	for _, badge := range badges {
		out = append(out, dto.NewBadgeResponse(badge))
	}
	return out, nil
}

func (s *badgeService) ListStudentBadges(ctx context.Context, studentID uint) ([]dto.StudentBadgeResponse, error) {
	if studentID == 0 {
		return nil, invalidInput("badge.ListStudentBadges", "student id is required")
	}

	awards, err := s.store.Badges().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentBadgeResponseSlice(awards), nil
}

// normalizeCode maps free-form catalog codes onto their stored form.
func normalizeCode(code string) string {
	return slug.Make(code)
}
