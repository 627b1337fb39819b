package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/gamification"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

// ProgressionService owns the points ledger, belts and streaks.
type ProgressionService interface {
	AwardPoints(ctx context.Context, req dto.AwardPointsRequest) (dto.AwardResult, error)
	TouchStreak(ctx context.Context, studentID uint) (dto.StreakResult, error)
	GetProgression(ctx context.Context, studentID uint) (dto.ProgressionResponse, error)
	ListPointsHistory(ctx context.Context, studentID uint, limit int) ([]dto.PointsHistoryResponse, error)
}

type progressionService struct {
	store     repository.Store
	notifier  NotificationService
	rankings  RankingInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	location  *time.Location
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewProgressionService constructs the ledger service. Streak days are
// calendar days in location. rankings may be nil when leaderboards are not
// cached.
func NewProgressionService(store repository.Store, notifier NotificationService, rankings RankingInvalidator, validate *validator.Validate, location *time.Location, logger zerolog.Logger) ProgressionService {
	if location == nil {
		location = time.UTC
	}

	return &progressionService{
		store:     store,
		notifier:  notifier,
		rankings:  rankings,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		location:  location,
		logger:    logger.With().Str("component", "progression_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-progression/internal/service/progression"),
		now:       time.Now,
	}
}

func (s *progressionService) AwardPoints(ctx context.Context, req dto.AwardPointsRequest) (dto.AwardResult, error) {
	req.ActivityType = strings.TrimSpace(req.ActivityType)
	if err := s.validator.Struct(req); err != nil {
		return dto.AwardResult{}, &DomainError{Op: "progression.AwardPoints", Kind: ErrInvalidInput, Message: "invalid points award", Err: err}
	}
	reason := strings.TrimSpace(s.sanitizer.Sanitize(req.Reason))

	attrs := []attribute.KeyValue{
		attribute.Int64("progression.student_id", int64(req.StudentID)),
		attribute.Int64("progression.points", req.Points),
		attribute.String("progression.activity_type", req.ActivityType),
	}
	spanCtx, span := s.tracer.Start(ctx, "progression.award_points", trace.WithAttributes(attrs...))
	defer span.End()

	var (
		result  dto.AwardResult
		emitted []models.GamificationNotification
	)
	err := runGuarded(spanCtx, s.store, "award_points", func(tx repository.Store) error {
		emitted = emitted[:0]

		progression, err := tx.Progression().LockOrCreate(spanCtx, req.StudentID)
		if err != nil {
			return fmt.Errorf("lock progression: %w", err)
		}

		entry := models.PointsHistoryEntry{
			StudentID:    req.StudentID,
			Points:       req.Points,
			Reason:       reason,
			ActivityType: req.ActivityType,
			CreatedAt:    s.now().UTC(),
		}
		if err := tx.Progression().AppendHistory(spanCtx, &entry); err != nil {
			return fmt.Errorf("append points history: %w", err)
		}

		oldBelt := storedBelt(progression)
		progression.TotalPoints += req.Points
		newBelt := gamification.BeltOf(progression.TotalPoints)
		progression.CurrentBelt = newBelt.String()
		progression.BeltLevel = newBelt.Level()
		if err := tx.Progression().Save(spanCtx, &progression); err != nil {
			return err
		}

		result = dto.AwardResult{
			StudentID:    req.StudentID,
			TotalPoints:  progression.TotalPoints,
			BeltUpgraded: newBelt.Level() > oldBelt.Level(),
			OldBelt:      oldBelt.String(),
			NewBelt:      newBelt.String(),
			BeltLevel:    newBelt.Level(),
		}
		if !result.BeltUpgraded {
			return nil
		}

		audit := models.BeltHistory{
			StudentID:       req.StudentID,
			PreviousBelt:    oldBelt.String(),
			NewBelt:         newBelt.String(),
			PreviousLevel:   oldBelt.Level(),
			NewLevel:        newBelt.Level(),
			PointsAtUpgrade: progression.TotalPoints,
		}
		if err := tx.Progression().RecordBeltChange(spanCtx, &audit); err != nil {
			return fmt.Errorf("record belt change: %w", err)
		}

		notification := beltUpgradeNotification(req.StudentID, oldBelt, newBelt, progression.TotalPoints)
		if s.notifier.Emit(spanCtx, tx, &notification) {
			emitted = append(emitted, notification)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Uint("student_id", req.StudentID).Msg("failed to award points")
		return dto.AwardResult{}, err
	}

	s.invalidateRankings(spanCtx)
	observability.PointsAwarded().WithLabelValues(req.ActivityType).Add(float64(req.Points))
	if result.BeltUpgraded {
		observability.BeltUpgrades().WithLabelValues(result.NewBelt).Inc()
		s.logger.Info().
			Uint("student_id", req.StudentID).
			Str("old_belt", result.OldBelt).
			Str("new_belt", result.NewBelt).
			Int64("total_points", result.TotalPoints).
			Msg("belt upgraded")
	}
	s.notifier.Publish(spanCtx, emitted)

	return result, nil
}

func (s *progressionService) TouchStreak(ctx context.Context, studentID uint) (dto.StreakResult, error) {
	if studentID == 0 {
		return dto.StreakResult{}, invalidInput("progression.TouchStreak", "student id is required")
	}

	spanCtx, span := s.tracer.Start(ctx, "progression.touch_streak", trace.WithAttributes(attribute.Int64("progression.student_id", int64(studentID))))
	defer span.End()

	var result dto.StreakResult
	err := runGuarded(spanCtx, s.store, "touch_streak", func(tx repository.Store) error {
		progression, err := tx.Progression().LockOrCreate(spanCtx, studentID)
		if err != nil {
			return fmt.Errorf("lock progression: %w", err)
		}

		now := s.now().UTC()
		step := gamification.AdvanceStreak(progression.StreakDays, progression.LastActivityDate, now, s.location)
		progression.StreakDays = step.Days
		if progression.LastActivityDate == nil || now.After(*progression.LastActivityDate) {
			progression.LastActivityDate = &now
		}
		if err := tx.Progression().Save(spanCtx, &progression); err != nil {
			return err
		}

		result = dto.StreakResult{
			StudentID:  studentID,
			StreakDays: step.Days,
			Changed:    step.Changed,
			Broken:     step.Broken,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.StreakResult{}, err
	}

	if result.Changed || result.Broken {
		s.invalidateRankings(spanCtx)
	}
	if result.Broken {
		s.logger.Debug().Uint("student_id", studentID).Msg("streak reset")
	}
	return result, nil
}

func (s *progressionService) invalidateRankings(ctx context.Context) {
	if s.rankings != nil {
		s.rankings.InvalidateRankings(ctx)
	}
}

func (s *progressionService) GetProgression(ctx context.Context, studentID uint) (dto.ProgressionResponse, error) {
	progression, err := s.store.Progression().GetByStudent(ctx, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.ProgressionResponse{}, ErrStudentNotFound
		}
		return dto.ProgressionResponse{}, err
	}

	response := dto.ProgressionResponse{
		StudentID:        progression.StudentID,
		TotalPoints:      progression.TotalPoints,
		CurrentBelt:      progression.CurrentBelt,
		BeltLevel:        progression.BeltLevel,
		StreakDays:       progression.StreakDays,
		LastActivityDate: progression.LastActivityDate,
		UpdatedAt:        progression.UpdatedAt,
	}
	if next, missing, ok := gamification.NextBelt(progression.TotalPoints); ok {
		response.NextBelt = next.String()
		response.PointsToNextBelt = missing
	}
	return response, nil
}

func (s *progressionService) ListPointsHistory(ctx context.Context, studentID uint, limit int) ([]dto.PointsHistoryResponse, error) {
	if studentID == 0 {
		return nil, invalidInput("progression.ListPointsHistory", "student id is required")
	}

	entries, err := s.store.Progression().ListHistory(ctx, studentID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewPointsHistoryResponseSlice(entries), nil
}

// storedBelt reads the persisted belt, falling back to the points when the
// column holds an unknown value.
func storedBelt(progression models.StudentProgression) gamification.Belt {
	belt, err := gamification.ParseBelt(progression.CurrentBelt)
	if err != nil {
		return gamification.BeltOf(progression.TotalPoints)
	}
	return belt
}

func beltUpgradeNotification(studentID uint, oldBelt, newBelt gamification.Belt, total int64) models.GamificationNotification {
	return models.GamificationNotification{
		StudentID: studentID,
		Type:      models.NotificationBeltUpgrade,
		Title:     "Belt upgraded",
		Message:   fmt.Sprintf("You reached the %s belt with %d points.", newBelt, total),
		Payload: datatypes.JSONMap{
			"old_belt":     oldBelt.String(),
			"new_belt":     newBelt.String(),
			"belt_level":   newBelt.Level(),
			"total_points": total,
		},
	}
}
