package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/gamification"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/observability"
	"github.com/noah-isme/gema-progression/internal/repository"
)

const messageAlreadyUnlocked = "already unlocked"

// SpecializationService manages the one-time specialization choice, the skill
// tree and the bonuses derived from it.
type SpecializationService interface {
	ListSpecializations(ctx context.Context) ([]dto.SpecializationResponse, error)
	ChooseSpecialization(ctx context.Context, studentID uint, code string) (dto.StudentSpecializationResponse, error)
	UnlockSkill(ctx context.Context, studentID, skillID uint) (dto.SkillUnlockResult, error)
	CalculateBonusMultiplier(ctx context.Context, studentID uint, bonusType string) (float64, error)
	UpdateSpecializationLevel(ctx context.Context, studentID uint) (dto.LevelUpResult, error)
	GetSpecialization(ctx context.Context, studentID uint) (dto.StudentSpecializationResponse, error)
	GetStudentSkills(ctx context.Context, studentID uint) ([]dto.SkillResponse, error)
	ListSkillTree(ctx context.Context, studentID uint, code string) ([]dto.SkillResponse, error)
}

type specializationService struct {
	store    repository.Store
	notifier NotificationService
	policy   config.Policy
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewSpecializationService constructs a specialization service. Level
// thresholds and tier gating come from policy.
func NewSpecializationService(store repository.Store, notifier NotificationService, policy config.Policy, logger zerolog.Logger) SpecializationService {
	return &specializationService{
		store:    store,
		notifier: notifier,
		policy:   policy,
		logger:   logger.With().Str("component", "specialization_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/gema-progression/internal/service/specialization"),
	}
}

// ListSpecializations returns the catalog in code order with the size of each
// skill tree.
func (s *specializationService) ListSpecializations(ctx context.Context) ([]dto.SpecializationResponse, error) {
	specializations, err := s.store.Specializations().ListSpecializations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SpecializationResponse, 0, len(specializations))
	for _, specialization := range specializations {
		skills, err := s.store.Specializations().ListSkills(ctx, specialization.Code)
		if err != nil {
			return nil, fmt.Errorf("list skills of %s: %w", specialization.Code, err)
		}
		out = append(out, dto.SpecializationResponse{
			Code:        specialization.Code,
			Name:        specialization.Name,
			Description: specialization.Description,
			Skills:      len(skills),
		})
	}
	return out, nil
}

func (s *specializationService) ChooseSpecialization(ctx context.Context, studentID uint, code string) (dto.StudentSpecializationResponse, error) {
	code = normalizeCode(code)
	if studentID == 0 || code == "" {
		return dto.StudentSpecializationResponse{}, invalidInput("specialization.Choose", "student id and specialization code are required")
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("specialization.student_id", int64(studentID)),
		attribute.String("specialization.code", code),
	}
	spanCtx, span := s.tracer.Start(ctx, "specializations.choose", trace.WithAttributes(attrs...))
	defer span.End()

	var choice models.StudentSpecialization
	err := s.store.Transaction(spanCtx, func(tx repository.Store) error {
		if _, err := tx.Specializations().GetSpecialization(spanCtx, code); err != nil {
			if repository.IsNotFound(err) {
				return ErrSpecializationNotFound
			}
			return fmt.Errorf("load specialization: %w", err)
		}

		if _, err := tx.Specializations().GetStudentSpecialization(spanCtx, studentID); err == nil {
			return ErrAlreadyChosen
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("load student specialization: %w", err)
		}

		choice = models.StudentSpecialization{StudentID: studentID, SpecializationCode: code, Level: 1}
		if err := tx.Specializations().CreateStudentSpecialization(spanCtx, &choice); err != nil {
			if repository.IsDuplicate(err) {
				return ErrAlreadyChosen
			}
			return fmt.Errorf("create student specialization: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.StudentSpecializationResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Str("specialization", code).Msg("specialization chosen")
	return dto.NewStudentSpecializationResponse(choice), nil
}

func (s *specializationService) UnlockSkill(ctx context.Context, studentID, skillID uint) (dto.SkillUnlockResult, error) {
	if studentID == 0 || skillID == 0 {
		return dto.SkillUnlockResult{}, invalidInput("skill.Unlock", "student id and skill id are required")
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("skill.student_id", int64(studentID)),
		attribute.Int64("skill.id", int64(skillID)),
	}
	spanCtx, span := s.tracer.Start(ctx, "skills.unlock", trace.WithAttributes(attrs...))
	defer span.End()

	var (
		result  dto.SkillUnlockResult
		emitted []models.GamificationNotification
	)
	err := s.store.Transaction(spanCtx, func(tx repository.Store) error {
		emitted = emitted[:0]

		skill, err := tx.Specializations().GetSkill(spanCtx, skillID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrSkillNotFound
			}
			return fmt.Errorf("load skill: %w", err)
		}
		result.Skill = dto.NewSkillResponse(skill)

		choice, err := tx.Specializations().GetStudentSpecialization(spanCtx, studentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNoSpecialization
			}
			return fmt.Errorf("load student specialization: %w", err)
		}
		if choice.SpecializationCode != skill.SpecializationCode {
			return ErrNoSpecialization
		}

		owned, err := tx.Specializations().HasSkill(spanCtx, studentID, skill.ID)
		if err != nil {
			return fmt.Errorf("check skill: %w", err)
		}
		if owned {
			result.Success = false
			result.Message = messageAlreadyUnlocked
			result.Skill.Unlocked = true
			return nil
		}

		if skill.PrerequisiteSkillID != nil {
			ready, err := tx.Specializations().HasSkill(spanCtx, studentID, *skill.PrerequisiteSkillID)
			if err != nil {
				return fmt.Errorf("check prerequisite: %w", err)
			}
			if !ready {
				return ErrPrerequisiteMissing
			}
		}

		if s.policy.TierLevelGate && skill.Tier > choice.Level {
			return ErrSkillTierLocked
		}

		unlock := models.StudentSkill{StudentID: studentID, SkillID: skill.ID, UnlockedAt: time.Now().UTC()}
		err = tx.Transaction(spanCtx, func(sp repository.Store) error {
			return sp.Specializations().UnlockSkill(spanCtx, &unlock)
		})
		if repository.IsDuplicate(err) {
			result.Success = false
			result.Message = messageAlreadyUnlocked
			result.Skill.Unlocked = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("unlock skill: %w", err)
		}

		result.Success = true
		result.Message = fmt.Sprintf("%s unlocked", skill.Name)
		result.Skill.Unlocked = true

		notification := models.GamificationNotification{
			StudentID: studentID,
			Type:      models.NotificationSkillUnlocked,
			Title:     "Skill unlocked",
			Message:   fmt.Sprintf("You unlocked %s.", skill.Name),
			Payload: datatypes.JSONMap{
				"skill_id":       skill.ID,
				"skill_code":     skill.Code,
				"specialization": skill.SpecializationCode,
				"tier":           skill.Tier,
			},
		}
		if s.notifier.Emit(spanCtx, tx, &notification) {
			emitted = append(emitted, notification)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.SkillUnlockResult{}, err
	}

	if result.Success {
		observability.SkillsUnlocked().WithLabelValues(result.Skill.SpecializationCode).Inc()
	}
	s.notifier.Publish(spanCtx, emitted)
	return result, nil
}

func (s *specializationService) CalculateBonusMultiplier(ctx context.Context, studentID uint, bonusType string) (float64, error) {
	if studentID == 0 || bonusType == "" {
		return gamification.NeutralMultiplier, invalidInput("skill.Multiplier", "student id and bonus type are required")
	}

	values, err := s.store.Specializations().BonusValues(ctx, studentID, bonusType)
	if err != nil {
		return gamification.NeutralMultiplier, err
	}
	return gamification.ComposeMultiplier(values), nil
}

func (s *specializationService) UpdateSpecializationLevel(ctx context.Context, studentID uint) (dto.LevelUpResult, error) {
	if studentID == 0 {
		return dto.LevelUpResult{}, invalidInput("specialization.UpdateLevel", "student id is required")
	}

	spanCtx, span := s.tracer.Start(ctx, "specializations.update_level", trace.WithAttributes(attribute.Int64("specialization.student_id", int64(studentID))))
	defer span.End()

	var (
		result  dto.LevelUpResult
		emitted []models.GamificationNotification
	)
	err := runGuarded(spanCtx, s.store, "update_specialization_level", func(tx repository.Store) error {
		emitted = emitted[:0]

		choice, err := tx.Specializations().GetStudentSpecialization(spanCtx, studentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNoSpecialization
			}
			return fmt.Errorf("load student specialization: %w", err)
		}
		result = dto.LevelUpResult{Level: choice.Level, HonorificTitle: choice.HonorificTitle}

		var points int64
		progression, err := tx.Progression().GetByStudent(spanCtx, studentID)
		switch {
		case err == nil:
			points = progression.TotalPoints
		case !repository.IsNotFound(err):
			return fmt.Errorf("load progression: %w", err)
		}

		skills, err := tx.Specializations().CountStudentSkills(spanCtx, studentID)
		if err != nil {
			return fmt.Errorf("count skills: %w", err)
		}

		threshold, ok := gamification.NextLevel(choice.Level, points, int(skills), s.policy.SpecializationLevels)
		if !ok {
			return nil
		}
		title := choice.HonorificTitle
		if threshold.Title != "" {
			title = threshold.Title
		}
		if err := tx.Specializations().UpdateStudentLevel(spanCtx, studentID, choice.Level, threshold.Level, title); err != nil {
			return err
		}
		result = dto.LevelUpResult{LevelUp: true, Level: threshold.Level, HonorificTitle: title}

		notification := models.GamificationNotification{
			StudentID: studentID,
			Type:      models.NotificationSpecializationLevelUp,
			Title:     "Specialization level up",
			Message:   fmt.Sprintf("You reached level %d: %s.", threshold.Level, title),
			Payload: datatypes.JSONMap{
				"specialization":  choice.SpecializationCode,
				"level":           threshold.Level,
				"honorific_title": title,
			},
		}
		if s.notifier.Emit(spanCtx, tx, &notification) {
			emitted = append(emitted, notification)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.LevelUpResult{}, err
	}

	if result.LevelUp {
		s.logger.Info().Uint("student_id", studentID).Int("level", result.Level).Msg("specialization level up")
	}
	s.notifier.Publish(spanCtx, emitted)
	return result, nil
}

func (s *specializationService) GetSpecialization(ctx context.Context, studentID uint) (dto.StudentSpecializationResponse, error) {
	choice, err := s.store.Specializations().GetStudentSpecialization(ctx, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.StudentSpecializationResponse{}, ErrNoSpecialization
		}
		return dto.StudentSpecializationResponse{}, err
	}
	return dto.NewStudentSpecializationResponse(choice), nil
}

func (s *specializationService) GetStudentSkills(ctx context.Context, studentID uint) ([]dto.SkillResponse, error) {
	unlocks, err := s.store.Specializations().ListStudentSkills(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SkillResponse, 0, len(unlocks))
	for _, unlock := range unlocks {
		skill := dto.NewSkillResponse(unlock.Skill)
		skill.Unlocked = true
		out = append(out, skill)
	}
	return out, nil
}

// ListSkillTree returns the skills of a specialization marked with the
// student's unlocks. An empty code means the student's own specialization.
func (s *specializationService) ListSkillTree(ctx context.Context, studentID uint, code string) ([]dto.SkillResponse, error) {
	code = normalizeCode(code)
	if code == "" {
		choice, err := s.store.Specializations().GetStudentSpecialization(ctx, studentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrNoSpecialization
			}
			return nil, err
		}
		code = choice.SpecializationCode
	}

	if _, err := s.store.Specializations().GetSpecialization(ctx, code); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSpecializationNotFound
		}
		return nil, err
	}

	skills, err := s.store.Specializations().ListSkills(ctx, code)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.store.Specializations().ListStudentSkills(ctx, studentID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[uint]struct{}, len(unlocks))
	for _, unlock := range unlocks {
		unlocked[unlock.SkillID] = struct{}{}
	}

	out := make([]dto.SkillResponse, 0, len(skills))
	for _, skill := range skills {
		response := dto.NewSkillResponse(skill)
		_, response.Unlocked = unlocked[skill.ID]
		out = append(out, response)
	}
	return out, nil
}
