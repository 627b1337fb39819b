package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/service"
	"github.com/noah-isme/gema-progression/internal/utils"
)

// AdminProgressionHandler exposes the internal award endpoints used by other
// platform services and staff tooling.
type AdminProgressionHandler struct {
	progression     service.ProgressionService
	badges          service.BadgeService
	specializations service.SpecializationService
	logger          zerolog.Logger
}

// NewAdminProgressionHandler creates a new handler instance.
func NewAdminProgressionHandler(progression service.ProgressionService, badges service.BadgeService, specializations service.SpecializationService, logger zerolog.Logger) *AdminProgressionHandler {
	return &AdminProgressionHandler{
		progression:     progression,
		badges:          badges,
		specializations: specializations,
		logger:          logger.With().Str("component", "admin_progression_handler").Logger(),
	}
}

// Register attaches the award routes. guard runs before every route.
func (h *AdminProgressionHandler) Register(router fiber.Router, guard fiber.Handler) {
	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/points", guard, h.awardPoints)
	router.Post("/streak/:studentId", guard, h.touchStreak)
	router.Post("/badges", guard, h.awardBadge)
	router.Post("/specialization/:studentId/level", guard, h.levelUp)
}

func (h *AdminProgressionHandler) awardPoints(c *fiber.Ctx) error {
	var payload dto.AwardPointsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	result, err := h.progression.AwardPoints(requestContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to award points")
	}

	requestLogger(h.logger, c).Info().
		Uint("student_id", result.StudentID).
		Int64("points", payload.Points).
		Str("activity_type", payload.ActivityType).
		Bool("belt_upgraded", result.BeltUpgraded).
		Msg("points awarded")

	return utils.SendSuccess(c, "points awarded", result)
}

func (h *AdminProgressionHandler) touchStreak(c *fiber.Ctx) error {
	studentID, err := parseParamID(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	result, err := h.progression.TouchStreak(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to update streak")
	}

	return utils.SendSuccess(c, "streak updated", result)
}

func (h *AdminProgressionHandler) awardBadge(c *fiber.Ctx) error {
	var payload dto.AwardBadgeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	result, err := h.badges.AwardBadge(requestContext(c), payload)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to award badge")
	}

	if !result.Success {
		return utils.SendSuccess(c, result.Reason, result)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "badge awarded", result)
}

func (h *AdminProgressionHandler) levelUp(c *fiber.Ctx) error {
	studentID, err := parseParamID(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	result, err := h.specializations.UpdateSpecializationLevel(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to update specialization level")
	}

	return utils.SendSuccess(c, "specialization level checked", result)
}
