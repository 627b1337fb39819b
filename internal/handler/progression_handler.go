package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/service"
	"github.com/noah-isme/gema-progression/internal/utils"
)

// ProgressionHandler exposes a student's own points, belt and badges.
type ProgressionHandler struct {
	progression service.ProgressionService
	badges      service.BadgeService
	logger      zerolog.Logger
}

// NewProgressionHandler creates a new handler instance.
func NewProgressionHandler(progression service.ProgressionService, badges service.BadgeService, logger zerolog.Logger) *ProgressionHandler {
	return &ProgressionHandler{
		progression: progression,
		badges:      badges,
		logger:      logger.With().Str("component", "progression_handler").Logger(),
	}
}

// Register attaches the student progression routes.
func (h *ProgressionHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Get("/me/history", h.history)
	router.Get("/me/badges", h.myBadges)
	router.Get("/badges", h.badgeCatalog)
}

func (h *ProgressionHandler) me(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	progression, err := h.progression.GetProgression(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load progression")
	}

	return utils.SendSuccess(c, "progression retrieved", progression)
}

func (h *ProgressionHandler) history(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.progression.ListPointsHistory(requestContext(c), studentID, limit)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load points history")
	}

	return utils.OK(c, entries, "points history retrieved", fiber.Map{"count": len(entries)})
}

func (h *ProgressionHandler) myBadges(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	badges, err := h.badges.ListStudentBadges(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load badges")
	}

	return utils.SendSuccess(c, "badges retrieved", badges)
}

func (h *ProgressionHandler) badgeCatalog(c *fiber.Ctx) error {
	badges, err := h.badges.ListBadges(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load badge catalog")
	}

	return utils.SendSuccess(c, "badge catalog retrieved", badges)
}
