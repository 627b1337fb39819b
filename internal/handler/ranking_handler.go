package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/service"
	"github.com/noah-isme/gema-progression/internal/utils"
)

// RankingHandler exposes global and per-subject leaderboards.
type RankingHandler struct {
	service service.RankingService
	logger  zerolog.Logger
}

// NewRankingHandler creates a new handler instance.
func NewRankingHandler(service service.RankingService, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register attaches the ranking routes.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/top", h.top)
	router.Get("/stats", h.stats)
	router.Get("/me", h.position)
	router.Get("/me/history", h.history)
}

func (h *RankingHandler) list(c *fiber.Ctx) error {
	var req dto.RankingRequest
	if err := c.QueryParser(&req); err != nil || req.Limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	ranking, err := h.service.GetRanking(requestContext(c), req.Scope, req.Limit)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load ranking")
	}

	return utils.OK(c, ranking.Entries, "ranking retrieved", fiber.Map{
		"scope":     ranking.Scope,
		"cache_hit": ranking.CacheHit,
	})
}

func (h *RankingHandler) top(c *fiber.Ctx) error {
	scope, err := parseQueryUint(c, "scope")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scope")
	}

	entries, err := h.service.GetTopPerformers(requestContext(c), scope)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load top performers")
	}

	return utils.SendSuccess(c, "top performers retrieved", entries)
}

func (h *RankingHandler) stats(c *fiber.Ctx) error {
	scope, err := parseQueryUint(c, "scope")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scope")
	}

	stats, err := h.service.GetRankingStats(requestContext(c), scope)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load ranking stats")
	}

	return utils.SendSuccess(c, "ranking stats retrieved", stats)
}

func (h *RankingHandler) position(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	scope, err := parseQueryUint(c, "scope")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scope")
	}

	position, err := h.service.GetStudentPosition(requestContext(c), studentID, scope)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load ranking position")
	}

	return utils.SendSuccess(c, "ranking position retrieved", position)
}

func (h *RankingHandler) history(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	scope, err := parseQueryUint(c, "scope")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid scope")
	}
	days, err := parseQueryInt(c, "days")
	if err != nil || days < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	points, err := h.service.GetRankHistory(requestContext(c), studentID, scope, days)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load rank history")
	}

	return utils.OK(c, points, "rank history retrieved", fiber.Map{"days": len(points)})
}
