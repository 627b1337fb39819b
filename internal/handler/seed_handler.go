package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/service"
	"github.com/noah-isme/gema-progression/internal/utils"
)

// SeedHandler exposes tooling endpoints for reseeding the reward catalog.
type SeedHandler struct {
	service service.CatalogService
	policy  config.Policy
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler bound to the loaded policy.
func NewSeedHandler(service service.CatalogService, policy config.Policy, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		policy:  policy,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router, guard fiber.Handler) {
	if guard == nil {
		guard = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/catalog/seed", guard, h.catalog)
}

func (h *SeedHandler) catalog(c *fiber.Ctx) error {
	summary, err := h.service.Seed(requestContext(c), h.policy)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("catalog seed failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
	}

	return utils.SendSuccess(c, "catalog seeded", summary)
}
