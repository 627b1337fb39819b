package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/service"
	"github.com/noah-isme/gema-progression/internal/utils"
)

// ShopHandler exposes the cosmetic shop.
type ShopHandler struct {
	service         service.ShopService
	purchaseLimiter fiber.Handler
	logger          zerolog.Logger
}

// NewShopHandler creates a new handler instance. purchaseLimiter may be nil.
func NewShopHandler(service service.ShopService, purchaseLimiter fiber.Handler, logger zerolog.Logger) *ShopHandler {
	if purchaseLimiter == nil {
		purchaseLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &ShopHandler{
		service:         service,
		purchaseLimiter: purchaseLimiter,
		logger:          logger.With().Str("component", "shop_handler").Logger(),
	}
}

// Register attaches the shop routes.
func (h *ShopHandler) Register(router fiber.Router) {
	router.Get("/items", h.catalog)
	router.Post("/items/:id/purchase", h.purchaseLimiter, h.purchase)
	router.Post("/items/:id/equip", h.equip)
	router.Delete("/slots/:slot", h.unequip)
	router.Get("/owned", h.owned)
	router.Get("/equipped", h.equipped)
}

func (h *ShopHandler) catalog(c *fiber.Ctx) error {
	var req dto.ShopCatalogRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	switch normalizeRole(c.Locals("user_role")) {
	case "admin", "teacher", "system":
	default:
		req.IncludeInactive = false
	}

	items, err := h.service.ListCatalog(requestContext(c), req)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load shop catalog")
	}

	return utils.OK(c, items, "shop catalog retrieved", fiber.Map{"count": len(items)})
}

func (h *ShopHandler) purchase(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	itemID, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid item id")
	}

	result, err := h.service.Purchase(requestContext(c), studentID, itemID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to purchase item")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "item purchased", result)
}

func (h *ShopHandler) equip(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	itemID, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid item id")
	}

	equipped, err := h.service.Equip(requestContext(c), studentID, itemID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to equip item")
	}

	return utils.SendSuccess(c, "item equipped", equipped)
}

func (h *ShopHandler) unequip(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	slot := strings.ToLower(strings.TrimSpace(c.Params("slot")))
	removed, err := h.service.Unequip(requestContext(c), studentID, slot)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to clear slot")
	}

	return utils.SendSuccess(c, "slot cleared", fiber.Map{"slot": slot, "removed": removed})
}

func (h *ShopHandler) owned(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	items, err := h.service.GetOwnedItems(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load owned items")
	}

	return utils.SendSuccess(c, "owned items retrieved", items)
}

func (h *ShopHandler) equipped(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	items, err := h.service.GetEquippedItems(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load equipped items")
	}

	return utils.SendSuccess(c, "equipped items retrieved", items)
}
