package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/service"
	"github.com/noah-isme/gema-progression/internal/utils"
)

// SpecializationHandler exposes specialization choice, skill unlocks and bonus lookups.
type SpecializationHandler struct {
	service service.SpecializationService
	logger  zerolog.Logger
}

// NewSpecializationHandler creates a new handler instance.
func NewSpecializationHandler(service service.SpecializationService, logger zerolog.Logger) *SpecializationHandler {
	return &SpecializationHandler{
		service: service,
		logger:  logger.With().Str("component", "specialization_handler").Logger(),
	}
}

// Register attaches the specialization routes.
func (h *SpecializationHandler) Register(router fiber.Router) {
	router.Get("/specializations", h.list)
	router.Post("/specialization", h.choose)
	router.Get("/specialization", h.current)
	router.Get("/skills", h.skillTree)
	router.Get("/skills/unlocked", h.unlockedSkills)
	router.Post("/skills/:id/unlock", h.unlock)
	router.Get("/multiplier/:bonusType", h.multiplier)
}

func (h *SpecializationHandler) list(c *fiber.Ctx) error {
	specializations, err := h.service.ListSpecializations(requestContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to list specializations")
	}
	return utils.SendSuccess(c, "specializations retrieved", specializations)
}

func (h *SpecializationHandler) choose(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.ChooseSpecializationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request payload")
	}

	choice, err := h.service.ChooseSpecialization(requestContext(c), studentID, payload.Code)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to choose specialization")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "specialization chosen", choice)
}

func (h *SpecializationHandler) current(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	choice, err := h.service.GetSpecialization(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load specialization")
	}

	return utils.SendSuccess(c, "specialization retrieved", choice)
}

func (h *SpecializationHandler) skillTree(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	skills, err := h.service.ListSkillTree(requestContext(c), studentID, strings.TrimSpace(c.Query("specialization")))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load skill tree")
	}

	return utils.SendSuccess(c, "skill tree retrieved", skills)
}

func (h *SpecializationHandler) unlockedSkills(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	skills, err := h.service.GetStudentSkills(requestContext(c), studentID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load skills")
	}

	return utils.SendSuccess(c, "skills retrieved", skills)
}

func (h *SpecializationHandler) unlock(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	skillID, err := parseParamID(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid skill id")
	}

	result, err := h.service.UnlockSkill(requestContext(c), studentID, skillID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to unlock skill")
	}

	return utils.SendSuccess(c, result.Message, result)
}

func (h *SpecializationHandler) multiplier(c *fiber.Ctx) error {
	studentID, err := userIDFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	bonusType := strings.TrimSpace(c.Params("bonusType"))
	value, err := h.service.CalculateBonusMultiplier(requestContext(c), studentID, bonusType)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to calculate multiplier")
	}

	return utils.SendSuccess(c, "multiplier calculated", dto.MultiplierResponse{BonusType: bonusType, Multiplier: value})
}
