package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/service"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Details []string               `json:"details"`
}

func authAs(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

type stubProgressionService struct {
	service.ProgressionService
	progression dto.ProgressionResponse
	history     []dto.PointsHistoryResponse
	award       dto.AwardResult
	streak      dto.StreakResult
	err         error
	lastStudent uint
	lastLimit   int
	lastAward   dto.AwardPointsRequest
}

func (s *stubProgressionService) AwardPoints(_ context.Context, req dto.AwardPointsRequest) (dto.AwardResult, error) {
	s.lastAward = req
	if err := validator.New().Struct(req); err != nil {
		return dto.AwardResult{}, &service.DomainError{Op: "progression.AwardPoints", Kind: service.ErrInvalidInput, Message: "invalid points award", Err: err}
	}
	return s.award, s.err
}

func (s *stubProgressionService) TouchStreak(_ context.Context, studentID uint) (dto.StreakResult, error) {
	s.lastStudent = studentID
	return s.streak, s.err
}

func (s *stubProgressionService) GetProgression(_ context.Context, studentID uint) (dto.ProgressionResponse, error) {
	s.lastStudent = studentID
	return s.progression, s.err
}

func (s *stubProgressionService) ListPointsHistory(_ context.Context, studentID uint, limit int) ([]dto.PointsHistoryResponse, error) {
	s.lastStudent = studentID
	s.lastLimit = limit
	return s.history, s.err
}

type stubBadgeService struct {
	service.BadgeService
	result dto.BadgeAwardResult
	badges []dto.StudentBadgeResponse
	err    error
}

func (s *stubBadgeService) AwardBadge(_ context.Context, _ dto.AwardBadgeRequest) (dto.BadgeAwardResult, error) {
	return s.result, s.err
}

func (s *stubBadgeService) ListBadges(context.Context) ([]dto.BadgeResponse, error) {
	return []dto.BadgeResponse{}, s.err
}

func (s *stubBadgeService) ListStudentBadges(context.Context, uint) ([]dto.StudentBadgeResponse, error) {
	return s.badges, s.err
}

type stubShopService struct {
	service.ShopService
	purchase     dto.PurchaseResult
	err          error
	lastItem     uint
	lastStudent  uint
	lastSlot     string
	lastCatalog  dto.ShopCatalogRequest
	catalogItems []dto.ShopItemResponse
}

func (s *stubShopService) Purchase(_ context.Context, studentID, itemID uint) (dto.PurchaseResult, error) {
	s.lastStudent = studentID
	s.lastItem = itemID
	return s.purchase, s.err
}

func (s *stubShopService) Unequip(_ context.Context, studentID uint, slot string) (bool, error) {
	s.lastStudent = studentID
	s.lastSlot = slot
	return s.err == nil, s.err
}

func (s *stubShopService) ListCatalog(_ context.Context, req dto.ShopCatalogRequest) ([]dto.ShopItemResponse, error) {
	s.lastCatalog = req
	return s.catalogItems, s.err
}

type stubRankingService struct {
	service.RankingService
	ranking   dto.RankingResponse
	position  dto.StudentPosition
	err       error
	lastScope uint
	lastLimit int
}

func (s *stubRankingService) GetRanking(_ context.Context, scope uint, limit int) (dto.RankingResponse, error) {
	s.lastScope = scope
	s.lastLimit = limit
	return s.ranking, s.err
}

func (s *stubRankingService) GetStudentPosition(_ context.Context, _ uint, scope uint) (dto.StudentPosition, error) {
	s.lastScope = scope
	return s.position, s.err
}

type stubNotificationService struct {
	service.NotificationService
	items   []dto.NotificationResponse
	err     error
	lastReq dto.NotificationListRequest
}

func (s *stubNotificationService) List(_ context.Context, _ uint, req dto.NotificationListRequest) ([]dto.NotificationResponse, error) {
	s.lastReq = req
	return s.items, s.err
}

func (s *stubNotificationService) MarkRead(_ context.Context, id, studentID uint) (dto.NotificationResponse, error) {
	if s.err != nil {
		return dto.NotificationResponse{}, s.err
	}
	return dto.NotificationResponse{ID: id, StudentID: studentID, IsRead: true}, nil
}

type stubSpecializationService struct {
	service.SpecializationService
	specializations []dto.SpecializationResponse
	err             error
	levelUp         dto.LevelUpResult
}

func (s *stubSpecializationService) UpdateSpecializationLevel(context.Context, uint) (dto.LevelUpResult, error) {
	return s.levelUp, nil
}

func (s *stubSpecializationService) ListSpecializations(context.Context) ([]dto.SpecializationResponse, error) {
	return s.specializations, s.err
}
