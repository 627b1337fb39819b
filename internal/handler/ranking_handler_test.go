package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/handler"
)

func TestRankingHandler_ListReportsCacheHit(t *testing.T) {
	svc := &stubRankingService{ranking: dto.RankingResponse{
		Scope:    7,
		CacheHit: true,
		Entries: []dto.RankingEntry{
			{Position: 1, StudentID: 2, TotalPoints: 900},
			{Position: 2, StudentID: 1, TotalPoints: 900},
		},
	}}
	app := fiber.New()
	handler.NewRankingHandler(svc, zerolog.Nop()).Register(app.Group("/rankings", authAs(1, "student")))

	status, env := doRequest(t, app, http.MethodGet, "/rankings?scope=7&limit=2", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, uint(7), svc.lastScope)
	require.Equal(t, 2, svc.lastLimit)
	require.Equal(t, true, env.Meta["cache_hit"])

	var entries []dto.RankingEntry
	decodeData(t, env, &entries)
	require.Len(t, entries, 2)
	require.Equal(t, uint(2), entries[0].StudentID)
}

func TestRankingHandler_RejectsBadScope(t *testing.T) {
	app := fiber.New()
	handler.NewRankingHandler(&stubRankingService{}, zerolog.Nop()).Register(app.Group("/rankings", authAs(1, "student")))

	status, _ := doRequest(t, app, http.MethodGet, "/rankings/me?scope=-1", nil)
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestRankingHandler_Position(t *testing.T) {
	svc := &stubRankingService{position: dto.StudentPosition{Position: 3, TotalStudents: 10}}
	app := fiber.New()
	handler.NewRankingHandler(svc, zerolog.Nop()).Register(app.Group("/rankings", authAs(1, "student")))

	status, env := doRequest(t, app, http.MethodGet, "/rankings/me", nil)
	require.Equal(t, fiber.StatusOK, status)

	var position dto.StudentPosition
	decodeData(t, env, &position)
	require.Equal(t, int64(3), position.Position)
	require.Equal(t, uint(0), svc.lastScope)
}
