package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/dto"
	"github.com/noah-isme/gema-progression/internal/handler"
	"github.com/noah-isme/gema-progression/internal/service"
)

func TestNotificationHandler_List(t *testing.T) {
	svc := &stubNotificationService{items: []dto.NotificationResponse{{ID: 1, Type: "badge_unlocked"}}}
	app := fiber.New()
	handler.NewNotificationHandler(svc, zerolog.Nop(), 0).Register(app.Group("/notifications", authAs(9, "student")))

	status, env := doRequest(t, app, http.MethodGet, "/notifications?unread=true&limit=5&offset=10", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, svc.lastReq.UnreadOnly)
	require.Equal(t, 5, svc.lastReq.Limit)
	require.Equal(t, 10, svc.lastReq.Offset)
	require.EqualValues(t, 1, env.Meta["count"])
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	app := fiber.New()
	handler.NewNotificationHandler(&stubNotificationService{}, zerolog.Nop(), 0).Register(app.Group("/notifications", authAs(9, "student")))

	status, env := doRequest(t, app, http.MethodPatch, "/notifications/4/read", nil)
	require.Equal(t, fiber.StatusOK, status)

	var body dto.NotificationResponse
	decodeData(t, env, &body)
	require.True(t, body.IsRead)
	require.Equal(t, uint(9), body.StudentID)
}

func TestNotificationHandler_MarkReadNotFound(t *testing.T) {
	app := fiber.New()
	svc := &stubNotificationService{err: service.ErrNotificationNotFound}
	handler.NewNotificationHandler(svc, zerolog.Nop(), 0).Register(app.Group("/notifications", authAs(9, "student")))

	status, env := doRequest(t, app, http.MethodPatch, "/notifications/4/read", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "notification not found", env.Message)
}
