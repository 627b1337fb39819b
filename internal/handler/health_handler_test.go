package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{
		AppName: "GEMA Progression",
		AppEnv:  "test",
	}

	app := fiber.New()
	app.Get("/health", handler.HealthCheck(cfg))

	status, env := doRequest(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, status)

	var payload handler.HealthResponse
	decodeData(t, env, &payload)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, cfg.AppName, payload.Service)
	assert.Equal(t, cfg.AppEnv, payload.Environment)
	assert.WithinDuration(t, time.Now().UTC(), payload.Timestamp, 2*time.Second)
}
