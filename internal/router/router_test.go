package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/middleware"
	"github.com/noah-isme/gema-progression/internal/router"
)

func identityFromHeader(c *fiber.Ctx) error {
	if c.Get("X-Test-User") != "" {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
	}
	return c.Next()
}

func TestRegisterRequiresIdentityBehindHealth(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "GEMA Progression"}, router.Dependencies{
		JWTMiddleware: identityFromHeader,
	})

	cases := []struct {
		name   string
		path   string
		user   bool
		status int
	}{
		{name: "root health is public", path: "/health", status: fiber.StatusOK},
		{name: "api health skips identity", path: middleware.APIPrefix + "/health", status: fiber.StatusOK},
		{name: "anonymous api call", path: middleware.APIPrefix + "/me", status: fiber.StatusUnauthorized},
		{name: "identified api call", path: middleware.APIPrefix + "/me", user: true, status: fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.user {
				req.Header.Set("X-Test-User", "1")
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
