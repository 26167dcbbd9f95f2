package ws

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unimarket/internal/pkg/jwt"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_AllowOrigin(t *testing.T) {
	open := NewHandler(NewHub(nil), nil, nil, nil)
	locked := NewHandler(NewHub(nil), nil, []string{"https://app.example.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/ws/notifications", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.True(t, open.allowOrigin(req))
	assert.False(t, locked.allowOrigin(req))

	req.Header.Set("Origin", "https://APP.example.com")
	assert.True(t, locked.allowOrigin(req))
}

func TestHandler_RejectsBadTokens(t *testing.T) {
	svc := jwt.NewHMACService("access", "refresh", time.Minute, time.Hour)
	refresh, _, err := svc.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/ws/notifications", NewHandler(NewHub(logger.Nop()), svc, nil, nil).HandleNotifications)

	cases := map[string]string{
		"/ws/notifications":                  "Unauthorized",
		"/ws/notifications?token=garbage":    "Invalid token",
		"/ws/notifications?token=" + refresh: "Invalid token",
	}
	for path, msg := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()

		var body response.SemanticResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, msg, body.Message, path)
	}
}
