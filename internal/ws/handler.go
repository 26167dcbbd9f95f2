package ws

import (
	"net/http"
	"strings"

	"unimarket/internal/pkg/jwt"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated requests to notification sockets.
type Handler struct {
	hub      *Hub
	jwt      jwt.Service
	logger   logger.Logger
	origins  []string
	upgrader websocket.Upgrader
}

// NewHandler accepts sockets from the listed origins, or from any origin when
// origins is empty.
func NewHandler(hub *Hub, jwtSvc jwt.Service, origins []string, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{hub: hub, jwt: jwtSvc, logger: log, origins: origins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.allowOrigin,
	}
	return h
}

func (h *Handler) allowOrigin(r *http.Request) bool {
	if len(h.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range h.origins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// HandleNotifications checks the access token passed as ?token= before the
// upgrade. Browsers cannot set an Authorization header on websocket requests.
func (h *Handler) HandleNotifications(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	token := c.Query("token")
	if token == "" {
		return response.Error(c, fiber.StatusUnauthorized, "Unauthorized", nil)
	}
	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		return response.Error(c, fiber.StatusUnauthorized, "Invalid token", nil)
	}

	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("ws upgrade failed",
				logger.String("user_id", claims.UserID.String()),
				logger.String("origin", r.Header.Get("Origin")),
				logger.Error(err),
			)
			return
		}

		client := NewClient(h.hub, conn, claims.UserID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})(c)
}
