package ws

import (
	"encoding/json"
	"time"

	"unimarket/internal/pkg/logger"

	"github.com/google/uuid"
)

type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// Notify pushes an event to every open connection of userID.
func (h *Hub) Notify(userID uuid.UUID, eventType string, data any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("ws event encode failed", logger.String("type", eventType), logger.Error(err))
		return
	}
	h.SendTo(userID, b)
}
