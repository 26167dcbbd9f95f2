package audit

import (
	"time"

	"github.com/google/uuid"
)

type Log struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Action    string
	Method    string
	Path      string
	Status    int
	IP        string
	UserAgent string
	LatencyMs int64
	CreatedAt time.Time
}

type Filter struct {
	Action string
	UserID *uuid.UUID
	Limit  int
	Offset int
}
