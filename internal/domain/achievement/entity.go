package achievement

import (
	"time"

	"github.com/google/uuid"
)

const (
	CodeFirstApplication    = "FIRST_APPLICATION"
	CodeFirstAnswerAccepted = "FIRST_ANSWER_ACCEPTED"
)

type Achievement struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description string
	Points      int
	CreatedAt   time.Time
}

type UserAchievement struct {
	Achievement
	UserID    uuid.UUID
	AwardedAt time.Time
}
