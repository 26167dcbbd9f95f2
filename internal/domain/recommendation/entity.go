package recommendation

import (
	"time"

	"github.com/google/uuid"
)

// Feature is a precomputed vector plus free-form tags describing a user or a job.
type Feature struct {
	OwnerID   uuid.UUID
	Vector    []float64
	Tags      []string
	UpdatedAt time.Time
}

type JobRecommendation struct {
	UserID         uuid.UUID
	JobID          uuid.UUID
	JobTitle       string
	EnterpriseName string
	Location       string
	Score          int
	MatchedTags    []string
	ComputedAt     time.Time
}

type TalentRecommendation struct {
	JobID       uuid.UUID
	UserID      uuid.UUID
	Username    string
	DisplayName string
	Score       int
	MatchedTags []string
	ComputedAt  time.Time
}

// Pair is one scored (user, job) combination produced by a refresh.
type Pair struct {
	UserID      uuid.UUID
	JobID       uuid.UUID
	Score       int
	MatchedTags []string
}
