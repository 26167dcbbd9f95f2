package dto

import (
	"time"

	"unimarket/internal/domain/achievement"
	"unimarket/internal/domain/audit"
	"unimarket/internal/domain/recommendation"

	"github.com/google/uuid"
)

type FeatureRequest struct {
	Vector []float64 `json:"vector" validate:"max=512"`
	Tags   []string  `json:"tags" validate:"max=50,dive,max=64"`
}

type FeatureResponse struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Vector    []float64 `json:"vector"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewFeatureResponse(f recommendation.Feature) FeatureResponse {
	return FeatureResponse{OwnerID: f.OwnerID, Vector: nonNilFloats(f.Vector), Tags: nonNilStrings(f.Tags), UpdatedAt: f.UpdatedAt}
}

type JobRecommendationResponse struct {
	JobID          uuid.UUID `json:"job_id"`
	JobTitle       string    `json:"job_title"`
	EnterpriseName string    `json:"enterprise_name"`
	Location       string    `json:"location"`
	Score          int       `json:"score"`
	MatchedTags    []string  `json:"matched_tags"`
	ComputedAt     time.Time `json:"computed_at"`
}

func NewJobRecommendationResponses(rs []recommendation.JobRecommendation) []JobRecommendationResponse {
	out := make([]JobRecommendationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, JobRecommendationResponse{
			JobID:          r.JobID,
			JobTitle:       r.JobTitle,
			EnterpriseName: r.EnterpriseName,
			Location:       r.Location,
			Score:          r.Score,
			MatchedTags:    nonNilStrings(r.MatchedTags),
			ComputedAt:     r.ComputedAt,
		})
	}
	return out
}

type TalentRecommendationResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	MatchedTags []string  `json:"matched_tags"`
	ComputedAt  time.Time `json:"computed_at"`
}

func NewTalentRecommendationResponses(rs []recommendation.TalentRecommendation) []TalentRecommendationResponse {
	out := make([]TalentRecommendationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, TalentRecommendationResponse{
			UserID:      r.UserID,
			Username:    r.Username,
			DisplayName: r.DisplayName,
			Score:       r.Score,
			MatchedTags: nonNilStrings(r.MatchedTags),
			ComputedAt:  r.ComputedAt,
		})
	}
	return out
}

type RefreshResponse struct {
	Users      int   `json:"users"`
	Jobs       int   `json:"jobs"`
	ByUser     int   `json:"by_user"`
	ByJob      int   `json:"by_job"`
	DurationMs int64 `json:"duration_ms"`
}

type AchievementRequest struct {
	Code        string `json:"code" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	Points      int    `json:"points" validate:"gte=0"`
}

type AwardRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type AwardResponse struct {
	Code    string `json:"code"`
	Awarded bool   `json:"awarded"`
}

type AchievementResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	AwardedAt   *time.Time `json:"awarded_at,omitempty"`
}

func NewAchievementResponse(a achievement.Achievement) AchievementResponse {
	return AchievementResponse{ID: a.ID, Code: a.Code, Name: a.Name, Description: a.Description, Points: a.Points}
}

func NewAchievementResponses(as []achievement.Achievement) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(as))
	for _, a := range as {
		out = append(out, NewAchievementResponse(a))
	}
	return out
}

func NewUserAchievementResponses(as []achievement.UserAchievement) []AchievementResponse {
	out := make([]AchievementResponse, 0, len(as))
	for _, a := range as {
		r := NewAchievementResponse(a.Achievement)
		awarded := a.AwardedAt
		r.AwardedAt = &awarded
		out = append(out, r)
	}
	return out
}

type AuditLogResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id"`
	Action    string     `json:"action"`
	Method    string     `json:"method"`
	Path      string     `json:"path"`
	Status    int        `json:"status"`
	IP        string     `json:"ip"`
	UserAgent string     `json:"user_agent"`
	LatencyMs int64      `json:"latency_ms"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewAuditLogResponses(ls []audit.Log) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, AuditLogResponse(l))
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFloats(f []float64) []float64 {
	if f == nil {
		return []float64{}
	}
	return f
}
