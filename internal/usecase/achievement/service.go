package achievement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unimarket/internal/domain"
	"unimarket/internal/domain/achievement"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrAchievementNotFound = domain.NotFound("Achievement not found")
	ErrCodeTaken           = domain.Rule("Achievement code already exists")
)

type DefineInput struct {
	Code        string
	Name        string
	Description string
	Points      int
}

type Service struct {
	repo   repository.AchievementRepository
	logger logger.Logger
}

func NewService(repo repository.AchievementRepository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, logger: log.With(logger.String("component", "achievement"))}
}

func (s *Service) Define(ctx context.Context, in DefineInput) (achievement.Achievement, error) {
	a := achievement.Achievement{
		ID:          uuid.New(),
		Code:        strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Points:      in.Points,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return achievement.Achievement{}, ErrCodeTaken
		}
		return achievement.Achievement{}, fmt.Errorf("create achievement: %w", err)
	}
	return s.repo.GetByCode(ctx, a.Code)
}

func (s *Service) List(ctx context.Context) ([]achievement.Achievement, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return out, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]achievement.UserAchievement, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	return out, nil
}

// Award grants the achievement identified by code. Awarding twice is a no-op.
func (s *Service) Award(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	a, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrAchievementNotFound) {
			return false, ErrAchievementNotFound
		}
		return false, fmt.Errorf("load achievement: %w", err)
	}
	created, err := s.repo.Award(ctx, userID, a.ID)
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	if created {
		s.logger.Info("achievement awarded", logger.String("user_id", userID.String()), logger.String("code", a.Code))
	}
	return created, nil
}

// AwardQuietly is used by automatic triggers; failures are logged, never returned.
func (s *Service) AwardQuietly(ctx context.Context, userID uuid.UUID, code string) {
	if _, err := s.Award(ctx, userID, code); err != nil {
		s.logger.Warn("automatic award failed",
			logger.String("user_id", userID.String()),
			logger.String("code", code),
			logger.Error(err),
		)
	}
}
