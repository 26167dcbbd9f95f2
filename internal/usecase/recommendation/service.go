package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"unimarket/internal/domain"
	"unimarket/internal/domain/recommendation"
	"unimarket/internal/domain/user"
	"unimarket/internal/metrics"
	"unimarket/internal/pkg/logger"
	"unimarket/internal/repository"

	"github.com/google/uuid"
)

const (
	refreshLockKey = "recommendation:refresh:lock"
	refreshLockTTL = 10 * time.Minute

	maxVectorLen = 512
	maxTags      = 50
)

var (
	ErrJobNotFound       = domain.NotFound("Job not found")
	ErrRefreshInProgress = domain.Conflict("A recommendation refresh is already running")
	ErrVectorTooLong     = domain.Rule("Feature vector is too long")
	ErrVectorNotFinite   = domain.Rule("Feature vector must contain finite numbers")
	ErrTooManyTags       = domain.Rule("Too many feature tags")
)

// Locker guards refreshes across processes. *cache.Redis satisfies it.
type Locker interface {
	Available() bool
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// JobAccess resolves who may read talent recommendations for a job.
type JobAccess interface {
	RequireManager(ctx context.Context, actor user.Actor, jobID uuid.UUID) error
}

type FeatureInput struct {
	Vector []float64
	Tags   []string
}

type RefreshResult struct {
	Users    int
	Jobs     int
	ByUser   int
	ByJob    int
	Duration time.Duration
}

type Service struct {
	repo   repository.RecommendationRepository
	jobs   JobAccess
	locker Locker
	topN   int
	logger logger.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewService(repo repository.RecommendationRepository, jobs JobAccess, locker Locker, topN int, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if topN <= 0 {
		topN = 20
	}
	return &Service{repo: repo, jobs: jobs, locker: locker, topN: topN, logger: log, now: time.Now}
}

func (s *Service) ForUser(ctx context.Context, userID uuid.UUID, limit int) ([]recommendation.JobRecommendation, error) {
	out, err := s.repo.ListForUser(ctx, userID, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list job recommendations: %w", err)
	}
	return out, nil
}

func (s *Service) ForJob(ctx context.Context, actor user.Actor, jobID uuid.UUID, limit int) ([]recommendation.TalentRecommendation, error) {
	if err := s.jobs.RequireManager(ctx, actor, jobID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListForJob(ctx, jobID, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list talent recommendations: %w", err)
	}
	return out, nil
}

func (s *Service) UpdateUserFeature(ctx context.Context, userID uuid.UUID, in FeatureInput) (recommendation.Feature, error) {
	f, err := s.feature(userID, in)
	if err != nil {
		return recommendation.Feature{}, err
	}
	if err := s.repo.UpsertUserFeature(ctx, f); err != nil {
		return recommendation.Feature{}, fmt.Errorf("save user feature: %w", err)
	}
	return f, nil
}

func (s *Service) UpdateJobFeature(ctx context.Context, jobID uuid.UUID, in FeatureInput) (recommendation.Feature, error) {
	f, err := s.feature(jobID, in)
	if err != nil {
		return recommendation.Feature{}, err
	}
	if err := s.repo.UpsertJobFeature(ctx, f); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return recommendation.Feature{}, ErrJobNotFound
		}
		return recommendation.Feature{}, fmt.Errorf("save job feature: %w", err)
	}
	return f, nil
}

// Refresh recomputes every recommendation and swaps the stored rows in one
// transaction. Concurrent refreshes in this process or another are refused.
func (s *Service) Refresh(ctx context.Context, trigger string) (RefreshResult, error) {
	if !s.mu.TryLock() {
		return RefreshResult{}, ErrRefreshInProgress
	}
	defer s.mu.Unlock()

	if s.locker != nil && s.locker.Available() {
		ok, err := s.locker.SetIfNotExists(ctx, refreshLockKey, trigger, refreshLockTTL)
		switch {
		case err != nil:
			s.logger.Warn("refresh lock unavailable, continuing unlocked", logger.Error(err))
		case !ok:
			return RefreshResult{}, ErrRefreshInProgress
		default:
			defer s.releaseLock(ctx)
		}
	}

	start := s.now()
	res, err := s.refresh(ctx)
	res.Duration = s.now().Sub(start)
	metrics.RecordRecommendationRefresh(trigger, res.Duration, err == nil)
	if err != nil {
		s.logger.Error("recommendation refresh failed", logger.String("trigger", trigger), logger.Error(err))
		return RefreshResult{}, err
	}

	s.logger.Info("recommendation refresh done",
		logger.String("trigger", trigger),
		logger.Int("users", res.Users),
		logger.Int("jobs", res.Jobs),
		logger.Int("by_user", res.ByUser),
		logger.Int("by_job", res.ByJob),
		logger.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Service) releaseLock(ctx context.Context) {
	if err := s.locker.Delete(context.WithoutCancel(ctx), refreshLockKey); err != nil {
		s.logger.Warn("refresh lock release failed", logger.Error(err))
	}
}

func (s *Service) refresh(ctx context.Context) (RefreshResult, error) {
	users, err := s.repo.ListUserFeatures(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load user features: %w", err)
	}
	jobs, err := s.repo.ListOpenJobFeatures(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load job features: %w", err)
	}

	byUser, byJob := recommendation.Rank(users, jobs, s.topN)
	if err := s.repo.ReplaceAll(ctx, byUser, byJob, s.now().UTC()); err != nil {
		return RefreshResult{}, fmt.Errorf("store recommendations: %w", err)
	}
	return RefreshResult{Users: len(users), Jobs: len(jobs), ByUser: len(byUser), ByJob: len(byJob)}, nil
}

func (s *Service) feature(ownerID uuid.UUID, in FeatureInput) (recommendation.Feature, error) {
	if len(in.Vector) > maxVectorLen {
		return recommendation.Feature{}, ErrVectorTooLong
	}
	for _, v := range in.Vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return recommendation.Feature{}, ErrVectorNotFinite
		}
	}
	tags := normalizeTags(in.Tags)
	if len(tags) > maxTags {
		return recommendation.Feature{}, ErrTooManyTags
	}
	vector := in.Vector
	if vector == nil {
		vector = []float64{}
	}
	return recommendation.Feature{OwnerID: ownerID, Vector: vector, Tags: tags, UpdatedAt: s.now().UTC()}, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 || limit > s.topN {
		return s.topN
	}
	return limit
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
