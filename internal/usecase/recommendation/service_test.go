package recommendation

import (
	"context"
	"math"
	"testing"
	"time"

	"unimarket/internal/domain/recommendation"
	"unimarket/internal/domain/user"
	"unimarket/internal/infrastructure/cache"
	"unimarket/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecommendations struct {
	users, jobs   []recommendation.Feature
	byUser, byJob []recommendation.Pair
	computedAt    time.Time
	replaceCalls  int
	lastListLimit int
}

func (m *memRecommendations) UpsertUserFeature(_ context.Context, f recommendation.Feature) error {
	m.users = append(m.users, f)
	return nil
}

func (m *memRecommendations) UpsertJobFeature(_ context.Context, f recommendation.Feature) error {
	m.jobs = append(m.jobs, f)
	return nil
}

func (m *memRecommendations) ListUserFeatures(context.Context) ([]recommendation.Feature, error) {
	return m.users, nil
}

func (m *memRecommendations) ListOpenJobFeatures(context.Context) ([]recommendation.Feature, error) {
	return m.jobs, nil
}

func (m *memRecommendations) ReplaceAll(_ context.Context, byUser, byJob []recommendation.Pair, computedAt time.Time) error {
	m.byUser, m.byJob, m.computedAt = byUser, byJob, computedAt
	m.replaceCalls++
	return nil
}

func (m *memRecommendations) ListForUser(_ context.Context, _ uuid.UUID, limit int) ([]recommendation.JobRecommendation, error) {
	m.lastListLimit = limit
	return []recommendation.JobRecommendation{}, nil
}

func (m *memRecommendations) ListForJob(_ context.Context, _ uuid.UUID, limit int) ([]recommendation.TalentRecommendation, error) {
	m.lastListLimit = limit
	return []recommendation.TalentRecommendation{}, nil
}

type denyAll struct{}

func (denyAll) RequireManager(context.Context, user.Actor, uuid.UUID) error { return assert.AnError }

func newLocker(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewFromClient(client, time.Minute, logger.Nop()), mr
}

func TestRefresh_RanksAndReplaces(t *testing.T) {
	ctx := context.Background()
	repo := &memRecommendations{}
	locker, mr := newLocker(t)
	svc := NewService(repo, denyAll{}, locker, 5, logger.Nop())

	alice := uuid.New()
	backend, design := uuid.New(), uuid.New()
	_, err := svc.UpdateUserFeature(ctx, alice, FeatureInput{Vector: []float64{1, 0}, Tags: []string{" Go ", "go", "SQL"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, repo.users[0].Tags)

	_, err = svc.UpdateJobFeature(ctx, backend, FeatureInput{Vector: []float64{1, 0}, Tags: []string{"go", "sql"}})
	require.NoError(t, err)
	_, err = svc.UpdateJobFeature(ctx, design, FeatureInput{Vector: []float64{0, 1}, Tags: []string{"figma"}})
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 2, res.Jobs)
	require.Len(t, repo.byUser, 1)
	assert.Equal(t, backend, repo.byUser[0].JobID)
	assert.Equal(t, 100, repo.byUser[0].Score)
	assert.False(t, repo.computedAt.IsZero())
	assert.False(t, mr.Exists(refreshLockKey), "lock is released after the run")
}

func TestRefresh_RefusedWhileLocked(t *testing.T) {
	ctx := context.Background()
	repo := &memRecommendations{}
	locker, mr := newLocker(t)
	require.NoError(t, mr.Set(refreshLockKey, "cron"))

	svc := NewService(repo, denyAll{}, locker, 5, nil)
	_, err := svc.Refresh(ctx, "manual")
	assert.ErrorIs(t, err, ErrRefreshInProgress)
	assert.Zero(t, repo.replaceCalls)
}

func TestRefresh_WithoutLocker(t *testing.T) {
	repo := &memRecommendations{}
	svc := NewService(repo, denyAll{}, nil, 0, nil)
	_, err := svc.Refresh(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.replaceCalls)
}

func TestFeatureValidation(t *testing.T) {
	svc := NewService(&memRecommendations{}, denyAll{}, nil, 5, nil)
	ctx := context.Background()

	_, err := svc.UpdateUserFeature(ctx, uuid.New(), FeatureInput{Vector: []float64{math.NaN()}})
	assert.ErrorIs(t, err, ErrVectorNotFinite)

	_, err = svc.UpdateUserFeature(ctx, uuid.New(), FeatureInput{Vector: make([]float64, maxVectorLen+1)})
	assert.ErrorIs(t, err, ErrVectorTooLong)

	f, err := svc.UpdateUserFeature(ctx, uuid.New(), FeatureInput{})
	require.NoError(t, err)
	assert.NotNil(t, f.Vector)
	assert.NotNil(t, f.Tags)
}

func TestForJob_RequiresManagerAndClampsLimit(t *testing.T) {
	repo := &memRecommendations{}
	svc := NewService(repo, denyAll{}, nil, 5, nil)

	_, err := svc.ForJob(context.Background(), user.Actor{ID: uuid.New()}, uuid.New(), 3)
	assert.Error(t, err)

	_, err = svc.ForUser(context.Background(), uuid.New(), 500)
	require.NoError(t, err)
	assert.Equal(t, 5, repo.lastListLimit)
}
