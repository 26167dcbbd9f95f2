package job

import (
	"context"
	"strings"
	"sync"
	"testing"

	"unimarket/internal/domain/job"
	"unimarket/internal/domain/user"
	"unimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPosts struct {
	posts map[uuid.UUID]job.Post
}

func (m *memPosts) Create(_ context.Context, p job.Post) error { m.posts[p.ID] = p; return nil }
func (m *memPosts) GetByID(_ context.Context, id uuid.UUID) (job.Post, error) {
	p, ok := m.posts[id]
	if !ok || p.Deleted {
		return job.Post{}, repository.ErrJobNotFound
	}
	return p, nil
}
func (m *memPosts) List(context.Context, job.ListFilter) ([]job.Post, error) { return nil, nil }
func (m *memPosts) ListByEnterprise(context.Context, uuid.UUID, int, int) ([]job.Post, error) {
	return nil, nil
}
func (m *memPosts) ListOpenIDs(context.Context) ([]uuid.UUID, error) { return nil, nil }
func (m *memPosts) Update(_ context.Context, p job.Post) error       { m.posts[p.ID] = p; return nil }
func (m *memPosts) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	p := m.posts[id]
	p.Status = status
	m.posts[id] = p
	return nil
}
func (m *memPosts) SoftDelete(_ context.Context, id uuid.UUID) error {
	p := m.posts[id]
	p.Deleted = true
	m.posts[id] = p
	return nil
}

type memApplications struct {
	apps map[uuid.UUID]job.Application
}

func (m *memApplications) ExistsActive(_ context.Context, jobID, userID uuid.UUID) (bool, error) {
	for _, a := range m.apps {
		if a.JobID == jobID && a.UserID == userID && !a.Deleted {
			return true, nil
		}
	}
	return false, nil
}
func (m *memApplications) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.apps {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}
func (m *memApplications) Create(_ context.Context, a job.Application) error {
	m.apps[a.ID] = a
	return nil
}
func (m *memApplications) GetByID(_ context.Context, id uuid.UUID) (job.Application, error) {
	a, ok := m.apps[id]
	if !ok || a.Deleted {
		return job.Application{}, repository.ErrApplicationNotFound
	}
	return a, nil
}
func (m *memApplications) ListByUser(context.Context, uuid.UUID, int, int) ([]job.Application, error) {
	return nil, nil
}
func (m *memApplications) ListByJob(context.Context, uuid.UUID, int, int) ([]job.Application, error) {
	return nil, nil
}
func (m *memApplications) UpdateStatus(_ context.Context, id uuid.UUID, from, to job.Status) error {
	a, ok := m.apps[id]
	if !ok || a.Status != from {
		return repository.ErrApplicationNotFound
	}
	a.Status = to
	m.apps[id] = a
	return nil
}
func (m *memApplications) SoftDelete(_ context.Context, id uuid.UUID) error {
	a := m.apps[id]
	a.Deleted = true
	m.apps[id] = a
	return nil
}

// staticAccess treats managers as members too.
type staticAccess struct {
	managers map[uuid.UUID]bool
	members  map[uuid.UUID]bool
}

func (a staticAccess) RequireManager(_ context.Context, actor user.Actor, _ uuid.UUID) error {
	if a.managers[actor.ID] {
		return nil
	}
	return assert.AnError
}

func (a staticAccess) RequireMember(_ context.Context, actor user.Actor, _ uuid.UUID) error {
	if a.managers[actor.ID] || a.members[actor.ID] {
		return nil
	}
	return assert.AnError
}

type recordingAwarder struct {
	mu    sync.Mutex
	codes []string
}

func (r *recordingAwarder) AwardQuietly(_ context.Context, _ uuid.UUID, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

type fixture struct {
	svc     *Service
	apps    *memApplications
	awards  *recordingAwarder
	manager user.Actor
	member  user.Actor
	jobID   uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	posts := &memPosts{posts: map[uuid.UUID]job.Post{}}
	apps := &memApplications{apps: map[uuid.UUID]job.Application{}}
	manager := user.Actor{ID: uuid.New()}
	member := user.Actor{ID: uuid.New()}
	access := staticAccess{
		managers: map[uuid.UUID]bool{manager.ID: true},
		members:  map[uuid.UUID]bool{member.ID: true},
	}
	awards := &recordingAwarder{}
	svc := NewService(posts, apps, access, awards)

	p, err := svc.Create(context.Background(), manager, uuid.New(), PostInput{Title: " Backend Engineer ", Location: "Jakarta"})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", p.Title)
	assert.Equal(t, job.PostOpen, p.Status)

	return fixture{svc: svc, apps: apps, awards: awards, manager: manager, member: member, jobID: p.ID}
}

func TestApply_FirstApplicationAwardsAchievement(t *testing.T) {
	f := newFixture(t)
	applicant := uuid.New()

	a, err := f.svc.Apply(context.Background(), applicant, f.jobID, ApplyInput{CoverLetter: "hello"})
	require.NoError(t, err)
	assert.Equal(t, job.StatusSubmitted, a.Status)
	assert.Equal(t, []string{"FIRST_APPLICATION"}, f.awards.codes)
}

func TestApply_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	applicant := uuid.New()

	_, err := f.svc.Apply(context.Background(), applicant, f.jobID, ApplyInput{})
	require.NoError(t, err)
	_, err = f.svc.Apply(context.Background(), applicant, f.jobID, ApplyInput{})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Equal(t, "Already applied", err.Error())
}

func TestApply_ClosedJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Close(context.Background(), f.manager, f.jobID)
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), uuid.New(), f.jobID, ApplyInput{})
	assert.ErrorIs(t, err, ErrJobNotOpen)
	assert.Equal(t, "Job is not open", err.Error())
}

func TestApply_MissingJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Apply(context.Background(), uuid.New(), uuid.New(), ApplyInput{})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGetApplication_MemberMarksViewed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	applicant := user.Actor{ID: uuid.New()}
	a, err := f.svc.Apply(ctx, applicant.ID, f.jobID, ApplyInput{})
	require.NoError(t, err)

	own, err := f.svc.GetApplication(ctx, applicant, a.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusSubmitted, own.Status)

	seen, err := f.svc.GetApplication(ctx, f.member, a.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusViewed, seen.Status)

	_, err = f.svc.GetApplication(ctx, user.Actor{ID: uuid.New()}, a.ID)
	assert.Error(t, err)
}

func TestUpdateStatus_FollowsTransitionTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, err := f.svc.Apply(ctx, uuid.New(), f.jobID, ApplyInput{})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.manager, a.ID, "OFFERED")
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)

	_, err = f.svc.UpdateStatus(ctx, f.manager, a.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	for _, next := range []string{"viewed", "INTERVIEWING", "OFFERED"} {
		got, err := f.svc.UpdateStatus(ctx, f.manager, a.ID, next)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(next), string(got.Status))
	}

	_, err = f.svc.UpdateStatus(ctx, f.manager, a.ID, "REJECTED")
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)

	_, err = f.svc.UpdateStatus(ctx, f.member, a.ID, "REJECTED")
	assert.Error(t, err)
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	applicant := user.Actor{ID: uuid.New()}
	a, err := f.svc.Apply(ctx, applicant.ID, f.jobID, ApplyInput{})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Withdraw(ctx, user.Actor{ID: uuid.New()}, a.ID), ErrNotApplicant)
	require.NoError(t, f.svc.Withdraw(ctx, applicant, a.ID))
	assert.True(t, f.apps.apps[a.ID].Deleted)

	_, err = f.svc.GetApplication(ctx, applicant, a.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	b, err := f.svc.Apply(ctx, applicant.ID, f.jobID, ApplyInput{})
	require.NoError(t, err)
	for _, next := range []string{"VIEWED", "INTERVIEWING"} {
		_, err := f.svc.UpdateStatus(ctx, f.manager, b.ID, next)
		require.NoError(t, err)
	}
	assert.ErrorIs(t, f.svc.Withdraw(ctx, applicant, b.ID), ErrCannotWithdraw)
}
