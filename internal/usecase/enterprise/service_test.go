package enterprise

import (
	"context"
	"testing"

	"unimarket/internal/domain/enterprise"
	"unimarket/internal/domain/user"
	"unimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memberKey struct{ enterprise, user uuid.UUID }

type memEnterprises struct {
	enterprises map[uuid.UUID]enterprise.Enterprise
	members     map[memberKey]enterprise.Member
}

func newMem() *memEnterprises {
	return &memEnterprises{
		enterprises: map[uuid.UUID]enterprise.Enterprise{},
		members:     map[memberKey]enterprise.Member{},
	}
}

func (m *memEnterprises) CreateWithOwner(_ context.Context, e enterprise.Enterprise) error {
	for _, existing := range m.enterprises {
		if existing.Slug == e.Slug {
			return repository.ErrDuplicate
		}
	}
	m.enterprises[e.ID] = e
	m.members[memberKey{e.ID, e.CreatedBy}] = enterprise.Member{EnterpriseID: e.ID, UserID: e.CreatedBy, Role: enterprise.RoleOwner}
	return nil
}

func (m *memEnterprises) GetByID(_ context.Context, id uuid.UUID) (enterprise.Enterprise, error) {
	e, ok := m.enterprises[id]
	if !ok || e.Deleted {
		return enterprise.Enterprise{}, repository.ErrEnterpriseNotFound
	}
	return e, nil
}

func (m *memEnterprises) List(context.Context, int, int) ([]enterprise.Enterprise, error) {
	return nil, nil
}

func (m *memEnterprises) Update(_ context.Context, e enterprise.Enterprise) error {
	m.enterprises[e.ID] = e
	return nil
}

func (m *memEnterprises) SoftDelete(_ context.Context, id uuid.UUID) error {
	e := m.enterprises[id]
	e.Deleted = true
	m.enterprises[id] = e
	return nil
}

func (m *memEnterprises) GetMember(_ context.Context, enterpriseID, userID uuid.UUID) (enterprise.Member, error) {
	mem, ok := m.members[memberKey{enterpriseID, userID}]
	if !ok {
		return enterprise.Member{}, repository.ErrMemberNotFound
	}
	return mem, nil
}

func (m *memEnterprises) ListMembers(_ context.Context, enterpriseID uuid.UUID) ([]enterprise.Member, error) {
	out := []enterprise.Member{}
	for k, mem := range m.members {
		if k.enterprise == enterpriseID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *memEnterprises) AddMember(_ context.Context, mem enterprise.Member) error {
	k := memberKey{mem.EnterpriseID, mem.UserID}
	if _, ok := m.members[k]; ok {
		return repository.ErrDuplicate
	}
	m.members[k] = mem
	return nil
}

func (m *memEnterprises) UpdateMemberRole(_ context.Context, enterpriseID, userID uuid.UUID, role string) error {
	k := memberKey{enterpriseID, userID}
	mem, ok := m.members[k]
	if !ok {
		return repository.ErrMemberNotFound
	}
	mem.Role = role
	m.members[k] = mem
	return nil
}

func (m *memEnterprises) RemoveMember(_ context.Context, enterpriseID, userID uuid.UUID) error {
	k := memberKey{enterpriseID, userID}
	if _, ok := m.members[k]; !ok {
		return repository.ErrMemberNotFound
	}
	delete(m.members, k)
	return nil
}

func (m *memEnterprises) CountOwners(_ context.Context, enterpriseID uuid.UUID) (int, error) {
	n := 0
	for k, mem := range m.members {
		if k.enterprise == enterpriseID && mem.Role == enterprise.RoleOwner {
			n++
		}
	}
	return n, nil
}

func actor(roles ...string) user.Actor {
	return user.Actor{ID: uuid.New(), Roles: append([]string{user.RoleUser}, roles...)}
}

func TestCreateMakesCreatorOwner(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMem())
	owner := actor()

	e, err := s.Create(ctx, owner.ID, CreateInput{Name: "Acme Labs", Industry: " Robotics "})
	require.NoError(t, err)
	assert.Equal(t, "acme-labs", e.Slug)
	assert.Equal(t, "Robotics", e.Industry)

	require.NoError(t, s.RequireManager(ctx, owner, e.ID))

	_, err = s.Create(ctx, uuid.New(), CreateInput{Name: "ACME labs"})
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestMembership(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMem())
	owner, staff, outsider := actor(), actor(), actor()

	e, err := s.Create(ctx, owner.ID, CreateInput{Name: "Initech"})
	require.NoError(t, err)

	_, err = s.AddMember(ctx, owner, e.ID, staff.ID, "intern")
	assert.ErrorIs(t, err, ErrInvalidMemberRole)

	m, err := s.AddMember(ctx, owner, e.ID, staff.ID, "")
	require.NoError(t, err)
	assert.Equal(t, enterprise.RoleMember, m.Role)

	_, err = s.AddMember(ctx, owner, e.ID, staff.ID, "member")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	assert.ErrorIs(t, s.RequireManager(ctx, staff, e.ID), ErrNotManager)
	require.NoError(t, s.RequireMember(ctx, staff, e.ID))
	assert.ErrorIs(t, s.RequireMember(ctx, outsider, e.ID), ErrNotMember)

	_, err = s.ListMembers(ctx, outsider, e.ID)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = s.AddMember(ctx, staff, e.ID, outsider.ID, "member")
	assert.ErrorIs(t, err, ErrNotManager)

	promoted, err := s.UpdateMemberRole(ctx, owner, e.ID, staff.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, enterprise.RoleAdmin, promoted.Role)
	require.NoError(t, s.RequireManager(ctx, staff, e.ID))

	// Managers who are not OWNER cannot delete the enterprise.
	assert.ErrorIs(t, s.Delete(ctx, staff, e.ID), ErrNotManager)
}

func TestLastOwnerIsProtected(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMem())
	owner, second := actor(), actor()

	e, err := s.Create(ctx, owner.ID, CreateInput{Name: "Globex"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.RemoveMember(ctx, owner, e.ID, owner.ID), ErrLastOwner)
	_, err = s.UpdateMemberRole(ctx, owner, e.ID, owner.ID, "member")
	assert.ErrorIs(t, err, ErrLastOwner)

	_, err = s.AddMember(ctx, owner, e.ID, second.ID, "owner")
	require.NoError(t, err)
	require.NoError(t, s.RemoveMember(ctx, second, e.ID, owner.ID))

	assert.ErrorIs(t, s.RemoveMember(ctx, second, e.ID, owner.ID), ErrMemberNotFound)
}

func TestMissingEnterpriseIsNotFound(t *testing.T) {
	s := NewService(newMem())
	admin := actor(user.RoleAdmin)

	err := s.RequireManager(context.Background(), admin, uuid.New())
	assert.ErrorIs(t, err, ErrEnterpriseNotFound)
}

func TestPlatformAdminManagesAnyEnterprise(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMem())
	owner := actor()

	e, err := s.Create(ctx, owner.ID, CreateInput{Name: "Hooli"})
	require.NoError(t, err)

	admin := actor(user.RoleAdmin)
	require.NoError(t, s.RequireManager(ctx, admin, e.ID))
	require.NoError(t, s.Delete(ctx, admin, e.ID))

	_, err = s.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrEnterpriseNotFound)
}
