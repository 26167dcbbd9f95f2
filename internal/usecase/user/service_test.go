package user

import (
	"context"
	"strings"
	"testing"

	"unimarket/internal/domain/user"
	ucauth "unimarket/internal/usecase/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	users map[uuid.UUID]user.User
}

func (m *memUsers) ExistsByUsername(context.Context, string) (bool, error) { return false, nil }

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) CreateUser(_ context.Context, u user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetUserByAccount(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (m *memUsers) UpdateUser(_ context.Context, u user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) SoftDeleteUser(_ context.Context, id uuid.UUID) error {
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return user.ErrNotFound
	}
	u.Deleted = true
	m.users[id] = u
	return nil
}

func (m *memUsers) ListUsers(context.Context, int, int) ([]user.User, error) {
	out := []user.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) GetRoles(_ context.Context, id uuid.UUID) ([]string, error) {
	return m.users[id].Roles, nil
}

func (m *memUsers) SetRoles(_ context.Context, id uuid.UUID, roles []string) error {
	u := m.users[id]
	u.Roles = roles
	m.users[id] = u
	return nil
}

func (m *memUsers) GrantRole(context.Context, uuid.UUID, string) error { return nil }

func seed(m *memUsers, username, email string, roles ...string) user.User {
	hash, _ := ucauth.HashPassword("s3cret-pass")
	u := user.User{ID: uuid.New(), Username: username, Email: email, DisplayName: username, PasswordHash: hash, Roles: roles}
	m.users[u.ID] = u
	return u
}

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()
	repo := &memUsers{users: map[uuid.UUID]user.User{}}
	s := NewService(repo)
	alice := seed(repo, "alice", "alice@example.com", user.RoleUser)
	seed(repo, "bob", "bob@example.com", user.RoleUser)

	name := "  Alice A.  "
	got, err := s.UpdateMe(ctx, alice.ID, UpdateMeInput{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.DisplayName)
	assert.Empty(t, got.PasswordHash)

	taken := "BOB@example.com"
	_, err = s.UpdateMe(ctx, alice.ID, UpdateMeInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	weak := "short"
	_, err = s.UpdateMe(ctx, alice.ID, UpdateMeInput{Password: &weak})
	assert.ErrorIs(t, err, ErrWeakPassword)

	before := repo.users[alice.ID].PasswordHash
	strong := "an0ther-pass"
	_, err = s.UpdateMe(ctx, alice.ID, UpdateMeInput{Password: &strong})
	require.NoError(t, err)
	assert.NotEqual(t, before, repo.users[alice.ID].PasswordHash)
}

func TestSetRoles(t *testing.T) {
	ctx := context.Background()
	repo := &memUsers{users: map[uuid.UUID]user.User{}}
	s := NewService(repo)
	admin := seed(repo, "root", "root@example.com", user.RoleUser, user.RoleAdmin)
	bob := seed(repo, "bob", "bob@example.com", user.RoleUser)

	got, err := s.SetRoles(ctx, admin.ID, bob.ID, []string{" merchant", "ENTERPRISE", "merchant"})
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleEnterprise, user.RoleMerchant, user.RoleUser}, got.Roles)

	_, err = s.SetRoles(ctx, admin.ID, bob.ID, []string{"SUPERUSER"})
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = s.SetRoles(ctx, admin.ID, admin.ID, []string{user.RoleMerchant})
	assert.ErrorIs(t, err, ErrCannotDemoteSelf)

	_, err = s.SetRoles(ctx, admin.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := &memUsers{users: map[uuid.UUID]user.User{}}
	s := NewService(repo)
	admin := seed(repo, "root", "root@example.com", user.RoleAdmin)
	bob := seed(repo, "bob", "bob@example.com", user.RoleUser)

	assert.ErrorIs(t, s.Delete(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	require.NoError(t, s.Delete(ctx, admin.ID, bob.ID))
	assert.ErrorIs(t, s.Delete(ctx, admin.ID, bob.ID), ErrUserNotFound)

	_, err := s.GetMe(ctx, bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListHidesPasswordHashes(t *testing.T) {
	repo := &memUsers{users: map[uuid.UUID]user.User{}}
	seed(repo, "alice", "alice@example.com", user.RoleUser)

	users, err := NewService(repo).List(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}
