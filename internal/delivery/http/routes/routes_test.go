package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"unimarket/internal/config"
	"unimarket/internal/delivery/http/handler"
	"unimarket/internal/delivery/http/middleware"
	"unimarket/internal/domain/audit"
	"unimarket/internal/domain/user"
	"unimarket/internal/pkg/jwt"
	"unimarket/internal/pkg/validation"
	"unimarket/internal/usecase"
	"unimarket/internal/usecase/achievement"
	ucauth "unimarket/internal/usecase/auth"
	"unimarket/internal/usecase/community"
	"unimarket/internal/usecase/enterprise"
	"unimarket/internal/usecase/job"
	"unimarket/internal/usecase/merchant"
	"unimarket/internal/usecase/org"
	"unimarket/internal/usecase/recommendation"
	useruc "unimarket/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) Register(context.Context, ucauth.RegisterInput) (user.User, usecase.TokenPair, error) {
	return user.User{}, usecase.TokenPair{}, ucauth.ErrUsernameTaken
}

func (stubAuth) Login(_ context.Context, in ucauth.LoginInput) (user.User, usecase.TokenPair, error) {
	if in.Password != "s3cret-pass" {
		return user.User{}, usecase.TokenPair{}, ucauth.ErrInvalidCredentials
	}
	return user.User{ID: uuid.New(), Username: in.Account, Roles: []string{user.RoleUser}},
		usecase.TokenPair{AccessToken: "a", RefreshToken: "r", AccessExpiresAt: time.Now(), RefreshExpiresAt: time.Now()}, nil
}

func (stubAuth) Refresh(context.Context, string) (usecase.TokenPair, error) {
	return usecase.TokenPair{}, usecase.ErrInvalidRefreshToken
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Log
}

func (r *recordingAudit) Record(_ context.Context, l audit.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, l)
	return nil
}

type fixture struct {
	app   *fiber.App
	jwt   jwt.Service
	audit *recordingAudit
}

// newFixture wires handlers over services without repositories; every request
// exercised here is answered before a repository would be reached.
func newFixture(t *testing.T, backends ...string) *fixture {
	t.Helper()

	jwtSvc := jwt.NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	enterprises := enterprise.NewService(nil)
	jobs := job.NewService(nil, nil, enterprises, nil)
	h := Handlers{
		Health:         handler.NewHealthHandler(config.AppConfig{AppName: "unimarket"}, nil, nil),
		Auth:           handler.NewAuthHandler(stubAuth{}, ucauth.NewService(nil, nil)),
		User:           handler.NewUserHandler(useruc.NewService(nil)),
		Merchant:       handler.NewMerchantHandler(merchant.NewService(nil, nil)),
		Enterprise:     handler.NewEnterpriseHandler(enterprises),
		Job:            handler.NewJobHandler(jobs),
		Org:            handler.NewOrgHandler(org.NewService(nil, nil)),
		Community:      handler.NewCommunityHandler(community.NewService(community.Repositories{}, nil, nil, nil, nil)),
		Recommendation: handler.NewRecommendationHandler(recommendation.NewService(nil, jobs, nil, 10, nil)),
		Achievement:    handler.NewAchievementHandler(achievement.NewService(nil, nil)),
		Audit:          handler.NewAuditHandler(nil),
	}

	rec := &recordingAudit{}
	app := fiber.New(fiber.Config{StructValidator: validation.New()})
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	NewRegistry(
		config.AppConfig{Backends: backends},
		h,
		middleware.NewAuthMiddleware(jwtSvc),
		middleware.NewAuditMiddleware(rec, nil),
	).Register(app)

	return &fixture{app: app, jwt: jwtSvc, audit: rec}
}

func (f *fixture) token(t *testing.T, id uuid.UUID, roles ...string) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateAccessToken(jwt.Subject{UserID: id, Username: "u", Roles: roles})
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodPost, "/api/v1/merchants"},
		{http.MethodPost, "/api/v1/community/topics"},
		{http.MethodGet, "/api/v1/recommendations/jobs"},
		{http.MethodGet, "/api/v1/auth/oauth/identities"},
	} {
		status, body := f.do(t, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, status, tc.path)
		assert.Equal(t, "Unauthorized", body["message"], tc.path)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/admin/users", f.token(t, uuid.New(), user.RoleUser), "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient role", body["message"])
}

func TestAuditRecordsRejectedAdminAction(t *testing.T) {
	f := newFixture(t)
	adminID := uuid.New()

	status, body := f.do(t, http.MethodDelete, "/api/v1/admin/users/"+adminID.String(), f.token(t, adminID, user.RoleUser, user.RoleAdmin), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, useruc.ErrCannotDeleteSelf.Error(), body["message"])

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, "user.delete", entry.Action)
	assert.Equal(t, http.StatusBadRequest, entry.Status)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, adminID, *entry.UserID)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/auth/register", "", `{"username":"a","email":"nope","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	fields, ok := body["data"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/auth/register", "", `{"username":"alice","email":"a@x.io","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already taken", body["message"])
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"account":"alice","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Bearer", data["token_type"])
	assert.Equal(t, "alice", data["user"].(map[string]any)["username"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"account":"alice","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRefreshNeedsBearer(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := f.do(t, http.MethodPost, "/api/v1/auth/refresh", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid refresh token", body["message"])
}

func TestMalformedIDs(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t, uuid.New(), user.RoleUser)

	for _, path := range []string{
		"/api/v1/merchants/not-a-uuid",
		"/api/v1/jobs/not-a-uuid",
		"/api/v1/courses/not-a-uuid",
		"/api/v1/community/topics/not-a-uuid",
		"/api/v1/applications/not-a-uuid",
	} {
		status, _ := f.do(t, http.MethodGet, path, tok, "")
		assert.Equal(t, http.StatusBadRequest, status, path)
	}
}

func TestUnknownCommunityKind(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/api/v1/community/widgets", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, http.MethodGet, "/api/v1/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/merchants", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Public reads under a protected prefix still reach their handler.
	status, _ = f.do(t, http.MethodGet, "/api/v1/jobs?limit=ten", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPagingMustBeNumeric(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/jobs?limit=ten", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "limit must be an integer", body["message"])
}

func TestDisabledBackendIsNotMounted(t *testing.T) {
	f := newFixture(t, config.BackendCollab)
	tok := f.token(t, uuid.New(), user.RoleUser)

	status, _ := f.do(t, http.MethodGet, "/api/v1/merchants", tok, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/jobs", tok, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/courses/not-a-uuid", tok, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthWithoutDatabase(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "unimarket", data["app"])
	assert.Equal(t, false, data["database_healthy"])
}
