package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	customMiddleware "github.com/Rrens/salespulse/internal/api/middleware"
	"github.com/Rrens/salespulse/internal/config"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/security"
	"github.com/Rrens/salespulse/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects repository writes and audit actions across the stubs
type recorder struct {
	mu      sync.Mutex
	writes  []string
	actions []string
}

func (r *recorder) write(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, name)
}

func (r *recorder) Log(_ context.Context, event domain.SecurityEvent, _ domain.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, event.Action)
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...), append([]string(nil), r.actions...)
}

type stubReports struct{ rec *recorder }

func (s stubReports) Upsert(context.Context, *domain.EODReport) (bool, error) {
	s.rec.write("eod.upsert")
	return true, nil
}

func (s stubReports) GetByID(_ context.Context, workspaceID, id uuid.UUID, _ *uuid.UUID) (*domain.EODReport, error) {
	return &domain.EODReport{ID: id, WorkspaceID: workspaceID, ReportDate: "2024-05-01"}, nil
}

func (s stubReports) List(context.Context, uuid.UUID, domain.EODFilter) ([]domain.EODReport, int, error) {
	return nil, 0, nil
}

func (s stubReports) Summary(context.Context, uuid.UUID, domain.EODFilter) (*domain.EODSummary, error) {
	return &domain.EODSummary{}, nil
}

func (s stubReports) Update(_ context.Context, workspaceID, id uuid.UUID, _ *uuid.UUID, _ *domain.EODReportUpdate) (*domain.EODReport, error) {
	s.rec.write("eod.update")
	return &domain.EODReport{ID: id, WorkspaceID: workspaceID, ReportDate: "2024-05-01"}, nil
}

func (s stubReports) Delete(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	s.rec.write("eod.delete")
	return true, nil
}

type stubProducts struct{ rec *recorder }

func (s stubProducts) Create(context.Context, *domain.Product) error {
	s.rec.write("product.create")
	return nil
}

func (s stubProducts) GetByID(_ context.Context, workspaceID, id uuid.UUID) (*domain.Product, error) {
	return &domain.Product{ID: id, WorkspaceID: workspaceID, Name: "Solar Panel", Category: "Hardware", IsActive: true}, nil
}

func (s stubProducts) List(context.Context, uuid.UUID, domain.ProductFilter) ([]domain.Product, int, error) {
	return nil, 0, nil
}

func (s stubProducts) Update(_ context.Context, workspaceID, id uuid.UUID, _ *domain.ProductUpdate) (*domain.Product, error) {
	s.rec.write("product.update")
	return &domain.Product{ID: id, WorkspaceID: workspaceID, Name: "Solar Panel", Category: "Hardware"}, nil
}

func (s stubProducts) Categories(context.Context, uuid.UUID) ([]string, error) {
	return []string{"Hardware"}, nil
}

// stubMembers resolves sessions from roles and treats every other id as a
// plain member of the workspace.
type stubMembers struct {
	rec   *recorder
	roles map[uuid.UUID]domain.Role
}

func (s stubMembers) GetActiveMember(_ context.Context, workspaceID, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	role, ok := s.roles[userID]
	if !ok {
		return nil, nil
	}
	return &domain.WorkspaceMember{ID: uuid.New(), WorkspaceID: workspaceID, UserID: userID, Role: role, IsActive: true}, nil
}

func (s stubMembers) GetByID(_ context.Context, workspaceID, id uuid.UUID) (*domain.WorkspaceMember, error) {
	return &domain.WorkspaceMember{ID: id, WorkspaceID: workspaceID, UserID: uuid.New(), Role: domain.RoleMember, IsActive: true}, nil
}

func (s stubMembers) FindByEmail(context.Context, uuid.UUID, string) (*domain.WorkspaceMember, error) {
	return nil, nil
}

func (s stubMembers) List(context.Context, uuid.UUID, domain.TeamFilter) ([]domain.WorkspaceMember, int, error) {
	return nil, 0, nil
}

func (s stubMembers) Update(_ context.Context, workspaceID, id uuid.UUID, _ *domain.MemberUpdate) (*domain.WorkspaceMember, error) {
	s.rec.write("member.update")
	return &domain.WorkspaceMember{ID: id, WorkspaceID: workspaceID, UserID: uuid.New(), Role: domain.RoleMember}, nil
}

func (s stubMembers) ListMemberships(context.Context, uuid.UUID) ([]domain.Membership, error) {
	return nil, nil
}

type stubInvitations struct{ rec *recorder }

func (s stubInvitations) Create(context.Context, *domain.Invitation) error {
	s.rec.write("invitation.create")
	return nil
}

func (s stubInvitations) HasPending(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (s stubInvitations) GetPendingByTokenHash(context.Context, string) (*domain.Invitation, error) {
	return nil, nil
}

func (s stubInvitations) ListPending(context.Context, uuid.UUID) ([]domain.Invitation, error) {
	return nil, nil
}

func (s stubInvitations) Revoke(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	s.rec.write("invitation.revoke")
	return true, nil
}

func (s stubInvitations) Accept(_ context.Context, inv *domain.Invitation, userID uuid.UUID) (*domain.WorkspaceMember, error) {
	s.rec.write("invitation.accept")
	return &domain.WorkspaceMember{ID: uuid.New(), WorkspaceID: inv.WorkspaceID, UserID: userID, Role: inv.Role, IsActive: true}, nil
}

type stubWorkspaces struct{ rec *recorder }

func (s stubWorkspaces) GetByID(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	return &domain.Workspace{ID: id, Name: "Acme Solar", IsActive: true}, nil
}

func (s stubWorkspaces) Update(_ context.Context, id uuid.UUID, _ *domain.WorkspaceUpdate) (*domain.Workspace, error) {
	s.rec.write("workspace.update")
	return &domain.Workspace{ID: id, Name: "Renamed", IsActive: true}, nil
}

func (s stubWorkspaces) CountActiveMembers(context.Context, uuid.UUID) (int, error) {
	return 1, nil
}

type routeFixture struct {
	router      http.Handler
	rec         *recorder
	tokens      map[domain.Role]string
	workspaceID uuid.UUID
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "route-test-secret",
			SessionCookie:   "sb-access-token",
			WorkspaceCookie: "sb-workspace-id",
		},
	}

	rec := &recorder{}
	members := stubMembers{rec: rec, roles: map[uuid.UUID]domain.Role{}}
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, "")

	tokens := map[domain.Role]string{}
	for _, role := range domain.Roles {
		userID := uuid.New()
		members.roles[userID] = role
		token, err := jwtManager.GenerateAccessToken(userID, string(role)+"@example.com", time.Hour)
		require.NoError(t, err)
		tokens[role] = token
	}

	repos := repositories{
		workspaces:  stubWorkspaces{rec: rec},
		members:     members,
		invitations: stubInvitations{rec: rec},
		reports:     stubReports{rec: rec},
		products:    stubProducts{rec: rec},
	}

	auth := customMiddleware.NewAuthMiddleware(service.NewSessionService(jwtManager, members, rec), cfg.Auth)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		mountAPI(r, auth, newAPIHandlers(cfg, repos, nil, rec))
	})

	return &routeFixture{router: r, rec: rec, tokens: tokens, workspaceID: uuid.New()}
}

func (f *routeFixture) do(method, path, body string, role domain.Role) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[role])
	}
	req.Header.Set(customMiddleware.WorkspaceHeader, f.workspaceID.String())

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RoleGates(t *testing.T) {
	id := uuid.NewString()
	everyone := []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleMember, domain.RoleViewer}
	writers := []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleMember}
	managers := []domain.Role{domain.RoleOwner, domain.RoleAdmin}
	owners := []domain.Role{domain.RoleOwner}

	tests := []struct {
		method  string
		path    string
		body    string
		allowed []domain.Role
	}{
		{http.MethodGet, "/api/eod", "", everyone},
		{http.MethodGet, "/api/eod/summary", "", everyone},
		{http.MethodPost, "/api/eod", `{"reportDate":"2024-05-01","callsMade":12}`, writers},
		{http.MethodGet, "/api/eod/" + id, "", everyone},
		{http.MethodPut, "/api/eod/" + id, `{"callsMade":20}`, writers},
		{http.MethodDelete, "/api/eod/" + id, "", managers},

		{http.MethodGet, "/api/products", "", everyone},
		{http.MethodGet, "/api/products/categories", "", everyone},
		{http.MethodPost, "/api/products", `{"name":"Solar Panel","category":"Hardware","price":999}`, managers},
		{http.MethodGet, "/api/products/" + id, "", everyone},
		{http.MethodPut, "/api/products/" + id, `{"price":899}`, managers},
		{http.MethodDelete, "/api/products/" + id, "", managers},

		{http.MethodGet, "/api/team", "", writers},
		{http.MethodPost, "/api/team", `{"email":"new.rep@example.com","role":"member"}`, managers},
		{http.MethodGet, "/api/team/invitations", "", managers},
		{http.MethodDelete, "/api/team/invitations/" + id, "", managers},
		{http.MethodGet, "/api/team/" + id, "", managers},
		{http.MethodPut, "/api/team/" + id, `{"role":"viewer"}`, managers},
		{http.MethodDelete, "/api/team/" + id, "", owners},

		{http.MethodGet, "/api/organization", "", everyone},
		{http.MethodPut, "/api/organization", `{"name":"Renamed"}`, managers},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			for _, role := range everyone {
				f := newRouteFixture(t)
				rec := f.do(tt.method, tt.path, tt.body, role)
				writes, actions := f.rec.snapshot()

				if role.In(tt.allowed...) {
					assert.Less(t, rec.Code, 300, "%s: %s", role, rec.Body.String())
					assert.NotContains(t, actions, domain.ActionAccessDenied, role)
					continue
				}

				assert.Equal(t, http.StatusForbidden, rec.Code, "%s: %s", role, rec.Body.String())
				assert.Empty(t, writes, role)
				assert.Contains(t, actions, domain.ActionAccessDenied, role)
			}

			f := newRouteFixture(t)
			rec := f.do(tt.method, tt.path, tt.body, "")
			writes, _ := f.rec.snapshot()
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, writes)
		})
	}
}

func TestRouter_MutationsReachRepositories(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
		body   string
		role   domain.Role
		write  string
	}{
		{http.MethodPost, "/api/eod", `{"callsMade":12}`, domain.RoleMember, "eod.upsert"},
		{http.MethodDelete, "/api/eod/" + id, "", domain.RoleAdmin, "eod.delete"},
		{http.MethodDelete, "/api/products/" + id, "", domain.RoleAdmin, "product.update"},
		{http.MethodPost, "/api/team", `{"email":"new.rep@example.com","role":"viewer"}`, domain.RoleAdmin, "invitation.create"},
		{http.MethodDelete, "/api/team/" + id, "", domain.RoleOwner, "member.update"},
		{http.MethodPut, "/api/organization", `{"name":"Renamed"}`, domain.RoleAdmin, "workspace.update"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			f := newRouteFixture(t)
			rec := f.do(tt.method, tt.path, tt.body, tt.role)
			writes, _ := f.rec.snapshot()

			assert.Less(t, rec.Code, 300, rec.Body.String())
			assert.Equal(t, []string{tt.write}, writes)
		})
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	f := newRouteFixture(t)

	for _, path := range []string{"/api/health", "/api/ready", "/api/roles"} {
		rec := f.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_WorkspaceRoutesNeedMembership(t *testing.T) {
	f := newRouteFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/eod", nil)
	req.Header.Set("Authorization", "Bearer "+f.tokens[domain.RoleOwner])

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stranger := security.NewJWTManager("route-test-secret", "")
	token, err := stranger.GenerateAccessToken(uuid.New(), "stranger@example.com", time.Hour)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/eod", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(customMiddleware.WorkspaceHeader, f.workspaceID.String())
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
