package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/config"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WorkspaceHeader names the workspace the request acts in
const WorkspaceHeader = "X-Workspace-ID"

// SessionResolver turns a session token and workspace id into an actor
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
	Resolve(ctx context.Context, identity domain.Identity, workspaceID uuid.UUID) (domain.Actor, error)
	Deny(ctx context.Context, actor domain.Actor, required []domain.Role)
}

// AuthMiddleware authenticates sessions and resolves workspace roles
type AuthMiddleware struct {
	sessions        SessionResolver
	sessionCookie   string
	workspaceCookie string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions SessionResolver, cfg config.AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:        sessions,
		sessionCookie:   cfg.SessionCookie,
		workspaceCookie: cfg.WorkspaceCookie,
	}
}

func (m *AuthMiddleware) token(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if m.sessionCookie != "" {
		if c, err := r.Cookie(m.sessionCookie); err == nil {
			return c.Value
		}
	}
	return ""
}

// workspaceID returns the requested workspace, or uuid.Nil with a nil error
// when none was sent.
func (m *AuthMiddleware) workspaceID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(WorkspaceHeader))
	if raw == "" && m.workspaceCookie != "" {
		if c, err := r.Cookie(m.workspaceCookie); err == nil {
			raw = strings.TrimSpace(c.Value)
		}
	}
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.Invalid("invalid workspace ID", domain.FieldError{Field: WorkspaceHeader, Message: "must be a UUID"})
	}
	return id, nil
}

// Authenticate validates the session token and stores the identity
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.sessions.Authenticate(r.Context(), m.token(r))
		if err != nil {
			response.Fail(w, err, false)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// ResolveWorkspace requires a workspace id and an active membership in it.
// It must run after Authenticate.
func (m *AuthMiddleware) ResolveWorkspace(next http.Handler) http.Handler {
	return m.resolve(next, true)
}

// OptionalWorkspace resolves the workspace when the request names one
func (m *AuthMiddleware) OptionalWorkspace(next http.Handler) http.Handler {
	return m.resolve(next, false)
}

func (m *AuthMiddleware) resolve(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentity(r.Context())
		if !ok {
			response.Unauthorized(w, "authentication required")
			return
		}

		workspaceID, err := m.workspaceID(r)
		if err != nil {
			response.Fail(w, err, false)
			return
		}
		if workspaceID == uuid.Nil {
			if required {
				response.BadRequest(w, "missing workspace ID")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		actor, err := m.sessions.Resolve(r.Context(), identity, workspaceID)
		if err != nil {
			if domain.KindOf(err) == domain.KindInternal {
				log.Error().Err(err).Str("workspace_id", workspaceID.String()).Msg("Failed to resolve workspace membership")
			}
			response.Fail(w, err, false)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRoles rejects actors whose role is not one of roles. It must run
// after ResolveWorkspace, so a missing session is reported before a
// missing role.
func (m *AuthMiddleware) RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}
			if !actor.Role.In(roles...) {
				m.sessions.Deny(r.Context(), actor, roles)
				response.Forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAtLeast admits role and every role above it
func (m *AuthMiddleware) RequireAtLeast(role domain.Role) func(http.Handler) http.Handler {
	var allowed []domain.Role
	for _, r := range domain.Roles {
		if r.AtLeast(role) {
			allowed = append(allowed, r)
		}
	}
	return m.RequireRoles(allowed...)
}
