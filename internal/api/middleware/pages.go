package middleware

import (
	"net/http"
	"strings"

	"github.com/Rrens/salespulse/internal/domain"
	"github.com/google/uuid"
)

// ManagerPages guards frontend pages reserved for admins and owners.
// Unauthenticated visitors go to /login, lower roles to /dashboard.
func (m *AuthMiddleware) ManagerPages(prefixes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchesPrefix(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := m.sessions.Authenticate(r.Context(), m.token(r))
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			workspaceID, err := m.workspaceID(r)
			if err != nil || workspaceID == uuid.Nil {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}

			actor, err := m.sessions.Resolve(r.Context(), identity, workspaceID)
			if err != nil || !actor.Role.AtLeast(domain.RoleAdmin) {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
