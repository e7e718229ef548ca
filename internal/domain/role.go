package domain

import (
	"fmt"
	"strings"
)

// Role is a workspace membership role. Roles are totally ordered:
// owner > admin > member > viewer.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Roles lists every role from most to least privileged
var Roles = []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

// legacyRoles maps the older manager/sales_rep/appointment_setter scheme
// onto the canonical hierarchy.
var legacyRoles = map[string]Role{
	"manager":            RoleAdmin,
	"sales_rep":          RoleMember,
	"appointment_setter": RoleMember,
}

// Level returns the position of the role in the hierarchy; 0 for unknown roles
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleMember:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the canonical roles
func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast reports whether r carries every capability of other
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && r.Level() >= other.Level()
}

// IsManager reports whether r may manage the workspace (admin or owner)
func (r Role) IsManager() bool {
	return r.AtLeast(RoleAdmin)
}

// In reports whether r is one of roles
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a stored or legacy role name into a canonical Role
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if role := Role(name); role.Valid() {
		return role, nil
	}
	if role, ok := legacyRoles[name]; ok {
		return role, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RoleInfo describes a role for clients that render permission-aware UI
type RoleInfo struct {
	Role         Role     `json:"role"`
	Level        int      `json:"level"`
	Capabilities []string `json:"capabilities"`
}

// Hierarchy returns the role ordering shared with client-side permission checks
func Hierarchy() []RoleInfo {
	capabilities := map[Role][]string{
		RoleViewer: {"eod:read:own", "products:read", "organization:read"},
		RoleMember: {"eod:write:own", "team:read"},
		RoleAdmin:  {"eod:read:all", "eod:delete", "products:write", "team:invite", "team:update", "organization:update"},
		RoleOwner:  {"team:remove", "team:grant-owner", "organization:plan"},
	}

	infos := make([]RoleInfo, 0, len(Roles))
	for _, role := range Roles {
		var caps []string
		for _, lower := range Roles {
			if role.AtLeast(lower) {
				caps = append(caps, capabilities[lower]...)
			}
		}
		infos = append(infos, RoleInfo{Role: role, Level: role.Level(), Capabilities: caps})
	}
	return infos
}
