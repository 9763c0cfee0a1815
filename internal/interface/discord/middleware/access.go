package middleware

// ══════════════════════════════════════════════════════════════════════════════
// ACCESS MIDDLEWARE
// Two gates on top of command routing: member commands must arrive over
// DM, and reporting commands are restricted to administrators. Admin
// status comes from a user allowlist or a guild role allowlist.
// ══════════════════════════════════════════════════════════════════════════════

// AccessConfig holds the allowlists for access checks.
type AccessConfig struct {
	// AdminUserIDs are user IDs granted administrator commands.
	AdminUserIDs []string

	// AdminRoleIDs are guild role IDs granted administrator commands.
	AdminRoleIDs []string
}

// AccessMiddleware answers admin and DM-only checks for the router.
type AccessMiddleware struct {
	adminUsers map[string]bool
	adminRoles map[string]bool
}

// NewAccessMiddleware creates a new access middleware.
func NewAccessMiddleware(config AccessConfig) *AccessMiddleware {
	m := &AccessMiddleware{
		adminUsers: make(map[string]bool, len(config.AdminUserIDs)),
		adminRoles: make(map[string]bool, len(config.AdminRoleIDs)),
	}
	for _, id := range config.AdminUserIDs {
		m.adminUsers[id] = true
	}
	for _, id := range config.AdminRoleIDs {
		m.adminRoles[id] = true
	}
	return m
}

// IsAdmin reports whether the user counts as an administrator, either
// directly or through one of their guild roles. Role IDs are only
// available on guild messages; DM admin commands rely on the user list.
func (m *AccessMiddleware) IsAdmin(userID string, roleIDs []string) bool {
	if m.adminUsers[userID] {
		return true
	}
	for _, role := range roleIDs {
		if m.adminRoles[role] {
			return true
		}
	}
	return false
}
