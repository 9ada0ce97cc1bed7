package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// AuthSubjectHeader carries the caller identity set by the fronting proxy.
	AuthSubjectHeader = "X-Auth-Subject"
	// AuthRoleHeader carries the caller role set by the fronting proxy.
	AuthRoleHeader = "X-Auth-Role"

	// AuthSubjectLocalKey and AuthRoleLocalKey are the context locals keys.
	AuthSubjectLocalKey = "auth_subject"
	AuthRoleLocalKey    = "auth_role"
)

// Role names, ordered by privilege.
const (
	RoleAuthor  = "author"
	RoleSteward = "steward"
	RoleAdmin   = "admin"
)

var roleRank = map[string]int{
	RoleAuthor:  1,
	RoleSteward: 2,
	RoleAdmin:   3,
}

// Identity extracts the trusted identity headers into context locals. The
// service sits behind a proxy that authenticates callers, so the headers are
// taken at face value; requests without a subject stay anonymous and are only
// rejected where a role is required.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(AuthSubjectLocalKey, c.Get(AuthSubjectHeader))
		c.Locals(AuthRoleLocalKey, c.Get(AuthRoleHeader))
		return c.Next()
	}
}

// Subject returns the authenticated subject, or "" for anonymous requests.
func Subject(c *fiber.Ctx) string {
	s, _ := c.Locals(AuthSubjectLocalKey).(string)
	return s
}

// RequireRole rejects requests whose role ranks below the minimum. A missing
// subject is always a 401; an unknown or insufficient role is a 403.
func RequireRole(minimum string) fiber.Handler {
	want := roleRank[minimum]
	return func(c *fiber.Ctx) error {
		if Subject(c) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		role, _ := c.Locals(AuthRoleLocalKey).(string)
		if roleRank[role] < want {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}
