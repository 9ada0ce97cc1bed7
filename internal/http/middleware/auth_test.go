package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	app := fiber.New()
	app.Use(Identity())
	app.Post("/steward-only", RequireRole(RoleSteward), func(c *fiber.Ctx) error {
		return c.SendString(Subject(c))
	})

	t.Run("missing subject is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/steward-only", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("author role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/steward-only", nil)
		req.Header.Set(AuthSubjectHeader, "alice")
		req.Header.Set(AuthRoleHeader, RoleAuthor)
		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("steward role passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/steward-only", nil)
		req.Header.Set(AuthSubjectHeader, "sam")
		req.Header.Set(AuthRoleHeader, RoleSteward)
		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("admin outranks steward", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/steward-only", nil)
		req.Header.Set(AuthSubjectHeader, "root")
		req.Header.Set(AuthRoleHeader, RoleAdmin)
		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("unknown role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/steward-only", nil)
		req.Header.Set(AuthSubjectHeader, "eve")
		req.Header.Set(AuthRoleHeader, "superuser")
		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}
