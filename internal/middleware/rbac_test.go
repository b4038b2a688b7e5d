package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name   string
		userID interface{}
		role   interface{}
		status int
	}{
		{name: "teacher allowed", userID: uint(1), role: "Teacher", status: fiber.StatusOK},
		{name: "admin allowed", userID: uint(2), role: " admin ", status: fiber.StatusOK},
		{name: "student forbidden", userID: uint(3), role: "student", status: fiber.StatusForbidden},
		{name: "missing role forbidden", userID: uint(4), status: fiber.StatusForbidden},
		{name: "anonymous rejected", role: "admin", status: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				if tc.role != nil {
					c.Locals("user_role", tc.role)
				}
				return c.Next()
			})
			app.Use(RequireRole(RoleTeacher, RoleAdmin))
			app.Get("/marks", func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/marks", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
