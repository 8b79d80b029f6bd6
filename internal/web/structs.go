package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goserg/rolegate/internal/auth/users"
)

type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// parseCredentials reads a JSON or form body. Field validation is left to
// the auth service.
func parseCredentials(c *fiber.Ctx) (users.Credentials, error) {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return users.Credentials{}, newAPIError(fiber.StatusBadRequest, msgBadBody, err)
	}
	return users.Credentials{
		Username: req.Username,
		Password: req.Password,
	}, nil
}
