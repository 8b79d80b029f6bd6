package web

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goserg/rolegate/internal/auth/token"
	"github.com/sirupsen/logrus"
)

const claimsKey = "claims"

type TokenVerifier interface {
	Verify(raw string) (token.Claims, error)
}

// Restricted rejects requests without a valid bearer token and stores the
// decoded claims for later handlers. It must run before CheckRole.
func Restricted(verifier TokenVerifier, log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			tokenVerifications.WithLabelValues("missing").Inc()
			return newAPIError(fiber.StatusUnauthorized, msgUnauthorized, nil)
		}
		claims, err := verifier.Verify(raw)
		if err != nil {
			outcome := "invalid"
			if errors.Is(err, token.ErrExpired) {
				outcome = "expired"
			}
			tokenVerifications.WithLabelValues(outcome).Inc()
			log.WithError(err).WithField("path", c.Path()).Debug("token rejected")
			return newAPIError(fiber.StatusUnauthorized, msgUnauthorized, err)
		}
		tokenVerifications.WithLabelValues("valid").Inc()
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// CheckRole builds a handler that lets the request through only when the
// claims stored by Restricted carry exactly the given role.
func CheckRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Rolename != role {
			roleChecks.WithLabelValues(role, "denied").Inc()
			return newAPIError(fiber.StatusForbidden, msgForbidden, nil)
		}
		roleChecks.WithLabelValues(role, "allowed").Inc()
		return c.Next()
	}
}

// ClaimsFrom returns the claims attached by Restricted.
func ClaimsFrom(c *fiber.Ctx) (token.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(token.Claims)
	return claims, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func requestLogger(log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("request")
		return nil
	}
}
