package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goserg/rolegate/internal/auth/token"
	"github.com/goserg/rolegate/internal/auth/users"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims token.Claims
	err    error
	calls  int
}

func (v *stubVerifier) Verify(string) (token.Claims, error) {
	v.calls++
	return v.claims, v.err
}

func newGateApp(t *testing.T, verifier TokenVerifier, role string) *fiber.App {
	t.Helper()
	l, _ := test.NewNullLogger()
	s := &Server{log: l.WithField("from", "web")}
	app := fiber.New(fiber.Config{ErrorHandler: s.errorHandler})
	app.Get("/open", Restricted(verifier, s.log), func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		return c.SendString(claims.Username)
	})
	app.Get("/gated", Restricted(verifier, s.log), CheckRole(role), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/ungated-role", CheckRole(role), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body messageResponse
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body.Message
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
		{header: "BEARER   abc", want: "abc"},
		{header: "Basic dXNlcjpwYXNz", want: ""},
		{header: "Bearer", want: ""},
		{header: "abc.def.ghi", want: ""},
		{header: "Bearer a b", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bearerToken(tt.header), tt.header)
	}
}

func TestRestricted(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		v := &stubVerifier{}
		code, msg := doGet(t, newGateApp(t, v, users.RoleAdmin), "/open", "")
		assert.Equal(t, fiber.StatusUnauthorized, code)
		assert.Equal(t, msgUnauthorized, msg)
		assert.Zero(t, v.calls)
	})

	t.Run("malformed header", func(t *testing.T) {
		v := &stubVerifier{}
		for _, h := range []string{"Token abc", "Bearer", "Bearer a b c", "   "} {
			code, _ := doGet(t, newGateApp(t, v, users.RoleAdmin), "/open", h)
			assert.Equal(t, fiber.StatusUnauthorized, code, h)
		}
		assert.Zero(t, v.calls)
	})

	t.Run("invalid token", func(t *testing.T) {
		v := &stubVerifier{err: errors.Join(token.ErrInvalid, errors.New("signature is invalid"))}
		code, msg := doGet(t, newGateApp(t, v, users.RoleAdmin), "/open", "Bearer forged")
		assert.Equal(t, fiber.StatusUnauthorized, code)
		assert.Equal(t, msgUnauthorized, msg)
	})

	t.Run("expired token", func(t *testing.T) {
		v := &stubVerifier{err: token.ErrExpired}
		code, _ := doGet(t, newGateApp(t, v, users.RoleAdmin), "/open", "Bearer old")
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})

	t.Run("valid token", func(t *testing.T) {
		v := &stubVerifier{claims: token.Claims{Username: "alice", Rolename: users.RoleUser}}
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, err := newGateApp(t, v, users.RoleAdmin).Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, v.calls)
	})
}

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name     string
		rolename string
		want     int
	}{
		{name: "matching role", rolename: users.RoleAdmin, want: fiber.StatusNoContent},
		{name: "other role", rolename: users.RoleUser, want: fiber.StatusForbidden},
		{name: "empty role", rolename: "", want: fiber.StatusForbidden},
		{name: "case differs", rolename: "Admin", want: fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVerifier{claims: token.Claims{Username: "x", Rolename: tt.rolename}}
			code, _ := doGet(t, newGateApp(t, v, users.RoleAdmin), "/gated", "Bearer tok")
			assert.Equal(t, tt.want, code)
		})
	}

	t.Run("no claims attached", func(t *testing.T) {
		code, msg := doGet(t, newGateApp(t, &stubVerifier{}, users.RoleAdmin), "/ungated-role", "")
		assert.Equal(t, fiber.StatusForbidden, code)
		assert.Equal(t, msgForbidden, msg)
	})

	t.Run("gate never runs without token", func(t *testing.T) {
		code, _ := doGet(t, newGateApp(t, &stubVerifier{}, users.RoleAdmin), "/gated", "")
		assert.Equal(t, fiber.StatusUnauthorized, code)
	})
}
