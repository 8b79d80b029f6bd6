package web

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/goserg/rolegate/internal/auth/users"
	"github.com/goserg/rolegate/internal/config"
	"github.com/goserg/rolegate/internal/web/webpath"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type AuthService interface {
	Register(ctx context.Context, creds users.Credentials) (users.User, string, error)
	Login(ctx context.Context, creds users.Credentials) (string, error)
	ListUsers(ctx context.Context) ([]users.User, error)
}

type Server struct {
	auth AuthService
	app  *fiber.App
	cfg  config.Server
	log  *logrus.Entry
}

func New(l *logrus.Logger, cfg config.Server, authService AuthService, verifier TokenVerifier) *Server {
	server := Server{
		auth: authService,
		cfg:  cfg,
		log: l.WithFields(map[string]interface{}{
			"from": "web",
		}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "rolegate",
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          server.errorHandler,
	})
	app.Use(requestLogger(server.log))

	app.Get(webpath.Health, handleHealth)
	if cfg.Metrics {
		app.Get(webpath.Metrics, adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Post(webpath.Register, server.handleRegister)
	app.Post(webpath.Login, server.handleLogin)

	restricted := Restricted(verifier, server.log)
	adminOnly := CheckRole(users.RoleAdmin)
	app.Get(webpath.Users, restricted, server.handleListUsers)
	app.Post(webpath.Users, restricted, adminOnly, handleNotImplemented)
	app.Put(webpath.User, restricted, adminOnly, handleNotImplemented)
	app.Delete(webpath.User, restricted, adminOnly, handleNotImplemented)

	server.app = app
	return &server
}

func (s *Server) Serve() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	s.log.WithFields(logrus.Fields{"addr": addr, "tls": s.cfg.TLS()}).Info("listening")
	if s.cfg.TLS() {
		return s.app.ListenTLS(addr, s.cfg.TLSCert, s.cfg.TLSKey)
	}
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	creds, err := parseCredentials(c)
	if err != nil {
		registrations.WithLabelValues("invalid").Inc()
		return err
	}
	user, tok, err := s.auth.Register(c.UserContext(), creds)
	if err != nil {
		apiErr := serviceError(err, "error saving new user")
		registrations.WithLabelValues(outcomeFor(apiErr.Code)).Inc()
		return apiErr
	}
	registrations.WithLabelValues("created").Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data":  user,
		"token": tok,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	creds, err := parseCredentials(c)
	if err != nil {
		loginAttempts.WithLabelValues("invalid").Inc()
		return err
	}
	tok, err := s.auth.Login(c.UserContext(), creds)
	if err != nil {
		apiErr := serviceError(err, "db error logging in")
		loginAttempts.WithLabelValues(outcomeFor(apiErr.Code)).Inc()
		return apiErr
	}
	loginAttempts.WithLabelValues("success").Inc()
	return c.JSON(fiber.Map{
		"message": "welcome to the api",
		"token":   tok,
	})
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	list, err := s.auth.ListUsers(c.UserContext())
	if err != nil {
		return serviceError(err, "db error getting users")
	}
	return c.JSON(list)
}

func handleNotImplemented(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(messageResponse{Message: msgNotImplemented})
}

func handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func outcomeFor(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "invalid"
	case fiber.StatusUnauthorized:
		return "denied"
	default:
		return "error"
	}
}
