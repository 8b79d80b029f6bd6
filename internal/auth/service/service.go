package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/goserg/rolegate/internal/auth/storage"
	"github.com/goserg/rolegate/internal/auth/users"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	BcryptCost   int
	DefaultRole  string
	RootUsername string
	RootPassword string
}

type TokenIssuer interface {
	Issue(user users.User) (string, error)
}

type Service struct {
	storage storage.AuthStorage
	issuer  TokenIssuer
	cfg     Config
	log     *logrus.Entry
	now     func() time.Time
}

func New(l *logrus.Logger, cfg Config, storage storage.AuthStorage, issuer TokenIssuer) *Service {
	return &Service{
		storage: storage,
		issuer:  issuer,
		cfg:     cfg,
		log: l.WithFields(map[string]interface{}{
			"from": "auth-service",
		}),
		now: time.Now,
	}
}

// Bootstrap creates the root admin account when a root password is
// configured and no user with the root name exists yet.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.cfg.RootPassword == "" {
		return nil
	}
	creds := normalizeCredentials(users.Credentials{Username: s.cfg.RootUsername, Password: s.cfg.RootPassword})
	if err := validateCredentials(creds); err != nil {
		return err
	}
	_, err := s.storage.GetUserByName(ctx, creds.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return &StoreError{Op: "find root user", Err: err}
	}
	user, err := s.createUser(ctx, creds, users.RoleAdmin)
	if err != nil {
		return err
	}
	s.log.WithField("username", user.Name).Info("root user created")
	return nil
}

// Register validates creds, stores the user with the default role and
// returns the stored user together with a freshly issued token.
func (s *Service) Register(ctx context.Context, creds users.Credentials) (users.User, string, error) {
	creds = normalizeCredentials(creds)
	if err := validateCredentials(creds); err != nil {
		return users.User{}, "", err
	}
	user, err := s.createUser(ctx, creds, s.cfg.DefaultRole)
	if err != nil {
		return users.User{}, "", err
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return users.User{}, "", err
	}
	s.log.WithFields(logrus.Fields{
		"username": user.Name,
		"role":     user.RoleName,
	}).Info("user registered")
	return user, token, nil
}

func (s *Service) createUser(ctx context.Context, creds users.Credentials, role string) (users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cfg.BcryptCost)
	if err != nil {
		return users.User{}, err
	}
	user, err := s.storage.CreateUser(ctx, users.User{
		ID:           uuid.New(),
		Name:         creds.Username,
		PasswordHash: hash,
		RegisteredAt: s.now().UTC(),
	}, role)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return users.User{}, &ValidationError{Reason: reasonUsernameTaken, Err: err}
		}
		return users.User{}, &StoreError{Op: "create user", Err: err}
	}
	return user, nil
}

// Login checks creds against the stored hash and returns a new token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, creds users.Credentials) (string, error) {
	creds = normalizeCredentials(creds)
	if err := validateCredentials(creds); err != nil {
		return "", err
	}
	user, err := s.storage.GetUserByName(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("username", creds.Username).Debug("login for unknown user")
			return "", ErrInvalidCredentials
		}
		return "", &StoreError{Op: "find user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		s.log.WithField("username", creds.Username).Debug("password mismatch")
		return "", ErrInvalidCredentials
	}
	return s.issuer.Issue(user)
}

func (s *Service) ListUsers(ctx context.Context) ([]users.User, error) {
	list, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list users", Err: err}
	}
	return list, nil
}
