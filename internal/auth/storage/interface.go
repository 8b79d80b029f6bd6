package storage

import (
	"context"
	"errors"

	"github.com/goserg/rolegate/internal/auth/users"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrUserExists  = errors.New("user already exists")
	ErrUnknownRole = errors.New("unknown role")
)

type AuthStorage interface {
	// CreateUser stores user with the role called roleName and returns the
	// stored record with its role name resolved.
	CreateUser(ctx context.Context, user users.User, roleName string) (users.User, error)
	GetUserByName(ctx context.Context, name string) (users.User, error)
	ListUsers(ctx context.Context) ([]users.User, error)
	EnsureRoles(ctx context.Context, roles []string) error
	Close() error
}
