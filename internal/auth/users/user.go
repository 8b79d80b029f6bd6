package users

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"username"`
	RoleName     string    `json:"rolename"`
	PasswordHash []byte    `json:"-"`
	RegisteredAt time.Time `json:"created_at"`
}

type Role struct {
	ID   int32
	Name string
}

// Credentials is the raw username/password pair submitted on register and login.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required,alphanum,max=72"`
}
