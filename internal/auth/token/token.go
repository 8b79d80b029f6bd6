// Package token issues and verifies the signed bearer tokens handed out on
// register and login.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goserg/rolegate/internal/auth/users"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// Claims is the token payload. Rolename is the only claim role gates look at.
type Claims struct {
	Username string `json:"username"`
	Rolename string `json:"rolename"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret []byte
	TTL    time.Duration
}

type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

func (i *Issuer) Issue(user users.User) (string, error) {
	now := i.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: user.Name,
		Rolename: user.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	})
	return t.SignedString(i.cfg.Secret)
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(cfg Config) *Verifier {
	return newVerifier(cfg, time.Now)
}

func newVerifier(cfg Config, now func() time.Time) *Verifier {
	return &Verifier{
		secret: cfg.Secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}
}

// Verify checks the signature and expiry of raw and returns its claims.
// The error is ErrExpired or ErrInvalid, wrapping the parser error.
func (v *Verifier) Verify(raw string) (Claims, error) {
	var claims Claims
	t, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, errors.Join(ErrExpired, err)
		}
		return Claims{}, errors.Join(ErrInvalid, err)
	}
	if !t.Valid {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}
