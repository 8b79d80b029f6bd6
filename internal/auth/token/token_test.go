package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/goserg/rolegate/internal/auth/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	Secret: []byte("super-secret"),
	TTL:    24 * time.Hour,
}

func issueAt(t *testing.T, cfg Config, at time.Time, user users.User) string {
	t.Helper()
	issuer := NewIssuer(cfg)
	issuer.now = func() time.Time { return at }
	tok, err := issuer.Issue(user)
	require.NoError(t, err)
	return tok
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	now := time.Now()
	user := users.User{ID: uuid.New(), Name: "alice", RoleName: users.RoleUser}
	tok := issueAt(t, testConfig, now, user)

	claims, err := newVerifier(testConfig, func() time.Time { return now }).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, users.RoleUser, claims.Rolename)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(testConfig.TTL).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok := issueAt(t, testConfig, now, users.User{ID: uuid.New(), Name: "bob", RoleName: users.RoleAdmin})

	verifier := newVerifier(testConfig, func() time.Time { return now.Add(testConfig.TTL - time.Minute) })
	_, err := verifier.Verify(tok)
	require.NoError(t, err)

	verifier = newVerifier(testConfig, func() time.Time { return now.Add(testConfig.TTL + time.Minute) })
	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok := issueAt(t, Config{Secret: []byte("other"), TTL: time.Hour}, time.Now(), users.User{ID: uuid.New()})
	_, err := NewVerifier(testConfig).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRejectsUnsignedAndForeignAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		Username: "mallory",
		Rolename: users.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testConfig.Secret)
	require.NoError(t, err)

	for _, tok := range []string{none, hs512} {
		_, err := NewVerifier(testConfig).Verify(tok)
		assert.ErrorIs(t, err, ErrInvalid)
	}
}

func TestVerifyRequiresExpiry(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "eve"}).SignedString(testConfig.Secret)
	require.NoError(t, err)
	_, err = NewVerifier(testConfig).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := NewVerifier(testConfig).Verify(raw)
		assert.ErrorIs(t, err, ErrInvalid, raw)
	}
}

func TestTokensForDifferentUsersDiffer(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := issueAt(t, testConfig, now, users.User{ID: uuid.New(), Name: "a", RoleName: users.RoleUser})
	b := issueAt(t, testConfig, now, users.User{ID: uuid.New(), Name: "b", RoleName: users.RoleUser})
	assert.NotEqual(t, a, b)
}
