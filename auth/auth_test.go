package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"murmur/config"
	"murmur/models"
	"murmur/repositories"
	"murmur/repositories/repotest"
	"murmur/service"
)

var testUser = &models.User{ID: 1, Username: "alice"}

func newAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	users := repositories.NewUserRepository(repotest.Open(t))
	a := New(users, config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour})
	a.cost = bcrypt.MinCost
	return a
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator(t)

	s, err := a.Signup(ctx, SignupInput{
		Username:    "alice",
		DisplayName: "Alice Johnson",
		Email:       "Alice@Example.com",
		Password:    "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	require.NotNil(t, s.User.Email)
	assert.Equal(t, "alice@example.com", *s.User.Email)
	assert.NotEqual(t, "password123", s.User.PasswordHash)

	id, err := a.Resolve(s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, id)

	s2, err := a.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, s2.User.ID)

	_, err = a.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = a.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestSignup_Conflicts(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator(t)
	_, err := a.Signup(ctx, SignupInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = a.Signup(ctx, SignupInput{Username: "bob", Email: "other@example.com", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, "Username already exists", err.Error())

	_, err = a.Signup(ctx, SignupInput{Username: "bobby", Email: "bob@example.com", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrConflict)
	assert.Equal(t, "Email already exists", err.Error())

	// no email is fine, and several users may omit it
	_, err = a.Signup(ctx, SignupInput{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
	_, err = a.Signup(ctx, SignupInput{Username: "dave", Password: "secret1"})
	require.NoError(t, err)
}

func TestResolve_Rejects(t *testing.T) {
	a := newAuthenticator(t)
	other := New(nil, config.Auth{JWTSecret: "other-secret", TokenTTL: time.Hour})

	foreign, err := other.Issue(testUser)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := a.Issue(testUser)
	require.NoError(t, err)
	a.now = time.Now

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": foreign,
		"expired":      expired,
		"alg none":     unsigned,
		"no subject":   noSubject,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Resolve(token)
			assert.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}
}
