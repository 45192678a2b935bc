// Package auth issues and checks caller identities: bcrypt-hashed
// credentials at signup and login, HS256 JWT bearer tokens afterwards.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"murmur/config"
	"murmur/models"
	"murmur/repositories"
	"murmur/service"
)

// Claims is the token payload. Subject holds the decimal user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type SignupInput struct {
	Username    string
	DisplayName string
	Email       string
	Password    string
}

type Session struct {
	AccessToken string
	User        *models.User
}

type Authenticator struct {
	users  repositories.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func New(users repositories.UserRepository, cfg config.Auth) *Authenticator {
	return &Authenticator{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

func (a *Authenticator) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Username == "" || in.Password == "" {
		return nil, service.Conflict("Username and password are required")
	}

	existing, err := a.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	switch {
	case err == nil:
		if existing.Username == in.Username {
			return nil, service.Conflict("Username already exists")
		}
		return nil, service.Conflict("Email already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: string(hash),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if in.Email != "" {
		user.Email = &in.Email
	}

	// a concurrent signup can still win the unique index
	if err := a.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, service.Conflict("Username or email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return a.session(user)
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := a.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, service.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, service.Unauthorized("Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, service.Unauthorized("Invalid credentials")
	}
	return a.session(user)
}

func (a *Authenticator) Issue(user *models.User) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Resolve validates a bearer token and returns the caller's user id.
func (a *Authenticator) Resolve(token string) (models.ID, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return 0, service.Unauthorized("Invalid token")
	}
	id, err := models.ParseID(claims.Subject)
	if err != nil || id == 0 {
		return 0, service.Unauthorized("Invalid token")
	}
	return id, nil
}

func (a *Authenticator) session(user *models.User) (*Session, error) {
	token, err := a.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{AccessToken: token, User: user}, nil
}
