package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"murmur/models"
	"murmur/repositories"
)

type Profile struct {
	ID             models.ID
	Username       string
	DisplayName    string
	Email          string
	CreatedAt      time.Time
	FollowerCount  int64
	FollowingCount int64
	// IsFollowing is set only when a viewer other than the user asked.
	IsFollowing *bool
}

// Users is the read side of the identity store.
type Users struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func NewUsers(users repositories.UserRepository, follows repositories.FollowRepository) *Users {
	return &Users{users: users, follows: follows}
}

func (s *Users) List(ctx context.Context) ([]Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.profiles(ctx, users)
}

func (s *Users) Me(ctx context.Context, userID models.ID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return s.profile(ctx, user)
}

// ByUsername looks up a profile. When viewerID is non-zero and not the user
// itself, IsFollowing reports whether the viewer follows them.
func (s *Users) ByUsername(ctx context.Context, username string, viewerID models.ID) (*Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}

	p, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != user.ID {
		following, err := s.follows.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check follow: %w", err)
		}
		p.IsFollowing = &following
	}
	return p, nil
}

func (s *Users) profile(ctx context.Context, user *models.User) (*Profile, error) {
	ps, err := s.profiles(ctx, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func (s *Users) profiles(ctx context.Context, users []models.User) ([]Profile, error) {
	ids := make([]models.ID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := s.follows.Counts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count follows: %w", err)
	}

	out := make([]Profile, 0, len(users))
	for _, u := range users {
		p := Profile{
			ID:             u.ID,
			Username:       u.Username,
			DisplayName:    u.DisplayName,
			CreatedAt:      u.CreatedAt,
			FollowerCount:  counts[u.ID].Followers,
			FollowingCount: counts[u.ID].Following,
		}
		if u.Email != nil {
			p.Email = *u.Email
		}
		out = append(out, p)
	}
	return out, nil
}
