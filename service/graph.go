package service

import (
	"context"
	"errors"
	"fmt"

	"murmur/models"
	"murmur/repositories"
)

// Graph maintains follow edges between users.
type Graph struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func NewGraph(users repositories.UserRepository, follows repositories.FollowRepository) *Graph {
	return &Graph{users: users, follows: follows}
}

func (g *Graph) Follow(ctx context.Context, followerID, targetID models.ID) error {
	exists, err := g.users.Exists(ctx, targetID)
	if err != nil {
		return fmt.Errorf("look up user %d: %w", targetID, err)
	}
	if !exists {
		return NotFound("User to follow not found")
	}
	if followerID == targetID {
		return Conflict("Cannot follow yourself")
	}

	err = g.follows.Create(ctx, followerID, targetID)
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return Conflict("Already following this user")
	case errors.Is(err, repositories.ErrMissingReference):
		return NotFound("User to follow not found")
	case err != nil:
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

func (g *Graph) Unfollow(ctx context.Context, followerID, targetID models.ID) error {
	err := g.follows.Delete(ctx, followerID, targetID)
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound("Follow relationship not found")
	}
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// FollowingSet returns the ids userID follows. An empty slice is not an error.
func (g *Graph) FollowingSet(ctx context.Context, userID models.ID) ([]models.ID, error) {
	ids, err := g.follows.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return ids, nil
}

func (g *Graph) IsFollowing(ctx context.Context, followerID, targetID models.ID) (bool, error) {
	ok, err := g.follows.Exists(ctx, followerID, targetID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return ok, nil
}
