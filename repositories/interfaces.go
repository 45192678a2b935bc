package repositories

import (
	"context"
	"errors"
	"time"

	"murmur/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate reports a unique or primary key violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrMissingReference reports a foreign key violation, e.g. liking a
	// murmur that was deleted concurrently.
	ErrMissingReference = errors.New("referenced record does not exist")
)

type UserRepository interface {
	FindByID(ctx context.Context, id models.ID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Exists(ctx context.Context, id models.ID) (bool, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type FollowCounts struct {
	Followers int64
	Following int64
}

type FollowRepository interface {
	Create(ctx context.Context, followerID, followingID models.ID) error
	Delete(ctx context.Context, followerID, followingID models.ID) error
	Exists(ctx context.Context, followerID, followingID models.ID) (bool, error)
	Following(ctx context.Context, userID models.ID) ([]models.ID, error)
	Counts(ctx context.Context, userIDs []models.ID) (map[models.ID]FollowCounts, error)
}

type MurmurRepository interface {
	Create(ctx context.Context, m *models.Murmur) error
	FindByID(ctx context.Context, id models.ID) (*models.Murmur, error)
	UpdateContent(ctx context.Context, id models.ID, content string, at time.Time) error
	// Delete removes the murmur and its likes in one transaction.
	Delete(ctx context.Context, id models.ID) error
	CountByAuthors(ctx context.Context, authorIDs []models.ID) (int64, error)
	// PageByAuthors returns murmurs newest first, ties broken by id descending.
	PageByAuthors(ctx context.Context, authorIDs []models.ID, offset, limit int) ([]models.Murmur, error)

	Like(ctx context.Context, userID, murmurID models.ID) error
	Unlike(ctx context.Context, userID, murmurID models.ID) error
	LikeCounts(ctx context.Context, murmurIDs []models.ID) (map[models.ID]int64, error)
	LikedBy(ctx context.Context, userID models.ID, murmurIDs []models.ID) (map[models.ID]bool, error)
}
