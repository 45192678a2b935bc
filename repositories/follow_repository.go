package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"murmur/models"
)

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. The composite primary key makes a second insert
// of the same pair fail with ErrDuplicate, whichever request gets there first.
func (r *followRepository) Create(ctx context.Context, followerID, followingID models.ID) error {
	follow := models.Follow{FollowerID: followerID, FollowingID: followingID}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(&follow).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID models.ID) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID models.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Following(ctx context.Context, userID models.ID) ([]models.ID, error) {
	ids := []models.ID{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("following_id ASC").
		Pluck("following_id", &ids).Error
	return ids, err
}

type countRow struct {
	ID models.ID
	N  int64
}

func (r *followRepository) Counts(ctx context.Context, userIDs []models.ID) (map[models.ID]FollowCounts, error) {
	counts := make(map[models.ID]FollowCounts, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var followers, following []countRow
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Follow{}).
		Select("following_id AS id, COUNT(*) AS n").
		Where("following_id IN ?", userIDs).
		Group("following_id").
		Scan(&followers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Follow{}).
		Select("follower_id AS id, COUNT(*) AS n").
		Where("follower_id IN ?", userIDs).
		Group("follower_id").
		Scan(&following).Error; err != nil {
		return nil, err
	}

	for _, row := range followers {
		c := counts[row.ID]
		c.Followers = row.N
		counts[row.ID] = c
	}
	for _, row := range following {
		c := counts[row.ID]
		c.Following = row.N
		counts[row.ID] = c
	}
	return counts, nil
}
