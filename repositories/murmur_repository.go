package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"murmur/models"
)

type murmurRepository struct {
	db *gorm.DB
}

func NewMurmurRepository(db *gorm.DB) MurmurRepository {
	return &murmurRepository{db: db}
}

func (r *murmurRepository) Create(ctx context.Context, m *models.Murmur) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error)
}

func (r *murmurRepository) FindByID(ctx context.Context, id models.ID) (*models.Murmur, error) {
	var m models.Murmur
	if err := r.db.WithContext(ctx).Preload("User").First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *murmurRepository) UpdateContent(ctx context.Context, id models.ID, content string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Murmur{}).
		Where("id = ?", id).
		Updates(map[string]any{"content": content, "updated_at": at}).Error
}

func (r *murmurRepository) Delete(ctx context.Context, id models.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("murmur_id = ?", id).Delete(&models.MurmurLike{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Murmur{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *murmurRepository) CountByAuthors(ctx context.Context, authorIDs []models.ID) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Murmur{}).
		Where("user_id IN ?", authorIDs).
		Count(&total).Error
	return total, err
}

func (r *murmurRepository) PageByAuthors(ctx context.Context, authorIDs []models.ID, offset, limit int) ([]models.Murmur, error) {
	murmurs := []models.Murmur{}
	if len(authorIDs) == 0 {
		return murmurs, nil
	}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&murmurs).Error
	return murmurs, err
}

// Like inserts the (user, murmur) pair. Concurrent identical calls race on
// the primary key; the loser gets ErrDuplicate.
func (r *murmurRepository) Like(ctx context.Context, userID, murmurID models.ID) error {
	like := models.MurmurLike{UserID: userID, MurmurID: murmurID}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(&like).Error)
}

func (r *murmurRepository) Unlike(ctx context.Context, userID, murmurID models.ID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND murmur_id = ?", userID, murmurID).
		Delete(&models.MurmurLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *murmurRepository) LikeCounts(ctx context.Context, murmurIDs []models.ID) (map[models.ID]int64, error) {
	counts := make(map[models.ID]int64, len(murmurIDs))
	if len(murmurIDs) == 0 {
		return counts, nil
	}
	var rows []countRow
	if err := r.db.WithContext(ctx).Model(&models.MurmurLike{}).
		Select("murmur_id AS id, COUNT(*) AS n").
		Where("murmur_id IN ?", murmurIDs).
		Group("murmur_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, id := range murmurIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.ID] = row.N
	}
	return counts, nil
}

func (r *murmurRepository) LikedBy(ctx context.Context, userID models.ID, murmurIDs []models.ID) (map[models.ID]bool, error) {
	liked := make(map[models.ID]bool, len(murmurIDs))
	if len(murmurIDs) == 0 {
		return liked, nil
	}
	var ids []models.ID
	if err := r.db.WithContext(ctx).Model(&models.MurmurLike{}).
		Where("user_id = ? AND murmur_id IN ?", userID, murmurIDs).
		Pluck("murmur_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
