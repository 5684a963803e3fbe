package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedRepository interface {
	ListByAuthors(ctx context.Context, tx *gorm.DB, authorIDs []uuid.UUID, limit int) ([]FeedRow, error)
}

type feedRepository struct {
	log logger.Logger
}

func NewFeedRepository() FeedRepository {
	return &feedRepository{
		log: logger.New("feedRepository"),
	}
}

const feedColumns = `ratings.id, ratings.user_id, users.username,
	users.profile_image_url AS avatar, ratings.race_id,
	races.name AS race_name, races.year AS race_year, races.image_url AS race_image,
	ratings.rating, ratings.review, ratings.created_at`

// ListByAuthors reads the newest ratings written by any of authorIDs
func (r *feedRepository) ListByAuthors(
	ctx context.Context,
	tx *gorm.DB,
	authorIDs []uuid.UUID,
	limit int,
) ([]FeedRow, error) {
	log := r.log.Function("ListByAuthors")

	if len(authorIDs) == 0 {
		return []FeedRow{}, nil
	}

	rows := []FeedRow{}
	err := tx.WithContext(ctx).
		Table("ratings").
		Select(feedColumns).
		Joins("JOIN users ON users.id = ratings.user_id").
		Joins("JOIN races ON races.id = ratings.race_id").
		Where("ratings.user_id IN ?", authorIDs).
		Order("ratings.created_at DESC, ratings.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, log.Err("failed to read feed", err, "authors", len(authorIDs), "limit", limit)
	}

	return rows, nil
}
