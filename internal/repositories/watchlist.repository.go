package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WatchlistRepository interface {
	Add(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (bool, error)
	Remove(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (bool, error)
	IsWatchlisted(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]WatchlistEntry, error)
}

type watchlistRepository struct {
	log logger.Logger
}

func NewWatchlistRepository() WatchlistRepository {
	return &watchlistRepository{
		log: logger.New("watchlistRepository"),
	}
}

func (r *watchlistRepository) Add(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (bool, error) {
	log := r.log.Function("Add")

	result := tx.WithContext(ctx).Exec(`
		INSERT INTO watchlist (user_id, race_id, created_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (user_id, race_id) DO NOTHING`,
		userID, raceID,
	)
	if result.Error != nil {
		return false, dbError(log, "failed to add to watchlist", result.Error, "userID", userID, "raceID", raceID)
	}

	return result.RowsAffected > 0, nil
}

func (r *watchlistRepository) Remove(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (bool, error) {
	log := r.log.Function("Remove")

	deleted, err := gorm.G[WatchlistEntry](tx).
		Where("user_id = ? AND race_id = ?", userID, raceID).
		Delete(ctx)
	if err != nil {
		return false, log.Err("failed to remove from watchlist", err, "userID", userID, "raceID", raceID)
	}

	return deleted > 0, nil
}

func (r *watchlistRepository) IsWatchlisted(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (bool, error) {
	log := r.log.Function("IsWatchlisted")

	count, err := gorm.G[WatchlistEntry](tx).
		Where("user_id = ? AND race_id = ?", userID, raceID).
		Count(ctx, "*")
	if err != nil {
		return false, log.Err("failed to check watchlist", err, "userID", userID, "raceID", raceID)
	}

	return count > 0, nil
}

func (r *watchlistRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]WatchlistEntry, error) {
	log := r.log.Function("ListByUser")

	entries := []WatchlistEntry{}
	err := tx.WithContext(ctx).
		Preload("Race").
		Preload("Race.Circuit").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, log.Err("failed to list watchlist", err, "userID", userID)
	}

	return entries, nil
}
