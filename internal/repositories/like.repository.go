package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type LikeRepository interface {
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (bool, error)
	Add(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (bool, error)
	Remove(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (bool, error)
	LockRaceIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]int, error)
	SetPositions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceIDs []int) error
	ListFavorites(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]Race, error)
}

type likeRepository struct {
	log logger.Logger
}

func NewLikeRepository() LikeRepository {
	return &likeRepository{
		log: logger.New("likeRepository"),
	}
}

func (r *likeRepository) Exists(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (bool, error) {
	log := r.log.Function("Exists")

	count, err := gorm.G[Like](tx).
		Where("user_id = ? AND race_id = ?", userID, raceID).
		Count(ctx, "*")
	if err != nil {
		return false, log.Err("failed to check like", err, "userID", userID, "raceID", raceID)
	}

	return count > 0, nil
}

// Add appends the race to the end of the user's favorites
func (r *likeRepository) Add(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (bool, error) {
	log := r.log.Function("Add")

	result := tx.WithContext(ctx).Exec(`
		INSERT INTO likes (user_id, race_id, position, created_at)
		SELECT ?, ?, COALESCE(MAX(position), -1) + 1, NOW()
		FROM likes WHERE user_id = ?
		ON CONFLICT (user_id, race_id) DO NOTHING`,
		userID, raceID, userID,
	)
	if result.Error != nil {
		return false, dbError(log, "failed to add like", result.Error, "userID", userID, "raceID", raceID)
	}

	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Remove(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (bool, error) {
	log := r.log.Function("Remove")

	deleted, err := gorm.G[Like](tx).
		Where("user_id = ? AND race_id = ?", userID, raceID).
		Delete(ctx)
	if err != nil {
		return false, log.Err("failed to remove like", err, "userID", userID, "raceID", raceID)
	}

	return deleted > 0, nil
}

// LockRaceIDs returns the user's liked race ids in position order, holding
// row locks until the transaction ends.
func (r *likeRepository) LockRaceIDs(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]int, error) {
	log := r.log.Function("LockRaceIDs")

	ids := []int{}
	err := tx.WithContext(ctx).Raw(`
		SELECT race_id FROM likes
		WHERE user_id = ?
		ORDER BY position ASC, created_at DESC
		FOR UPDATE`,
		userID,
	).Scan(&ids).Error
	if err != nil {
		return nil, log.Err("failed to lock likes", err, "userID", userID)
	}

	return ids, nil
}

// SetPositions stores raceIDs[i] at position i. raceIDs must be a
// permutation of the ids returned by LockRaceIDs.
func (r *likeRepository) SetPositions(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceIDs []int,
) error {
	log := r.log.Function("SetPositions")

	if len(raceIDs) == 0 {
		return nil
	}

	err := tx.WithContext(ctx).Exec(`
		UPDATE likes SET position = o.idx - 1
		FROM unnest(?::int[]) WITH ORDINALITY AS o(race_id, idx)
		WHERE likes.user_id = ? AND likes.race_id = o.race_id`,
		pq.Array(raceIDs), userID,
	).Error
	if err != nil {
		return log.Err("failed to reorder likes", err, "userID", userID)
	}

	return nil
}

func (r *likeRepository) ListFavorites(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]Race, error) {
	log := r.log.Function("ListFavorites")

	races := []Race{}
	err := tx.WithContext(ctx).
		Preload("Circuit").
		Select("races.*").
		Joins("JOIN likes ON likes.race_id = races.id").
		Where("likes.user_id = ?", userID).
		Order("likes.position ASC, likes.created_at DESC").
		Find(&races).Error
	if err != nil {
		return nil, log.Err("failed to list favorites", err, "userID", userID)
	}

	return races, nil
}
