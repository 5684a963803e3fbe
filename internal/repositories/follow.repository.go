package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowRepository interface {
	Follow(ctx context.Context, tx *gorm.DB, followerID, followingID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, tx *gorm.DB, followerID, followingID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, tx *gorm.DB, followerID, followingID uuid.UUID) (bool, error)
	ListFollowingIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	ListFollowerIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	ListFollowing(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]UserSummary, error)
	ListFollowers(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]UserSummary, error)
}

type followRepository struct {
	log logger.Logger
}

func NewFollowRepository() FollowRepository {
	return &followRepository{
		log: logger.New("followRepository"),
	}
}

// Follow inserts the edge if it does not exist. The bool reports whether a
// row was written.
func (r *followRepository) Follow(
	ctx context.Context,
	tx *gorm.DB,
	followerID, followingID uuid.UUID,
) (bool, error) {
	log := r.log.Function("Follow")

	result := tx.WithContext(ctx).Exec(`
		INSERT INTO follows (follower_id, following_id, created_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID,
	)
	if result.Error != nil {
		return false, dbError(
			log,
			"failed to follow user",
			result.Error,
			"followerID", followerID,
			"followingID", followingID,
		)
	}

	return result.RowsAffected > 0, nil
}

func (r *followRepository) Unfollow(
	ctx context.Context,
	tx *gorm.DB,
	followerID, followingID uuid.UUID,
) (bool, error) {
	log := r.log.Function("Unfollow")

	deleted, err := gorm.G[Follow](tx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(ctx)
	if err != nil {
		return false, log.Err(
			"failed to unfollow user",
			err,
			"followerID", followerID,
			"followingID", followingID,
		)
	}

	return deleted > 0, nil
}

func (r *followRepository) IsFollowing(
	ctx context.Context,
	tx *gorm.DB,
	followerID, followingID uuid.UUID,
) (bool, error) {
	log := r.log.Function("IsFollowing")

	count, err := gorm.G[Follow](tx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(ctx, "*")
	if err != nil {
		return false, log.Err("failed to check follow", err, "followerID", followerID)
	}

	return count > 0, nil
}

func (r *followRepository) ListFollowingIDs(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	log := r.log.Function("ListFollowingIDs")

	var ids []uuid.UUID
	err := tx.WithContext(ctx).
		Model(&Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, log.Err("failed to list followed ids", err, "userID", userID)
	}

	return ids, nil
}

func (r *followRepository) ListFollowerIDs(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	log := r.log.Function("ListFollowerIDs")

	var ids []uuid.UUID
	err := tx.WithContext(ctx).
		Model(&Follow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, log.Err("failed to list follower ids", err, "userID", userID)
	}

	return ids, nil
}

func (r *followRepository) ListFollowing(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]UserSummary, error) {
	return r.listEdges(ctx, tx, "ListFollowing", "following_id", "follower_id", userID)
}

func (r *followRepository) ListFollowers(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]UserSummary, error) {
	return r.listEdges(ctx, tx, "ListFollowers", "follower_id", "following_id", userID)
}

// listEdges returns the users on the joinColumn side of userID's edges,
// newest edge first.
func (r *followRepository) listEdges(
	ctx context.Context,
	tx *gorm.DB,
	function, joinColumn, filterColumn string,
	userID uuid.UUID,
) ([]UserSummary, error) {
	log := r.log.Function(function)

	users := []UserSummary{}
	err := tx.WithContext(ctx).
		Table("follows").
		Select("users.id, users.username, users.profile_image_url AS avatar").
		Joins("JOIN users ON users.id = follows."+joinColumn).
		Where("follows."+filterColumn+" = ?", userID).
		Order("follows.created_at DESC, follows.id DESC").
		Scan(&users).Error
	if err != nil {
		return nil, log.Err("failed to list follow edges", err, "userID", userID)
	}

	return users, nil
}
