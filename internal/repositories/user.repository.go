package repositories

import (
	"context"
	"database/sql"
	"errors"

	. "pitwall/internal/models"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*User, error)
	FindOrCreate(ctx context.Context, tx *gorm.DB, claims UserClaims) (*User, error)
	IsUsernameTaken(
		ctx context.Context,
		tx *gorm.DB,
		username string,
		excludeID *uuid.UUID,
	) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, user *User) error
	GetStats(ctx context.Context, tx *gorm.DB, id uuid.UUID) (UserStats, error)
}

type userRepository struct {
	log logger.Logger
}

func NewUserRepository() UserRepository {
	return &userRepository{
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	user, err := gorm.G[User](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, dbError(log, "failed to get user by id", err, "userID", id)
	}

	return &user, nil
}

func (r *userRepository) GetByUsername(
	ctx context.Context,
	tx *gorm.DB,
	username string,
) (*User, error) {
	log := r.log.Function("GetByUsername")

	user, err := gorm.G[User](tx).Where("lower(username) = lower(?)", username).First(ctx)
	if err != nil {
		return nil, dbError(log, "failed to get user by username", err, "username", username)
	}

	return &user, nil
}

// FindOrCreate returns the user for a validated session, inserting the row on
// first sight. A username already held by someone else falls back to one
// derived from the user id.
func (r *userRepository) FindOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	claims UserClaims,
) (*User, error) {
	log := r.log.Function("FindOrCreate")

	existing, err := r.GetByID(ctx, tx, claims.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	user := NewUserFromClaims(claims)
	err = r.insertIgnoringDuplicateID(ctx, tx, user)
	if isUniqueViolation(err) {
		log.Warn("username taken on first login, using generated name", "username", user.Username)
		user.Username = GeneratedUsername(claims.ID)
		err = r.insertIgnoringDuplicateID(ctx, tx, user)
	}
	if err != nil {
		return nil, dbError(log, "failed to create user", err, "userID", claims.ID)
	}

	log.Info("Created user on first login", "userID", user.ID, "username", user.Username)
	return r.GetByID(ctx, tx, claims.ID)
}

func (r *userRepository) insertIgnoringDuplicateID(ctx context.Context, tx *gorm.DB, user *User) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(user).Error
}

func (r *userRepository) IsUsernameTaken(
	ctx context.Context,
	tx *gorm.DB,
	username string,
	excludeID *uuid.UUID,
) (bool, error) {
	log := r.log.Function("IsUsernameTaken")

	query := gorm.G[User](tx).Where("lower(username) = lower(?)", username)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	count, err := query.Count(ctx, "*")
	if err != nil {
		return false, log.Err("failed to check username", err, "username", username)
	}

	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Save(user).Error; err != nil {
		return dbError(log, "failed to update user", err, "userID", user.ID)
	}

	return nil
}

func (r *userRepository) GetStats(ctx context.Context, tx *gorm.DB, id uuid.UUID) (UserStats, error) {
	log := r.log.Function("GetStats")

	var stats UserStats
	err := tx.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM ratings WHERE user_id = @id) AS ratings,
			(SELECT COUNT(*) FROM watchlist WHERE user_id = @id) AS watchlist,
			(SELECT COUNT(*) FROM follows WHERE follower_id = @id) AS following,
			(SELECT COUNT(*) FROM follows WHERE following_id = @id) AS followers,
			(SELECT COUNT(*) FROM lists WHERE user_id = @id) AS lists`,
		sql.Named("id", id),
	).Scan(&stats).Error
	if err != nil {
		return UserStats{}, log.Err("failed to get user stats", err, "userID", id)
	}

	return stats, nil
}
