package repositories

import (
	"errors"

	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type Repository struct {
	User      UserRepository
	Race      RaceRepository
	Rating    RatingRepository
	Follow    FollowRepository
	Watchlist WatchlistRepository
	Like      LikeRepository
	List      ListRepository
	Activity  ActivityRepository
	Feed      FeedRepository
}

func New() Repository {
	return Repository{
		User:      NewUserRepository(),
		Race:      NewRaceRepository(),
		Rating:    NewRatingRepository(),
		Follow:    NewFollowRepository(),
		Watchlist: NewWatchlistRepository(),
		Like:      NewLikeRepository(),
		List:      NewListRepository(),
		Activity:  NewActivityRepository(),
		Feed:      NewFeedRepository(),
	}
}

// dbError logs a failed query and maps it onto the shared error types:
// missing rows become ErrNotFound and unique violations become ErrConflict.
func dbError(log logger.Logger, msg string, err error, args ...any) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return log.ErrorWithType(types.ErrNotFound, msg, args...)
	case isUniqueViolation(err):
		return log.ErrorWithType(types.ErrConflict, msg, args...)
	default:
		return log.Err(msg, err, args...)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
