package raceController

import (
	"context"
	"errors"

	"pitwall/internal/database"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/types"
	"pitwall/pkg/logger"
)

const DefaultPopularLimit = 10

type RaceController struct {
	raceRepo      repositories.RaceRepository
	ratingRepo    repositories.RatingRepository
	watchlistRepo repositories.WatchlistRepository
	likeRepo      repositories.LikeRepository
	db            database.DB
	log           logger.Logger
}

type RaceControllerInterface interface {
	ListRaces(ctx context.Context, filter RaceFilter) ([]Race, error)
	GetPopular(ctx context.Context, limit int) ([]Race, error)
	GetRace(ctx context.Context, raceID int, viewer *User) (*RaceDetail, error)
	GetSimilar(ctx context.Context, raceID int) ([]Race, error)
	GetCircuits(ctx context.Context) ([]Circuit, error)
}

func New(repos repositories.Repository, db database.DB) RaceControllerInterface {
	return &RaceController{
		raceRepo:      repos.Race,
		ratingRepo:    repos.Rating,
		watchlistRepo: repos.Watchlist,
		likeRepo:      repos.Like,
		db:            db,
		log:           logger.New("raceController"),
	}
}

func (c *RaceController) ListRaces(ctx context.Context, filter RaceFilter) ([]Race, error) {
	return c.raceRepo.List(ctx, c.db.SQL, filter.Normalize())
}

func (c *RaceController) GetPopular(ctx context.Context, limit int) ([]Race, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxRaceLimit {
		limit = MaxRaceLimit
	}
	return c.raceRepo.Popular(ctx, c.db.SQL, limit)
}

// GetRace loads a race with its ratings and results. When viewer is set the
// detail also carries the viewer's rating, watchlist and like state.
func (c *RaceController) GetRace(ctx context.Context, raceID int, viewer *User) (*RaceDetail, error) {
	log := c.log.TraceFromContext(ctx).Function("GetRace")

	race, err := c.raceRepo.GetByID(ctx, c.db.SQL, raceID)
	if err != nil {
		return nil, err
	}

	ratings, err := c.ratingRepo.ListByRace(ctx, c.db.SQL, raceID)
	if err != nil {
		return nil, err
	}

	results, err := c.raceRepo.Results(ctx, c.db.SQL, raceID)
	if err != nil {
		return nil, err
	}

	detail := &RaceDetail{
		Race:    *race,
		Ratings: nonNil(ratings),
		Results: nonNil(results),
	}

	if viewer == nil {
		return detail, nil
	}

	userRating, err := c.ratingRepo.GetUserRating(ctx, c.db.SQL, viewer.ID, raceID)
	switch {
	case err == nil:
		detail.UserRating = userRating
	case !errors.Is(err, types.ErrNotFound):
		return nil, err
	}

	if detail.UserWatchlisted, err = c.watchlistRepo.IsWatchlisted(ctx, c.db.SQL, viewer.ID, raceID); err != nil {
		return nil, err
	}

	if detail.UserLiked, err = c.likeRepo.Exists(ctx, c.db.SQL, viewer.ID, raceID); err != nil {
		return nil, err
	}

	log.Debug("Loaded race detail", "raceID", raceID, "viewerID", viewer.ID)
	return detail, nil
}

func (c *RaceController) GetSimilar(ctx context.Context, raceID int) ([]Race, error) {
	race, err := c.raceRepo.GetByID(ctx, c.db.SQL, raceID)
	if err != nil {
		return nil, err
	}
	return c.raceRepo.Similar(ctx, c.db.SQL, race, MaxSimilarRaces)
}

func (c *RaceController) GetCircuits(ctx context.Context) ([]Circuit, error) {
	return c.raceRepo.ListCircuits(ctx, c.db.SQL)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
