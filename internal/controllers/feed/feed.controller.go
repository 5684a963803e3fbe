package feedController

import (
	"context"

	"pitwall/config"
	"pitwall/internal/database"
	"pitwall/internal/metrics"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
)

const (
	fallbackDefaultLimit = 20
	fallbackMaxLimit     = 100
)

type FeedController struct {
	followRepo   repositories.FollowRepository
	feedRepo     repositories.FeedRepository
	db           database.DB
	defaultLimit int
	maxLimit     int
}

type FeedControllerInterface interface {
	GetFeed(ctx context.Context, userID uuid.UUID, limit int) ([]FeedEntry, error)
	GetUserActivity(ctx context.Context, userID uuid.UUID, limit int) ([]FeedEntry, error)
}

func New(repos repositories.Repository, config config.Config, db database.DB) FeedControllerInterface {
	controller := &FeedController{
		followRepo:   repos.Follow,
		feedRepo:     repos.Feed,
		db:           db,
		defaultLimit: config.FeedDefaultLimit,
		maxLimit:     config.FeedMaxLimit,
	}
	if controller.defaultLimit <= 0 {
		controller.defaultLimit = fallbackDefaultLimit
	}
	if controller.maxLimit <= 0 {
		controller.maxLimit = fallbackMaxLimit
	}
	return controller
}

// GetFeed returns the newest ratings by the users userID follows. Someone
// following nobody gets an empty feed.
func (c *FeedController) GetFeed(ctx context.Context, userID uuid.UUID, limit int) ([]FeedEntry, error) {
	log := logger.NewWithContext(ctx, "feedController").Function("GetFeed")
	defer metrics.ObserveFeedBuild("following")()

	followingIDs, err := c.followRepo.ListFollowingIDs(ctx, c.db.SQL, userID)
	if err != nil {
		return nil, err
	}
	if len(followingIDs) == 0 {
		log.Debug("User follows nobody", "userID", userID)
		return []FeedEntry{}, nil
	}

	rows, err := c.feedRepo.ListByAuthors(ctx, c.db.SQL, followingIDs, c.clampLimit(limit))
	if err != nil {
		return nil, err
	}

	return FeedEntriesFromRows(rows), nil
}

func (c *FeedController) GetUserActivity(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]FeedEntry, error) {
	defer metrics.ObserveFeedBuild("user")()

	rows, err := c.feedRepo.ListByAuthors(ctx, c.db.SQL, []uuid.UUID{userID}, c.clampLimit(limit))
	if err != nil {
		return nil, err
	}

	return FeedEntriesFromRows(rows), nil
}

func (c *FeedController) clampLimit(limit int) int {
	if limit <= 0 {
		return c.defaultLimit
	}
	if limit > c.maxLimit {
		return c.maxLimit
	}
	return limit
}
