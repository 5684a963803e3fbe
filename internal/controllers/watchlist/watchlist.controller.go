package watchlistController

import (
	"context"

	"pitwall/internal/database"
	"pitwall/internal/events"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WatchlistController struct {
	raceRepo      repositories.RaceRepository
	watchlistRepo repositories.WatchlistRepository
	activityRepo  repositories.ActivityRepository
	transaction   services.Transactor
	eventBus      events.ActivityPublisher
	db            database.DB
}

type WatchlistControllerInterface interface {
	Add(ctx context.Context, user *User, raceID int) error
	Remove(ctx context.Context, user *User, raceID int) error
	GetWatchlist(ctx context.Context, userID uuid.UUID) ([]WatchlistEntry, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus events.ActivityPublisher,
	db database.DB,
) WatchlistControllerInterface {
	return &WatchlistController{
		raceRepo:      repos.Race,
		watchlistRepo: repos.Watchlist,
		activityRepo:  repos.Activity,
		transaction:   services.Transaction,
		eventBus:      eventBus,
		db:            db,
	}
}

func (c *WatchlistController) Add(ctx context.Context, user *User, raceID int) error {
	log := logger.NewWithContext(ctx, "watchlistController").Function("Add")

	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		exists, err := c.raceRepo.Exists(ctx, tx, raceID)
		if err != nil {
			return err
		}
		if !exists {
			return log.ErrorWithType(types.ErrNotFound, "race not found", "raceID", raceID)
		}

		added, err := c.watchlistRepo.Add(ctx, tx, user.ID, raceID)
		if err != nil || !added {
			return err
		}

		activity = NewRaceActivity(user.ID, ActivityWatchlistAdd, raceID)
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		return err
	}

	c.publish(log, activity)
	return nil
}

func (c *WatchlistController) Remove(ctx context.Context, user *User, raceID int) error {
	log := logger.NewWithContext(ctx, "watchlistController").Function("Remove")

	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		removed, err := c.watchlistRepo.Remove(ctx, tx, user.ID, raceID)
		if err != nil || !removed {
			return err
		}

		activity = NewRaceActivity(user.ID, ActivityWatchlistRemove, raceID)
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		return err
	}

	c.publish(log, activity)
	return nil
}

func (c *WatchlistController) GetWatchlist(ctx context.Context, userID uuid.UUID) ([]WatchlistEntry, error) {
	return c.watchlistRepo.ListByUser(ctx, c.db.SQL, userID)
}

func (c *WatchlistController) publish(log logger.Logger, activity *Activity) {
	if activity == nil || c.eventBus == nil {
		return
	}
	if err := c.eventBus.PublishActivity(*activity); err != nil {
		log.Warn("failed to publish activity", "type", activity.Type, "error", err)
	}
}
