package favoriteController

import (
	"context"

	"pitwall/internal/database"
	"pitwall/internal/events"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/internal/types"
	"pitwall/internal/utils"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteController struct {
	raceRepo     repositories.RaceRepository
	likeRepo     repositories.LikeRepository
	activityRepo repositories.ActivityRepository
	transaction  services.Transactor
	eventBus     events.ActivityPublisher
	db           database.DB
}

type FavoriteControllerInterface interface {
	ToggleLike(ctx context.Context, user *User, raceID int) (*ToggleLikeResponse, error)
	GetFavorites(ctx context.Context, userID uuid.UUID) ([]Race, error)
	Reorder(ctx context.Context, user *User, ownerID uuid.UUID, raceIDs []int) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus events.ActivityPublisher,
	db database.DB,
) FavoriteControllerInterface {
	return &FavoriteController{
		raceRepo:     repos.Race,
		likeRepo:     repos.Like,
		activityRepo: repos.Activity,
		transaction:  services.Transaction,
		eventBus:     eventBus,
		db:           db,
	}
}

// ToggleLike removes the caller's like on a race if present, otherwise adds
// it at the end of their favorites.
func (c *FavoriteController) ToggleLike(
	ctx context.Context,
	user *User,
	raceID int,
) (*ToggleLikeResponse, error) {
	log := logger.NewWithContext(ctx, "favoriteController").Function("ToggleLike")

	var liked bool
	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		exists, err := c.raceRepo.Exists(ctx, tx, raceID)
		if err != nil {
			return err
		}
		if !exists {
			return log.ErrorWithType(types.ErrNotFound, "race not found", "raceID", raceID)
		}

		alreadyLiked, err := c.likeRepo.Exists(ctx, tx, user.ID, raceID)
		if err != nil {
			return err
		}

		if alreadyLiked {
			removed, err := c.likeRepo.Remove(ctx, tx, user.ID, raceID)
			if err != nil {
				return err
			}
			if removed {
				activity = NewRaceActivity(user.ID, ActivityUnlike, raceID)
			}
			liked = false
		} else {
			added, err := c.likeRepo.Add(ctx, tx, user.ID, raceID)
			if err != nil {
				return err
			}
			if added {
				activity = NewRaceActivity(user.ID, ActivityLike, raceID)
			}
			liked = true
		}

		if activity == nil {
			return nil
		}
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		return nil, err
	}

	if activity != nil && c.eventBus != nil {
		if err := c.eventBus.PublishActivity(*activity); err != nil {
			log.Warn("failed to publish activity", "type", activity.Type, "error", err)
		}
	}

	log.Info("Like toggled", "userID", user.ID, "raceID", raceID, "liked", liked)
	return &ToggleLikeResponse{Liked: liked}, nil
}

func (c *FavoriteController) GetFavorites(ctx context.Context, userID uuid.UUID) ([]Race, error) {
	return c.likeRepo.ListFavorites(ctx, c.db.SQL, userID)
}

// Reorder replaces the order of ownerID's favorites. raceIDs must name every
// liked race exactly once; anything else is rejected and nothing changes.
func (c *FavoriteController) Reorder(
	ctx context.Context,
	user *User,
	ownerID uuid.UUID,
	raceIDs []int,
) error {
	log := logger.NewWithContext(ctx, "favoriteController").Function("Reorder")

	if user.ID != ownerID {
		return log.ErrorWithType(types.ErrForbidden, "cannot reorder another user's favorites",
			"userID", user.ID, "ownerID", ownerID)
	}

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		current, err := c.likeRepo.LockRaceIDs(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		if err := utils.ValidatePermutation(current, raceIDs); err != nil {
			log.Warn("rejected favorites order", "userID", user.ID, "error", err)
			return types.NewFieldErrors(map[string]string{"raceIds": err.Error()})
		}

		return c.likeRepo.SetPositions(ctx, tx, user.ID, raceIDs)
	})
	if err != nil {
		return err
	}

	log.Info("Favorites reordered", "userID", user.ID, "count", len(raceIDs))
	return nil
}
