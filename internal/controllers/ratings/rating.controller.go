package ratingController

import (
	"context"
	"errors"

	"pitwall/internal/database"
	"pitwall/internal/events"
	"pitwall/internal/metrics"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/internal/types"
	"pitwall/internal/utils"
	"pitwall/internal/validation"
	"pitwall/pkg/logger"

	"gorm.io/gorm"
)

type RatingController struct {
	raceRepo     repositories.RaceRepository
	ratingRepo   repositories.RatingRepository
	activityRepo repositories.ActivityRepository
	transaction  services.Transactor
	eventBus     events.ActivityPublisher
	db           database.DB
}

type RatingControllerInterface interface {
	SubmitRating(
		ctx context.Context,
		user *User,
		raceID int,
		request SubmitRatingRequest,
	) (*Rating, error)
	UpdateRating(
		ctx context.Context,
		user *User,
		raceID int,
		ratingID int,
		request UpdateRatingRequest,
	) (*Rating, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus events.ActivityPublisher,
	db database.DB,
) RatingControllerInterface {
	return &RatingController{
		raceRepo:     repos.Race,
		ratingRepo:   repos.Rating,
		activityRepo: repos.Activity,
		transaction:  services.Transaction,
		eventBus:     eventBus,
		db:           db,
	}
}

// SubmitRating stores the caller's rating for a race, replacing any earlier
// one, and recomputes the race aggregate in the same transaction.
func (c *RatingController) SubmitRating(
	ctx context.Context,
	user *User,
	raceID int,
	request SubmitRatingRequest,
) (*Rating, error) {
	log := logger.NewWithContext(ctx, "ratingController").Function("SubmitRating")

	if err := validation.Struct(request); err != nil {
		log.Warn("rejected rating", "userID", user.ID, "raceID", raceID, "error", err)
		return nil, err
	}

	rating := &Rating{
		UserID: user.ID,
		RaceID: raceID,
		Rating: request.Rating,
		Review: utils.CleanOptionalText(request.Review),
	}
	if request.Watched != nil {
		rating.Watched = *request.Watched
	}

	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.raceRepo.GetForUpdate(ctx, tx, raceID); err != nil {
			return err
		}

		if err := c.ratingRepo.Upsert(ctx, tx, rating); err != nil {
			return err
		}

		if _, err := c.ratingRepo.RecomputeRace(ctx, tx, raceID); err != nil {
			return err
		}

		activity = reviewActivity(rating)
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, log.ErrorWithType(types.ErrNotFound, "race not found", "raceID", raceID)
		}
		return nil, log.Err("failed to submit rating", err, "userID", user.ID, "raceID", raceID)
	}

	metrics.RecordRatingSubmitted("submit")
	c.publish(log, activity)

	log.Info("Rating submitted", "userID", user.ID, "raceID", raceID, "rating", rating.Rating)
	return rating, nil
}

func (c *RatingController) UpdateRating(
	ctx context.Context,
	user *User,
	raceID int,
	ratingID int,
	request UpdateRatingRequest,
) (*Rating, error) {
	log := logger.NewWithContext(ctx, "ratingController").Function("UpdateRating")

	if err := validation.Struct(request); err != nil {
		log.Warn("rejected rating update", "userID", user.ID, "ratingID", ratingID, "error", err)
		return nil, err
	}
	request.Review = utils.CleanOptionalText(request.Review)

	var rating *Rating
	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.raceRepo.GetForUpdate(ctx, tx, raceID); err != nil {
			return err
		}

		existing, err := c.ratingRepo.GetByID(ctx, tx, ratingID)
		if err != nil {
			return err
		}
		if existing.RaceID != raceID {
			return log.ErrorWithType(types.ErrNotFound, "rating is not for this race",
				"ratingID", ratingID, "raceID", raceID)
		}
		if existing.UserID != user.ID {
			return log.ErrorWithType(types.ErrForbidden, "rating belongs to another user",
				"ratingID", ratingID, "userID", user.ID)
		}

		request.Apply(existing)
		if err := c.ratingRepo.Update(ctx, tx, existing); err != nil {
			return err
		}

		if _, err := c.ratingRepo.RecomputeRace(ctx, tx, raceID); err != nil {
			return err
		}

		rating = existing
		activity = reviewActivity(rating)
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRatingSubmitted("update")
	c.publish(log, activity)

	log.Info("Rating updated", "userID", user.ID, "ratingID", ratingID)
	return rating, nil
}

func reviewActivity(rating *Rating) *Activity {
	activity := NewRaceActivity(rating.UserID, ActivityReview, rating.RaceID)
	score := rating.Rating
	activity.Rating = &score
	activity.Review = rating.Review
	return activity
}

// publish announces a committed activity. Delivery is best effort.
func (c *RatingController) publish(log logger.Logger, activity *Activity) {
	if activity == nil || c.eventBus == nil {
		return
	}
	if err := c.eventBus.PublishActivity(*activity); err != nil {
		log.Warn("failed to publish activity", "type", activity.Type, "error", err)
	}
}
