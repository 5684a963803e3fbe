package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, activity *Activity) error
}

type activityRepository struct {
	log logger.Logger
}

func NewActivityRepository() ActivityRepository {
	return &activityRepository{
		log: logger.New("activityRepository"),
	}
}

func (r *activityRepository) Create(ctx context.Context, tx *gorm.DB, activity *Activity) error {
	log := r.log.Function("Create")

	if err := gorm.G[Activity](tx).Create(ctx, activity); err != nil {
		return log.Err(
			"failed to record activity",
			err,
			"userID", activity.UserID,
			"type", activity.Type,
		)
	}

	return nil
}
