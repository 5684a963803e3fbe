package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, rating *Rating) error
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Rating, error)
	Update(ctx context.Context, tx *gorm.DB, rating *Rating) error
	GetUserRating(ctx context.Context, tx *gorm.DB, userID uuid.UUID, raceID int) (*Rating, error)
	ListByRace(ctx context.Context, tx *gorm.DB, raceID int) ([]Rating, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]Rating, error)
	Aggregate(ctx context.Context, tx *gorm.DB, raceID int) (RaceAggregate, error)
	RecomputeRace(ctx context.Context, tx *gorm.DB, raceID int) (RaceAggregate, error)
}

type ratingRepository struct {
	log logger.Logger
}

func NewRatingRepository() RatingRepository {
	return &ratingRepository{
		log: logger.New("ratingRepository"),
	}
}

// Upsert writes the user's rating for a race, replacing score, review and
// watched flag when one already exists. The row is read back into rating.
func (r *ratingRepository) Upsert(ctx context.Context, tx *gorm.DB, rating *Rating) error {
	log := r.log.Function("Upsert")

	err := tx.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "race_id"}},
				DoUpdates: clause.AssignmentColumns(
					[]string{"rating", "review", "watched", "updated_at"},
				),
			},
			clause.Returning{},
		).
		Create(rating).Error
	if err != nil {
		return dbError(
			log,
			"failed to upsert rating",
			err,
			"userID", rating.UserID,
			"raceID", rating.RaceID,
		)
	}

	return nil
}

func (r *ratingRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Rating, error) {
	log := r.log.Function("GetByID")

	rating, err := gorm.G[Rating](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, dbError(log, "failed to get rating", err, "ratingID", id)
	}

	return &rating, nil
}

func (r *ratingRepository) Update(ctx context.Context, tx *gorm.DB, rating *Rating) error {
	log := r.log.Function("Update")

	err := tx.WithContext(ctx).
		Model(rating).
		Select("rating", "review", "watched", "updated_at").
		Updates(rating).Error
	if err != nil {
		return dbError(log, "failed to update rating", err, "ratingID", rating.ID)
	}

	return nil
}

func (r *ratingRepository) GetUserRating(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	raceID int,
) (*Rating, error) {
	log := r.log.Function("GetUserRating")

	rating, err := gorm.G[Rating](tx).
		Where("user_id = ? AND race_id = ?", userID, raceID).
		First(ctx)
	if err != nil {
		return nil, dbError(log, "failed to get user rating", err, "userID", userID, "raceID", raceID)
	}

	return &rating, nil
}

func (r *ratingRepository) ListByRace(ctx context.Context, tx *gorm.DB, raceID int) ([]Rating, error) {
	log := r.log.Function("ListByRace")

	var ratings []Rating
	err := tx.WithContext(ctx).
		Preload("User").
		Where("race_id = ?", raceID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, log.Err("failed to list race ratings", err, "raceID", raceID)
	}

	for i := range ratings {
		ratings[i].AttachAuthor()
	}

	return ratings, nil
}

func (r *ratingRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]Rating, error) {
	log := r.log.Function("ListByUser")

	var ratings []Rating
	err := tx.WithContext(ctx).
		Preload("Race").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, log.Err("failed to list user ratings", err, "userID", userID)
	}

	return ratings, nil
}

func (r *ratingRepository) Aggregate(
	ctx context.Context,
	tx *gorm.DB,
	raceID int,
) (RaceAggregate, error) {
	log := r.log.Function("Aggregate")

	var aggregate RaceAggregate
	err := tx.WithContext(ctx).
		Model(&Rating{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("race_id = ?", raceID).
		Scan(&aggregate).Error
	if err != nil {
		return RaceAggregate{}, log.Err("failed to aggregate ratings", err, "raceID", raceID)
	}

	return aggregate, nil
}

// RecomputeRace locks the race row, recounts its ratings and stores the new
// average and count. It must run inside the transaction that changed the
// ratings so concurrent writers see each other's rows.
func (r *ratingRepository) RecomputeRace(
	ctx context.Context,
	tx *gorm.DB,
	raceID int,
) (RaceAggregate, error) {
	log := r.log.Function("RecomputeRace")

	var race Race
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&race, raceID).Error
	if err != nil {
		return RaceAggregate{}, dbError(log, "failed to lock race", err, "raceID", raceID)
	}

	aggregate, err := r.Aggregate(ctx, tx, raceID)
	if err != nil {
		return RaceAggregate{}, err
	}

	err = tx.WithContext(ctx).
		Model(&Race{}).
		Where("id = ?", raceID).
		Updates(map[string]any{
			"average_rating": aggregate.Average().Decimal,
			"rating_count":   aggregate.Count,
		}).Error
	if err != nil {
		return RaceAggregate{}, log.Err("failed to store race aggregate", err, "raceID", raceID)
	}

	return aggregate, nil
}
