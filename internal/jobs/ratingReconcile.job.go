package jobs

import (
	"context"

	"pitwall/internal/database"
	"pitwall/internal/metrics"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/pkg/logger"

	"gorm.io/gorm"
)

// RatingReconcileJob recomputes every race's stored aggregate from its
// ratings, one transaction per race.
type RatingReconcileJob struct {
	raceRepo    repositories.RaceRepository
	ratingRepo  repositories.RatingRepository
	transaction services.Transactor
	db          database.DB
	log         logger.Logger
	schedule    services.Schedule
}

func NewRatingReconcileJob(
	raceRepo repositories.RaceRepository,
	ratingRepo repositories.RatingRepository,
	transaction services.Transactor,
	db database.DB,
	schedule services.Schedule,
) *RatingReconcileJob {
	return &RatingReconcileJob{
		raceRepo:    raceRepo,
		ratingRepo:  ratingRepo,
		transaction: transaction,
		db:          db,
		log:         logger.New("ratingReconcileJob"),
		schedule:    schedule,
	}
}

func (j *RatingReconcileJob) Name() string {
	return "RatingAggregateReconcile"
}

func (j *RatingReconcileJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *RatingReconcileJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")
	done := log.Timer("rating reconcile")
	defer done()

	raceIDs, err := j.raceRepo.ListIDs(ctx, j.db.SQL)
	if err != nil {
		return log.Err("failed to list races", err)
	}

	failed := 0
	for _, raceID := range raceIDs {
		if err := ctx.Err(); err != nil {
			return log.Err("reconcile cancelled", err, "remaining", len(raceIDs))
		}

		err := j.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
			_, err := j.ratingRepo.RecomputeRace(ctx, tx, raceID)
			return err
		})
		if err != nil {
			failed++
			metrics.RecordReconcile("error")
			log.Warn("failed to reconcile race", "raceID", raceID, "error", err)
			continue
		}
		metrics.RecordReconcile("ok")
	}

	if failed > 0 {
		return log.Error("reconcile finished with failures", "races", len(raceIDs), "failed", failed)
	}

	log.Info("reconcile finished", "races", len(raceIDs))
	return nil
}
