package jobs

import (
	"pitwall/internal/database"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/pkg/logger"
)

const Hourly = services.Hourly

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	reconcileJob := NewRatingReconcileJob(
		repos.Race,
		repos.Rating,
		services.Transaction,
		db,
		Hourly,
	)
	if err := schedulerService.AddJob(reconcileJob); err != nil {
		return log.Err("failed to register rating reconcile job", err)
	}
	log.Info("Registered rating reconcile job", "schedule", "hourly")

	return nil
}
