package services

import (
	"pitwall/config"
	"pitwall/internal/database"
)

type Service struct {
	Transaction *TransactionService
	Session     *SessionService
	Scheduler   *SchedulerService
}

func New(db database.DB, config config.Config) Service {
	var revocations RevocationStore
	if db.Cache.Session != nil {
		revocations = NewValkeyRevocationStore(db.Cache.Session)
	}

	return Service{
		Transaction: NewTransactionService(db),
		Session:     NewSessionService(config, revocations),
		Scheduler:   NewSchedulerService(),
	}
}
