package app

import (
	"context"

	"pitwall/config"
	"pitwall/internal/controllers"
	"pitwall/internal/database"
	"pitwall/internal/events"
	"pitwall/internal/handlers/middleware"
	"pitwall/internal/jobs"
	"pitwall/internal/metrics"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/internal/websockets"
	"pitwall/pkg/logger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	metrics.InitRegistry()

	eventBus := events.New(db.Cache.Events, config)
	services := services.New(db, config)
	repos := repositories.New()
	controllers := controllers.New(services, repos, eventBus, config, db)
	middleware := middleware.New(config, controllers.Auth)

	websocket, err := websockets.New(db, eventBus, config, controllers.Auth, repos.Follow)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	if config.SchedulerEnabled {
		if err := jobs.RegisterAllJobs(services.Scheduler, services, repos, db); err != nil {
			return &App{}, log.Err("failed to register jobs", err)
		}
		if err := services.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Websocket:   websocket,
		EventBus:    eventBus,
		Services:    services,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Session,
		a.Services.Scheduler,
		a.Controllers.Auth,
		a.Controllers.User,
		a.Controllers.Race,
		a.Controllers.Rating,
		a.Controllers.Social,
		a.Controllers.Feed,
		a.Controllers.Favorite,
		a.Controllers.List,
		a.Controllers.Watchlist,
		a.Repos.User,
		a.Repos.Race,
		a.Repos.Rating,
		a.Repos.Follow,
	}

	for i, check := range nilChecks {
		if check == nil {
			return log.Error("nil check failed", "index", i)
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
