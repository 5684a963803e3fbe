package controllers

import (
	"pitwall/config"
	"pitwall/internal/database"
	"pitwall/internal/events"
	"pitwall/internal/repositories"
	"pitwall/internal/services"

	authController "pitwall/internal/controllers/auth"
	favoriteController "pitwall/internal/controllers/favorites"
	feedController "pitwall/internal/controllers/feed"
	listController "pitwall/internal/controllers/lists"
	raceController "pitwall/internal/controllers/races"
	ratingController "pitwall/internal/controllers/ratings"
	socialController "pitwall/internal/controllers/social"
	userController "pitwall/internal/controllers/users"
	watchlistController "pitwall/internal/controllers/watchlist"
)

type Controllers struct {
	Auth      authController.AuthControllerInterface
	User      userController.UserControllerInterface
	Race      raceController.RaceControllerInterface
	Rating    ratingController.RatingControllerInterface
	Social    socialController.SocialControllerInterface
	Feed      feedController.FeedControllerInterface
	Favorite  favoriteController.FavoriteControllerInterface
	List      listController.ListControllerInterface
	Watchlist watchlistController.WatchlistControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:      authController.New(services.Session, repos.User, db),
		User:      userController.New(repos, db),
		Race:      raceController.New(repos, db),
		Rating:    ratingController.New(repos, services, eventBus, db),
		Social:    socialController.New(repos, db),
		Feed:      feedController.New(repos, config, db),
		Favorite:  favoriteController.New(repos, services, eventBus, db),
		List:      listController.New(repos, services, eventBus, db),
		Watchlist: watchlistController.New(repos, services, eventBus, db),
	}
}
