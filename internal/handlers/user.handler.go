package handlers

import (
	"pitwall/internal/app"
	"pitwall/internal/handlers/middleware"
	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	favoriteController "pitwall/internal/controllers/favorites"
	feedController "pitwall/internal/controllers/feed"
	listController "pitwall/internal/controllers/lists"
	socialController "pitwall/internal/controllers/social"
	userController "pitwall/internal/controllers/users"
	watchlistController "pitwall/internal/controllers/watchlist"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	userController      userController.UserControllerInterface
	socialController    socialController.SocialControllerInterface
	feedController      feedController.FeedControllerInterface
	listController      listController.ListControllerInterface
	watchlistController watchlistController.WatchlistControllerInterface
	favoriteController  favoriteController.FavoriteControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		userController:      app.Controllers.User,
		socialController:    app.Controllers.Social,
		feedController:      app.Controllers.Feed,
		listController:      app.Controllers.List,
		watchlistController: app.Controllers.Watchlist,
		favoriteController:  app.Controllers.Favorite,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")

	users.Get("/check-username", h.checkUsername)
	users.Put("/profile", h.middleware.RequireAuth(), h.updateProfile)

	users.Get("/:username", h.getProfile)
	users.Get("/:username/follows", h.getFollowing)
	users.Get("/:username/followers", h.getFollowers)
	users.Get("/:username/activity", h.getActivity)
	users.Get("/:username/reviews", h.getReviews)
	users.Get("/:username/lists", h.middleware.OptionalAuth(), h.getLists)
	users.Get("/:username/watchlist", h.getWatchlist)
	users.Get("/:username/favorites", h.getFavorites)

	users.Get("/:username/following", h.middleware.RequireAuth(), h.isFollowing)
	users.Post("/:username/follow", h.middleware.RequireAuth(), h.follow)
	users.Delete("/:username/follow", h.middleware.RequireAuth(), h.unfollow)
	users.Post("/:username/favorites/reorder", h.middleware.RequireAuth(), h.reorderFavorites)
}

// target resolves the :username path parameter
func (h *UserHandler) target(c *fiber.Ctx) (*User, error) {
	return h.userController.GetByUsername(c.UserContext(), c.Params("username"))
}

func (h *UserHandler) checkUsername(c *fiber.Ctx) error {
	available, err := h.userController.CheckUsername(c.UserContext(), c.Query("username"))
	if err != nil {
		return writeError(c, h.log.Function("checkUsername"), err, "Failed to check username")
	}

	return c.JSON(fiber.Map{"available": available})
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	updated, err := h.userController.UpdateProfile(c.UserContext(), user, req)
	if err != nil {
		return writeError(c, h.log.Function("updateProfile"), err, "Failed to update profile")
	}

	return c.JSON(fiber.Map{"user": updated})
}

func (h *UserHandler) getProfile(c *fiber.Ctx) error {
	profile, err := h.userController.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return writeError(c, h.log.Function("getProfile"), err, "Failed to load profile")
	}

	return c.JSON(fiber.Map{"user": profile})
}

func (h *UserHandler) getFollowing(c *fiber.Ctx) error {
	log := h.log.Function("getFollowing")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	users, err := h.socialController.ListFollowing(c.UserContext(), target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to load follows")
	}

	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) getFollowers(c *fiber.Ctx) error {
	log := h.log.Function("getFollowers")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	users, err := h.socialController.ListFollowers(c.UserContext(), target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to load followers")
	}

	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) getActivity(c *fiber.Ctx) error {
	log := h.log.Function("getActivity")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	entries, err := h.feedController.GetUserActivity(c.UserContext(), target.ID, c.QueryInt("limit"))
	if err != nil {
		return writeError(c, log, err, "Failed to load activity")
	}

	return c.JSON(fiber.Map{"activity": entries})
}

func (h *UserHandler) getReviews(c *fiber.Ctx) error {
	log := h.log.Function("getReviews")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	reviews, err := h.userController.GetReviews(c.UserContext(), target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to load reviews")
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *UserHandler) getLists(c *fiber.Ctx) error {
	log := h.log.Function("getLists")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	lists, err := h.listController.GetUserLists(c.UserContext(), middleware.GetUser(c), target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to load lists")
	}

	return c.JSON(fiber.Map{"lists": lists})
}

func (h *UserHandler) getWatchlist(c *fiber.Ctx) error {
	log := h.log.Function("getWatchlist")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	entries, err := h.watchlistController.GetWatchlist(c.UserContext(), target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to load watchlist")
	}

	return c.JSON(fiber.Map{"watchlist": entries})
}

func (h *UserHandler) getFavorites(c *fiber.Ctx) error {
	log := h.log.Function("getFavorites")

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	races, err := h.favoriteController.GetFavorites(c.UserContext(), target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to load favorites")
	}

	return c.JSON(fiber.Map{"races": races})
}

// isFollowing reports whether the caller follows :username
func (h *UserHandler) isFollowing(c *fiber.Ctx) error {
	log := h.log.Function("isFollowing")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	following, err := h.socialController.IsFollowing(c.UserContext(), user.ID, target.ID)
	if err != nil {
		return writeError(c, log, err, "Failed to check follow")
	}

	return c.JSON(fiber.Map{"following": following})
}

func (h *UserHandler) follow(c *fiber.Ctx) error {
	log := h.log.Function("follow")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	if err := h.socialController.Follow(c.UserContext(), user, target.ID); err != nil {
		return writeError(c, log, err, "Failed to follow user")
	}

	return c.JSON(fiber.Map{"following": true})
}

func (h *UserHandler) unfollow(c *fiber.Ctx) error {
	log := h.log.Function("unfollow")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	if err := h.socialController.Unfollow(c.UserContext(), user, target.ID); err != nil {
		return writeError(c, log, err, "Failed to unfollow user")
	}

	return c.JSON(fiber.Map{"following": false})
}

func (h *UserHandler) reorderFavorites(c *fiber.Ctx) error {
	log := h.log.Function("reorderFavorites")

	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	target, err := h.target(c)
	if err != nil {
		return writeError(c, log, err, "Failed to load user")
	}

	if err := h.favoriteController.Reorder(c.UserContext(), user, target.ID, req.RaceIDs); err != nil {
		return writeError(c, log, err, "Failed to reorder favorites")
	}

	return c.JSON(fiber.Map{"raceIds": req.RaceIDs})
}
