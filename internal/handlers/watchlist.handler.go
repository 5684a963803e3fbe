package handlers

import (
	"pitwall/internal/app"
	"pitwall/internal/handlers/middleware"
	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	watchlistController "pitwall/internal/controllers/watchlist"

	"github.com/gofiber/fiber/v2"
)

type WatchlistHandler struct {
	Handler
	watchlistController watchlistController.WatchlistControllerInterface
}

func NewWatchlistHandler(app app.App, router fiber.Router) *WatchlistHandler {
	log := logger.New("handlers").File("watchlist_handler")
	return &WatchlistHandler{
		watchlistController: app.Controllers.Watchlist,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *WatchlistHandler) Register() {
	watchlist := h.router.Group("/watchlist", h.middleware.RequireAuth())
	watchlist.Get("", h.getWatchlist)
	watchlist.Post("", h.addToWatchlist)
	watchlist.Delete("/:raceId", h.removeFromWatchlist)
}

func (h *WatchlistHandler) getWatchlist(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	entries, err := h.watchlistController.GetWatchlist(c.UserContext(), user.ID)
	if err != nil {
		return writeError(c, h.log.Function("getWatchlist"), err, "Failed to load watchlist")
	}

	return c.JSON(fiber.Map{"watchlist": entries})
}

func (h *WatchlistHandler) addToWatchlist(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var req WatchlistRequest
	if err := c.BodyParser(&req); err != nil || req.RaceID <= 0 {
		return badRequest(c, "Invalid request body")
	}

	if err := h.watchlistController.Add(c.UserContext(), user, req.RaceID); err != nil {
		return writeError(c, h.log.Function("addToWatchlist"), err, "Failed to add to watchlist")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"watchlisted": true})
}

func (h *WatchlistHandler) removeFromWatchlist(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	raceID, ok := intParam(c, "raceId")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}

	if err := h.watchlistController.Remove(c.UserContext(), user, raceID); err != nil {
		return writeError(c, h.log.Function("removeFromWatchlist"), err, "Failed to remove from watchlist")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
