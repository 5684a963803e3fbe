package handlers

import (
	"strconv"
	"strings"

	"pitwall/internal/app"
	"pitwall/internal/handlers/middleware"
	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	favoriteController "pitwall/internal/controllers/favorites"
	raceController "pitwall/internal/controllers/races"
	ratingController "pitwall/internal/controllers/ratings"

	"github.com/gofiber/fiber/v2"
)

type RaceHandler struct {
	Handler
	raceController     raceController.RaceControllerInterface
	ratingController   ratingController.RatingControllerInterface
	favoriteController favoriteController.FavoriteControllerInterface
}

func NewRaceHandler(app app.App, router fiber.Router) *RaceHandler {
	log := logger.New("handlers").File("race_handler")
	return &RaceHandler{
		raceController:     app.Controllers.Race,
		ratingController:   app.Controllers.Rating,
		favoriteController: app.Controllers.Favorite,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RaceHandler) Register() {
	h.router.Get("/circuits", h.getCircuits)

	races := h.router.Group("/races")
	races.Get("", h.listRaces)
	races.Get("/popular", h.getPopular)
	races.Get("/:id", h.middleware.OptionalAuth(), h.getRace)
	races.Get("/:id/similar", h.getSimilar)

	races.Post("/:id/ratings", h.middleware.RequireAuth(), h.submitRating)
	races.Patch("/:id/ratings/:ratingId", h.middleware.RequireAuth(), h.updateRating)
	races.Post("/:id/like", h.middleware.RequireAuth(), h.toggleLike)
}

func (h *RaceHandler) listRaces(c *fiber.Ctx) error {
	filter, ok := parseRaceFilter(c)
	if !ok {
		return badRequest(c, "Invalid year")
	}

	races, err := h.raceController.ListRaces(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log.Function("listRaces"), err, "Failed to list races")
	}

	return c.JSON(fiber.Map{"races": races})
}

// parseRaceFilter reads search, tags, year, sortBy, limit and offset
func parseRaceFilter(c *fiber.Ctx) (RaceFilter, bool) {
	filter := RaceFilter{
		Search: strings.TrimSpace(c.Query("search")),
		SortBy: c.Query("sortBy"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}

	for _, tag := range strings.Split(c.Query("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			filter.Tags = append(filter.Tags, tag)
		}
	}

	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return RaceFilter{}, false
		}
		filter.Year = &year
	}

	return filter, true
}

func (h *RaceHandler) getPopular(c *fiber.Ctx) error {
	races, err := h.raceController.GetPopular(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.log.Function("getPopular"), err, "Failed to load popular races")
	}

	return c.JSON(fiber.Map{"races": races})
}

func (h *RaceHandler) getRace(c *fiber.Ctx) error {
	raceID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}

	detail, err := h.raceController.GetRace(c.UserContext(), raceID, middleware.GetUser(c))
	if err != nil {
		return writeError(c, h.log.Function("getRace"), err, "Failed to load race")
	}

	return c.JSON(detail)
}

func (h *RaceHandler) getSimilar(c *fiber.Ctx) error {
	raceID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}

	races, err := h.raceController.GetSimilar(c.UserContext(), raceID)
	if err != nil {
		return writeError(c, h.log.Function("getSimilar"), err, "Failed to load similar races")
	}

	return c.JSON(fiber.Map{"races": races})
}

func (h *RaceHandler) getCircuits(c *fiber.Ctx) error {
	circuits, err := h.raceController.GetCircuits(c.UserContext())
	if err != nil {
		return writeError(c, h.log.Function("getCircuits"), err, "Failed to load circuits")
	}

	return c.JSON(fiber.Map{"circuits": circuits})
}

func (h *RaceHandler) submitRating(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	raceID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}

	var req SubmitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rating, err := h.ratingController.SubmitRating(c.UserContext(), user, raceID, req)
	if err != nil {
		return writeError(c, h.log.Function("submitRating"), err, "Failed to submit rating")
	}

	return c.JSON(fiber.Map{"rating": rating})
}

func (h *RaceHandler) updateRating(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	raceID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}
	ratingID, ok := intParam(c, "ratingId")
	if !ok {
		return badRequest(c, "Invalid rating ID")
	}

	var req UpdateRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	rating, err := h.ratingController.UpdateRating(c.UserContext(), user, raceID, ratingID, req)
	if err != nil {
		return writeError(c, h.log.Function("updateRating"), err, "Failed to update rating")
	}

	return c.JSON(fiber.Map{"rating": rating})
}

func (h *RaceHandler) toggleLike(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	raceID, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid race ID")
	}

	response, err := h.favoriteController.ToggleLike(c.UserContext(), user, raceID)
	if err != nil {
		return writeError(c, h.log.Function("toggleLike"), err, "Failed to toggle like")
	}

	return c.JSON(response)
}
