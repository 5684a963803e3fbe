package handlers

import (
	"pitwall/internal/app"
	"pitwall/internal/handlers/middleware"
	"pitwall/pkg/logger"

	feedController "pitwall/internal/controllers/feed"

	"github.com/gofiber/fiber/v2"
)

type FeedHandler struct {
	Handler
	feedController feedController.FeedControllerInterface
}

func NewFeedHandler(app app.App, router fiber.Router) *FeedHandler {
	log := logger.New("handlers").File("feed_handler")
	return &FeedHandler{
		feedController: app.Controllers.Feed,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *FeedHandler) Register() {
	h.router.Get("/activity", h.middleware.RequireAuth(), h.getFeed)
}

// getFeed returns rating events by the users the caller follows, newest first
func (h *FeedHandler) getFeed(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	entries, err := h.feedController.GetFeed(c.UserContext(), user.ID, c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.log.Function("getFeed"), err, "Failed to load activity")
	}

	return c.JSON(fiber.Map{"activity": entries})
}
