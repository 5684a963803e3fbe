package handlers

import (
	"pitwall/internal/app"
	"pitwall/internal/handlers/middleware"
	"pitwall/pkg/logger"

	authController "pitwall/internal/controllers/auth"
	userController "pitwall/internal/controllers/users"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
	userController userController.UserControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		userController: app.Controllers.User,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth", h.middleware.RequireAuth())
	auth.Get("/user", h.getCurrentUser)
	auth.Post("/logout", h.logout)
}

// getCurrentUser returns the caller's profile with stats
func (h *AuthHandler) getCurrentUser(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	profile, err := h.userController.GetUserWithStats(c.UserContext(), user.ID)
	if err != nil {
		return writeError(c, h.log.Function("getCurrentUser"), err, "Failed to load user")
	}

	return c.JSON(fiber.Map{"user": profile})
}

// logout revokes the presented session token until it expires
func (h *AuthHandler) logout(c *fiber.Ctx) error {
	log := h.log.Function("logout")

	tokenInfo := middleware.GetTokenInfo(c)
	if tokenInfo == nil {
		return unauthorized(c)
	}

	if err := h.authController.Logout(c.UserContext(), tokenInfo); err != nil {
		return writeError(c, log, err, "Failed to log out")
	}

	log.Info("user logged out", "userID", tokenInfo.UserID)
	return c.JSON(fiber.Map{"message": "Logout successful"})
}
