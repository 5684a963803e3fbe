package middleware

import (
	"context"
	"errors"
	"strings"

	"pitwall/internal/models"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthContextKey is used to store auth info in context
type AuthContextKey string

const (
	UserKey           AuthContextKey = "user"
	UserKeyFiber      string         = "User"
	TokenInfoKeyFiber string         = "TokenInfo"
)

var errMissingBearer = errors.New("missing bearer token")

// RequireAuth rejects requests without a valid bearer session token
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.NewWithContext(c.UserContext(), "middleware").Function("RequireAuth")

		if err := m.authenticate(c); err != nil {
			log.Info("authentication failed", "error", err.Error(), "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		return c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through otherwise
func (m *Middleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.NewWithContext(c.UserContext(), "middleware").Function("OptionalAuth")

		if err := m.authenticate(c); err != nil && !errors.Is(err, errMissingBearer) {
			log.Debug("ignoring invalid token", "error", err.Error(), "path", c.Path())
		}

		return c.Next()
	}
}

func (m *Middleware) authenticate(c *fiber.Ctx) error {
	token, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}

	user, tokenInfo, err := m.authController.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(UserKeyFiber, user)
	c.Locals(TokenInfoKeyFiber, tokenInfo)

	// Keep the trace id set by the TraceID middleware
	ctx := context.WithValue(c.UserContext(), UserKey, user)
	c.SetUserContext(ctx)

	return nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingBearer
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", errors.Join(types.ErrUnauthenticated, errors.New("invalid authorization header format"))
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}

	return token, nil
}

// GetUser extracts user from Fiber context
func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func GetTokenInfo(c *fiber.Ctx) *types.TokenInfo {
	info, ok := c.Locals(TokenInfoKeyFiber).(*types.TokenInfo)
	if !ok {
		return nil
	}
	return info
}
