package authController

import (
	"context"

	"pitwall/internal/database"
	"pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/internal/types"
	"pitwall/pkg/logger"
)

// AuthController turns bearer tokens into users and ends sessions
type AuthController struct {
	sessionService *services.SessionService
	userRepo       repositories.UserRepository
	db             database.DB
	log            logger.Logger
}

type AuthControllerInterface interface {
	Authenticate(ctx context.Context, rawToken string) (*models.User, *types.TokenInfo, error)
	Logout(ctx context.Context, info *types.TokenInfo) error
}

func New(
	sessionService *services.SessionService,
	userRepo repositories.UserRepository,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		sessionService: sessionService,
		userRepo:       userRepo,
		db:             db,
		log:            logger.New("authController"),
	}
}

// Authenticate validates the token and returns its user, creating the user
// row the first time a token for it is seen.
func (c *AuthController) Authenticate(
	ctx context.Context,
	rawToken string,
) (*models.User, *types.TokenInfo, error) {
	log := c.log.TraceFromContext(ctx).Function("Authenticate")

	info, err := c.sessionService.ValidateToken(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}

	claims, err := services.ClaimsFromTokenInfo(info)
	if err != nil {
		return nil, nil, err
	}

	user, err := c.userRepo.FindOrCreate(ctx, c.db.SQL, claims)
	if err != nil {
		return nil, nil, log.Err("failed to resolve user for session", err, "userID", claims.ID)
	}

	return user, info, nil
}

func (c *AuthController) Logout(ctx context.Context, info *types.TokenInfo) error {
	return c.sessionService.Revoke(ctx, info)
}
