package userController

import (
	"context"
	"strings"

	"pitwall/internal/database"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/types"
	"pitwall/internal/utils"
	"pitwall/internal/validation"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
)

const usernameRules = "required,alphanum,min=3,max=20"

type UserController struct {
	userRepo   repositories.UserRepository
	ratingRepo repositories.RatingRepository
	db         database.DB
	log        logger.Logger
}

type UserControllerInterface interface {
	GetUserWithStats(ctx context.Context, userID uuid.UUID) (*UserWithStats, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetProfile(ctx context.Context, username string) (*UserWithStats, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, user *User, request UpdateProfileRequest) (*User, error)
	GetReviews(ctx context.Context, userID uuid.UUID) ([]Rating, error)
}

func New(repos repositories.Repository, db database.DB) UserControllerInterface {
	return &UserController{
		userRepo:   repos.User,
		ratingRepo: repos.Rating,
		db:         db,
		log:        logger.New("userController"),
	}
}

func (uc *UserController) GetUserWithStats(ctx context.Context, userID uuid.UUID) (*UserWithStats, error) {
	user, err := uc.userRepo.GetByID(ctx, uc.db.SQL, userID)
	if err != nil {
		return nil, err
	}
	return uc.withStats(ctx, user)
}

func (uc *UserController) GetByUsername(ctx context.Context, username string) (*User, error) {
	return uc.userRepo.GetByUsername(ctx, uc.db.SQL, strings.TrimSpace(username))
}

func (uc *UserController) GetProfile(ctx context.Context, username string) (*UserWithStats, error) {
	user, err := uc.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.withStats(ctx, user)
}

// CheckUsername reports whether username is valid and unclaimed
func (uc *UserController) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if err := validation.Var("username", username, usernameRules); err != nil {
		return false, err
	}

	taken, err := uc.userRepo.IsUsernameTaken(ctx, uc.db.SQL, username, nil)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (uc *UserController) UpdateProfile(
	ctx context.Context,
	user *User,
	request UpdateProfileRequest,
) (*User, error) {
	log := uc.log.TraceFromContext(ctx).Function("UpdateProfile")

	if request.Username != nil {
		trimmed := strings.TrimSpace(*request.Username)
		request.Username = &trimmed
	}
	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	request.Bio = utils.CleanOptionalText(request.Bio)

	if request.Username != nil && !strings.EqualFold(*request.Username, user.Username) {
		taken, err := uc.userRepo.IsUsernameTaken(ctx, uc.db.SQL, *request.Username, &user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, log.ErrorWithType(types.ErrConflict, "username already taken",
				"username", *request.Username)
		}
	}

	updated := *user
	updated.ApplyProfileUpdate(request)
	if err := uc.userRepo.Update(ctx, uc.db.SQL, &updated); err != nil {
		return nil, err
	}

	log.Info("Profile updated", "userID", user.ID)
	return &updated, nil
}

func (uc *UserController) GetReviews(ctx context.Context, userID uuid.UUID) ([]Rating, error) {
	return uc.ratingRepo.ListByUser(ctx, uc.db.SQL, userID)
}

func (uc *UserController) withStats(ctx context.Context, user *User) (*UserWithStats, error) {
	stats, err := uc.userRepo.GetStats(ctx, uc.db.SQL, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserWithStats{User: *user, Stats: stats}, nil
}
