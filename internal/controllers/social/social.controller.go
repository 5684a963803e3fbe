package socialController

import (
	"context"

	"pitwall/internal/database"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
)

type SocialController struct {
	followRepo repositories.FollowRepository
	db         database.DB
}

type SocialControllerInterface interface {
	Follow(ctx context.Context, follower *User, followingID uuid.UUID) error
	Unfollow(ctx context.Context, follower *User, followingID uuid.UUID) error
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]UserSummary, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]UserSummary, error)
}

func New(repos repositories.Repository, db database.DB) SocialControllerInterface {
	return &SocialController{
		followRepo: repos.Follow,
		db:         db,
	}
}

// Follow adds the edge follower -> followingID. Following someone already
// followed succeeds without change.
func (c *SocialController) Follow(ctx context.Context, follower *User, followingID uuid.UUID) error {
	log := logger.NewWithContext(ctx, "socialController").Function("Follow")

	if follower.ID == followingID {
		return log.ErrorWithType(types.ErrInvalidOperation, "users cannot follow themselves",
			"userID", follower.ID)
	}

	created, err := c.followRepo.Follow(ctx, c.db.SQL, follower.ID, followingID)
	if err != nil {
		return err
	}

	log.Info("Follow", "followerID", follower.ID, "followingID", followingID, "created", created)
	return nil
}

func (c *SocialController) Unfollow(ctx context.Context, follower *User, followingID uuid.UUID) error {
	log := logger.NewWithContext(ctx, "socialController").Function("Unfollow")

	removed, err := c.followRepo.Unfollow(ctx, c.db.SQL, follower.ID, followingID)
	if err != nil {
		return err
	}

	log.Info("Unfollow", "followerID", follower.ID, "followingID", followingID, "removed", removed)
	return nil
}

func (c *SocialController) IsFollowing(
	ctx context.Context,
	followerID, followingID uuid.UUID,
) (bool, error) {
	return c.followRepo.IsFollowing(ctx, c.db.SQL, followerID, followingID)
}

func (c *SocialController) ListFollowing(ctx context.Context, userID uuid.UUID) ([]UserSummary, error) {
	return c.followRepo.ListFollowing(ctx, c.db.SQL, userID)
}

func (c *SocialController) ListFollowers(ctx context.Context, userID uuid.UUID) ([]UserSummary, error) {
	return c.followRepo.ListFollowers(ctx, c.db.SQL, userID)
}
