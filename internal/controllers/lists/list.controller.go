package listController

import (
	"context"

	"pitwall/internal/database"
	"pitwall/internal/events"
	. "pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/services"
	"pitwall/internal/types"
	"pitwall/internal/utils"
	"pitwall/internal/validation"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListController struct {
	listRepo     repositories.ListRepository
	raceRepo     repositories.RaceRepository
	activityRepo repositories.ActivityRepository
	transaction  services.Transactor
	eventBus     events.ActivityPublisher
	db           database.DB
}

type ListControllerInterface interface {
	CreateList(ctx context.Context, user *User, request CreateListRequest) (*List, error)
	UpdateList(ctx context.Context, user *User, listID int, request UpdateListRequest) (*List, error)
	DeleteList(ctx context.Context, user *User, listID int) error
	GetList(ctx context.Context, viewer *User, listID int) (*List, error)
	GetListRaces(ctx context.Context, viewer *User, listID int) ([]Race, error)
	GetUserLists(ctx context.Context, viewer *User, ownerID uuid.UUID) ([]List, error)
	AddRace(ctx context.Context, user *User, listID int, raceID int) error
	RemoveRace(ctx context.Context, user *User, listID int, raceID int) error
	ReorderRaces(ctx context.Context, user *User, listID int, raceIDs []int) error
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus events.ActivityPublisher,
	db database.DB,
) ListControllerInterface {
	return &ListController{
		listRepo:     repos.List,
		raceRepo:     repos.Race,
		activityRepo: repos.Activity,
		transaction:  services.Transaction,
		eventBus:     eventBus,
		db:           db,
	}
}

func (c *ListController) CreateList(
	ctx context.Context,
	user *User,
	request CreateListRequest,
) (*List, error) {
	log := logger.NewWithContext(ctx, "listController").Function("CreateList")

	request.Description = utils.CleanOptionalText(request.Description)
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	list := request.ToList(user.ID)
	if err := c.listRepo.Create(ctx, c.db.SQL, list); err != nil {
		return nil, err
	}

	log.Info("List created", "userID", user.ID, "listID", list.ID)
	return list, nil
}

func (c *ListController) UpdateList(
	ctx context.Context,
	user *User,
	listID int,
	request UpdateListRequest,
) (*List, error) {
	log := logger.NewWithContext(ctx, "listController").Function("UpdateList")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	var list *List
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		owned, err := c.ownedList(ctx, tx, log, user, listID)
		if err != nil {
			return err
		}

		request.Apply(owned)
		if err := c.listRepo.Update(ctx, tx, owned); err != nil {
			return err
		}

		list = owned
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("List updated", "userID", user.ID, "listID", listID)
	return list, nil
}

// DeleteList removes the list and, through the foreign key cascade, its races
func (c *ListController) DeleteList(ctx context.Context, user *User, listID int) error {
	log := logger.NewWithContext(ctx, "listController").Function("DeleteList")

	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.ownedList(ctx, tx, log, user, listID); err != nil {
			return err
		}
		return c.listRepo.Delete(ctx, tx, listID)
	})
	if err != nil {
		return err
	}

	log.Info("List deleted", "userID", user.ID, "listID", listID)
	return nil
}

// GetList returns the list when viewer may see it. Private lists of other
// users read as missing.
func (c *ListController) GetList(ctx context.Context, viewer *User, listID int) (*List, error) {
	log := logger.NewWithContext(ctx, "listController").Function("GetList")

	list, err := c.listRepo.GetByID(ctx, c.db.SQL, listID)
	if err != nil {
		return nil, err
	}

	if !list.VisibleTo(viewerID(viewer)) {
		return nil, log.ErrorWithType(types.ErrNotFound, "list not found", "listID", listID)
	}

	return list, nil
}

func (c *ListController) GetListRaces(ctx context.Context, viewer *User, listID int) ([]Race, error) {
	if _, err := c.GetList(ctx, viewer, listID); err != nil {
		return nil, err
	}
	return c.listRepo.ListRaces(ctx, c.db.SQL, listID)
}

func (c *ListController) GetUserLists(
	ctx context.Context,
	viewer *User,
	ownerID uuid.UUID,
) ([]List, error) {
	includePrivate := viewer != nil && viewer.ID == ownerID
	return c.listRepo.ListByUser(ctx, c.db.SQL, ownerID, includePrivate)
}

// AddRace appends a race to the end of an owned list. Adding a race that is
// already a member changes nothing.
func (c *ListController) AddRace(ctx context.Context, user *User, listID int, raceID int) error {
	log := logger.NewWithContext(ctx, "listController").Function("AddRace")

	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		list, err := c.ownedList(ctx, tx, log, user, listID)
		if err != nil {
			return err
		}

		exists, err := c.raceRepo.Exists(ctx, tx, raceID)
		if err != nil {
			return err
		}
		if !exists {
			return log.ErrorWithType(types.ErrNotFound, "race not found", "raceID", raceID)
		}

		added, err := c.listRepo.AddRace(ctx, tx, listID, raceID)
		if err != nil || !added {
			return err
		}

		activity = NewListActivity(list.UserID, ActivityListAdd, listID, raceID)
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		return err
	}

	c.publish(log, activity)
	log.Info("Race added to list", "listID", listID, "raceID", raceID, "added", activity != nil)
	return nil
}

func (c *ListController) RemoveRace(ctx context.Context, user *User, listID int, raceID int) error {
	log := logger.NewWithContext(ctx, "listController").Function("RemoveRace")

	var activity *Activity
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		list, err := c.ownedList(ctx, tx, log, user, listID)
		if err != nil {
			return err
		}

		removed, err := c.listRepo.RemoveRace(ctx, tx, listID, raceID)
		if err != nil || !removed {
			return err
		}

		activity = NewListActivity(list.UserID, ActivityListRemove, listID, raceID)
		return c.activityRepo.Create(ctx, tx, activity)
	})
	if err != nil {
		return err
	}

	c.publish(log, activity)
	log.Info("Race removed from list", "listID", listID, "raceID", raceID, "removed", activity != nil)
	return nil
}

// ReorderRaces replaces the list order. raceIDs must name every member
// exactly once.
func (c *ListController) ReorderRaces(
	ctx context.Context,
	user *User,
	listID int,
	raceIDs []int,
) error {
	log := logger.NewWithContext(ctx, "listController").Function("ReorderRaces")

	return c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.ownedList(ctx, tx, log, user, listID); err != nil {
			return err
		}

		current, err := c.listRepo.LockRaceIDs(ctx, tx, listID)
		if err != nil {
			return err
		}

		if err := utils.ValidatePermutation(current, raceIDs); err != nil {
			log.Warn("rejected list order", "listID", listID, "error", err)
			return types.NewFieldErrors(map[string]string{"raceIds": err.Error()})
		}

		return c.listRepo.SetRaceOrder(ctx, tx, listID, raceIDs)
	})
}

// ownedList locks the list row and checks that user owns it
func (c *ListController) ownedList(
	ctx context.Context,
	tx *gorm.DB,
	log logger.Logger,
	user *User,
	listID int,
) (*List, error) {
	list, err := c.listRepo.GetForUpdate(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if !list.OwnedBy(user.ID) {
		return nil, log.ErrorWithType(types.ErrForbidden, "list belongs to another user",
			"listID", listID, "userID", user.ID)
	}
	return list, nil
}

func (c *ListController) publish(log logger.Logger, activity *Activity) {
	if activity == nil || c.eventBus == nil {
		return
	}
	if err := c.eventBus.PublishActivity(*activity); err != nil {
		log.Warn("failed to publish activity", "type", activity.Type, "error", err)
	}
}

func viewerID(viewer *User) *uuid.UUID {
	if viewer == nil {
		return nil
	}
	return &viewer.ID
}
