package repositories

import (
	"context"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListRepository interface {
	Create(ctx context.Context, tx *gorm.DB, list *List) error
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*List, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*List, error)
	Update(ctx context.Context, tx *gorm.DB, list *List) error
	Delete(ctx context.Context, tx *gorm.DB, id int) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, includePrivate bool) ([]List, error)
	AddRace(ctx context.Context, tx *gorm.DB, listID, raceID int) (bool, error)
	RemoveRace(ctx context.Context, tx *gorm.DB, listID, raceID int) (bool, error)
	LockRaceIDs(ctx context.Context, tx *gorm.DB, listID int) ([]int, error)
	SetRaceOrder(ctx context.Context, tx *gorm.DB, listID int, raceIDs []int) error
	ListRaces(ctx context.Context, tx *gorm.DB, listID int) ([]Race, error)
}

type listRepository struct {
	log logger.Logger
}

func NewListRepository() ListRepository {
	return &listRepository{
		log: logger.New("listRepository"),
	}
}

func (r *listRepository) Create(ctx context.Context, tx *gorm.DB, list *List) error {
	log := r.log.Function("Create")

	if err := gorm.G[List](tx).Create(ctx, list); err != nil {
		return dbError(log, "failed to create list", err, "userID", list.UserID)
	}

	return nil
}

func (r *listRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*List, error) {
	log := r.log.Function("GetByID")

	var list List
	if err := tx.WithContext(ctx).Preload("User").First(&list, id).Error; err != nil {
		return nil, dbError(log, "failed to get list", err, "listID", id)
	}

	return &list, nil
}

func (r *listRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*List, error) {
	log := r.log.Function("GetForUpdate")

	var list List
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&list, id).Error
	if err != nil {
		return nil, dbError(log, "failed to lock list", err, "listID", id)
	}

	return &list, nil
}

func (r *listRepository) Update(ctx context.Context, tx *gorm.DB, list *List) error {
	log := r.log.Function("Update")

	err := tx.WithContext(ctx).
		Model(list).
		Select("name", "description", "cover_image_url", "is_public", "updated_at").
		Updates(list).Error
	if err != nil {
		return dbError(log, "failed to update list", err, "listID", list.ID)
	}

	return nil
}

// Delete removes the list. Its memberships go with it via ON DELETE CASCADE.
func (r *listRepository) Delete(ctx context.Context, tx *gorm.DB, id int) error {
	log := r.log.Function("Delete")

	deleted, err := gorm.G[List](tx).Where("id = ?", id).Delete(ctx)
	if err != nil {
		return log.Err("failed to delete list", err, "listID", id)
	}
	if deleted == 0 {
		return dbError(log, "list not found", gorm.ErrRecordNotFound, "listID", id)
	}

	return nil
}

func (r *listRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	includePrivate bool,
) ([]List, error) {
	log := r.log.Function("ListByUser")

	query := gorm.G[List](tx).Where("user_id = ?", userID)
	if !includePrivate {
		query = query.Where("is_public = ?", true)
	}

	lists, err := query.Order("created_at DESC, id DESC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list user lists", err, "userID", userID)
	}

	return lists, nil
}

// AddRace appends the race to the end of the list
func (r *listRepository) AddRace(
	ctx context.Context,
	tx *gorm.DB,
	listID, raceID int,
) (bool, error) {
	log := r.log.Function("AddRace")

	result := tx.WithContext(ctx).Exec(`
		INSERT INTO list_races (list_id, race_id, "order", created_at)
		SELECT ?, ?, COALESCE(MAX("order"), -1) + 1, NOW()
		FROM list_races WHERE list_id = ?
		ON CONFLICT (list_id, race_id) DO NOTHING`,
		listID, raceID, listID,
	)
	if result.Error != nil {
		return false, dbError(log, "failed to add race to list", result.Error, "listID", listID, "raceID", raceID)
	}

	return result.RowsAffected > 0, nil
}

func (r *listRepository) RemoveRace(
	ctx context.Context,
	tx *gorm.DB,
	listID, raceID int,
) (bool, error) {
	log := r.log.Function("RemoveRace")

	deleted, err := gorm.G[ListRace](tx).
		Where("list_id = ? AND race_id = ?", listID, raceID).
		Delete(ctx)
	if err != nil {
		return false, log.Err("failed to remove race from list", err, "listID", listID, "raceID", raceID)
	}

	return deleted > 0, nil
}

func (r *listRepository) LockRaceIDs(ctx context.Context, tx *gorm.DB, listID int) ([]int, error) {
	log := r.log.Function("LockRaceIDs")

	ids := []int{}
	err := tx.WithContext(ctx).Raw(`
		SELECT race_id FROM list_races
		WHERE list_id = ?
		ORDER BY "order" ASC, id ASC
		FOR UPDATE`,
		listID,
	).Scan(&ids).Error
	if err != nil {
		return nil, log.Err("failed to lock list races", err, "listID", listID)
	}

	return ids, nil
}

func (r *listRepository) SetRaceOrder(
	ctx context.Context,
	tx *gorm.DB,
	listID int,
	raceIDs []int,
) error {
	log := r.log.Function("SetRaceOrder")

	if len(raceIDs) == 0 {
		return nil
	}

	err := tx.WithContext(ctx).Exec(`
		UPDATE list_races SET "order" = o.idx - 1
		FROM unnest(?::int[]) WITH ORDINALITY AS o(race_id, idx)
		WHERE list_races.list_id = ? AND list_races.race_id = o.race_id`,
		pq.Array(raceIDs), listID,
	).Error
	if err != nil {
		return log.Err("failed to reorder list", err, "listID", listID)
	}

	return nil
}

func (r *listRepository) ListRaces(ctx context.Context, tx *gorm.DB, listID int) ([]Race, error) {
	log := r.log.Function("ListRaces")

	races := []Race{}
	err := tx.WithContext(ctx).
		Preload("Circuit").
		Select("races.*").
		Joins("JOIN list_races ON list_races.race_id = races.id").
		Where("list_races.list_id = ?", listID).
		Order(`list_races."order" ASC, races.year DESC`).
		Find(&races).Error
	if err != nil {
		return nil, log.Err("failed to list races in list", err, "listID", listID)
	}

	return races, nil
}
