package repositories

import (
	"context"
	"strings"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RaceRepository interface {
	List(ctx context.Context, tx *gorm.DB, filter RaceFilter) ([]Race, error)
	Popular(ctx context.Context, tx *gorm.DB, limit int) ([]Race, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Race, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*Race, error)
	Exists(ctx context.Context, tx *gorm.DB, id int) (bool, error)
	Similar(ctx context.Context, tx *gorm.DB, race *Race, limit int) ([]Race, error)
	Results(ctx context.Context, tx *gorm.DB, raceID int) ([]RaceResult, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]int, error)
	ListCircuits(ctx context.Context, tx *gorm.DB) ([]Circuit, error)
}

type raceRepository struct {
	log logger.Logger
}

func NewRaceRepository() RaceRepository {
	return &raceRepository{
		log: logger.New("raceRepository"),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere, with the
// wildcard characters in term taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func raceOrder(sortBy string) string {
	switch sortBy {
	case RaceSortRating:
		return "races.average_rating DESC, races.rating_count DESC, races.id DESC"
	case RaceSortPopular:
		return "races.rating_count DESC, races.date DESC, races.id DESC"
	default:
		return "races.date DESC, races.id DESC"
	}
}

func (r *raceRepository) List(ctx context.Context, tx *gorm.DB, filter RaceFilter) ([]Race, error) {
	log := r.log.Function("List")
	filter = filter.Normalize()

	query := tx.WithContext(ctx).
		Model(&Race{}).
		Select("races.*").
		Preload("Circuit").
		Joins("LEFT JOIN circuits ON circuits.id = races.circuit_id")

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		query = query.Where(
			"races.name ILIKE ? OR circuits.name ILIKE ? OR circuits.location ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	if len(filter.Tags) > 0 {
		query = query.Where("races.tags && ?", pq.Array(filter.Tags))
	}

	if filter.Year != nil {
		query = query.Where("races.year = ?", *filter.Year)
	}

	var races []Race
	err := query.
		Order(raceOrder(filter.SortBy)).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&races).Error
	if err != nil {
		return nil, log.Err("failed to list races", err, "filter", filter)
	}

	return races, nil
}

func (r *raceRepository) Popular(ctx context.Context, tx *gorm.DB, limit int) ([]Race, error) {
	log := r.log.Function("Popular")

	var races []Race
	err := tx.WithContext(ctx).
		Preload("Circuit").
		Order(raceOrder(RaceSortPopular)).
		Limit(limit).
		Find(&races).Error
	if err != nil {
		return nil, log.Err("failed to list popular races", err, "limit", limit)
	}

	return races, nil
}

func (r *raceRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Race, error) {
	log := r.log.Function("GetByID")

	var race Race
	if err := tx.WithContext(ctx).Preload("Circuit").First(&race, id).Error; err != nil {
		return nil, dbError(log, "failed to get race", err, "raceID", id)
	}

	return &race, nil
}

// GetForUpdate reads the race row under FOR UPDATE. Writers of the race
// aggregate serialise on this lock.
func (r *raceRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int) (*Race, error) {
	log := r.log.Function("GetForUpdate")

	var race Race
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&race, id).Error
	if err != nil {
		return nil, dbError(log, "failed to lock race", err, "raceID", id)
	}

	return &race, nil
}

func (r *raceRepository) Exists(ctx context.Context, tx *gorm.DB, id int) (bool, error) {
	log := r.log.Function("Exists")

	count, err := gorm.G[Race](tx).Where("id = ?", id).Count(ctx, "*")
	if err != nil {
		return false, log.Err("failed to check race", err, "raceID", id)
	}

	return count > 0, nil
}

func (r *raceRepository) Similar(
	ctx context.Context,
	tx *gorm.DB,
	race *Race,
	limit int,
) ([]Race, error) {
	log := r.log.Function("Similar")

	if len(race.Tags) == 0 {
		return []Race{}, nil
	}

	var races []Race
	err := tx.WithContext(ctx).
		Preload("Circuit").
		Where("id <> ? AND tags && ?", race.ID, pq.Array([]string(race.Tags))).
		Order("rating_count DESC, date DESC").
		Limit(limit).
		Find(&races).Error
	if err != nil {
		return nil, log.Err("failed to list similar races", err, "raceID", race.ID)
	}

	return races, nil
}

func (r *raceRepository) Results(ctx context.Context, tx *gorm.DB, raceID int) ([]RaceResult, error) {
	log := r.log.Function("Results")

	results, err := gorm.G[RaceResult](tx).
		Where("race_id = ?", raceID).
		Order("position ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get race results", err, "raceID", raceID)
	}

	return results, nil
}

func (r *raceRepository) ListIDs(ctx context.Context, tx *gorm.DB) ([]int, error) {
	log := r.log.Function("ListIDs")

	var ids []int
	if err := tx.WithContext(ctx).Model(&Race{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, log.Err("failed to list race ids", err)
	}

	return ids, nil
}

func (r *raceRepository) ListCircuits(ctx context.Context, tx *gorm.DB) ([]Circuit, error) {
	log := r.log.Function("ListCircuits")

	circuits, err := gorm.G[Circuit](tx).Order("name ASC").Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list circuits", err)
	}

	return circuits, nil
}
