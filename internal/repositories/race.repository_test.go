package repositories

import (
	"context"
	"regexp"
	"testing"

	"pitwall/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term     string
		expected string
	}{
		{term: "monaco", expected: "%monaco%"},
		{term: "100%", expected: `%100\%%`},
		{term: "a_b", expected: `%a\_b%`},
		{term: `c:\`, expected: `%c:\\%`},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsPattern(tt.term))
		})
	}
}

func TestRaceOrder(t *testing.T) {
	assert.Contains(t, raceOrder(models.RaceSortDate), "races.date DESC")
	assert.Contains(t, raceOrder(""), "races.date DESC")
	assert.Contains(t, raceOrder(models.RaceSortRating), "races.average_rating DESC, races.rating_count DESC")
	assert.Contains(t, raceOrder(models.RaceSortPopular), "races.rating_count DESC, races.date DESC")
}

func TestRaceRepository_List_Filters(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRaceRepository()
	year := 2024

	mock.ExpectQuery(`ILIKE .* races\.tags && .* races\.year = .* ORDER BY races\.average_rating DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	races, err := repo.List(context.Background(), db, models.RaceFilter{
		Search: "monaco",
		Tags:   []string{"street"},
		Year:   &year,
		SortBy: models.RaceSortRating,
	})

	require.NoError(t, err)
	assert.Empty(t, races)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRaceRepository_Similar_NoTags(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRaceRepository()

	races, err := repo.Similar(context.Background(), db, &models.Race{}, models.MaxSimilarRaces)

	require.NoError(t, err)
	assert.Empty(t, races)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRaceRepository_Similar(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRaceRepository()

	mock.ExpectQuery(regexp.QuoteMeta("id <> $1 AND tags && $2")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Singapore Grand Prix"))

	race := &models.Race{Tags: pq.StringArray{"street", "night"}}
	race.ID = 1
	races, err := repo.Similar(context.Background(), db, race, models.MaxSimilarRaces)

	require.NoError(t, err)
	require.Len(t, races, 1)
	assert.Equal(t, "Singapore Grand Prix", races[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRaceRepository_Exists(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRaceRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "races"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.Exists(context.Background(), db, 99)

	require.NoError(t, err)
	assert.False(t, exists)
}
