package seed

import (
	"time"

	. "pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type raceSeed struct {
	race    Race
	circuit int
	results []RaceResult
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func length(km string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(km), Valid: true}
}

func raceDate(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Circuits returns the sample circuits in insertion order
func Circuits() []Circuit {
	return []Circuit{
		{Name: "Circuit de Monaco", Location: "Monte Carlo", Country: "Monaco", Type: "street", Length: length("3.337")},
		{Name: "Silverstone Circuit", Location: "Silverstone", Country: "United Kingdom", Type: "permanent", Length: length("5.891")},
		{Name: "Autodromo Jose Carlos Pace", Location: "São Paulo", Country: "Brazil", Type: "permanent", Length: length("4.309")},
		{Name: "Suzuka International Racing Course", Location: "Suzuka", Country: "Japan", Type: "permanent", Length: length("5.807")},
	}
}

// races indexes circuits by their position in Circuits
func races(year int) []raceSeed {
	return []raceSeed{
		{
			circuit: 0,
			race: Race{
				Name: "Monaco Grand Prix", Year: year, Season: year, Round: 6,
				Date: raceDate(year, time.May, 28), Laps: intPtr(78),
				ImageURL: stringPtr("https://images.unsplash.com/photo-1558618666-fcd25c85cd64"),
				Tags:     pq.StringArray{"Day Race", "Street Circuit", "Dry", "Historic", "Safety Car Heavy"},
			},
			results: []RaceResult{
				{Position: 1, DriverName: "Max Verstappen", Team: "Red Bull Racing", Time: stringPtr("1:32:15.456"), Points: 25},
				{Position: 2, DriverName: "Fernando Alonso", Team: "Aston Martin", Time: stringPtr("+5.123"), Points: 18},
				{Position: 3, DriverName: "Esteban Ocon", Team: "Alpine", Time: stringPtr("+12.789"), Points: 15},
			},
		},
		{
			circuit: 1,
			race: Race{
				Name: "British Grand Prix", Year: year, Season: year, Round: 10,
				Date: raceDate(year, time.July, 9), Laps: intPtr(52),
				ImageURL: stringPtr("https://images.unsplash.com/photo-1566436990860-65b8d5c0f000"),
				Tags:     pq.StringArray{"Day Race", "Permanent Track", "Mixed Weather", "Home Race"},
			},
		},
		{
			circuit: 2,
			race: Race{
				Name: "Brazilian Grand Prix", Year: year, Season: year, Round: 22,
				Date: raceDate(year, time.November, 5), Laps: intPtr(71),
				ImageURL: stringPtr("https://images.unsplash.com/photo-1551698618-1dfe5d97d256"),
				Tags:     pq.StringArray{"Day Race", "Permanent Track", "Wet", "Sprint Weekend", "Classic"},
			},
		},
		{
			circuit: 3,
			race: Race{
				Name: "Japanese Grand Prix", Year: year, Season: year, Round: 18,
				Date: raceDate(year, time.September, 24), Laps: intPtr(53),
				ImageURL: stringPtr("https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b"),
				Tags:     pq.StringArray{"Day Race", "Permanent Track", "Dry", "Technical", "Fan Favorite"},
			},
		},
	}
}

// Seed loads the sample catalog for year. It does nothing when races exist.
func Seed(db *gorm.DB, year int, log logger.Logger) error {
	log = log.Function("seed")

	var existing int64
	if err := db.Model(&Race{}).Count(&existing).Error; err != nil {
		return log.Err("failed to count races", err)
	}
	if existing > 0 {
		log.Info("Races already present, skipping seed", "races", existing)
		return nil
	}

	log.Info("Seeding sample catalog", "year", year)

	return db.Transaction(func(tx *gorm.DB) error {
		circuits := Circuits()
		if err := tx.Create(&circuits).Error; err != nil {
			return log.Err("failed to create circuits", err)
		}

		for _, seed := range races(year) {
			race := seed.race
			race.CircuitID = &circuits[seed.circuit].ID
			if err := tx.Create(&race).Error; err != nil {
				return log.Err("failed to create race", err, "race", race.Name)
			}

			if len(seed.results) == 0 {
				continue
			}
			for i := range seed.results {
				seed.results[i].RaceID = race.ID
			}
			if err := tx.Create(&seed.results).Error; err != nil {
				return log.Err("failed to create results", err, "race", race.Name)
			}
		}

		return nil
	})
}
