package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const ratingAverageScale = 2

// RatingAverage is the stored mean of a race's ratings. It serialises as a
// fixed two decimal string, or "0" for a race nobody has rated.
type RatingAverage struct {
	decimal.Decimal
}

func (a RatingAverage) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte(`"0"`), nil
	}
	return []byte(`"` + a.StringFixed(ratingAverageScale) + `"`), nil
}

func (a RatingAverage) String() string {
	if a.IsZero() {
		return "0"
	}
	return a.StringFixed(ratingAverageScale)
}

// AverageFromTotals computes sum/count rounded to two places
func AverageFromTotals(sum, count int64) RatingAverage {
	if count <= 0 {
		return RatingAverage{decimal.Zero}
	}
	return RatingAverage{decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), ratingAverageScale)}
}

type Race struct {
	BaseModel
	Name          string         `gorm:"type:text;not null"                json:"name"`
	Year          int            `gorm:"not null"                          json:"year"`
	Season        int            `gorm:"not null"                          json:"season"`
	Round         int            `gorm:"not null"                          json:"round"`
	CircuitID     *int           `gorm:"type:int"                          json:"circuitId"`
	Circuit       *Circuit       `gorm:"foreignKey:CircuitID"              json:"circuit,omitempty"`
	Date          datatypes.Date `gorm:"type:date;not null"                json:"date"`
	Laps          *int           `gorm:"type:int"                          json:"laps"`
	ImageURL      *string        `gorm:"column:image_url"                  json:"imageUrl"`
	Tags          pq.StringArray `gorm:"type:text[]"                       json:"tags"`
	AverageRating RatingAverage  `gorm:"type:decimal(4,2);default:0"       json:"averageRating"`
	RatingCount   int            `gorm:"not null;default:0"                json:"ratingCount"`
}

// RaceSummary is the public identity of a race embedded in feed entries
type RaceSummary struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Year  int     `json:"year"`
	Image *string `json:"image"`
}

func (r *Race) ToSummary() RaceSummary {
	return RaceSummary{
		ID:    r.ID,
		Name:  r.Name,
		Year:  r.Year,
		Image: r.ImageURL,
	}
}

// RaceDetail is a race with its ratings, results and the viewer's own state
type RaceDetail struct {
	Race
	Ratings         []Rating     `json:"ratings"`
	Results         []RaceResult `json:"results"`
	UserRating      *Rating      `json:"userRating,omitempty"`
	UserWatchlisted bool         `json:"userWatchlisted"`
	UserLiked       bool         `json:"userLiked"`
}

const (
	RaceSortDate    = "date"
	RaceSortRating  = "rating"
	RaceSortPopular = "popular"

	DefaultRaceLimit = 20
	MaxRaceLimit     = 100
	MaxSimilarRaces  = 6
)

type RaceFilter struct {
	Search string
	Tags   []string
	Year   *int
	SortBy string
	Limit  int
	Offset int
}

// Normalize applies defaults and bounds to a filter parsed from a query string
func (f RaceFilter) Normalize() RaceFilter {
	switch f.SortBy {
	case RaceSortDate, RaceSortRating, RaceSortPopular:
	default:
		f.SortBy = RaceSortDate
	}
	if f.Limit <= 0 {
		f.Limit = DefaultRaceLimit
	}
	if f.Limit > MaxRaceLimit {
		f.Limit = MaxRaceLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
