package models

import "github.com/google/uuid"

const (
	MinRating = 1
	MaxRating = 10
)

// Rating is one user's score for one race on the half-star scale (1 = 0.5 stars)
type Rating struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_race" json:"userId"`
	RaceID  int       `gorm:"not null;uniqueIndex:idx_ratings_user_race"           json:"raceId"`
	Rating  int       `gorm:"type:smallint;not null"                               json:"rating"`
	Review  *string   `gorm:"type:text"                                            json:"review"`
	Watched bool      `gorm:"not null;default:false"                               json:"watched"`
	User    *User     `gorm:"foreignKey:UserID"                                    json:"-"`
	Race    *Race     `gorm:"foreignKey:RaceID"                                    json:"race,omitempty"`

	Author *UserSummary `gorm:"-" json:"user,omitempty"`
}

// AttachAuthor exposes the preloaded user as a public summary
func (r *Rating) AttachAuthor() {
	if r.User != nil {
		summary := r.User.ToSummary()
		r.Author = &summary
	}
}

type SubmitRatingRequest struct {
	Rating  int     `json:"rating"  validate:"required,min=1,max=10"`
	Review  *string `json:"review"  validate:"omitempty,max=5000"`
	Watched *bool   `json:"watched"`
}

type UpdateRatingRequest struct {
	Rating  *int    `json:"rating"  validate:"omitempty,min=1,max=10"`
	Review  *string `json:"review"  validate:"omitempty,max=5000"`
	Watched *bool   `json:"watched"`
}

// Apply merges the request onto an existing rating
func (r UpdateRatingRequest) Apply(rating *Rating) {
	if r.Rating != nil {
		rating.Rating = *r.Rating
	}
	if r.Review != nil {
		rating.Review = r.Review
	}
	if r.Watched != nil {
		rating.Watched = *r.Watched
	}
}

// RaceAggregate is the derived state written back to a race row
type RaceAggregate struct {
	Count int64
	Sum   int64
}

func (a RaceAggregate) Average() RatingAverage {
	return AverageFromTotals(a.Sum, a.Count)
}
