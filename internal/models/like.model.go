package models

import (
	"time"

	"github.com/google/uuid"
)

// Like marks a race as a favorite. Position orders the user's favorites,
// lowest first.
type Like struct {
	ID        int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"                json:"userId"`
	RaceID    int       `gorm:"not null"                          json:"raceId"`
	Position  int       `gorm:"not null;default:0"                json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
}

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

type ReorderRequest struct {
	RaceIDs []int `json:"raceIds" validate:"required,dive,gt=0"`
}
