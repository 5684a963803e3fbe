package models

import (
	"time"

	"github.com/google/uuid"
)

type WatchlistEntry struct {
	ID        int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"                json:"userId"`
	RaceID    int       `gorm:"not null"                          json:"raceId"`
	CreatedAt time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
	Race      *Race     `gorm:"foreignKey:RaceID"                 json:"race,omitempty"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist"
}

type WatchlistRequest struct {
	RaceID int `json:"raceId" validate:"required,gt=0"`
}
