package models

import "time"

type RaceResult struct {
	ID         int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	RaceID     int       `gorm:"not null"                          json:"raceId"`
	Position   int       `gorm:"not null"                          json:"position"`
	DriverName string    `gorm:"type:text;not null"                json:"driverName"`
	Team       string    `gorm:"type:text;not null"                json:"team"`
	Time       *string   `gorm:"type:text"                         json:"time"`
	Points     int       `gorm:"not null;default:0"                json:"points"`
	CreatedAt  time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
}
