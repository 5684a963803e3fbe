package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge: FollowerID follows FollowingID
type Follow struct {
	ID          int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null"                json:"followerId"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null"                json:"followingId"`
	CreatedAt   time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
}
