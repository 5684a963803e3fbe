package models

import (
	"time"

	"github.com/google/uuid"
)

type BaseUUIDModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuidv7()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"                        json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                        json:"updatedAt"`
}

// BaseModel backs the serial-id tables. Rows are hard deleted; the pair tables
// rely on unique constraints that a soft-delete column would defeat.
type BaseModel struct {
	ID        int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                    json:"updatedAt"`
}
