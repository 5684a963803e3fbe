package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CircuitTypeStreet    = "street"
	CircuitTypePermanent = "permanent"
)

type Circuit struct {
	ID        int                 `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	Name      string              `gorm:"type:text;not null"                json:"name"`
	Location  string              `gorm:"type:text;not null"                json:"location"`
	Country   string              `gorm:"type:text;not null"                json:"country"`
	Type      string              `gorm:"type:text;not null"                json:"type"`
	Length    decimal.NullDecimal `gorm:"type:decimal(5,3)"                 json:"length"`
	CreatedAt time.Time           `gorm:"autoCreateTime"                    json:"createdAt"`
}
