package models

import (
	"time"

	"github.com/google/uuid"
)

type List struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;not null"     json:"userId"`
	Name          string    `gorm:"type:text;not null"     json:"name"`
	Description   *string   `gorm:"type:text"              json:"description"`
	CoverImageURL *string   `gorm:"column:cover_image_url" json:"coverImageUrl"`
	IsPublic      bool      `gorm:"not null;default:true"  json:"isPublic"`
	User          *User     `gorm:"foreignKey:UserID"      json:"user,omitempty"`
}

// VisibleTo reports whether viewer may read the list. A nil viewer is anonymous.
func (l *List) VisibleTo(viewer *uuid.UUID) bool {
	if l.IsPublic {
		return true
	}
	return viewer != nil && *viewer == l.UserID
}

func (l *List) OwnedBy(userID uuid.UUID) bool {
	return l.UserID == userID
}

// ListRace is one race's membership in a list. Order sorts ascending.
type ListRace struct {
	ID        int       `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	ListID    int       `gorm:"not null"                          json:"listId"`
	RaceID    int       `gorm:"not null"                          json:"raceId"`
	Order     int       `gorm:"column:order;not null;default:0"   json:"order"`
	CreatedAt time.Time `gorm:"autoCreateTime"                    json:"createdAt"`
}

type CreateListRequest struct {
	Name          string  `json:"name"          validate:"required,max=100"`
	Description   *string `json:"description"   validate:"omitempty,max=1000"`
	CoverImageURL *string `json:"coverImageUrl" validate:"omitempty,url"`
	IsPublic      *bool   `json:"isPublic"`
}

func (r CreateListRequest) ToList(userID uuid.UUID) *List {
	list := &List{
		UserID:        userID,
		Name:          r.Name,
		Description:   r.Description,
		CoverImageURL: r.CoverImageURL,
		IsPublic:      true,
	}
	if r.IsPublic != nil {
		list.IsPublic = *r.IsPublic
	}
	return list
}

type UpdateListRequest struct {
	Name          *string `json:"name"          validate:"omitempty,min=1,max=100"`
	Description   *string `json:"description"   validate:"omitempty,max=1000"`
	CoverImageURL *string `json:"coverImageUrl" validate:"omitempty,url"`
	IsPublic      *bool   `json:"isPublic"`
}

func (r UpdateListRequest) Apply(list *List) {
	if r.Name != nil {
		list.Name = *r.Name
	}
	if r.Description != nil {
		list.Description = r.Description
	}
	if r.CoverImageURL != nil {
		list.CoverImageURL = r.CoverImageURL
	}
	if r.IsPublic != nil {
		list.IsPublic = *r.IsPublic
	}
}

type ListRaceRequest struct {
	RaceID int `json:"raceId" validate:"required,gt=0"`
}
