package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	BaseUUIDModel
	Username             string          `gorm:"type:text;not null"       json:"username"`
	Email                *string         `gorm:"type:text;uniqueIndex"    json:"email,omitempty"`
	FirstName            *string         `gorm:"type:text"                json:"firstName,omitempty"`
	LastName             *string         `gorm:"type:text"                json:"lastName,omitempty"`
	ProfileImageURL      *string         `gorm:"column:profile_image_url" json:"profileImageUrl,omitempty"`
	Bio                  *string         `gorm:"type:text"                json:"bio,omitempty"`
	Website              *string         `gorm:"type:text"                json:"website,omitempty"`
	FavoriteTeam         *string         `gorm:"type:text"                json:"favoriteTeam,omitempty"`
	FavoriteDriver       *string         `gorm:"type:text"                json:"favoriteDriver,omitempty"`
	BirthDate            *datatypes.Date `gorm:"type:date"                json:"birthDate,omitempty"`
	IsOnboardingComplete bool            `gorm:"type:bool;default:false"  json:"isOnboardingComplete"`
}

// UserSummary is the public identity embedded in feeds, reviews and follow lists
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   *string   `json:"avatar"`
}

type UserStats struct {
	Ratings   int64 `json:"ratings"`
	Watchlist int64 `json:"watchlist"`
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
	Lists     int64 `json:"lists"`
}

type UserWithStats struct {
	User
	Stats UserStats `json:"stats"`
}

// UserClaims is the identity carried by a validated session token
type UserClaims struct {
	ID       uuid.UUID
	Username string
	Email    string
	Picture  string
}

type UpdateProfileRequest struct {
	Username             *string         `json:"username"             validate:"omitempty,alphanum,min=3,max=20"`
	FirstName            *string         `json:"firstName"            validate:"omitempty,max=100"`
	LastName             *string         `json:"lastName"             validate:"omitempty,max=100"`
	ProfileImageURL      *string         `json:"profileImageUrl"      validate:"omitempty,url"`
	Bio                  *string         `json:"bio"                  validate:"omitempty,max=500"`
	Website              *string         `json:"website"              validate:"omitempty,url"`
	FavoriteTeam         *string         `json:"favoriteTeam"         validate:"omitempty,max=100"`
	FavoriteDriver       *string         `json:"favoriteDriver"       validate:"omitempty,max=100"`
	BirthDate            *datatypes.Date `json:"birthDate"`
	IsOnboardingComplete *bool           `json:"isOnboardingComplete"`
}

func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.ProfileImageURL,
	}
}

// NewUserFromClaims builds the row stored on a user's first authentication
func NewUserFromClaims(claims UserClaims) *User {
	user := &User{
		BaseUUIDModel: BaseUUIDModel{ID: claims.ID},
		Username:      claims.Username,
	}
	if user.Username == "" {
		user.Username = fallbackUsername(claims)
	}
	if claims.Email != "" {
		email := claims.Email
		user.Email = &email
	}
	if claims.Picture != "" {
		picture := claims.Picture
		user.ProfileImageURL = &picture
	}
	return user
}

func fallbackUsername(claims UserClaims) string {
	local, _, _ := strings.Cut(claims.Email, "@")
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if name := b.String(); len(name) >= 3 && len(name) <= 20 {
		return name
	}
	return GeneratedUsername(claims.ID)
}

// GeneratedUsername derives a valid username from the user id
func GeneratedUsername(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "user" + hex[len(hex)-12:]
}

// ApplyProfileUpdate copies the non-nil fields of req onto the user
func (u *User) ApplyProfileUpdate(req UpdateProfileRequest) {
	if req.Username != nil {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.FirstName != nil {
		u.FirstName = req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.ProfileImageURL != nil {
		u.ProfileImageURL = req.ProfileImageURL
	}
	if req.Bio != nil {
		u.Bio = req.Bio
	}
	if req.Website != nil {
		u.Website = req.Website
	}
	if req.FavoriteTeam != nil {
		u.FavoriteTeam = req.FavoriteTeam
	}
	if req.FavoriteDriver != nil {
		u.FavoriteDriver = req.FavoriteDriver
	}
	if req.BirthDate != nil {
		u.BirthDate = req.BirthDate
	}
	if req.IsOnboardingComplete != nil {
		u.IsOnboardingComplete = *req.IsOnboardingComplete
	}
}
