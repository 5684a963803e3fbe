package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewUserFromClaims(t *testing.T) {
	id := uuid.MustParse("0190a6e4-1c1a-7f00-8000-0123456789ab")

	tests := []struct {
		name             string
		claims           UserClaims
		expectedUsername string
		expectEmail      bool
	}{
		{
			name:             "Username from claims",
			claims:           UserClaims{ID: id, Username: "lando", Email: "lando@example.com"},
			expectedUsername: "lando",
			expectEmail:      true,
		},
		{
			name:             "Username from email local part",
			claims:           UserClaims{ID: id, Email: "max.v@example.com"},
			expectedUsername: "maxv",
			expectEmail:      true,
		},
		{
			name:             "Generated username when nothing usable",
			claims:           UserClaims{ID: id},
			expectedUsername: "user0123456789ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := NewUserFromClaims(tt.claims)

			assert.Equal(t, id, user.ID)
			assert.Equal(t, tt.expectedUsername, user.Username)
			if tt.expectEmail {
				assert.NotNil(t, user.Email)
			} else {
				assert.Nil(t, user.Email)
			}
		})
	}
}

func TestUser_ApplyProfileUpdate(t *testing.T) {
	bio := "Tifosi since 2004"
	done := true
	username := "  newname "

	user := &User{Username: "oldname"}
	user.ApplyProfileUpdate(UpdateProfileRequest{
		Username:             &username,
		Bio:                  &bio,
		IsOnboardingComplete: &done,
	})

	assert.Equal(t, "newname", user.Username)
	assert.Equal(t, &bio, user.Bio)
	assert.True(t, user.IsOnboardingComplete)
	assert.Nil(t, user.Website)
}

func TestUser_ToSummary(t *testing.T) {
	avatar := "https://img.example.com/a.png"
	user := User{BaseUUIDModel: BaseUUIDModel{ID: uuid.New()}, Username: "oscar", ProfileImageURL: &avatar}

	summary := user.ToSummary()

	assert.Equal(t, user.ID, summary.ID)
	assert.Equal(t, "oscar", summary.Username)
	assert.Equal(t, &avatar, summary.Avatar)
}
