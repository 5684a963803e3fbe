package events

import (
	"testing"
	"time"

	"pitwall/config"
	"pitwall/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_LocalDelivery(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(ACTIVITY_CHANNEL, func(event Event) error {
		received <- event
		return nil
	}))

	require.NoError(t, bus.Publish(ACTIVITY_CHANNEL, Event{Type: PING}))

	select {
	case event := <-received:
		assert.Equal(t, PING, event.Type)
		assert.Equal(t, ACTIVITY_CHANNEL, event.Channel)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestEventBus_PublishActivity(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(ACTIVITY_CHANNEL, func(event Event) error {
		received <- event
		return nil
	}))

	userID := uuid.New()
	rating := 8
	activity := models.NewRaceActivity(userID, models.ActivityReview, 42)
	activity.Rating = &rating

	require.NoError(t, bus.PublishActivity(*activity))

	select {
	case event := <-received:
		assert.Equal(t, ACTIVITY, event.Type)
		require.NotNil(t, event.UserID)
		assert.Equal(t, userID, *event.UserID)
		assert.Equal(t, "review", event.Data["type"])
		assert.Equal(t, 42, event.Data["raceId"])
		assert.Equal(t, 8, event.Data["rating"])
	case <-time.After(time.Second):
		t.Fatal("activity was not delivered")
	}
}

func TestActivityData_OmitsEmptyFields(t *testing.T) {
	activity := models.Activity{UserID: uuid.New(), Type: models.ActivityUnlike}

	data := ActivityData(activity)

	assert.Equal(t, "unlike", data["type"])
	assert.NotContains(t, data, "raceId")
	assert.NotContains(t, data, "listId")
	assert.NotContains(t, data, "id")
}
