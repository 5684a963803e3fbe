package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pitwall/config"
	"pitwall/internal/metrics"
	"pitwall/internal/models"
	"pitwall/pkg/logger"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type Channel string

func (c Channel) String() string {
	return string(c)
}

const (
	ACTIVITY_CHANNEL Channel = "activity"
)

type MessageType string

const (
	PING          MessageType = "ping"
	PONG          MessageType = "pong"
	ERROR         MessageType = "error"
	AUTH_REQUEST  MessageType = "auth_request"
	AUTH_RESPONSE MessageType = "auth_response"
	AUTH_SUCCESS  MessageType = "auth_success"
	AUTH_FAILURE  MessageType = "auth_failure"
	ACTIVITY      MessageType = "activity"
)

type Event struct {
	ID        string         `json:"id"`
	Type      MessageType    `json:"type"`
	Channel   Channel        `json:"channel"`
	UserID    *uuid.UUID     `json:"userId,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

type EventHandler func(event Event) error

type ActivityPublisher interface {
	PublishActivity(activity models.Activity) error
}

// EventBus fans events out through valkey pub/sub so every API instance sees
// them. Without a valkey client it delivers to local handlers directly.
type EventBus struct {
	client    valkey.Client
	logger    logger.Logger
	config    config.Config
	handlers  map[Channel][]EventHandler
	listening map[Channel]bool
	mutex     sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(client valkey.Client, config config.Config) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	return &EventBus{
		client:    client,
		logger:    logger.New("EventBus"),
		config:    config,
		handlers:  make(map[Channel][]EventHandler),
		listening: make(map[Channel]bool),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (eb *EventBus) Publish(channel Channel, event Event) error {
	log := eb.logger.Function("Publish")

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Channel == "" {
		event.Channel = channel
	}

	if eb.client == nil {
		eb.notifyLocalHandlers(channel, event)
		return nil
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "eventID", event.ID)
	}

	ctx, cancel := context.WithTimeout(eb.ctx, 5*time.Second)
	defer cancel()

	err = eb.client.Do(ctx, eb.client.B().Publish().Channel(channel.String()).Message(string(eventData)).Build()).
		Error()
	if err != nil {
		return log.Err(
			"failed to publish event to valkey",
			err,
			"channel", channel,
			"eventID", event.ID,
		)
	}

	log.Debug("Event published", "channel", channel, "eventID", event.ID, "eventType", event.Type)
	return nil
}

// PublishActivity announces a committed activity row on the activity channel
func (eb *EventBus) PublishActivity(activity models.Activity) error {
	metrics.RecordActivity(string(activity.Type))

	userID := activity.UserID
	return eb.Publish(ACTIVITY_CHANNEL, Event{
		Type:   ACTIVITY,
		UserID: &userID,
		Data:   ActivityData(activity),
	})
}

// ActivityData flattens an activity into the event payload
func ActivityData(activity models.Activity) map[string]any {
	data := map[string]any{
		"type":      string(activity.Type),
		"userId":    activity.UserID.String(),
		"createdAt": activity.CreatedAt,
	}
	if activity.ID != 0 {
		data["id"] = activity.ID
	}
	if activity.RaceID != nil {
		data["raceId"] = *activity.RaceID
	}
	if activity.ListID != nil {
		data["listId"] = *activity.ListID
	}
	if activity.Rating != nil {
		data["rating"] = *activity.Rating
	}
	if activity.Review != nil {
		data["review"] = *activity.Review
	}
	return data
}

func (eb *EventBus) Subscribe(channel Channel, handler EventHandler) error {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[channel] = append(eb.handlers[channel], handler)
	startListener := eb.client != nil && !eb.listening[channel]
	eb.listening[channel] = true
	eb.mutex.Unlock()

	log.Info("Handler subscribed to channel", "channel", channel)

	if startListener {
		go eb.listenToChannel(channel)
	}

	return nil
}

func (eb *EventBus) notifyLocalHandlers(channel Channel, event Event) {
	log := eb.logger.Function("notifyLocalHandlers")

	eb.mutex.RLock()
	handlers := append([]EventHandler(nil), eb.handlers[channel]...)
	eb.mutex.RUnlock()

	for i, handler := range handlers {
		go func(h EventHandler, handlerIndex int) {
			if err := h(event); err != nil {
				log.Er(
					"handler failed",
					err,
					"channel", channel,
					"eventID", event.ID,
					"handlerIndex", handlerIndex,
				)
			}
		}(handler, i)
	}
}

func (eb *EventBus) listenToChannel(channel Channel) {
	log := eb.logger.Function("listenToChannel")

	log.Info("Starting to listen to channel", "channel", channel)

	err := eb.client.Receive(
		eb.ctx,
		eb.client.B().Subscribe().Channel(channel.String()).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to unmarshal event", err, "channel", channel)
				return
			}

			eb.notifyLocalHandlers(channel, event)
		},
	)
	if err != nil && eb.ctx.Err() == nil {
		log.Er("failed to listen to channel", err, "channel", channel)
	}
}

func (eb *EventBus) Close() error {
	log := eb.logger.Function("Close")

	eb.cancel()

	log.Info("EventBus closed")
	return nil
}
