package websockets

import (
	"context"
	"time"

	"pitwall/config"
	"pitwall/internal/database"
	"pitwall/internal/events"
	"pitwall/internal/models"
	"pitwall/internal/repositories"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	PING_INTERVAL     = 30 * time.Second
	PONG_TIMEOUT      = 60 * time.Second
	WRITE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_CHANNEL_SIZE = 64

	SYSTEM_CHANNEL = "system"
)

type Message struct {
	ID        string             `json:"id"`
	Type      events.MessageType `json:"type"`
	Channel   string             `json:"channel,omitempty"`
	Action    string             `json:"action,omitempty"`
	UserID    string             `json:"userId,omitempty"`
	Data      map[string]any     `json:"data,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Authenticator resolves a session token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*models.User, *types.TokenInfo, error)
}

// Connection is the part of a websocket connection the pumps use
type Connection interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

type Client struct {
	ID         string
	UserID     uuid.UUID
	Connection Connection
	Manager    *Manager
	Status     int
	send       chan Message
}

type Manager struct {
	hub           *Hub
	db            database.DB
	config        config.Config
	log           logger.Logger
	eventBus      *events.EventBus
	authenticator Authenticator
	followRepo    repositories.FollowRepository
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	authenticator Authenticator,
	followRepo repositories.FollowRepository,
) (*Manager, error) {
	log := logger.New("websockets")

	manager := newManager(db, eventBus, config, authenticator, followRepo)

	log.Function("New").Info("Starting websocket hub")
	go manager.hub.run(manager)

	if err := manager.subscribeToActivityEvents(); err != nil {
		return nil, log.Err("failed to subscribe to activity events", err)
	}

	return manager, nil
}

func newManager(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	authenticator Authenticator,
	followRepo repositories.FollowRepository,
) *Manager {
	return &Manager{
		hub: &Hub{
			register:   make(chan *Client),
			unregister: make(chan *Client),
			clients:    make(map[string]*Client),
			done:       make(chan struct{}),
		},
		db:            db,
		config:        config,
		log:           logger.New("websockets"),
		eventBus:      eventBus,
		authenticator: authenticator,
		followRepo:    followRepo,
	}
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	m.serve(c)
}

func (m *Manager) serve(conn Connection) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		UserID:     uuid.Nil,
		Connection: conn,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	if err := client.sendAuthRequest(); err != nil {
		if err := conn.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	if !m.register(client) {
		if err := conn.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}
	defer func() {
		log.Debug("Client disconnected", "clientID", client.ID)
		m.unregister(client)
		if err := conn.Close(); err != nil {
			log.Debug("connection already closed", "clientID", client.ID)
		}
	}()

	client.startAuthTimeout()

	go client.readPump()
	client.writePump()
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.unregister(c)
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			return
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()

		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	log := c.Manager.log.Function("routeMessage")

	if message.Type == events.AUTH_RESPONSE {
		c.handleAuthResponse(message)
		return
	}

	if !c.Manager.hub.isAuthenticated(c) {
		c.handleUnauthenticatedMessage(message)
		return
	}

	switch message.Type {
	case events.PING:
		c.trySend(Message{
			ID:        uuid.New().String(),
			Type:      events.PONG,
			Channel:   SYSTEM_CHANNEL,
			Timestamp: time.Now(),
		})
	default:
		log.Warn("Unknown message type", "type", message.Type, "clientID", c.ID)
	}
}

// trySend queues a message unless the client is full or already gone
func (c *Client) trySend(message Message) bool {
	return c.Manager.send(c, message)
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID, "messageID", message.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) subscribeToActivityEvents() error {
	log := m.log.Function("subscribeToActivityEvents")
	log.Info("Starting activity events subscription")

	return m.eventBus.Subscribe(events.ACTIVITY_CHANNEL, func(event events.Event) error {
		return m.deliverActivity(context.Background(), event)
	})
}

// deliverActivity pushes an activity event to every connected follower of
// its actor
func (m *Manager) deliverActivity(ctx context.Context, event events.Event) error {
	log := m.log.Function("deliverActivity")

	if event.UserID == nil {
		log.Warn("Activity event without actor", "eventID", event.ID)
		return nil
	}

	if m.hub.authenticatedCount() == 0 {
		return nil
	}

	followerIDs, err := m.followRepo.ListFollowerIDs(ctx, m.db.SQL, *event.UserID)
	if err != nil {
		return log.Err("failed to load followers", err, "userID", *event.UserID)
	}

	message := Message{
		ID:        event.ID,
		Type:      events.ACTIVITY,
		Channel:   events.ACTIVITY_CHANNEL.String(),
		Action:    "created",
		UserID:    event.UserID.String(),
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}

	sent := 0
	for _, followerID := range followerIDs {
		sent += m.SendMessageToUser(followerID, message)
	}

	log.Debug(
		"Activity delivered",
		"eventID", event.ID,
		"actorID", *event.UserID,
		"followers", len(followerIDs),
		"connections", sent,
	)
	return nil
}
