package websockets

import (
	"context"
	"time"

	"pitwall/internal/events"

	"github.com/google/uuid"
)

const AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second

// startAuthTimeout closes clients that never complete the handshake
func (c *Client) startAuthTimeout() {
	log := c.Manager.log.Function("startAuthTimeout")

	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Manager.hub.isAuthenticated(c) {
			return
		}

		log.Warn("Client failed to authenticate within timeout", "clientID", c.ID)
		c.trySend(c.authFailure("authentication_timeout", "Authentication timeout"))

		time.Sleep(100 * time.Millisecond)
		_ = c.Connection.Close()
	})
}

func (c *Client) sendAuthRequest() error {
	log := c.Manager.log.Function("sendAuthRequest")

	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_REQUEST,
		Channel:   SYSTEM_CHANNEL,
		Action:    "authenticate",
		Timestamp: time.Now(),
	}

	if err := c.Connection.WriteJSON(authRequest); err != nil {
		return log.Err("failed to send auth request", err, "clientID", c.ID)
	}
	return nil
}

// handleAuthResponse validates the session token sent as data.token
func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Manager.hub.isAuthenticated(c) {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		c.sendAuthFailure("Invalid token format")
		return
	}

	user, _, err := c.Manager.authenticator.Authenticate(context.Background(), token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return
	}

	if !c.Manager.promoteClient(c, user.ID) {
		return
	}

	log.Info("WebSocket client authenticated", "clientID", c.ID, "userID", user.ID)

	c.trySend(Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_SUCCESS,
		Channel:   SYSTEM_CHANNEL,
		Action:    "authenticated",
		UserID:    user.ID.String(),
		Data:      map[string]any{"userId": user.ID.String()},
		Timestamp: time.Now(),
	})
}

func (c *Client) sendAuthFailure(reason string) {
	c.trySend(c.authFailure("authentication_failed", reason))

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = c.Connection.Close()
	}()
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").Warn(
		"Blocking message from unauthenticated client",
		"clientID", c.ID,
		"messageType", message.Type,
	)
	c.trySend(c.authFailure("authentication_required", "Authentication required"))
}

func (c *Client) authFailure(action, reason string) Message {
	return Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_FAILURE,
		Channel:   SYSTEM_CHANNEL,
		Action:    action,
		Data:      map[string]any{"reason": reason},
		Timestamp: time.Now(),
	}
}
