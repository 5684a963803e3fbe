package websockets

import (
	"sync"

	"pitwall/internal/metrics"

	"github.com/google/uuid"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_AUTHENTICATED
)

type Hub struct {
	register   chan *Client
	unregister chan *Client
	clients    map[string]*Client
	mutex      sync.RWMutex
	done       chan struct{}
	closeOnce  sync.Once
}

// run owns registration until done is closed
func (h *Hub) run(m *Manager) {
	for {
		select {
		case client := <-h.register:
			m.registerClient(client)

		case client := <-h.unregister:
			m.unregisterClient(client)

		case <-h.done:
			return
		}
	}
}

// register hands client to the hub loop. It reports false once the hub is
// shut down.
func (m *Manager) register(client *Client) bool {
	select {
	case m.hub.register <- client:
		return true
	case <-m.hub.done:
		return false
	}
}

// unregister falls back to removing the client directly when the hub loop
// has already exited.
func (m *Manager) unregister(client *Client) {
	select {
	case m.hub.unregister <- client:
	case <-m.hub.done:
		m.unregisterClient(client)
	}
}

// Close stops the hub loop and closes every client's send channel, which
// makes each write pump send a close frame and return.
func (m *Manager) Close() {
	m.hub.closeOnce.Do(func() {
		close(m.hub.done)

		m.hub.mutex.RLock()
		clients := make([]*Client, 0, len(m.hub.clients))
		for _, client := range m.hub.clients {
			clients = append(clients, client)
		}
		m.hub.mutex.RUnlock()

		for _, client := range clients {
			m.unregisterClient(client)
		}

		m.log.Function("Close").Info("Websocket hub stopped", "clients", len(clients))
	})
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client

	m.log.Function("registerClient").Debug("Client registered", "clientID", client.ID)
}

// unregisterClient is safe to call more than once per client
func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if _, ok := m.hub.clients[client.ID]; !ok {
		return
	}

	delete(m.hub.clients, client.ID)
	close(client.send)

	if client.Status == STATUS_AUTHENTICATED {
		metrics.WebsocketConnections.Dec()
	}

	m.log.Function("unregisterClient").Debug(
		"Client unregistered",
		"clientID", client.ID,
		"userID", client.UserID,
	)
}

// promoteClient marks a registered client as authenticated for userID
func (m *Manager) promoteClient(client *Client, userID uuid.UUID) bool {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if _, ok := m.hub.clients[client.ID]; !ok || client.Status == STATUS_AUTHENTICATED {
		return false
	}

	client.UserID = userID
	client.Status = STATUS_AUTHENTICATED
	metrics.WebsocketConnections.Inc()
	return true
}

func (h *Hub) isAuthenticated(client *Client) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return client.Status == STATUS_AUTHENTICATED
}

func (h *Hub) authenticatedCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, client := range h.clients {
		if client.Status == STATUS_AUTHENTICATED {
			count++
		}
	}
	return count
}

// send queues message for client without blocking. Clients that have been
// unregistered have a closed send channel, so membership is checked under the
// read lock that unregisterClient's write lock excludes.
func (m *Manager) send(client *Client, message Message) bool {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	if _, ok := m.hub.clients[client.ID]; !ok {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// SendMessageToUser queues message on every authenticated connection of
// userID and returns how many accepted it. Slow clients drop the message.
func (m *Manager) SendMessageToUser(userID uuid.UUID, message Message) int {
	log := m.log.Function("SendMessageToUser")

	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	sent := 0
	for clientID, client := range m.hub.clients {
		if client.Status != STATUS_AUTHENTICATED || client.UserID != userID {
			continue
		}

		select {
		case client.send <- message:
			sent++
		default:
			log.Warn("Client send channel full, dropping message", "clientID", clientID)
		}
	}

	return sent
}
