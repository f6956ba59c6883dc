package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outbound message types
const (
	MessageNotification = "notification"
	MessageUnreadCount  = "unread_count"
	MessageAck          = "ack"
	MessageError        = "error"
)

// Inbound message types
const (
	InboundMarkRead    = "mark_read"
	InboundMarkAllRead = "mark_all_read"
)

// Message is pushed from the server to a user's connections
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Inbound is a command sent by a connected client
type Inbound struct {
	Type           string    `json:"type"`
	NotificationID uuid.UUID `json:"notificationId,omitempty"`

	// set by the server, never trusted from the wire
	UserID uuid.UUID `json:"-"`
}

type delivery struct {
	userID uuid.UUID
	data   []byte
}

// Hub keeps the live connections of every user and routes pushes to them
type Hub struct {
	// Registered clients organized by user ID. A user may hold several tabs open.
	clients map[uuid.UUID]map[*Client]bool

	deliver    chan delivery
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	listenersMu sync.RWMutex
	listeners   []chan *Inbound

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		deliver:    make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run services registrations and deliveries until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverToUser(d)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Str("userID", client.userID.String()).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Str("userID", client.userID.String()).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) deliverToUser(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[d.userID]
	if !ok {
		return
	}

	for client := range conns {
		select {
		case client.send <- d.data:
		default:
			// slow consumer
			delete(conns, client)
			close(client.send)
			h.logger.Warn().Str("userID", d.userID.String()).Msg("Dropped slow websocket client")
		}
	}
	if len(conns) == 0 {
		delete(h.clients, d.userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conns := range h.clients {
		for client := range conns {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

// PushToUser queues msg for every connection of userID. It never blocks:
// when the delivery queue is full the message is dropped, the inbox row stays.
func (h *Hub) PushToUser(userID uuid.UUID, msg *Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal websocket message")
		return
	}

	select {
	case h.deliver <- delivery{userID: userID, data: data}:
	default:
		h.logger.Warn().Str("userID", userID.String()).Str("type", msg.Type).Msg("Websocket delivery queue full")
	}
}

// IsOnline reports whether userID has at least one live connection
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	return h.ConnectionCount(userID) > 0
}

// ConnectionCount returns the number of live connections of userID
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// AddListener registers a channel that receives every inbound command
func (h *Hub) AddListener(listener chan *Inbound) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// RemoveListener removes a listener from the hub
func (h *Hub) RemoveListener(listener chan *Inbound) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}

func (h *Hub) dispatch(in *Inbound) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		select {
		case listener <- in:
		default:
			h.logger.Warn().Str("type", in.Type).Msg("Skipped slow inbound listener")
		}
	}
}
