package websocket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReadMarker is the inbox side effect of inbound commands
type ReadMarker interface {
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// MessageHandler applies inbound client commands to the inbox
type MessageHandler struct {
	marker ReadMarker
	hub    *Hub
	logger zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(marker ReadMarker, hub *Hub, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{marker: marker, hub: hub, logger: logger}
}

// Start consumes inbound commands until ctx is done
func (h *MessageHandler) Start(ctx context.Context) {
	inbound := make(chan *Inbound, 64)
	h.hub.AddListener(inbound)

	go func() {
		defer h.hub.RemoveListener(inbound)
		for {
			select {
			case <-ctx.Done():
				return
			case in := <-inbound:
				h.Handle(ctx, in)
			}
		}
	}()
}

// Handle applies one command and answers the sender with the fresh unread count
func (h *MessageHandler) Handle(ctx context.Context, in *Inbound) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	switch in.Type {
	case InboundMarkRead:
		err = h.marker.MarkRead(ctx, in.UserID, in.NotificationID)
	case InboundMarkAllRead:
		_, err = h.marker.MarkAllRead(ctx, in.UserID)
	default:
		h.hub.PushToUser(in.UserID, &Message{Type: MessageError, Payload: map[string]string{"error": "unknown command " + in.Type}})
		return
	}

	if err != nil {
		h.logger.Warn().Err(err).Str("userID", in.UserID.String()).Str("type", in.Type).Msg("Inbound websocket command failed")
		h.hub.PushToUser(in.UserID, &Message{Type: MessageError, Payload: map[string]string{"error": err.Error()}})
		return
	}

	unread, err := h.marker.CountUnread(ctx, in.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("userID", in.UserID.String()).Msg("Failed to count unread notifications")
		return
	}
	h.hub.PushToUser(in.UserID, &Message{Type: MessageUnreadCount, Payload: map[string]int64{"unread": unread}})
}
