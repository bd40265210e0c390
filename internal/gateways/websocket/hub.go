package websocket

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/live627/elkarte.net/internal/utils"
	"go.uber.org/zap"
)

const sendBuffer = 16

type Client struct {
	hub      *Hub
	conn     ClientConn
	ID       string
	MemberID uint64
	send     chan []byte
}

type ClientConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

func newClient(hub *Hub, conn ClientConn, memberID uint64) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		ID:       uuid.NewString(),
		MemberID: memberID,
		send:     make(chan []byte, sendBuffer),
	}
}

// writePump delivers queued events until the hub closes the send channel.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(textMessage, msg); err != nil {
			c.hub.logger.Debugw("Write to client failed", "client_id", c.ID, "error", err)
			return
		}
	}
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     <-chan utils.Event
	done       chan struct{}
	resolver   MemberResolver
	logger     *zap.SugaredLogger
}

func NewHub(events <-chan utils.Event, resolver MemberResolver, logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		events:     events,
		done:       make(chan struct{}),
		resolver:   resolver,
		logger:     logger.Sugar(),
	}
}

// Run owns the client set. It returns when ctx is done, after closing every
// client.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket Hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("WebSocket Hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Infow("Client connected",
				"client_id", client.ID,
				"member_id", client.MemberID,
				"clients_count", len(h.clients),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Infow("Client disconnected",
					"client_id", client.ID,
					"clients_count", len(h.clients),
				)
			}

		case event, ok := <-h.events:
			if !ok {
				h.events = nil
				continue
			}
			h.broadcast(event)
		}
	}
}

// Register hands a client to Run. It reports false once the hub stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

func (h *Hub) broadcast(event utils.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("Failed to encode event", "event", event.Event, "error", err)
		return
	}

	for client := range h.clients {
		if !wants(event.Recipients, client.MemberID) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.logger.Warnw("Client too slow, dropping connection", "client_id", client.ID)
			h.remove(client)
		}
	}
}

func wants(recipients []uint64, memberID uint64) bool {
	if len(recipients) == 0 {
		return true
	}
	for _, id := range recipients {
		if id == memberID {
			return true
		}
	}
	return false
}
