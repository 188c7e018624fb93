package chat

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// clientBuffer is how many undelivered messages a subscriber may queue
// before it is dropped from its room.
const clientBuffer = 16

type Client struct {
	ID        string
	SessionID string
	UserID    string

	send chan *Message
	once sync.Once
}

// Messages yields every message broadcast to the client's session. The
// channel is closed when the client leaves or falls behind.
func (c *Client) Messages() <-chan *Message { return c.send }

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans messages out to the live subscribers of each session.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]*Client
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[string]*Client),
		logger: logger,
	}
}

func (h *Hub) Join(sessionID, userID string) *Client {
	c := &Client{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		send:      make(chan *Message, clientBuffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[sessionID] = room
	}
	room[c.ID] = c
	h.mu.Unlock()

	h.logger.Info("chat join", "session", sessionID, "user", userID, "client", c.ID)
	return c
}

func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()
}

// remove expects h.mu to be held for writing.
func (h *Hub) remove(c *Client) {
	room, ok := h.rooms[c.SessionID]
	if !ok {
		return
	}
	if _, ok := room[c.ID]; !ok {
		return
	}
	delete(room, c.ID)
	if len(room) == 0 {
		delete(h.rooms, c.SessionID)
	}
	c.close()
}

func (h *Hub) Broadcast(m *Message) {
	var slow []*Client

	h.mu.RLock()
	for _, c := range h.rooms[m.SessionID] {
		select {
		case c.send <- m:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		h.logger.Warn("chat client too slow, dropping", "session", c.SessionID, "client", c.ID)
		h.remove(c)
	}
	h.mu.Unlock()
}

func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}
