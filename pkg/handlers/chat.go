package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"devloop/pkg/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameLength = 16 * 1024
)

type MessageForm struct {
	Content string `json:"content" validate:"required,notblank,max=4000"`
}

// ChatHub tracks websocket subscribers per session.
type ChatHub interface {
	Join(sessionID, userID string) *chat.Client
	Leave(c *chat.Client)
}

type ChatHandler struct {
	Service  chat.ServiceInterface
	Hub      ChatHub
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewChatHandler(service chat.ServiceInterface, hub ChatHub, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		Service: service,
		Hub:     hub,
		Logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	messages, err := h.Service.History(r.Context(), mux.Vars(r)[muxVarID], c.User.ID)
	if err != nil {
		writeServiceError(w, h.Logger, "chat history", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, messages)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req MessageForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	msg, err := h.Service.Send(r.Context(), mux.Vars(r)[muxVarID], c.User.ID, req.Content)
	if err != nil {
		writeServiceError(w, h.Logger, "chat send", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusCreated, msg)
}

// Stream upgrades to a websocket. Inbound {"content": "..."} frames are
// sent to the session; every message of the session is pushed back.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	sessionID := mux.Vars(r)[muxVarID]
	if err := h.Service.Authorize(r.Context(), sessionID, c.User.ID); err != nil {
		writeServiceError(w, h.Logger, "chat stream", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer conn.Close()

	client := h.Hub.Join(sessionID, c.User.ID)
	defer h.Hub.Leave(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	replies := make(chan any, 1)
	go h.writePump(ctx, conn, client, replies)

	conn.SetReadLimit(maxFrameLength)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in MessageForm
		if err := conn.ReadJSON(&in); err != nil {
			h.Logger.Info("websocket client disconnected", "session", sessionID, "user", c.User.ID, "error", err)
			return
		}
		if _, err := h.Service.Send(ctx, sessionID, c.User.ID, in.Content); err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				h.Logger.Error("chat send", "session", sessionID, "error", err)
			}
			select {
			case replies <- map[string]any{typeError: err.Error(), "status": status}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// writePump is the only writer on conn.
func (h *ChatHandler) writePump(ctx context.Context, conn *websocket.Conn, client *chat.Client, replies <-chan any) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(v); err != nil {
			h.Logger.Warn("failed to write websocket JSON", "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.Messages():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "too slow"),
					time.Now().Add(writeWait))
				conn.Close()
				return
			}
			if !write(msg) {
				conn.Close()
				return
			}
		case reply := <-replies:
			if !write(reply) {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}
