package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"devloop/pkg/booking"
)

type BookForm struct {
	MentorID      string    `json:"mentorId" validate:"required"`
	ScheduledTime Timestamp `json:"scheduledTime"`
	Topic         string    `json:"topic" validate:"max=500"`
}

type SessionPatchForm struct {
	Status *booking.Status `json:"status"`
	Topic  *string         `json:"topic" validate:"omitempty,max=500"`
}

type SessionHandler struct {
	Engine booking.EngineInterface
	Logger *slog.Logger
}

func NewSessionHandler(engine booking.EngineInterface, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		Engine: engine,
		Logger: logger,
	}
}

// Book reserves a session for the calling mentee.
func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req BookForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	sess, err := h.Engine.BookSession(r.Context(), req.MentorID, c.User.ID, req.ScheduledTime.Time, req.Topic)
	if err != nil {
		writeServiceError(w, h.Logger, "book session", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusCreated, sess)
}

func (h *SessionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Engine.GetAllSessions(r.Context())
	if err != nil {
		writeServiceError(w, h.Logger, "list sessions", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, sessions)
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Engine.GetSessionByID(r.Context(), mux.Vars(r)[muxVarID])
	if err != nil {
		writeServiceError(w, h.Logger, "get session", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, sess)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SessionPatchForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	sess, err := h.Engine.UpdateSession(r.Context(), mux.Vars(r)[muxVarID], booking.SessionPatch{
		Status: req.Status,
		Topic:  req.Topic,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "update session", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, sess)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[muxVarID]
	if err := h.Engine.DeleteSession(r.Context(), id); err != nil {
		writeServiceError(w, h.Logger, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
