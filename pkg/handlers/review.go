package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"devloop/pkg/review"
)

const muxVarSessionID string = "sessionId"

type ReviewForm struct {
	SessionID string `json:"sessionId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

type ReviewUpdateForm struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewHandler struct {
	Service review.ServiceInterface
	Logger  *slog.Logger
}

func NewReviewHandler(service review.ServiceInterface, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req ReviewForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	rev, err := h.Service.Create(r.Context(), req.SessionID, c.User.ID, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, h.Logger, "create review", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusCreated, rev); ok {
		h.Logger.Info("review created", "user", c.User.ID, "session", req.SessionID)
	}
}

func (h *ReviewHandler) ListBySession(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Service.GetBySession(r.Context(), mux.Vars(r)[muxVarSessionID])
	if err != nil {
		writeServiceError(w, h.Logger, "list reviews", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req ReviewUpdateForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	rev, err := h.Service.Update(r.Context(), mux.Vars(r)[muxVarID], c.User.ID, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, h.Logger, "update review", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, rev)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), mux.Vars(r)[muxVarID], c.User.ID); err != nil {
		writeServiceError(w, h.Logger, "delete review", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
