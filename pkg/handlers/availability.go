package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"devloop/pkg/availability"
)

type AvailabilityForm struct {
	Start Timestamp `json:"start"`
	End   Timestamp `json:"endTime"`
}

type AvailabilityHandler struct {
	Service availability.ServiceInterface
	Logger  *slog.Logger
}

func NewAvailabilityHandler(service availability.ServiceInterface, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *AvailabilityHandler) Publish(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req AvailabilityForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	win, err := h.Service.Publish(r.Context(), c.User.ID, req.Start.Time, req.End.Time)
	if err != nil {
		writeServiceError(w, h.Logger, "publish availability", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusCreated, win)
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	windows, err := h.Service.List(r.Context(), r.URL.Query().Get("mentorId"))
	if err != nil {
		writeServiceError(w, h.Logger, "list availability", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, windows)
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req AvailabilityForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	win, err := h.Service.Update(r.Context(), mux.Vars(r)[muxVarID], c.User.ID, req.Start.Time, req.End.Time)
	if err != nil {
		writeServiceError(w, h.Logger, "update availability", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, win)
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), mux.Vars(r)[muxVarID], c.User.ID); err != nil {
		writeServiceError(w, h.Logger, "delete availability", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
