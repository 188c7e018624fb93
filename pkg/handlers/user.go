package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"devloop/pkg/apperr"
	"devloop/pkg/user"
)

type RegisterForm struct {
	Name     string `json:"username" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=mentor mentee"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileForm struct {
	Name       *string  `json:"username" validate:"omitempty,notblank,max=100"`
	Bio        *string  `json:"bio" validate:"omitempty,max=2000"`
	Title      *string  `json:"title" validate:"omitempty,max=200"`
	Experience *string  `json:"experience" validate:"omitempty,max=2000"`
	Skills     []string `json:"skills" validate:"omitempty,dive,notblank"`
}

type PasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type ProfileImageForm struct {
	ProfileImage string `json:"profileImage" validate:"required"`
}

type UserHandler struct {
	Service user.ServiceInterface
	Tokens  *TokenIssuer
	Logger  *slog.Logger
}

func NewUserHandler(service user.ServiceInterface, tokens *TokenIssuer, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		Service: service,
		Tokens:  tokens,
		Logger:  logger,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	u, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if errors.Is(err, apperr.ErrConflict) {
		writeFieldErrors(w, h.Logger, http.StatusUnprocessableEntity, []FieldError{
			{
				Location: "body",
				Param:    "email",
				Value:    req.Email,
				Msg:      "already exists",
			},
		})
		return
	}
	if err != nil {
		writeServiceError(w, h.Logger, "register", err)
		return
	}

	h.respondToken(w, u, http.StatusCreated, "register")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	u, err := h.Service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, typeMessage, "user not found")
		return
	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, typeMessage, "invalid credentials")
		return
	case err != nil:
		writeServiceError(w, h.Logger, "login", err)
		return
	}

	h.respondToken(w, u, http.StatusOK, "login")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	if err := h.Service.Logout(r.Context(), c.User.ID); err != nil {
		writeServiceError(w, h.Logger, "logout", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]string{typeMessage: "logged out"}); ok {
		h.Logger.Info("logout", "user", c.User.ID)
	}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && role != user.RoleMentor && role != user.RoleMentee {
		writeError(w, http.StatusBadRequest, typeMessage, "role must be mentor or mentee")
		return
	}

	users, err := h.Service.List(r.Context(), role)
	if err != nil {
		writeServiceError(w, h.Logger, "list users", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, users)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	h.writeUser(w, r, c.User.ID)
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.writeUser(w, r, mux.Vars(r)[muxVarID])
}

func (h *UserHandler) writeUser(w http.ResponseWriter, r *http.Request, id string) {
	u, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Logger, "get user", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req ProfileForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	u, err := h.Service.UpdateProfile(r.Context(), mux.Vars(r)[muxVarID], c.User.ID, user.ProfilePatch{
		Name:       req.Name,
		Bio:        req.Bio,
		Title:      req.Title,
		Experience: req.Experience,
		Skills:     req.Skills,
	})
	if err != nil {
		writeServiceError(w, h.Logger, "update profile", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, u); ok {
		h.Logger.Info("profile updated", "user", u.ID)
	}
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req PasswordForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	id := mux.Vars(r)[muxVarID]
	if err := h.Service.UpdatePassword(r.Context(), id, c.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.Logger, "update password", err)
		return
	}
	if ok := writeJSON(w, h.Logger, http.StatusOK, map[string]string{typeMessage: "password updated"}); ok {
		h.Logger.Info("password updated", "user", id)
	}
}

func (h *UserHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	var req ProfileImageForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}
	if ok := validateBody(w, h.Logger, &req); !ok {
		return
	}

	u, err := h.Service.UpdateProfileImage(r.Context(), mux.Vars(r)[muxVarID], c.User.ID, req.ProfileImage)
	if err != nil {
		writeServiceError(w, h.Logger, "update profile image", err)
		return
	}
	writeJSON(w, h.Logger, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := getClaims(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)[muxVarID]
	if err := h.Service.Delete(r.Context(), id, c.User.ID); err != nil {
		writeServiceError(w, h.Logger, "delete user", err)
		return
	}
	h.Logger.Info("user deleted", "user", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) respondToken(w http.ResponseWriter, u *user.User, status int, action string) {
	token, err := h.Tokens.Issue(u)
	if err != nil {
		h.Logger.Error("token signing", "error", err)
		writeError(w, http.StatusInternalServerError, typeMessage, "internal server error")
		return
	}

	if ok := writeJSON(w, h.Logger, status, map[string]any{"token": token, "user": u}); ok {
		h.Logger.Info(action, "user", u.ID)
	}
}
