package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/turbobet/platform/internal/auth"
	"github.com/turbobet/platform/internal/domain"
	"github.com/turbobet/platform/internal/service"
)

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.authSvc.Register(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.authSvc.Login(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// Me handles GET /users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromRequest(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	user, err := h.authSvc.Me(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, user)
}

// UserIDFromRequest resolves the authenticated subject into a user id.
func UserIDFromRequest(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return userID, nil
}
