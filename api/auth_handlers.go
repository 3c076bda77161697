package api

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
	"chat-relay/services"
)

// AuthHandler serves the account endpoints.
type AuthHandler struct {
	log  *slog.Logger
	auth services.IAuthService
}

func NewAuthHandler(log *slog.Logger, authService services.IAuthService) *AuthHandler {
	return &AuthHandler{log: log, auth: authService}
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// Register handles POST /api/users/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.auth.Register(req)
	if err != nil {
		h.log.Debug("registration rejected", "error", err)
		// Validator errors name struct fields; clients get a generic
		// message instead of the internals.
		var fieldErrs validator.ValidationErrors
		switch {
		case goerrors.Is(err, errors.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, errors.ErrUserAlreadyExists.Error())
		case goerrors.As(err, &fieldErrs):
			respondError(w, http.StatusBadRequest, "invalid registration details")
		case goerrors.Is(err, errors.ErrInvalidPassword):
			respondError(w, http.StatusBadRequest, errors.ErrInvalidPassword.Error())
		default:
			respondError(w, http.StatusBadRequest, "registration failed")
		}
		return
	}

	h.log.Info("account created", "username", user.Username)
	respondJSON(w, http.StatusCreated, authResponse{Token: string(token), User: toUserResponse(user)})
}

// Login handles POST /api/users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.auth.Login(req)
	if err != nil {
		respondError(w, http.StatusUnauthorized, errors.ErrInvalidCredentials.Error())
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: string(token), User: toUserResponse(user)})
}

// Me handles GET /api/users/me behind the bearer middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization token is missing")
		return
	}

	user, err := h.auth.GetUser(userID)
	if err != nil {
		respondError(w, http.StatusNotFound, errors.ErrUserNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u repositories.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}
