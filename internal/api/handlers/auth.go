package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dom/college-tracker/internal/api/middleware"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
)

type AuthHandler struct {
	authService  *service.AuthService
	sessionStore sessions.Store
	validate     *validator.Validate
}

func NewAuthHandler(authService *service.AuthService, sessionStore sessions.Store) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		sessionStore: sessionStore,
		validate:     validator.New(),
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=student parent teacher admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// UserProfile is the body of GET /auth/me.
type UserProfile struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Role            string  `json:"role"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

func newUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:              user.ID.String(),
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            string(user.Role),
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       service.FormatISO(user.CreatedAt),
	}
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      domain.UserRole(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			writeError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, domain.ErrInvalidUserRole):
			writeError(w, http.StatusBadRequest, "Invalid role")
		default:
			log.Printf("ERROR [handlers.Register] failed to register user: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.saveSession(w, r, result.SessionToken)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Token: result.Token,
		User:  newUserResponse(result.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RecordLogin("invalid")
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		middleware.RecordLogin("error")
		log.Printf("ERROR [handlers.Login] failed to log in: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.RecordLogin("success")
	h.saveSession(w, r, result.SessionToken)
	writeJSON(w, http.StatusOK, AuthResponse{
		Token: result.Token,
		User:  newUserResponse(result.User),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	writeJSON(w, http.StatusOK, newUserProfile(user))
}

// Logout clears the session cookie. Bearer tokens are stateless and simply
// dropped by the client.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := middleware.ClearSession(h.sessionStore, w, r); err != nil {
		log.Printf("ERROR [handlers.Logout] failed to clear session: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveSession stores the session token; a failure only costs the cookie
// transport, the bearer token in the body still works.
func (h *AuthHandler) saveSession(w http.ResponseWriter, r *http.Request, token string) {
	if h.sessionStore == nil || token == "" {
		return
	}
	if err := middleware.SaveSessionToken(h.sessionStore, w, r, token); err != nil {
		log.Printf("ERROR [handlers.saveSession] failed to save session: %v", err)
	}
}
