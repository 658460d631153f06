package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

type TokenIssuer interface {
	GenerateToken(userID uuid.UUID) (string, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type UpdateUserRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	IsAdmin bool   `json:"isAdmin"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by login, registration and profile updates.
type AuthResponse struct {
	ID      uuid.UUID `json:"_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	Token   string    `json:"token"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

type UserHandler struct {
	service  user.Service
	tokens   TokenIssuer
	validate *validator.Validate
}

func NewUserHandler(service user.Service, tokens TokenIssuer) *UserHandler {
	return &UserHandler{
		service:  service,
		tokens:   tokens,
		validate: newValidator(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router, auth *Authenticator) {
	router.Route("/users", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/", h.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(auth.Protect)
			r.Get("/profile", h.handleGetProfile)
			r.Put("/profile", h.handleUpdateProfile)

			r.Group(func(r chi.Router) {
				r.Use(AdminOnly)
				r.Get("/", h.handleListUsers)
				r.Get("/{id}", h.handleGetUserByID)
				r.Put("/{id}", h.handleUpdateUser)
				r.Delete("/{id}", h.handleDeleteUser)
			})
		})
	})
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, code int, u *user.User) {
	token, err := h.tokens.GenerateToken(u.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to generate token")
		respondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondWithJSON(w, code, AuthResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		Token:   token,
	})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	u, err := h.service.Authenticate(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		respondWithDomainError(w, err, "Failed to log in")
		return
	}

	h.respondWithToken(w, http.StatusOK, u)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	u, err := h.service.Register(r.Context(), requestPayload.Name, requestPayload.Email, requestPayload.Password)
	if err != nil {
		respondWithDomainError(w, err, "Failed to create user")
		return
	}

	h.respondWithToken(w, http.StatusCreated, u)
}

func (h *UserHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, newUserResponse(current))
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	var requestPayload UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), current.ID, user.ProfileUpdate{
		Name:     requestPayload.Name,
		Email:    requestPayload.Email,
		Password: requestPayload.Password,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to update profile")
		return
	}

	h.respondWithToken(w, http.StatusOK, updated)
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondWithDomainError(w, err, "Failed to list users")
		return
	}

	responsePayload := make([]UserResponse, 0, len(users))
	for i := range users {
		responsePayload = append(responsePayload, newUserResponse(&users[i]))
	}
	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *UserHandler) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	foundUser, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get user by id")
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(foundUser))
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateUserRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), userID, user.AdminUpdate{
		Name:    requestPayload.Name,
		Email:   requestPayload.Email,
		IsAdmin: requestPayload.IsAdmin,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to update user")
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(updated))
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		respondWithDomainError(w, err, "Failed to delete user")
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "User removed"})
}
