package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/tienda-api/internal/auth"
	"github.com/isdelr/tienda-api/internal/models"
	"github.com/isdelr/tienda-api/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  *auth.TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenIssuer) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"usuario"`
}

var (
	registerFailure = failure{op: "Failed to register user", internal: "Error al crear el nuevo usuario"}
	loginFailure    = failure{op: "Login failed", internal: "Ocurrió un error durante el inicio de sesión."}
	getUserFailure  = failure{op: "Failed to get user", internal: "Error al obtener el usuario"}
	editUserFailure = failure{op: "Failed to update user", internal: "Error al actualizar el usuario"}
	delUserFailure  = failure{op: "Failed to delete user", internal: "Error al eliminar el usuario"}
)

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Name == "" || payload.Password == "" {
		badRequest(w, "Rellena todos los campos por favor")
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		registerFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Password == "" {
		badRequest(w, "El email y la contraseña son requeridos")
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		loginFailure.fail(w, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		loginFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token, User: user})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeMsg(w, http.StatusInternalServerError, getUserFailure.internal)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		getUserFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Update handles a partial update of a user's name, email or password.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok || !h.authorizeOwner(w, r, id, editUserFailure) {
		return
	}
	var patch models.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.IsEmpty() {
		badRequest(w, msgEmptyPatch)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, patch)
	if err != nil {
		editUserFailure.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok || !h.authorizeOwner(w, r, id, delUserFailure) {
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		delUserFailure.fail(w, err)
		return
	}
	writeMsg(w, http.StatusOK, "Usuario eliminado")
}

// authorizeOwner answers 404 when account id does not exist and 403 when the
// bearer token belongs to another account.
func (h *UserHandler) authorizeOwner(w http.ResponseWriter, r *http.Request, id int64, f failure) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeMsg(w, http.StatusInternalServerError, f.internal)
		return false
	}
	if _, err := h.service.GetUserByID(r.Context(), id); err != nil {
		f.fail(w, err)
		return false
	}
	if claims.UserID != id {
		log.Warn().Int64("userId", claims.UserID).Int64("targetId", id).Msg("Refused change to another user's account")
		writeMsg(w, http.StatusForbidden, "No tienes permiso para modificar este usuario")
		return false
	}
	return true
}
