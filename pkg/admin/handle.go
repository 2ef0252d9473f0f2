package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/bootstrap"
	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/identity"
)

type Handle struct {
	adminService     *AdminService
	bootstrapService *bootstrap.Service
}

func NewHandle(adminService *AdminService, bootstrapService *bootstrap.Service) Handle {
	return Handle{
		adminService:     adminService,
		bootstrapService: bootstrapService,
	}
}

// Routes mounts the two gateway endpoints. Both answer OPTIONS preflights
// with permissive CORS headers so browser clients on any origin can call
// them with Authorization and apikey headers.
func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "apikey"},
		MaxAge:         300,
	}))
	r.Post("/bootstrap-owner", h.BootstrapOwner)
	r.Post("/delete-user", h.DeleteUser)
	return r
}

type bootstrapExistsResponse struct {
	Message string `json:"message"`
	Exists  bool   `json:"exists"`
}

type bootstrapCreatedResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// BootstrapOwner ensures the owner account exists.
// (POST /bootstrap-owner)
func (h Handle) BootstrapOwner(w http.ResponseWriter, r *http.Request) {
	result, err := h.bootstrapService.EnsureOwner(r.Context())
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: errors.GetMessage(err)})
		return
	}

	if !result.Created {
		render.JSON(w, r, bootstrapExistsResponse{
			Message: "Owner account already exists",
			Exists:  true,
		})
		return
	}

	render.JSON(w, r, bootstrapCreatedResponse{
		Success:  true,
		Message:  "Owner account created",
		Email:    result.Email,
		Password: result.Password,
	})
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

type deleteUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type deleteUserError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// DeleteUser removes a user on behalf of an admin or owner caller.
// (POST /delete-user)
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	token := identity.BearerFromRequest(r)
	if token == "" {
		renderDeleteError(w, r, http.StatusBadRequest, "missing authorization token")
		return
	}

	var req deleteUserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderDeleteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		renderDeleteError(w, r, http.StatusBadRequest, "userId is required")
		return
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		renderDeleteError(w, r, http.StatusBadRequest, "userId is not a valid uuid")
		return
	}

	if err := h.adminService.DeleteUser(r.Context(), token, targetID); err != nil {
		renderDeleteError(w, r, deleteStatus(err), errors.GetMessage(err))
		return
	}

	render.JSON(w, r, deleteUserResponse{
		Success: true,
		Message: "User deleted",
	})
}

// deleteStatus maps service errors onto the endpoint's contract: credential
// and authorization failures come back as 400 alongside input validation,
// missing targets as 404, everything else as 500.
func deleteStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnauthenticated, errors.ErrCodeForbidden, errors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func renderDeleteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, deleteUserError{Success: false, Error: message})
}
