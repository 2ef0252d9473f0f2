package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/librarium/librarium/pkg/errors"
)

// Handle exposes password login for the self-hosted identity store. When the
// external identity service is configured clients authenticate against it
// directly and this handle is not mounted.
type Handle struct {
	store *LocalStore
}

func NewHandle(store *LocalStore) Handle {
	return Handle{store: store}
}

func (h Handle) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges a password credential for a bearer token
// (POST /login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Password == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "email and password are required"})
		return
	}

	token, err := h.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// Wrong password and unknown email look identical to the client
		render.Status(r, errors.MapErrorCodeToHTTPStatus(errors.GetCode(err)))
		render.JSON(w, r, map[string]string{"error": errors.GetMessage(err)})
		return
	}
	render.JSON(w, r, loginResponse{Token: token})
}
