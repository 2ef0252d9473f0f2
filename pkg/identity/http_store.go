package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/librarium/librarium/pkg/config"
	"github.com/librarium/librarium/pkg/errors"
)

// HTTPStore talks to the external identity service's admin API. It
// authenticates with the privileged service key and applies a request-level
// timeout; a timed-out or failed call is a DOWNSTREAM_ERROR (retryable),
// never a FORBIDDEN.
type HTTPStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

var _ Store = (*HTTPStore)(nil)

// NewHTTPStore creates an identity store client from deployment configuration.
// Missing connection secrets are a CONFIG_MISSING error.
func NewHTTPStore(cfg config.IdentityConfig) (*HTTPStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPStore{
		baseURL:    strings.TrimRight(cfg.ServiceURL, "/"),
		serviceKey: cfg.ServiceKey,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

type accountPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (p accountPayload) toAccount() (Account, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return Account{}, fmt.Errorf("identity service returned invalid account id %q: %w", p.ID, err)
	}
	return Account{ID: id, Email: p.Email, CreatedAt: p.CreatedAt}, nil
}

// VerifyToken asks the identity service which account the bearer token
// belongs to
func (s *HTTPStore) VerifyToken(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, errors.Unauthenticated("missing bearer token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build verify request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return uuid.Nil, errors.Downstream(err, "identity service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload accountPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return uuid.Nil, errors.Downstream(err, "failed to decode identity service response")
		}
		acct, err := payload.toAccount()
		if err != nil {
			return uuid.Nil, errors.Downstream(err, "identity service returned malformed account")
		}
		return acct.ID, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return uuid.Nil, errors.Unauthenticated("invalid bearer token")
	default:
		return uuid.Nil, unexpectedStatus("verify token", resp)
	}
}

// GetAccount looks up an account through the privileged admin API
func (s *HTTPStore) GetAccount(ctx context.Context, id uuid.UUID) (Account, error) {
	resp, err := s.adminRequest(ctx, http.MethodGet, "/auth/v1/admin/users/"+id.String(), nil)
	if err != nil {
		return Account{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload accountPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return Account{}, errors.Downstream(err, "failed to decode identity service response")
		}
		acct, err := payload.toAccount()
		if err != nil {
			return Account{}, errors.Downstream(err, "identity service returned malformed account")
		}
		return acct, nil
	case http.StatusNotFound:
		return Account{}, errors.NotFound("account", id.String())
	default:
		return Account{}, unexpectedStatus("get account", resp)
	}
}

// CreateAccount registers a new credentialed account through the admin API
func (s *HTTPStore) CreateAccount(ctx context.Context, email, password string) (Account, error) {
	body := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}

	resp, err := s.adminRequest(ctx, http.MethodPost, "/auth/v1/admin/users", body)
	if err != nil {
		return Account{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var payload accountPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return Account{}, errors.Downstream(err, "failed to decode identity service response")
		}
		acct, err := payload.toAccount()
		if err != nil {
			return Account{}, errors.Downstream(err, "identity service returned malformed account")
		}
		return acct, nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return Account{}, errors.Conflict("email already registered: " + email)
	default:
		return Account{}, unexpectedStatus("create account", resp)
	}
}

// DeleteAccount permanently removes an account through the admin API
func (s *HTTPStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	resp, err := s.adminRequest(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id.String(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return errors.NotFound("account", id.String())
	default:
		return unexpectedStatus("delete account", resp)
	}
}

func (s *HTTPStore) adminRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build admin request")
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Downstream(err, "identity service unreachable")
	}
	return resp, nil
}

func unexpectedStatus(operation string, resp *http.Response) error {
	// Read a bounded slice of the body for logs; the response to callers
	// never includes it.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	slog.Error("Identity service returned unexpected status",
		"operation", operation, "status", resp.StatusCode, "body", string(snippet))
	return errors.Newf(errors.ErrCodeDownstream, "identity service failed (%s: status %d)", operation, resp.StatusCode)
}
