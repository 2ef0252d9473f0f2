package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/librarium/pkg/bootstrap"
	"github.com/librarium/librarium/pkg/errors"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/profile"
	"github.com/librarium/librarium/pkg/role"
)

type gatewayEnv struct {
	*env
	bootstrapService *bootstrap.Service
	server           *httptest.Server
}

func newGatewayEnv(t *testing.T) *gatewayEnv {
	t.Helper()

	identityStore := identity.NewLocalStore(
		identity.NewInMemoryAccountRepository(),
		identity.NewTokenIssuer("test-secret", "librarium-test", time.Hour),
	)
	roleService := role.NewRoleService(role.NewInMemoryRepository())
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())

	e := &env{
		identityStore:  identityStore,
		roleService:    roleService,
		profileService: profileService,
		service:        NewAdminService(identityStore, roleService, profileService),
	}
	bootstrapService := bootstrap.NewService(identityStore, roleService, profileService, bootstrap.Config{})

	server := httptest.NewServer(NewHandle(e.service, bootstrapService).Routes())
	t.Cleanup(server.Close)

	return &gatewayEnv{env: e, bootstrapService: bootstrapService, server: server}
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestBootstrapOwnerEndpoint(t *testing.T) {
	g := newGatewayEnv(t)

	// First call creates the owner and returns its credential
	resp := postJSON(t, g.server.URL+"/bootstrap-owner", "", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, bootstrap.DefaultOwnerEmail, body["email"])
	assert.Equal(t, bootstrap.DefaultOwnerPassword, body["password"])

	// Second call reports the existing owner without touching anything
	resp = postJSON(t, g.server.URL+"/bootstrap-owner", "", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["exists"])
	assert.NotContains(t, body, "password")
}

func TestBootstrapOwnerEndpoint_ConflictingAccount(t *testing.T) {
	g := newGatewayEnv(t)

	// The default owner email is taken by a non-owner account
	_, err := g.identityStore.CreateAccount(context.Background(), bootstrap.DefaultOwnerEmail, "other")
	require.NoError(t, err)

	resp := postJSON(t, g.server.URL+"/bootstrap-owner", "", map[string]any{})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["error"])
}

func TestDeleteUserEndpoint_Success(t *testing.T) {
	g := newGatewayEnv(t)
	_, adminToken := g.addUser(t, "admin@example.com", "admin")
	targetID, _ := g.addUser(t, "target@example.com", "user")

	resp := postJSON(t, g.server.URL+"/delete-user", adminToken, map[string]any{"userId": targetID.String()})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	_, err := g.identityStore.GetAccount(context.Background(), targetID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestDeleteUserEndpoint_MissingToken(t *testing.T) {
	g := newGatewayEnv(t)
	targetID, _ := g.addUser(t, "target@example.com", "user")

	resp := postJSON(t, g.server.URL+"/delete-user", "", map[string]any{"userId": targetID.String()})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])

	// No mutation happened
	_, err := g.identityStore.GetAccount(context.Background(), targetID)
	assert.NoError(t, err)
}

func TestDeleteUserEndpoint_MissingUserID(t *testing.T) {
	g := newGatewayEnv(t)
	_, adminToken := g.addUser(t, "admin@example.com", "admin")

	resp := postJSON(t, g.server.URL+"/delete-user", adminToken, map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestDeleteUserEndpoint_CallerNotAdmin(t *testing.T) {
	g := newGatewayEnv(t)
	_, userToken := g.addUser(t, "user@example.com", "user")
	targetID, _ := g.addUser(t, "target@example.com", "user")

	resp := postJSON(t, g.server.URL+"/delete-user", userToken, map[string]any{"userId": targetID.String()})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
}

func TestDeleteUserEndpoint_AdminAgainstOwner(t *testing.T) {
	g := newGatewayEnv(t)
	_, adminToken := g.addUser(t, "admin@example.com", "admin")
	ownerID, _ := g.addUser(t, "owner@example.com", "owner")

	resp := postJSON(t, g.server.URL+"/delete-user", adminToken, map[string]any{"userId": ownerID.String()})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err := g.identityStore.GetAccount(context.Background(), ownerID)
	assert.NoError(t, err)
}

func TestGatewayPreflight(t *testing.T) {
	g := newGatewayEnv(t)

	for _, path := range []string{"/bootstrap-owner", "/delete-user"} {
		req, err := http.NewRequest(http.MethodOptions, g.server.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Authorization, apikey")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), path)
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization", path)
	}
}
