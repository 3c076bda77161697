package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"chat-relay/auth"
	"chat-relay/repositories"
	"chat-relay/services"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authService := services.NewAuthService(repositories.NewUserRepository(db), tokens)

	router := NewRouter(RouterDeps{
		WS:         http.NotFoundHandler(),
		Auth:       NewAuthHandler(log, authService),
		Tokens:     tokens,
		RateBurst:  100,
		RateRefill: time.Minute,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeAPI(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerBody() auth.RegisterRequest {
	return auth.RegisterRequest{
		Username:    "alice-one",
		Email:       "alice@example.com",
		Password:    "Sup3rSecret",
		DisplayName: "Alice",
	}
}

func TestAPI_Health(t *testing.T) {
	req := require.New(t)
	server := newAPIServer(t)

	resp, err := http.Get(server.URL + "/health")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	out := decodeAPI(t, resp)
	req.True(out.Success)
}

func TestAPI_RegisterLoginMe(t *testing.T) {
	req := require.New(t)
	server := newAPIServer(t)

	// Register
	resp := postJSON(t, server.URL+"/api/users/register", registerBody())
	req.Equal(http.StatusCreated, resp.StatusCode)
	out := decodeAPI(t, resp)
	req.True(out.Success)

	// Login
	resp = postJSON(t, server.URL+"/api/users/login", auth.LoginRequest{
		Email: "alice@example.com", Password: "Sup3rSecret",
	})
	req.Equal(http.StatusOK, resp.StatusCode)
	out = decodeAPI(t, resp)
	req.True(out.Success)

	var logged authResponse
	raw, err := json.Marshal(out.Data)
	req.NoError(err)
	req.NoError(json.Unmarshal(raw, &logged))
	req.NotEmpty(logged.Token)
	req.Equal("alice-one", logged.User.Username)

	// Me with the issued token
	httpReq, err := http.NewRequest(http.MethodGet, server.URL+"/api/users/me", nil)
	req.NoError(err)
	httpReq.Header.Set("Authorization", "Bearer "+logged.Token)
	resp2, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer resp2.Body.Close()
	req.Equal(http.StatusOK, resp2.StatusCode)

	var me userResponse
	out = decodeAPI(t, resp2)
	raw, err = json.Marshal(out.Data)
	req.NoError(err)
	req.NoError(json.Unmarshal(raw, &me))
	req.Equal("alice@example.com", me.Email)
	req.NotNil(me.LastLogin)
}

func TestAPI_RegisterRejections(t *testing.T) {
	req := require.New(t)
	server := newAPIServer(t)

	// First registration wins
	resp := postJSON(t, server.URL+"/api/users/register", registerBody())
	req.Equal(http.StatusCreated, resp.StatusCode)

	// Duplicate account conflicts
	resp = postJSON(t, server.URL+"/api/users/register", registerBody())
	req.Equal(http.StatusConflict, resp.StatusCode)
	req.False(decodeAPI(t, resp).Success)

	// Weak password is a validation failure with its own message
	weak := registerBody()
	weak.Email = "other@example.com"
	weak.Username = "other-name"
	weak.Password = "alllowercase"
	resp = postJSON(t, server.URL+"/api/users/register", weak)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	out := decodeAPI(t, resp)
	req.Equal("password does not meet complexity requirements", out.Error)

	// Structural failures never leak validator field internals
	malformed := registerBody()
	malformed.Email = "not-an-email"
	malformed.Username = "third-name"
	resp = postJSON(t, server.URL+"/api/users/register", malformed)
	req.Equal(http.StatusBadRequest, resp.StatusCode)
	out = decodeAPI(t, resp)
	req.Equal("invalid registration details", out.Error)
	req.NotContains(out.Error, "RegisterRequest")

	// Non-JSON body
	raw, err := http.Post(server.URL+"/api/users/register", "application/json",
		bytes.NewReader([]byte("{nope")))
	req.NoError(err)
	defer raw.Body.Close()
	req.Equal(http.StatusBadRequest, raw.StatusCode)
}

func TestAPI_LoginRejections(t *testing.T) {
	req := require.New(t)
	server := newAPIServer(t)

	resp := postJSON(t, server.URL+"/api/users/register", registerBody())
	req.Equal(http.StatusCreated, resp.StatusCode)

	// Wrong password and unknown account produce the same answer
	for _, body := range []auth.LoginRequest{
		{Email: "alice@example.com", Password: "wrongPassw0rd"},
		{Email: "ghost@example.com", Password: "Sup3rSecret"},
	} {
		resp = postJSON(t, server.URL+"/api/users/login", body)
		req.Equal(http.StatusUnauthorized, resp.StatusCode)
		out := decodeAPI(t, resp)
		req.False(out.Success)
		req.Equal("invalid email or password", out.Error)
	}
}

func TestAPI_MeRequiresBearer(t *testing.T) {
	req := require.New(t)
	server := newAPIServer(t)

	resp, err := http.Get(server.URL + "/api/users/me")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	httpReq, err := http.NewRequest(http.MethodGet, server.URL+"/api/users/me", nil)
	req.NoError(err)
	httpReq.Header.Set("Authorization", "Bearer not.a.token")
	resp2, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer resp2.Body.Close()
	req.Equal(http.StatusUnauthorized, resp2.StatusCode)
}
