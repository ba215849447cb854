package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/jwt/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			http.Error(w, "want form", http.StatusUnsupportedMediaType)
			return
		}
		if r.FormValue("username") != "alice@example.com" || r.FormValue("password") != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"LOGIN_BAD_CREDENTIALS"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "jwt-token", TokenType: "bearer"})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(User{ID: "u-1", Email: req.Email, IsActive: true})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer jwt-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Unauthorized"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(User{ID: "u-1", Email: "alice@example.com"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresToken(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL + "/")

	_, ok := c.Token()
	require.False(t, ok)

	resp, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "jwt-token", resp.AccessToken)

	token, ok := c.Token()
	require.True(t, ok)
	require.Equal(t, "jwt-token", token)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", me.Email)
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL)

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorContains(t, err, "api error (status 400): LOGIN_BAD_CREDENTIALS")
	_, ok := c.Token()
	require.False(t, ok)

	_, err = c.Me(context.Background())
	require.ErrorContains(t, err, "status 401")
}

func TestRegister(t *testing.T) {
	srv := newAuthServer(t)
	c := NewClient(srv.URL)

	user, err := c.Register(context.Background(), RegisterRequest{Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, "bob@example.com", user.Email)
}
