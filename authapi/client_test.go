package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medibook/go-client/authapi"
	"github.com/medibook/go-client/session"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *authapi.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := authapi.New(srv.URL)
	require.NoError(t, err)
	return client
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req["username"])
		require.Equal(t, "pw", req["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"token":    "t1",
			"id":       7,
			"username": "alice",
			"email":    "a@x.com",
			"role":     "patient",
			"fullName": "Alice A",
		})
	})

	resp, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "t1", resp.Token)
	require.Equal(t, "7", resp.ID.String())

	sess := resp.Session()
	require.Equal(t, session.RolePatient, sess.Role)
	require.Equal(t, "t1", sess.AccessToken)
	require.Equal(t, "7", sess.UserID)
}

func TestLoginEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, authapi.ErrInvalidResponse)
}

func TestLoginMissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "role": "PATIENT"})
	})

	_, err := client.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, authapi.ErrMissingToken)
}

func TestLoginStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"})
	})

	_, err := client.Login(context.Background(), "alice", "wrong")
	var statusErr *authapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.Code)
	require.Equal(t, "bad credentials", statusErr.Message)
}

func TestRegister(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)

		var req authapi.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "carol", req.Username)
		require.Equal(t, "DOCTOR", req.Role)

		json.NewEncoder(w).Encode(map[string]any{
			"token":        "t-new",
			"refreshToken": "r-new",
			"id":           "42",
			"username":     req.Username,
			"email":        req.Email,
			"role":         req.Role,
			"fullName":     req.FullName,
		})
	})

	resp, err := client.Register(context.Background(), authapi.RegisterRequest{
		Username: "carol",
		Email:    "c@x.com",
		Password: "Secret123",
		FullName: "Carol C",
		Phone:    "555-0100",
		Role:     "DOCTOR",
	})
	require.NoError(t, err)
	require.Equal(t, "t-new", resp.Token)
	require.Equal(t, "r-new", resp.RefreshToken)
	require.Equal(t, "42", resp.ID.String())
}

func TestLoginContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Login(ctx, "alice", "pw")
	require.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := authapi.New("")
	require.Error(t, err)
}
