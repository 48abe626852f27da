package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/medibook/go-client/authapi"
	"github.com/medibook/go-client/session"
	"github.com/medibook/go-client/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *authapi.Client {
	t.Helper()

	cat, err := seedCatalog()
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(cat, zerolog.Nop()))
	t.Cleanup(srv.Close)

	api, err := authapi.New(srv.URL)
	require.NoError(t, err)
	return api
}

func TestLoginSeededAccounts(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.Login(context.Background(), "alice", "Patient1234")
	require.NoError(t, err)
	require.Equal(t, "PATIENT", resp.Role)
	require.NotEmpty(t, resp.RefreshToken)

	// The demo token is a real JWT with a future expiry.
	_, ok := token.Expiry(resp.Token)
	require.True(t, ok)

	sess := resp.Session()
	require.Equal(t, session.RolePatient, sess.Role)
	require.NotEmpty(t, sess.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.Login(context.Background(), "alice", "nope")
	var statusErr *authapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 401, statusErr.Code)
}

func TestRegisterThenLogin(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.Register(context.Background(), authapi.RegisterRequest{
		Username: "carol",
		Email:    "carol@x.com",
		Password: "Secret1234",
		FullName: "Carol C",
	})
	require.NoError(t, err)
	require.Equal(t, "PATIENT", resp.Role)

	again, err := api.Login(context.Background(), "carol", "Secret1234")
	require.NoError(t, err)
	require.Equal(t, resp.ID.String(), again.ID.String())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.Register(context.Background(), authapi.RegisterRequest{
		Username: "alice",
		Email:    "other@x.com",
		Password: "Secret1234",
	})
	var statusErr *authapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 409, statusErr.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.Register(context.Background(), authapi.RegisterRequest{Username: "x"})
	var statusErr *authapi.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 400, statusErr.Code)
}
