package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

func newAuthClient(baseURL string) *AuthHTTPClient {
	return NewAuthClient(config.APIConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	}, logger.NewNop())
}

func TestSignInDecodesTokenOn200(t *testing.T) {
	var gotCreds entities.Credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/signin", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCreds))

		json.NewEncoder(w).Encode(ports.TokenResponse{Token: "tok-1"})
	}))
	defer srv.Close()

	client := newAuthClient(srv.URL + "/v1/auth/")
	status, token, err := client.SignIn(context.Background(), entities.Credentials{Username: "luki", Password: "hunter22!"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "luki", gotCreds.Username)
}

func TestSignInPassesThroughNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newAuthClient(srv.URL + "/v1/auth/")
	status, token, err := client.SignIn(context.Background(), entities.Credentials{Username: "luki", Password: "wrongpass1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Empty(t, token)
}

func TestAuthenticateSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/authenticate", r.URL.Path)
		require.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	client := newAuthClient(srv.URL + "/v1/auth/")
	status, err := client.Authenticate(context.Background(), "tok-9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestWhoAmIReadsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/secret", r.URL.Path)
		w.Write([]byte("user-42"))
	}))
	defer srv.Close()

	client := newAuthClient(srv.URL + "/v1/auth/")
	status, userID, err := client.WhoAmI(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-42", userID)
}

func TestDeleteUserTargetsUserPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1/auth/users/user-42", r.URL.Path)
		// Account deletion is keyed by user id, not by bearer token.
		require.Empty(t, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	client := newAuthClient(srv.URL + "/v1/auth/")
	status, err := client.DeleteUser(context.Background(), "user-42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestMalformedBaseURLIsBadURL(t *testing.T) {
	client := newAuthClient(":// not a url")

	_, err := client.SignUp(context.Background(), entities.Credentials{Username: "u", Password: "p"})
	assert.ErrorIs(t, err, entities.ErrBadURL)
}
