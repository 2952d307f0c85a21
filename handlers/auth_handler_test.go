package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/chess-league/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler(t *testing.T) *AuthHandler {
	return NewAuthHandler(&fakeAuthService{
		issue: func(_ context.Context, username, password string) (*services.TokenResponse, error) {
			if username != "admin" || password != "s3cret" {
				return nil, services.ErrInvalidCredentials
			}
			return &services.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	})
}

func TestAuthHandler_IssueTokenBasicAuth(t *testing.T) {
	h := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.SetBasicAuth("admin", "s3cret")
	rec := httptest.NewRecorder()
	h.IssueToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "tok", body["access_token"])
	assert.Equal(t, "Bearer", body["token_type"])
}

func TestAuthHandler_IssueTokenJSONBody(t *testing.T) {
	h := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
	rec := httptest.NewRecorder()
	h.IssueToken(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_IssueTokenRejected(t *testing.T) {
	h := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	h.IssueToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_IssueTokenNoCredentials(t *testing.T) {
	h := newTestAuthHandler(t)

	rec := httptest.NewRecorder()
	h.IssueToken(rec, httptest.NewRequest(http.MethodPost, "/auth/token", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
