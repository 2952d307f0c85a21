package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/chess-league/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Round int    `json:"round"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"Open","round":2}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"wrong type", `{"round":"two"}`, `incorrect JSON type for field "round"`},
		{"unknown field", `{"rounds":2}`, `unknown key "rounds"`},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, payload{Name: "Open", Round: 2}, dst)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadJSONTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst struct {
		Name string `json:"name"`
	}
	err := readJSON(httptest.NewRecorder(), req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be larger than")
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &services.ValidationError{Field: "round", Message: "must be between 1 and 3"}, http.StatusBadRequest},
		{"wrapped validation category", fmt.Errorf("%w: bad", services.ErrValidationFailed), http.StatusBadRequest},
		{"not found", services.ErrTournamentNotFound, http.StatusNotFound},
		{"conflict", services.ErrRoundAlreadyOrganized, http.StatusConflict},
		{"resolved game", fmt.Errorf("update: %w", services.ErrGameResolvedImmutable), http.StatusConflict},
		{"auth", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestMapServiceErrorToHTTPHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestValidationErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), &services.ValidationError{Field: "boards", Message: "must be positive"})

	body := decodeBody(t, rec)
	assert.Equal(t, map[string]interface{}{"field": "boards", "message": "must be positive"}, body["error"])
}

func TestReadPagination(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
		wantErr       bool
	}{
		{"", 0, 0, false},
		{"limit=10&offset=20", 10, 20, false},
		{"limit=-1", 0, 0, true},
		{"offset=abc", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			limit, offset, err := readPagination(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}
