package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/chess-league/brackets"
	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Unset methods fall through to the nil embedded interface and panic.
type fakeRoundService struct {
	services.RoundService
	standings func(ctx context.Context, tournamentID uuid.UUID, mode brackets.RankingMode) ([]models.RankedStanding, error)
	organize  func(ctx context.Context, tournamentID uuid.UUID, round int) (*services.RoundResult, error)
	preview   func(ctx context.Context, tournamentID uuid.UUID, round int) (*services.RoundPreview, error)
}

func (f *fakeRoundService) Standings(ctx context.Context, tournamentID uuid.UUID, mode brackets.RankingMode) ([]models.RankedStanding, error) {
	return f.standings(ctx, tournamentID, mode)
}

func (f *fakeRoundService) OrganizeRound(ctx context.Context, tournamentID uuid.UUID, round int) (*services.RoundResult, error) {
	return f.organize(ctx, tournamentID, round)
}

func (f *fakeRoundService) PreviewRound(ctx context.Context, tournamentID uuid.UUID, round int) (*services.RoundPreview, error) {
	return f.preview(ctx, tournamentID, round)
}

type fakeGameService struct {
	services.GameService
	resolve func(ctx context.Context, id uuid.UUID, input services.ResolveGameInput) (*models.Game, error)
	list    func(ctx context.Context, filter services.GameFilter) ([]*models.Game, error)
	remove  func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeGameService) ResolveGame(ctx context.Context, id uuid.UUID, input services.ResolveGameInput) (*models.Game, error) {
	return f.resolve(ctx, id, input)
}

func (f *fakeGameService) ListGames(ctx context.Context, filter services.GameFilter) ([]*models.Game, error) {
	return f.list(ctx, filter)
}

func (f *fakeGameService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return f.remove(ctx, id)
}

type fakeAuthService struct {
	services.AuthService
	issue func(ctx context.Context, username, password string) (*services.TokenResponse, error)
}

func (f *fakeAuthService) IssueToken(ctx context.Context, username, password string) (*services.TokenResponse, error) {
	return f.issue(ctx, username, password)
}

// serve routes a single request through a chi router so URL params resolve.
func serve(t *testing.T, method, pattern, target string, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
