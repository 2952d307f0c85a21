package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var gameRowColumns = []string{"id", "tournament_id", "round", "board", "white_id", "black_id", "official_id", "result", "created_at"}

func TestGameRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	g := &models.Game{ID: uuid.New(), TournamentID: uuid.New(), Round: 1, Board: 2, WhiteID: uuid.New(), BlackID: uuid.New()}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO games")).
		WithArgs(g.ID, g.TournamentID, 1, 2, g.WhiteID, g.BlackID, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Create(context.Background(), nil, g))
	assert.Equal(t, created, g.CreatedAt)
}

func TestGameRepository_CreateMapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name    string
		pqErr   *pq.Error
		wantErr error
	}{
		{"unknown tournament", &pq.Error{Code: pqForeignKeyViolation, Constraint: "games_tournament_id_fkey"}, ErrGameTournamentInvalid},
		{"unknown white", &pq.Error{Code: pqForeignKeyViolation, Constraint: "games_white_id_fkey"}, ErrGamePlayerInvalid},
		{"unknown black", &pq.Error{Code: pqForeignKeyViolation, Constraint: "games_black_id_fkey"}, ErrGamePlayerInvalid},
		{"unknown official", &pq.Error{Code: pqForeignKeyViolation, Constraint: "games_official_id_fkey"}, ErrGameOfficialInvalid},
		{"same players", &pq.Error{Code: pqCheckViolation, Constraint: "games_distinct_players"}, ErrGameSamePlayers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgresGameRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO games")).WillReturnError(tt.pqErr)

			err := repo.Create(context.Background(), nil, &models.Game{ID: uuid.New()})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGameRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	id, white := uuid.New(), uuid.New()
	official := uuid.New()
	rows := sqlmock.NewRows(gameRowColumns).
		AddRow(id.String(), uuid.New().String(), 2, 1, white.String(), uuid.New().String(), official.String(), white.String(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1")).WithArgs(id).WillReturnRows(rows)

	g, err := repo.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	assert.Equal(t, id, g.ID)
	assert.Equal(t, 2, g.Round)
	require.NotNil(t, g.OfficialID)
	assert.Equal(t, official, *g.OfficialID)
	require.NotNil(t, g.Result)
	assert.Equal(t, white.String(), *g.Result)
	assert.True(t, g.IsResolved())
}

func TestGameRepository_GetByIDUnresolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows(gameRowColumns).
		AddRow(id.String(), uuid.New().String(), 1, 1, uuid.New().String(), uuid.New().String(), nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1 FOR UPDATE")).WithArgs(id).WillReturnRows(rows)

	g, err := repo.GetByIDForUpdate(context.Background(), nil, id)
	require.NoError(t, err)
	assert.Nil(t, g.OfficialID)
	assert.Nil(t, g.Result)
	assert.False(t, g.IsResolved())
}

func TestGameRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1")).WillReturnRows(sqlmock.NewRows(gameRowColumns))

	_, err := repo.GetByID(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameRepository_ListBuildsFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	tournamentID := uuid.New()
	round := 3
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND tournament_id = $1 AND round = $2 ORDER BY created_at DESC, id ASC LIMIT $3 OFFSET $4")).
		WithArgs(tournamentID, 3, 10, 20).
		WillReturnRows(sqlmock.NewRows(gameRowColumns))

	games, err := repo.List(context.Background(), ListGamesFilter{TournamentID: &tournamentID, Round: &round, Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.NotNil(t, games)
}

func TestGameRepository_ListByTournamentRound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	tournamentID := uuid.New()
	round := 1
	rows := sqlmock.NewRows(gameRowColumns).
		AddRow(uuid.New().String(), tournamentID.String(), 1, 1, uuid.New().String(), uuid.New().String(), nil, nil, time.Now()).
		AddRow(uuid.New().String(), tournamentID.String(), 1, 2, uuid.New().String(), uuid.New().String(), nil, models.ResultDraw, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE tournament_id = $1 AND round = $2 ORDER BY round ASC, board ASC")).
		WithArgs(tournamentID, 1).
		WillReturnRows(rows)

	games, err := repo.ListByTournament(context.Background(), nil, tournamentID, &round)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, 2, games[1].Board)
	assert.Equal(t, models.ResultDraw, *games[1].Result)
}

func TestGameRepository_SetResult(t *testing.T) {
	id, official := uuid.New(), uuid.New()

	t.Run("stores result", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresGameRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE games SET result = $1, official_id = $2 WHERE id = $3 AND result IS NULL")).
			WithArgs(models.ResultDraw, official, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetResult(context.Background(), nil, id, models.ResultDraw, official))
	})

	t.Run("already resolved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresGameRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE games SET result")).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetResult(context.Background(), nil, id, models.ResultDraw, official)
		assert.ErrorIs(t, err, ErrGameAlreadyResolved)
	})
}

func TestGameRepository_UpdateOnlyUnresolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $7 AND result IS NULL")).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), nil, &models.Game{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameRepository_RunsInsideTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM games WHERE id = $1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), tx, uuid.New()))
	require.NoError(t, tx.Commit())
}

func TestGameRepository_CountUnresolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresGameRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM games WHERE result IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.Count(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
