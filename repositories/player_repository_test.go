package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/chess-league/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_IncrementTally(t *testing.T) {
	for _, field := range []models.TallyField{models.TallyWins, models.TallyLosses, models.TallyDraws} {
		t.Run(string(field), func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgresPlayerRepository(db)
			id := uuid.New()

			query := "UPDATE players SET " + string(field) + " = " + string(field) + " + 1 WHERE id = $1"
			mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

			assert.NoError(t, repo.IncrementTally(context.Background(), nil, id, field))
		})
	}
}

func TestPlayerRepository_IncrementTallyRejectsUnknownField(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	err := repo.IncrementTally(context.Background(), nil, uuid.New(), models.TallyField("grade; DROP TABLE players"))
	assert.ErrorIs(t, err, ErrInvalidTallyField)
}

func TestPlayerRepository_IncrementTallyMissingPlayer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET wins = wins + 1")).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementTally(context.Background(), nil, uuid.New(), models.TallyWins)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerRepository_CreateStartsWithZeroTallies(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	p := &models.Player{ID: uuid.New(), Name: gofakeit.Name(), Grade: "9", TeamID: uuid.New()}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO players (id, name, grade, team_id)")).
		WithArgs(p.ID, p.Name, p.Grade, p.TeamID).
		WillReturnRows(sqlmock.NewRows([]string{"wins", "losses", "draws", "created_at"}).AddRow(0, 0, 0, time.Now()))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Zero(t, p.Wins+p.Losses+p.Draws)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestPlayerRepository_CreateUnknownTeam(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO players")).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "players_team_id_fkey"})

	err := repo.Create(context.Background(), &models.Player{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrPlayerTeamInvalid)
}

func TestPlayerRepository_DeleteReferencedPlayer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM players WHERE id = $1")).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "games_white_id_fkey"})

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPlayerInUse)
}

func TestPlayerRepository_ListByTeam(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	teamID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "grade", "wins", "losses", "draws", "team_id", "created_at"}).
		AddRow(uuid.New().String(), "Anna", "10", 3, 1, 0, teamID.String(), time.Now()).
		AddRow(uuid.New().String(), "Boris", "11", 0, 2, 1, teamID.String(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND team_id = $1 ORDER BY name ASC, id ASC LIMIT $2")).
		WithArgs(teamID, 50).
		WillReturnRows(rows)

	players, err := repo.List(context.Background(), ListPlayersFilter{TeamID: &teamID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Anna", players[0].Name)
	assert.Equal(t, 3, players[0].Wins)
	assert.Equal(t, 1, players[1].Draws)
}

func TestPlayerRepository_UpdateKeepsTallies(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresPlayerRepository(db)

	p := &models.Player{ID: uuid.New(), Name: "Anna", Grade: "11", Wins: 99}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET name = $1, grade = $2 WHERE id = $3")).
		WithArgs("Anna", "11", p.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(context.Background(), p))
}
