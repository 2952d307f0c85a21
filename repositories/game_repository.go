package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrGameTournamentInvalid = errors.New("game tournament conflict or invalid")
	ErrGamePlayerInvalid     = errors.New("game player conflict or invalid")
	ErrGameOfficialInvalid   = errors.New("game official conflict or invalid")
	ErrGameSamePlayers       = errors.New("white and black must be different players")
	ErrGameAlreadyResolved   = errors.New("game already has a result")
)

type ListGamesFilter struct {
	TournamentID *uuid.UUID
	Round        *int
	Limit        int
	Offset       int
}

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Game, error)
	// GetByIDForUpdate locks the game row until exec's transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Game, error)
	List(ctx context.Context, filter ListGamesFilter) ([]*models.Game, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round *int) ([]*models.Game, error)
	ListByPlayerAndTournament(ctx context.Context, exec SQLExecutor, playerID, tournamentID uuid.UUID) ([]*models.Game, error)
	// Update rewrites the pairing fields of an unresolved game.
	Update(ctx context.Context, exec SQLExecutor, game *models.Game) error
	// SetResult stores a result only if none is stored yet.
	SetResult(ctx context.Context, exec SQLExecutor, id uuid.UUID, result string, officialID uuid.UUID) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	Count(ctx context.Context, unresolvedOnly bool) (int, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, tournament_id, round, board, white_id, black_id, official_id, result, created_at`

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := `
		INSERT INTO games (id, tournament_id, round, board, white_id, black_id, official_id, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		g.ID, g.TournamentID, g.Round, g.Board, g.WhiteID, g.BlackID, g.OfficialID, g.Result,
	).Scan(&g.CreatedAt)

	return r.handleGameError(err)
}

func (r *postgresGameRepository) scanGame(row rowScanner) (*models.Game, error) {
	var (
		g          models.Game
		officialID uuid.NullUUID
		result     sql.NullString
	)
	err := row.Scan(&g.ID, &g.TournamentID, &g.Round, &g.Board, &g.WhiteID, &g.BlackID, &officialID, &result, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if officialID.Valid {
		id := officialID.UUID
		g.OfficialID = &id
	}
	if result.Valid {
		res := result.String
		g.Result = &res
	}
	return &g, nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := r.scanGame(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrGameNotFound) {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}
	return g, err
}

func (r *postgresGameRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1 FOR UPDATE`
	g, err := r.scanGame(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrGameNotFound) {
		return nil, fmt.Errorf("failed to lock game %s: %w", id, err)
	}
	return g, err
}

func (r *postgresGameRepository) List(ctx context.Context, filter ListGamesFilter) ([]*models.Game, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + gameColumns + ` FROM games WHERE 1=1`)

	args := []interface{}{}
	argID := 1
	if filter.TournamentID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND tournament_id = $%d", argID))
		args = append(args, *filter.TournamentID)
		argID++
	}
	if filter.Round != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND round = $%d", argID))
		args = append(args, *filter.Round)
		argID++
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id ASC")
	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argID))
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argID))
		args = append(args, filter.Offset)
	}

	return r.queryGames(ctx, r.db, queryBuilder.String(), args...)
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round *int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if round != nil {
		query += ` AND round = $2`
		args = append(args, *round)
	}
	query += ` ORDER BY round ASC, board ASC`

	games, err := r.queryGames(ctx, getExecutor(r.db, exec), query, args...)
	if err != nil {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, err)
	}
	return games, nil
}

func (r *postgresGameRepository) ListByPlayerAndTournament(ctx context.Context, exec SQLExecutor, playerID, tournamentID uuid.UUID) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE tournament_id = $1 AND (white_id = $2 OR black_id = $2)
		ORDER BY round ASC, board ASC`

	games, err := r.queryGames(ctx, getExecutor(r.db, exec), query, tournamentID, playerID)
	if err != nil {
		return nil, fmt.Errorf("player %s in tournament %s: %w", playerID, tournamentID, err)
	}
	return games, nil
}

func (r *postgresGameRepository) queryGames(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g, err := r.scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) Update(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := `
		UPDATE games SET
			tournament_id = $1,
			round = $2,
			board = $3,
			white_id = $4,
			black_id = $5,
			official_id = $6
		WHERE id = $7 AND result IS NULL`

	result, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		g.TournamentID, g.Round, g.Board, g.WhiteID, g.BlackID, g.OfficialID, g.ID,
	)
	if err != nil {
		return r.handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) SetResult(ctx context.Context, exec SQLExecutor, id uuid.UUID, result string, officialID uuid.UUID) error {
	query := `UPDATE games SET result = $1, official_id = $2 WHERE id = $3 AND result IS NULL`
	res, err := getExecutor(r.db, exec).ExecContext(ctx, query, result, officialID, id)
	if err != nil {
		return r.handleGameError(err)
	}
	return checkAffectedRows(res, ErrGameAlreadyResolved)
}

func (r *postgresGameRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Count(ctx context.Context, unresolvedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM games`
	if unresolvedOnly {
		query += ` WHERE result IS NULL`
	}
	return countRows(ctx, r.db, query)
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			switch pqErr.Constraint {
			case "games_tournament_id_fkey":
				return ErrGameTournamentInvalid
			case "games_white_id_fkey", "games_black_id_fkey":
				return ErrGamePlayerInvalid
			case "games_official_id_fkey":
				return ErrGameOfficialInvalid
			}
		case pqCheckViolation:
			if pqErr.Constraint == "games_distinct_players" {
				return ErrGameSamePlayers
			}
		}
	}
	return err
}
