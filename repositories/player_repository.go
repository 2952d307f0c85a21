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
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player team conflict or invalid")
	ErrPlayerInUse       = errors.New("player is referenced by games or enrollments")
	ErrInvalidTallyField = errors.New("invalid tally field")
)

type ListPlayersFilter struct {
	TeamID *uuid.UUID
	Limit  int
	Offset int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Player, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]*models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementTally adds one to wins, losses or draws in a single statement.
	IncrementTally(ctx context.Context, exec SQLExecutor, id uuid.UUID, field models.TallyField) error
	Count(ctx context.Context) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, grade, wins, losses, draws, team_id, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (id, name, grade, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING wins, losses, draws, created_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Grade, p.TeamID).
		Scan(&p.Wins, &p.Losses, &p.Draws, &p.CreatedAt)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.Name, &p.Grade, &p.Wins, &p.Losses, &p.Draws, &p.TeamID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	player, err := r.scanPlayer(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return player, err
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]*models.Player, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + playerColumns + ` FROM players WHERE 1=1`)

	args := []interface{}{}
	argID := 1
	if filter.TeamID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND team_id = $%d", argID))
		args = append(args, *filter.TeamID)
		argID++
	}
	queryBuilder.WriteString(" ORDER BY name ASC, id ASC")
	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argID))
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argID))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, err := r.scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

// Update writes the editable profile fields. Tallies are only changed through
// IncrementTally.
func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `UPDATE players SET name = $1, grade = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, p.Name, p.Grade, p.ID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) IncrementTally(ctx context.Context, exec SQLExecutor, id uuid.UUID, field models.TallyField) error {
	if !field.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTallyField, field)
	}
	// field is one of three fixed column names, checked above.
	query := fmt.Sprintf(`UPDATE players SET %[1]s = %[1]s + 1 WHERE id = $1`, field)
	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s for player %s: %w", field, id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM players`)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
		if pqErr.Constraint == "players_team_id_fkey" {
			return ErrPlayerTeamInvalid
		}
		// Any other FK violation comes from a table referencing the player.
		return ErrPlayerInUse
	}
	return err
}
