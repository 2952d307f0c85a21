package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Team, error)
	List(ctx context.Context, limit, offset int) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Count(ctx context.Context) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, sponsor_name)
		VALUES ($1, $2, $3)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, team.ID, team.Name, team.Sponsor).Scan(&team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Sponsor, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Team, error) {
	query := `SELECT id, name, sponsor_name, created_at FROM teams WHERE id = $1`
	team, err := r.scanTeam(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrTeamNotFound) {
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return team, err
}

func (r *postgresTeamRepository) List(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	query, args := appendPagination(`
		SELECT id, name, sponsor_name, created_at
		FROM teams
		ORDER BY name ASC, id ASC`, nil, 1, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, err := r.scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1, sponsor_name = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.Sponsor, team.ID)
	if err != nil {
		return fmt.Errorf("failed to update team %s: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM teams`)
}
