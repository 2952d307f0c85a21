package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
)

var (
	ErrEnrollmentNotFound          = errors.New("enrollment not found")
	ErrEnrollmentConflict          = errors.New("player is already enrolled in this tournament")
	ErrEnrollmentPlayerInvalid     = errors.New("enrollment player conflict or invalid")
	ErrEnrollmentTeamInvalid       = errors.New("enrollment team conflict or invalid")
	ErrEnrollmentTournamentInvalid = errors.New("enrollment tournament conflict or invalid")
)

type EnrollmentRepository interface {
	Create(ctx context.Context, e *models.Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
	// ListByTournament returns enrollments in the order they were made.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Enrollment, error)
}

type postgresEnrollmentRepository struct {
	db *sql.DB
}

func NewPostgresEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &postgresEnrollmentRepository{db: db}
}

func (r *postgresEnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	query := `
		INSERT INTO enrollment (id, player_id, tournament_id, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, e.ID, e.PlayerID, e.TournamentID, e.TeamID).Scan(&e.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				if pqErr.Constraint == "enrollment_player_id_tournament_id_key" {
					return ErrEnrollmentConflict
				}
			case pqForeignKeyViolation:
				switch pqErr.Constraint {
				case "enrollment_player_id_fkey":
					return ErrEnrollmentPlayerInvalid
				case "enrollment_team_id_fkey":
					return ErrEnrollmentTeamInvalid
				case "enrollment_tournament_id_fkey":
					return ErrEnrollmentTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := row.Scan(&e.ID, &e.PlayerID, &e.TournamentID, &e.TeamID, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *postgresEnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	query := `SELECT id, player_id, tournament_id, team_id, created_at FROM enrollment WHERE id = $1`
	e, err := scanEnrollment(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrEnrollmentNotFound) {
		return nil, fmt.Errorf("failed to get enrollment %s: %w", id, err)
	}
	return e, err
}

func (r *postgresEnrollmentRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Enrollment, error) {
	query := `
		SELECT id, player_id, tournament_id, team_id, created_at
		FROM enrollment
		WHERE tournament_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := getExecutor(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollment for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}
	return enrollments, nil
}
