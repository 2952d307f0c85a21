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
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentInvalidOfficial = errors.New("invalid official reference")
	ErrRoundAlreadyOrganized     = errors.New("round already organized")
)

type ListTournamentsFilter struct {
	OfficialID *uuid.UUID
	Limit      int
	Offset     int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row until exec's transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	// CreateRound records that a round was organized. A second call for the
	// same round fails with ErrRoundAlreadyOrganized.
	CreateRound(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round int) (*models.TournamentRound, error)
	ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentRound, error)
	Count(ctx context.Context) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, date, location, official_id, rounds, boards, created_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (id, name, date, location, official_id, rounds, boards)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Date, t.Location, t.OfficialID, t.Rounds, t.Boards,
	).Scan(&t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(&t.ID, &t.Name, &t.Date, &t.Location, &t.OfficialID, &t.Rounds, &t.Boards, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := r.scanTournament(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrTournamentNotFound) {
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, err
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	t, err := r.scanTournament(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrTournamentNotFound) {
		return nil, fmt.Errorf("failed to lock tournament %s: %w", id, err)
	}
	return t, err
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OfficialID != nil {
		query += fmt.Sprintf(" AND official_id = $%d", argID)
		args = append(args, *filter.OfficialID)
		argID++
	}

	query += " ORDER BY date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			date = $2,
			location = $3,
			official_id = $4,
			rounds = $5,
			boards = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Date, t.Location, t.OfficialID, t.Rounds, t.Boards, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) CreateRound(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, round int) (*models.TournamentRound, error) {
	query := `
		INSERT INTO tournament_rounds (tournament_id, round)
		VALUES ($1, $2)
		RETURNING organized_at`

	tr := &models.TournamentRound{TournamentID: tournamentID, Round: round}
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, tournamentID, round).Scan(&tr.OrganizedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch {
			case pqErr.Code == pqUniqueViolation && pqErr.Constraint == "tournament_rounds_pkey":
				return nil, ErrRoundAlreadyOrganized
			case pqErr.Code == pqForeignKeyViolation:
				return nil, ErrTournamentNotFound
			}
		}
		return nil, fmt.Errorf("failed to record round %d for tournament %s: %w", round, tournamentID, err)
	}
	return tr, nil
}

func (r *postgresTournamentRepository) ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentRound, error) {
	query := `
		SELECT tournament_id, round, organized_at
		FROM tournament_rounds
		WHERE tournament_id = $1
		ORDER BY round ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]*models.TournamentRound, 0)
	for rows.Next() {
		var tr models.TournamentRound
		if err := rows.Scan(&tr.TournamentID, &tr.Round, &tr.OrganizedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		rounds = append(rounds, &tr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

func (r *postgresTournamentRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM tournaments`)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
		if pqErr.Constraint == "tournaments_official_id_fkey" {
			return ErrTournamentInvalidOfficial
		}
	}
	return err
}
