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
	ErrOfficialNotFound   = errors.New("official not found")
	ErrOfficialEmailTaken = errors.New("official email already in use")
)

type OfficialRepository interface {
	Create(ctx context.Context, official *models.Official) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Official, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.Official, error)
	List(ctx context.Context, limit, offset int) ([]*models.Official, error)
	Update(ctx context.Context, official *models.Official) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

type postgresOfficialRepository struct {
	db *sql.DB
}

func NewPostgresOfficialRepository(db *sql.DB) OfficialRepository {
	return &postgresOfficialRepository{db: db}
}

const officialColumns = `id, name, email, verified, verification_token, created_at`

func (r *postgresOfficialRepository) Create(ctx context.Context, o *models.Official) error {
	query := `
		INSERT INTO officials (id, name, email, verified, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, o.ID, o.Name, o.Email, o.Verified, o.VerificationToken).Scan(&o.CreatedAt)
	return r.handleOfficialError(err)
}

func (r *postgresOfficialRepository) scanOfficial(row rowScanner) (*models.Official, error) {
	var o models.Official
	if err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Verified, &o.VerificationToken, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfficialNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *postgresOfficialRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Official, error) {
	query := `SELECT ` + officialColumns + ` FROM officials WHERE id = $1`
	official, err := r.scanOfficial(getExecutor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrOfficialNotFound) {
		return nil, fmt.Errorf("failed to get official %s: %w", id, err)
	}
	return official, err
}

func (r *postgresOfficialRepository) GetByVerificationToken(ctx context.Context, token string) (*models.Official, error) {
	query := `SELECT ` + officialColumns + ` FROM officials WHERE verification_token = $1`
	official, err := r.scanOfficial(r.db.QueryRowContext(ctx, query, token))
	if err != nil && !errors.Is(err, ErrOfficialNotFound) {
		return nil, fmt.Errorf("failed to get official by verification token: %w", err)
	}
	return official, err
}

func (r *postgresOfficialRepository) List(ctx context.Context, limit, offset int) ([]*models.Official, error) {
	query, args := appendPagination(`SELECT `+officialColumns+` FROM officials ORDER BY name ASC, id ASC`, nil, 1, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list officials: %w", err)
	}
	defer rows.Close()

	officials := make([]*models.Official, 0)
	for rows.Next() {
		o, err := r.scanOfficial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan official row: %w", err)
		}
		officials = append(officials, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating official rows: %w", err)
	}
	return officials, nil
}

func (r *postgresOfficialRepository) Update(ctx context.Context, o *models.Official) error {
	query := `UPDATE officials SET name = $1, email = $2, verified = $3, verification_token = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, o.Name, o.Email, o.Verified, o.VerificationToken, o.ID)
	if err != nil {
		return r.handleOfficialError(err)
	}
	return checkAffectedRows(result, ErrOfficialNotFound)
}

func (r *postgresOfficialRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE officials SET verified = true, verification_token = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to verify official %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrOfficialNotFound)
}

func (r *postgresOfficialRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.db, `SELECT COUNT(*) FROM officials`)
}

func (r *postgresOfficialRepository) handleOfficialError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pqUniqueViolation {
		if pqErr.Constraint == "officials_email_key" {
			return ErrOfficialEmailTaken
		}
	}
	return err
}
