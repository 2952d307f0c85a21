package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"github.com/google/uuid"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context, officialID *uuid.UUID, limit, offset int) ([]*models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error)
	Enroll(ctx context.Context, tournamentID uuid.UUID, input EnrollInput) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, tournamentID uuid.UUID) ([]*models.Enrollment, error)
	ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentRound, error)
}

type CreateTournamentInput struct {
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Location   string    `json:"location"`
	OfficialID uuid.UUID `json:"official_id"`
	Rounds     *int      `json:"rounds,omitempty"`
	Boards     *int      `json:"boards,omitempty"`
}

type UpdateTournamentInput struct {
	Name       *string    `json:"name,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Location   *string    `json:"location,omitempty"`
	OfficialID *uuid.UUID `json:"official_id,omitempty"`
	Rounds     *int       `json:"rounds,omitempty"`
	Boards     *int       `json:"boards,omitempty"`
}

// EnrollInput: player id и команда, за которую он играет в турнире.
type EnrollInput struct {
	PlayerID uuid.UUID `json:"player_id"`
	TeamID   uuid.UUID `json:"team_id"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	officialRepo   repositories.OfficialRepository
	enrollmentRepo repositories.EnrollmentRepository
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	officialRepo repositories.OfficialRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		officialRepo:   officialRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         loggerOrDefault(logger),
	}
}

func positiveOrDefault(field string, v *int, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	if *v < 1 {
		return 0, newValidationError(field, "must be at least 1")
	}
	return *v, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name, err := trimmedRequired("name", input.Name)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, newValidationError("date", "is required")
	}
	if input.OfficialID == uuid.Nil {
		return nil, newValidationError("official_id", "is required")
	}
	rounds, err := positiveOrDefault("rounds", input.Rounds, models.DefaultTournamentRounds)
	if err != nil {
		return nil, err
	}
	boards, err := positiveOrDefault("boards", input.Boards, models.DefaultTournamentBoards)
	if err != nil {
		return nil, err
	}

	official, err := s.officialRepo.GetByID(ctx, nil, input.OfficialID)
	if err != nil {
		if errors.Is(err, repositories.ErrOfficialNotFound) {
			return nil, ErrOfficialNotFound
		}
		return nil, fmt.Errorf("failed to check official %s: %w", input.OfficialID, err)
	}

	tournament := &models.Tournament{
		ID:         uuid.New(),
		Name:       name,
		Date:       input.Date.UTC(),
		Location:   strings.TrimSpace(input.Location),
		OfficialID: input.OfficialID,
		Rounds:     rounds,
		Boards:     boards,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentInvalidOfficial) {
			return nil, ErrOfficialNotFound
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	tournament.Official = official

	s.logger.InfoContext(ctx, "tournament created",
		slog.String("tournament_id", tournament.ID.String()),
		slog.Int("rounds", tournament.Rounds),
		slog.Int("boards", tournament.Boards),
	)
	return tournament, nil
}

func (s *tournamentService) getTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament by id %s: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	official, err := s.officialRepo.GetByID(ctx, nil, tournament.OfficialID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to populate official details",
			slog.String("tournament_id", id.String()),
			slog.String("official_id", tournament.OfficialID.String()),
			slog.Any("error", err),
		)
	} else {
		tournament.Official = official
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, officialID *uuid.UUID, limit, offset int) ([]*models.Tournament, error) {
	limit, offset = normalizePage(limit, offset)
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		OfficialID: officialID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := trimmedRequired("name", *input.Name)
		if err != nil {
			return nil, err
		}
		tournament.Name = name
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, newValidationError("date", "must not be empty")
		}
		tournament.Date = input.Date.UTC()
	}
	if input.Location != nil {
		tournament.Location = strings.TrimSpace(*input.Location)
	}
	if input.OfficialID != nil {
		tournament.OfficialID = *input.OfficialID
	}
	if input.Boards != nil {
		if tournament.Boards, err = positiveOrDefault("boards", input.Boards, tournament.Boards); err != nil {
			return nil, err
		}
	}
	if input.Rounds != nil {
		rounds, err := positiveOrDefault("rounds", input.Rounds, tournament.Rounds)
		if err != nil {
			return nil, err
		}
		if err := s.checkRoundsNotBelowOrganized(ctx, id, rounds); err != nil {
			return nil, err
		}
		tournament.Rounds = rounds
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentInvalidOfficial):
			return nil, ErrOfficialNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) checkRoundsNotBelowOrganized(ctx context.Context, id uuid.UUID, rounds int) error {
	organized, err := s.tournamentRepo.ListRounds(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list organized rounds: %w", err)
	}
	for _, r := range organized {
		if r.Round > rounds {
			return newValidationError("rounds", fmt.Sprintf("round %d is already organized", r.Round))
		}
	}
	return nil
}

func (s *tournamentService) Enroll(ctx context.Context, tournamentID uuid.UUID, input EnrollInput) (*models.Enrollment, error) {
	if input.PlayerID == uuid.Nil {
		return nil, newValidationError("player_id", "is required")
	}
	if input.TeamID == uuid.Nil {
		return nil, newValidationError("team_id", "is required")
	}

	enrollment := &models.Enrollment{
		ID:           uuid.New(),
		PlayerID:     input.PlayerID,
		TeamID:       input.TeamID,
		TournamentID: tournamentID,
	}
	err := s.enrollmentRepo.Create(ctx, enrollment)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrEnrollmentConflict):
		return nil, ErrEnrollmentConflict
	case errors.Is(err, repositories.ErrEnrollmentPlayerInvalid):
		return nil, ErrPlayerNotFound
	case errors.Is(err, repositories.ErrEnrollmentTeamInvalid):
		return nil, ErrTeamNotFound
	case errors.Is(err, repositories.ErrEnrollmentTournamentInvalid):
		return nil, ErrTournamentNotFound
	default:
		return nil, fmt.Errorf("failed to enroll player %s: %w", input.PlayerID, err)
	}

	s.logger.InfoContext(ctx, "player enrolled",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("player_id", input.PlayerID.String()),
	)
	return enrollment, nil
}

func (s *tournamentService) ListEnrollments(ctx context.Context, tournamentID uuid.UUID) ([]*models.Enrollment, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollmentRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *tournamentService) ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]*models.TournamentRound, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	rounds, err := s.tournamentRepo.ListRounds(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}
