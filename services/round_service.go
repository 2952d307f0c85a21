package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/chess-league/brackets"
	"github.com/Dosada05/chess-league/metrics"
	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	standingsConcurrency = 8
	pairingSheetTimeout  = 10 * time.Second
)

// PairingSheetPublisher stores a round's pairing sheet and returns its URL.
type PairingSheetPublisher interface {
	Publish(ctx context.Context, tournamentID uuid.UUID, round int, sheet interface{}) (string, error)
}

type RoundService interface {
	ComputeStandings(ctx context.Context, playerID, tournamentID uuid.UUID) (models.TournamentStanding, error)
	Standings(ctx context.Context, tournamentID uuid.UUID, mode brackets.RankingMode) ([]models.RankedStanding, error)
	PreviewRound(ctx context.Context, tournamentID uuid.UUID, round int) (*RoundPreview, error)
	OrganizeRound(ctx context.Context, tournamentID uuid.UUID, round int) (*RoundResult, error)
}

// RoundPreview is the pairing a round would get if it were organized now.
type RoundPreview struct {
	TournamentID uuid.UUID               `json:"tournament_id"`
	Round        int                     `json:"round"`
	Seeding      []models.RankedStanding `json:"seeding"`
	Pairings     *brackets.RoundPairings `json:"pairings"`
}

type RoundResult struct {
	TournamentID    uuid.UUID               `json:"tournament_id"`
	Round           int                     `json:"round"`
	Games           []*models.Game          `json:"games"`
	Byes            []brackets.Bye          `json:"byes"`
	Unpaired        []uuid.UUID             `json:"unpaired"`
	Seeding         []models.RankedStanding `json:"seeding"`
	PairingSheetURL string                  `json:"pairing_sheet_url,omitempty"`
}

type roundService struct {
	db             TxRunner
	tournamentRepo repositories.TournamentRepository
	enrollmentRepo repositories.EnrollmentRepository
	gameRepo       repositories.GameRepository
	playerRepo     repositories.PlayerRepository
	generator      brackets.PairingGenerator
	events         EventBroadcaster
	sheets         PairingSheetPublisher
	metrics        metrics.Recorder
	logger         *slog.Logger
}

// NewRoundService wires the pairing pipeline. events, sheets and recorder are
// optional.
func NewRoundService(
	db TxRunner,
	tournamentRepo repositories.TournamentRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	events EventBroadcaster,
	sheets PairingSheetPublisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) RoundService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &roundService{
		db:             db,
		tournamentRepo: tournamentRepo,
		enrollmentRepo: enrollmentRepo,
		gameRepo:       gameRepo,
		playerRepo:     playerRepo,
		generator:      brackets.NewTopDownGenerator(),
		events:         broadcasterOrNoop(events),
		sheets:         sheets,
		metrics:        recorder,
		logger:         loggerOrDefault(logger),
	}
}

func (s *roundService) getTournament(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, lock bool) (*models.Tournament, error) {
	get := s.tournamentRepo.GetByID
	if lock {
		get = s.tournamentRepo.GetByIDForUpdate
	}
	tournament, err := get(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *roundService) ComputeStandings(ctx context.Context, playerID, tournamentID uuid.UUID) (models.TournamentStanding, error) {
	if _, err := s.getTournament(ctx, nil, tournamentID, false); err != nil {
		return models.TournamentStanding{}, err
	}
	return s.computeStanding(ctx, playerID, tournamentID)
}

func (s *roundService) computeStanding(ctx context.Context, playerID, tournamentID uuid.UUID) (models.TournamentStanding, error) {
	games, err := s.gameRepo.ListByPlayerAndTournament(ctx, nil, playerID, tournamentID)
	if err != nil {
		return models.TournamentStanding{}, fmt.Errorf("failed to load games for standing: %w", err)
	}
	return brackets.CalculateStanding(playerID, tournamentID, games), nil
}

func enrolledPlayerIDs(enrollments []*models.Enrollment) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(enrollments))
	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		if _, ok := seen[e.PlayerID]; ok {
			continue
		}
		seen[e.PlayerID] = struct{}{}
		ids = append(ids, e.PlayerID)
	}
	return ids
}

func (s *roundService) Standings(ctx context.Context, tournamentID uuid.UUID, mode brackets.RankingMode) ([]models.RankedStanding, error) {
	if !mode.Valid() {
		return nil, newValidationError("mode", `must be "seeding" or "leaderboard"`)
	}
	if _, err := s.getTournament(ctx, nil, tournamentID, false); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	playerIDs := enrolledPlayerIDs(enrollments)

	// Каждый игрок пишет только в свой слот, порядок записи сохраняется.
	standings := make([]models.TournamentStanding, len(playerIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(standingsConcurrency)
	for i, playerID := range playerIDs {
		g.Go(func() error {
			standing, err := s.computeStanding(gctx, playerID, tournamentID)
			if err != nil {
				return err
			}
			standings[i] = standing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return brackets.Rank(standings, mode), nil
}

// seedRound runs standings, seeding and pairing for one round on exec.
func (s *roundService) seedRound(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, round int) ([]models.RankedStanding, *brackets.RoundPairings, error) {
	enrollments, err := s.enrollmentRepo.ListByTournament(ctx, exec, tournament.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	games, err := s.gameRepo.ListByTournament(ctx, exec, tournament.ID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list games: %w", err)
	}

	standings := brackets.CalculateStandings(enrolledPlayerIDs(enrollments), tournament.ID, games)
	seeding := brackets.RankForSeeding(standings)

	pairings, err := s.generator.GeneratePairings(brackets.GeneratePairingsParams{
		Ranked:     seeding,
		BoardCount: tournament.Boards,
		Round:      round,
	})
	if err != nil {
		switch {
		case errors.Is(err, brackets.ErrInvalidBoardCount):
			return nil, nil, newValidationError("boards", err.Error())
		case errors.Is(err, brackets.ErrInvalidRound):
			return nil, nil, newValidationError("round", err.Error())
		}
		return nil, nil, fmt.Errorf("%s generator failed: %w", s.generator.GetName(), err)
	}
	return seeding, pairings, nil
}

func validateRound(tournament *models.Tournament, round int) error {
	if round < 1 || round > tournament.Rounds {
		return newValidationError("round", fmt.Sprintf("must be between 1 and %d", tournament.Rounds))
	}
	return nil
}

func (s *roundService) PreviewRound(ctx context.Context, tournamentID uuid.UUID, round int) (*RoundPreview, error) {
	tournament, err := s.getTournament(ctx, nil, tournamentID, false)
	if err != nil {
		return nil, err
	}
	if err := validateRound(tournament, round); err != nil {
		return nil, err
	}
	seeding, pairings, err := s.seedRound(ctx, nil, tournament, round)
	if err != nil {
		return nil, err
	}
	return &RoundPreview{
		TournamentID: tournamentID,
		Round:        round,
		Seeding:      seeding,
		Pairings:     pairings,
	}, nil
}

func (s *roundService) OrganizeRound(ctx context.Context, tournamentID uuid.UUID, round int) (*RoundResult, error) {
	result := &RoundResult{
		TournamentID: tournamentID,
		Round:        round,
		Games:        make([]*models.Game, 0),
		Byes:         make([]brackets.Bye, 0),
		Unpaired:     make([]uuid.UUID, 0),
	}

	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		tournament, err := s.getTournament(ctx, tx, tournamentID, true)
		if err != nil {
			return err
		}
		if err := validateRound(tournament, round); err != nil {
			return err
		}
		if _, err := s.tournamentRepo.CreateRound(ctx, tx, tournamentID, round); err != nil {
			if errors.Is(err, repositories.ErrRoundAlreadyOrganized) {
				return ErrRoundAlreadyOrganized
			}
			return err
		}

		seeding, pairings, err := s.seedRound(ctx, tx, tournament, round)
		if err != nil {
			return err
		}
		result.Seeding = seeding
		result.Unpaired = append(result.Unpaired, pairings.Unpaired...)

		for _, p := range pairings.Pairings {
			game := &models.Game{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Round:        p.Round,
				Board:        p.Board,
				WhiteID:      p.WhiteID,
				BlackID:      p.BlackID,
			}
			if err := s.gameRepo.Create(ctx, tx, game); err != nil {
				return fmt.Errorf("failed to create game on board %d: %w", p.Board, mapGameWriteError(err))
			}
			result.Games = append(result.Games, game)
		}

		if pairings.Bye != nil {
			if err := s.playerRepo.IncrementTally(ctx, tx, pairings.Bye.PlayerID, models.TallyWins); err != nil {
				return fmt.Errorf("failed to credit bye to player %s: %w", pairings.Bye.PlayerID, err)
			}
			result.Byes = append(result.Byes, *pairings.Bye)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterOrganize(ctx, result)
	return result, nil
}

// afterOrganize runs once the round is committed. Failures are logged only.
func (s *roundService) afterOrganize(ctx context.Context, result *RoundResult) {
	logAttrs := []any{
		slog.String("tournament_id", result.TournamentID.String()),
		slog.Int("round", result.Round),
		slog.Int("games", len(result.Games)),
		slog.Int("byes", len(result.Byes)),
	}
	if len(result.Unpaired) > 0 {
		s.logger.WarnContext(ctx, "not enough boards for every enrolled player",
			append(logAttrs, slog.Int("unpaired", len(result.Unpaired)))...)
	}

	s.metrics.RoundOrganized(len(result.Games), len(result.Byes), len(result.Unpaired))

	if s.sheets != nil {
		sheetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pairingSheetTimeout)
		defer cancel()
		url, err := s.sheets.Publish(sheetCtx, result.TournamentID, result.Round, result)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish pairing sheet", append(logAttrs, slog.Any("error", err))...)
		} else {
			result.PairingSheetURL = url
		}
	}

	// Subscribers get the sheet URL when the upload succeeded.
	s.events.Publish(result.TournamentID, brackets.EventRoundOrganized, result)

	s.logger.InfoContext(ctx, "round organized", logAttrs...)
}
