package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/chess-league/brackets"
	"github.com/Dosada05/chess-league/metrics"
	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"github.com/google/uuid"
)

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	GetGameByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	ListGames(ctx context.Context, filter GameFilter) ([]*models.Game, error)
	ListTournamentGames(ctx context.Context, tournamentID uuid.UUID, round *int) ([]*models.Game, error)
	UpdateGame(ctx context.Context, id uuid.UUID, input UpdateGameInput) (*models.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ResolveGame(ctx context.Context, id uuid.UUID, input ResolveGameInput) (*models.Game, error)
}

type CreateGameInput struct {
	TournamentID uuid.UUID  `json:"tournament_id"`
	Round        int        `json:"round"`
	Board        int        `json:"board"`
	WhiteID      uuid.UUID  `json:"white_id"`
	BlackID      uuid.UUID  `json:"black_id"`
	OfficialID   *uuid.UUID `json:"official_id,omitempty"`
}

// UpdateGameInput has no result field; results are only set by ResolveGame.
type UpdateGameInput struct {
	Round      *int       `json:"round,omitempty"`
	Board      *int       `json:"board,omitempty"`
	WhiteID    *uuid.UUID `json:"white_id,omitempty"`
	BlackID    *uuid.UUID `json:"black_id,omitempty"`
	OfficialID *uuid.UUID `json:"official_id,omitempty"`
}

// ResolveGameInput.Result is the winner's player id or "draw".
type ResolveGameInput struct {
	Result     string    `json:"result"`
	OfficialID uuid.UUID `json:"official_id"`
}

type GameFilter struct {
	TournamentID *uuid.UUID
	Round        *int
	Limit        int
	Offset       int
}

type gameService struct {
	db             TxRunner
	gameRepo       repositories.GameRepository
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	officialRepo   repositories.OfficialRepository
	events         EventBroadcaster
	metrics        metrics.Recorder
	logger         *slog.Logger
}

func NewGameService(
	db TxRunner,
	gameRepo repositories.GameRepository,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	officialRepo repositories.OfficialRepository,
	events EventBroadcaster,
	recorder metrics.Recorder,
	logger *slog.Logger,
) GameService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &gameService{
		db:             db,
		gameRepo:       gameRepo,
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		officialRepo:   officialRepo,
		events:         broadcasterOrNoop(events),
		metrics:        recorder,
		logger:         loggerOrDefault(logger),
	}
}

func validateGameShape(round, board int, whiteID, blackID uuid.UUID) error {
	if round < 1 {
		return newValidationError("round", "must be at least 1")
	}
	if board < 0 {
		return newValidationError("board", "must not be negative")
	}
	if whiteID == uuid.Nil {
		return newValidationError("white_id", "is required")
	}
	if blackID == uuid.Nil {
		return newValidationError("black_id", "is required")
	}
	if whiteID == blackID {
		return newValidationError("black_id", "must differ from white_id")
	}
	return nil
}

// checkGameReferences makes sure every id on the game points at an existing row.
func (s *gameService) checkGameReferences(ctx context.Context, exec repositories.SQLExecutor, g *models.Game) error {
	if _, err := s.tournamentRepo.GetByID(ctx, exec, g.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to check tournament %s: %w", g.TournamentID, err)
	}
	for _, playerID := range []uuid.UUID{g.WhiteID, g.BlackID} {
		if _, err := s.playerRepo.GetByID(ctx, exec, playerID); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
			}
			return fmt.Errorf("failed to check player %s: %w", playerID, err)
		}
	}
	if g.OfficialID != nil {
		if _, err := s.officialRepo.GetByID(ctx, exec, *g.OfficialID); err != nil {
			if errors.Is(err, repositories.ErrOfficialNotFound) {
				return ErrOfficialNotFound
			}
			return fmt.Errorf("failed to check official %s: %w", *g.OfficialID, err)
		}
	}
	return nil
}

func mapGameWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrGameTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrGamePlayerInvalid):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrGameOfficialInvalid):
		return ErrOfficialNotFound
	case errors.Is(err, repositories.ErrGameSamePlayers):
		return newValidationError("black_id", "must differ from white_id")
	}
	return err
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if input.TournamentID == uuid.Nil {
		return nil, newValidationError("tournament_id", "is required")
	}
	if err := validateGameShape(input.Round, input.Board, input.WhiteID, input.BlackID); err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:           uuid.New(),
		TournamentID: input.TournamentID,
		Round:        input.Round,
		Board:        input.Board,
		WhiteID:      input.WhiteID,
		BlackID:      input.BlackID,
		OfficialID:   input.OfficialID,
	}
	if err := s.checkGameReferences(ctx, nil, game); err != nil {
		return nil, err
	}
	if err := s.gameRepo.Create(ctx, nil, game); err != nil {
		if mapped := mapGameWriteError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	s.events.Publish(game.TournamentID, brackets.EventGameCreated, game)
	return game, nil
}

func (s *gameService) GetGameByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game by id %s: %w", id, err)
	}
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context, filter GameFilter) ([]*models.Game, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	games, err := s.gameRepo.List(ctx, repositories.ListGamesFilter{
		TournamentID: filter.TournamentID,
		Round:        filter.Round,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *gameService) ListTournamentGames(ctx context.Context, tournamentID uuid.UUID, round *int) ([]*models.Game, error) {
	if round != nil && *round < 1 {
		return nil, newValidationError("round", "must be at least 1")
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", tournamentID, err)
	}
	games, err := s.gameRepo.ListByTournament(ctx, nil, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournament games: %w", err)
	}
	return games, nil
}

// lockUnresolved loads and locks a game that must not have a result yet.
func (s *gameService) lockUnresolved(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*models.Game, error) {
	game, err := s.gameRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if game.IsResolved() {
		return nil, ErrGameResolvedImmutable
	}
	return game, nil
}

func (s *gameService) UpdateGame(ctx context.Context, id uuid.UUID, input UpdateGameInput) (*models.Game, error) {
	var updated *models.Game
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		game, err := s.lockUnresolved(ctx, tx, id)
		if err != nil {
			return err
		}

		if input.Round != nil {
			game.Round = *input.Round
		}
		if input.Board != nil {
			game.Board = *input.Board
		}
		if input.WhiteID != nil {
			game.WhiteID = *input.WhiteID
		}
		if input.BlackID != nil {
			game.BlackID = *input.BlackID
		}
		if input.OfficialID != nil {
			game.OfficialID = input.OfficialID
		}
		if err := validateGameShape(game.Round, game.Board, game.WhiteID, game.BlackID); err != nil {
			return err
		}
		if err := s.checkGameReferences(ctx, tx, game); err != nil {
			return err
		}
		if err := s.gameRepo.Update(ctx, tx, game); err != nil {
			return mapGameWriteError(err)
		}
		updated = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gameService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if _, err := s.lockUnresolved(ctx, tx, id); err != nil {
			return err
		}
		if err := s.gameRepo.Delete(ctx, tx, id); err != nil {
			return mapGameWriteError(err)
		}
		return nil
	})
}

// parseResult checks the submitted result against the game's players and
// returns the outcome label.
func parseResult(game *models.Game, raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", newValidationError("result", "is required")
	}
	if strings.EqualFold(raw, models.ResultDraw) {
		return models.ResultDraw, metrics.OutcomeDraw, nil
	}
	winner, err := uuid.Parse(raw)
	if err != nil {
		return "", "", newValidationError("result", `must be a player id or "draw"`)
	}
	switch winner {
	case game.WhiteID:
		return winner.String(), metrics.OutcomeWhite, nil
	case game.BlackID:
		return winner.String(), metrics.OutcomeBlack, nil
	}
	return "", "", newValidationError("result", "winner must be the white or black player of this game")
}

func (s *gameService) ResolveGame(ctx context.Context, id uuid.UUID, input ResolveGameInput) (*models.Game, error) {
	var (
		resolved *models.Game
		outcome  string
	)
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		game, err := s.gameRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if game.IsResolved() {
			return ErrGameAlreadyResolved
		}

		result, label, err := parseResult(game, input.Result)
		if err != nil {
			return err
		}
		if input.OfficialID == uuid.Nil {
			return newValidationError("official_id", "is required")
		}
		if _, err := s.officialRepo.GetByID(ctx, tx, input.OfficialID); err != nil {
			if errors.Is(err, repositories.ErrOfficialNotFound) {
				return ErrOfficialNotFound
			}
			return err
		}

		if err := s.gameRepo.SetResult(ctx, tx, game.ID, result, input.OfficialID); err != nil {
			if errors.Is(err, repositories.ErrGameAlreadyResolved) {
				return ErrGameAlreadyResolved
			}
			return mapGameWriteError(err)
		}
		if err := s.creditResult(ctx, tx, game, result); err != nil {
			return err
		}

		officialID := input.OfficialID
		game.Result = &result
		game.OfficialID = &officialID
		resolved = game
		outcome = label
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.GameResolved(outcome)
	s.events.Publish(resolved.TournamentID, brackets.EventGameResolved, resolved)
	s.logger.InfoContext(ctx, "game resolved",
		slog.String("game_id", resolved.ID.String()),
		slog.String("tournament_id", resolved.TournamentID.String()),
		slog.String("outcome", outcome),
	)
	return resolved, nil
}

func (s *gameService) creditResult(ctx context.Context, tx *sql.Tx, game *models.Game, result string) error {
	type credit struct {
		playerID uuid.UUID
		field    models.TallyField
	}

	var credits []credit
	if result == models.ResultDraw {
		credits = []credit{{game.WhiteID, models.TallyDraws}, {game.BlackID, models.TallyDraws}}
	} else {
		winner, loser := game.WhiteID, game.BlackID
		if result == game.BlackID.String() {
			winner, loser = loser, winner
		}
		credits = []credit{{winner, models.TallyWins}, {loser, models.TallyLosses}}
	}

	for _, c := range credits {
		if err := s.playerRepo.IncrementTally(ctx, tx, c.playerID, c.field); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, c.playerID)
			}
			return fmt.Errorf("failed to credit %s to player %s: %w", c.field, c.playerID, err)
		}
	}
	return nil
}
