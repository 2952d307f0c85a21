package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"github.com/google/uuid"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context, teamID *uuid.UUID, limit, offset int) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

type CreatePlayerInput struct {
	Name   string    `json:"name"`
	Grade  string    `json:"grade"`
	TeamID uuid.UUID `json:"team_id"`
}

// UpdatePlayerInput не содержит счетчиков: они меняются только результатами партий.
type UpdatePlayerInput struct {
	Name  *string `json:"name,omitempty"`
	Grade *string `json:"grade,omitempty"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name, err := trimmedRequired("name", input.Name)
	if err != nil {
		return nil, err
	}
	if input.TeamID == uuid.Nil {
		return nil, newValidationError("team_id", "is required")
	}

	player := &models.Player{
		ID:     uuid.New(),
		Name:   name,
		Grade:  strings.TrimSpace(input.Grade),
		TeamID: input.TeamID,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %s: %w", id, err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, teamID *uuid.UUID, limit, offset int) ([]*models.Player, error) {
	limit, offset = normalizePage(limit, offset)
	players, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{TeamID: teamID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id uuid.UUID, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := trimmedRequired("name", *input.Name)
		if err != nil {
			return nil, err
		}
		player.Name = name
	}
	if input.Grade != nil {
		player.Grade = strings.TrimSpace(*input.Grade)
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %s: %w", id, err)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	err := s.playerRepo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerInUse):
		return ErrPlayerInUse
	default:
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
}
