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

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context, limit, offset int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, input UpdateTeamInput) (*models.Team, error)
	ListTeamPlayers(ctx context.Context, id uuid.UUID) ([]*models.Player, error)
}

type CreateTeamInput struct {
	Name    string `json:"name"`
	Sponsor string `json:"sponsor"`
}

type UpdateTeamInput struct {
	Name    *string `json:"name,omitempty"`
	Sponsor *string `json:"sponsor,omitempty"`
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
}

func NewTeamService(teamRepo repositories.TeamRepository, playerRepo repositories.PlayerRepository) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name, err := trimmedRequired("name", input.Name)
	if err != nil {
		return nil, err
	}

	team := &models.Team{
		ID:      uuid.New(),
		Name:    name,
		Sponsor: strings.TrimSpace(input.Sponsor),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id %s: %w", id, err)
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, limit, offset int) ([]*models.Team, error) {
	limit, offset = normalizePage(limit, offset)
	teams, err := s.teamRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id uuid.UUID, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetTeamByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := trimmedRequired("name", *input.Name)
		if err != nil {
			return nil, err
		}
		team.Name = name
	}
	if input.Sponsor != nil {
		team.Sponsor = strings.TrimSpace(*input.Sponsor)
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %s: %w", id, err)
	}
	return team, nil
}

func (s *teamService) ListTeamPlayers(ctx context.Context, id uuid.UUID) ([]*models.Player, error) {
	if _, err := s.GetTeamByID(ctx, id); err != nil {
		return nil, err
	}
	players, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{TeamID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %s: %w", id, err)
	}
	return players, nil
}
