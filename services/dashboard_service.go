package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	officialRepo   repositories.OfficialRepository
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
}

func NewDashboardService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	officialRepo repositories.OfficialRepository,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
) DashboardService {
	return &dashboardService{
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		officialRepo:   officialRepo,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, gctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}

	count("teams", &stats.TeamsTotal, s.teamRepo.Count)
	count("players", &stats.PlayersTotal, s.playerRepo.Count)
	count("officials", &stats.OfficialsTotal, s.officialRepo.Count)
	count("tournaments", &stats.TournamentsTotal, s.tournamentRepo.Count)
	count("games", &stats.GamesTotal, func(ctx context.Context) (int, error) {
		return s.gameRepo.Count(ctx, false)
	})
	count("unresolved games", &stats.GamesUnresolved, func(ctx context.Context) (int, error) {
		return s.gameRepo.Count(ctx, true)
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
