package brackets

import (
	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
)

// CalculateStanding reduces the games of one tournament to a win/loss/draw
// tally for playerID. Unresolved games and games the player did not take part
// in are skipped. The result field stores the winner's id, so any other
// non-draw result is a loss.
func CalculateStanding(playerID, tournamentID uuid.UUID, games []*models.Game) models.TournamentStanding {
	standing := models.TournamentStanding{
		PlayerID:     playerID,
		TournamentID: tournamentID,
	}

	for _, g := range games {
		if g == nil || g.TournamentID != tournamentID || !g.Involves(playerID) {
			continue
		}
		if g.Result == nil {
			continue
		}
		switch *g.Result {
		case models.ResultDraw:
			standing.Draws++
		case playerID.String():
			standing.Wins++
		default:
			standing.Losses++
		}
	}

	return standing
}

// CalculateStandings computes standings for every player in order, scanning
// the shared game list once per player.
func CalculateStandings(playerIDs []uuid.UUID, tournamentID uuid.UUID, games []*models.Game) []models.TournamentStanding {
	standings := make([]models.TournamentStanding, 0, len(playerIDs))
	for _, id := range playerIDs {
		standings = append(standings, CalculateStanding(id, tournamentID, games))
	}
	return standings
}
