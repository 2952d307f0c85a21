package models

import "github.com/google/uuid"

// TournamentStanding is derived from the games of one tournament and never stored.
type TournamentStanding struct {
	PlayerID     uuid.UUID `json:"player_id"`
	TournamentID uuid.UUID `json:"tournament_id"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Draws        int       `json:"draws"`
}

func (s TournamentStanding) GamesPlayed() int {
	return s.Wins + s.Losses + s.Draws
}

// SeedScore counts a win as one point and a draw as half; losses do not subtract.
func (s TournamentStanding) SeedScore() float64 {
	return float64(s.Wins) + 0.5*float64(s.Draws)
}

// NetScore is points for minus points against.
func (s TournamentStanding) NetScore() float64 {
	return (float64(s.Wins) + 0.5*float64(s.Draws)) - (float64(s.Losses) + 0.5*float64(s.Draws))
}

// RankedStanding is a standing placed in an ordering.
type RankedStanding struct {
	TournamentStanding
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}
