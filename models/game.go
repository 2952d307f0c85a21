package models

import (
	"time"

	"github.com/google/uuid"
)

// ResultDraw is the literal stored in games.result for a drawn game.
const ResultDraw = "draw"

// Game is a single board in a tournament round. Result is NULL until the game
// is resolved, then holds the winner's player id or ResultDraw.
type Game struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TournamentID uuid.UUID  `json:"tournament_id" db:"tournament_id"`
	Round        int        `json:"round" db:"round"`
	Board        int        `json:"board" db:"board"`
	WhiteID      uuid.UUID  `json:"white_id" db:"white_id"`
	BlackID      uuid.UUID  `json:"black_id" db:"black_id"`
	OfficialID   *uuid.UUID `json:"official_id" db:"official_id"`
	Result       *string    `json:"result" db:"result"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

func (g *Game) IsResolved() bool {
	return g.Result != nil
}

func (g *Game) Involves(playerID uuid.UUID) bool {
	return g.WhiteID == playerID || g.BlackID == playerID
}
