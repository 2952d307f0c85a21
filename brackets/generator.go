package brackets

import (
	"errors"

	"github.com/Dosada05/chess-league/models"
	"github.com/google/uuid"
)

var (
	ErrInvalidBoardCount = errors.New("board count must be at least 1")
	ErrInvalidRound      = errors.New("round must be at least 1")
)

type GeneratePairingsParams struct {
	Ranked     []models.RankedStanding
	BoardCount int
	Round      int
}

type PairingGenerator interface {
	GeneratePairings(params GeneratePairingsParams) (*RoundPairings, error)

	GetName() string
}

// Pairing puts two players on one board; the higher seed takes white.
type Pairing struct {
	Round   int       `json:"round"`
	Board   int       `json:"board"`
	WhiteID uuid.UUID `json:"white_id"`
	BlackID uuid.UUID `json:"black_id"`
}

// Bye credits a win to a player left without an opponent. It occupies a board
// slot in the round but produces no game.
type Bye struct {
	Round    int       `json:"round"`
	Board    int       `json:"board"`
	PlayerID uuid.UUID `json:"player_id"`
}

type RoundPairings struct {
	Round    int         `json:"round"`
	Pairings []Pairing   `json:"pairings"`
	Bye      *Bye        `json:"bye,omitempty"`
	Unpaired []uuid.UUID `json:"unpaired"`
}
