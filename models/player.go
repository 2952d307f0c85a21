package models

import (
	"time"

	"github.com/google/uuid"
)

// TallyField names one of the cumulative result counters on a player.
type TallyField string

const (
	TallyWins   TallyField = "wins"
	TallyLosses TallyField = "losses"
	TallyDraws  TallyField = "draws"
)

func (f TallyField) Valid() bool {
	switch f {
	case TallyWins, TallyLosses, TallyDraws:
		return true
	}
	return false
}

type Player struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Grade     string    `json:"grade" db:"grade"`
	Wins      int       `json:"wins" db:"wins"`
	Losses    int       `json:"losses" db:"losses"`
	Draws     int       `json:"draws" db:"draws"`
	TeamID    uuid.UUID `json:"team_id" db:"team_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
