package models

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PlayerID     uuid.UUID `json:"player_id" db:"player_id"`
	TeamID       uuid.UUID `json:"team_id" db:"team_id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
