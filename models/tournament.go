package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTournamentRounds = 3
	DefaultTournamentBoards = 10
)

// Tournament представляет турнир.
type Tournament struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Date       time.Time `json:"date" db:"date"`
	Location   string    `json:"location" db:"location"`
	OfficialID uuid.UUID `json:"official_id" db:"official_id"`
	Rounds     int       `json:"rounds" db:"rounds"`
	Boards     int       `json:"boards" db:"boards"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Official *Official `json:"official,omitempty" db:"-"`
}

// TournamentRound marks a round whose pairings have been materialized.
type TournamentRound struct {
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Round        int       `json:"round" db:"round"`
	OrganizedAt  time.Time `json:"organized_at" db:"organized_at"`
}
