package models

import (
	"time"

	"github.com/google/uuid"
)

type Official struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	Verified          bool      `json:"verified" db:"verified"`
	VerificationToken *string   `json:"-" db:"verification_token"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
