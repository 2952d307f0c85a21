package services

import (
	"errors"
	"fmt"
)

// Общие категории ошибок, используемые в маппинге HTTP.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrValidationFailed     = errors.New("validation failed")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

var (
	ErrTeamNotFound       = fmt.Errorf("team %w", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrOfficialNotFound   = fmt.Errorf("official %w", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)
	ErrGameNotFound       = fmt.Errorf("game %w", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)

	ErrGameAlreadyResolved   = fmt.Errorf("%w: game already has a result", ErrConflict)
	ErrGameResolvedImmutable = fmt.Errorf("%w: resolved games cannot be changed", ErrConflict)
	ErrEnrollmentConflict    = fmt.Errorf("%w: player is already enrolled in this tournament", ErrConflict)
	ErrRoundAlreadyOrganized = fmt.Errorf("%w: round already organized", ErrConflict)
	ErrPlayerInUse           = fmt.Errorf("%w: player is referenced by games or enrollments", ErrConflict)
	ErrOfficialEmailConflict = fmt.Errorf("%w: email address is already in use", ErrConflict)
	ErrOfficialVerified      = fmt.Errorf("%w: official is already verified", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuthenticationFailed)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", ErrAuthenticationFailed)
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
