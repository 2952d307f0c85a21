package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/chess-league/models"
	"github.com/Dosada05/chess-league/repositories"
	"github.com/Dosada05/chess-league/utils"
	"github.com/google/uuid"
)

const verificationTokenLength = 16

type OfficialService interface {
	CreateOfficial(ctx context.Context, input CreateOfficialInput) (*models.Official, error)
	GetOfficialByID(ctx context.Context, id uuid.UUID) (*models.Official, error)
	ListOfficials(ctx context.Context, limit, offset int) ([]*models.Official, error)
	UpdateOfficial(ctx context.Context, id uuid.UUID, input UpdateOfficialInput) (*models.Official, error)
	VerifyOfficial(ctx context.Context, token string) (*models.Official, error)
}

type CreateOfficialInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpdateOfficialInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type officialService struct {
	officialRepo repositories.OfficialRepository
	mailer       VerificationMailer
	logger       *slog.Logger
}

// NewOfficialService builds the service. mailer may be nil, in which case
// verification tokens are issued but not delivered.
func NewOfficialService(officialRepo repositories.OfficialRepository, mailer VerificationMailer, logger *slog.Logger) OfficialService {
	return &officialService{
		officialRepo: officialRepo,
		mailer:       mailer,
		logger:       loggerOrDefault(logger),
	}
}

func validateOfficialEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", newValidationError("email", "is required")
	}
	if !utils.IsValidEmail(email) {
		return "", newValidationError("email", "is not a valid email address")
	}
	return email, nil
}

func (s *officialService) CreateOfficial(ctx context.Context, input CreateOfficialInput) (*models.Official, error) {
	name, err := trimmedRequired("name", input.Name)
	if err != nil {
		return nil, err
	}
	email, err := validateOfficialEmail(input.Email)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateSecureToken(verificationTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	official := &models.Official{
		ID:                uuid.New(),
		Name:              name,
		Email:             email,
		VerificationToken: &token,
	}
	if err := s.officialRepo.Create(ctx, official); err != nil {
		if errors.Is(err, repositories.ErrOfficialEmailTaken) {
			return nil, ErrOfficialEmailConflict
		}
		return nil, fmt.Errorf("failed to create official: %w", err)
	}

	s.sendVerification(ctx, official)
	return official, nil
}

// sendVerification is best-effort: the official row is already stored.
func (s *officialService) sendVerification(ctx context.Context, official *models.Official) {
	if s.mailer == nil {
		s.logger.WarnContext(ctx, "smtp is not configured, verification email skipped", slog.String("official_id", official.ID.String()))
		return
	}
	if err := s.mailer.SendOfficialVerificationEmail(official.Email, official.Name, derefString(official.VerificationToken)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.String("official_id", official.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *officialService) GetOfficialByID(ctx context.Context, id uuid.UUID) (*models.Official, error) {
	official, err := s.officialRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOfficialNotFound) {
			return nil, ErrOfficialNotFound
		}
		return nil, fmt.Errorf("failed to get official by id %s: %w", id, err)
	}
	return official, nil
}

func (s *officialService) ListOfficials(ctx context.Context, limit, offset int) ([]*models.Official, error) {
	limit, offset = normalizePage(limit, offset)
	officials, err := s.officialRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list officials: %w", err)
	}
	return officials, nil
}

func (s *officialService) UpdateOfficial(ctx context.Context, id uuid.UUID, input UpdateOfficialInput) (*models.Official, error) {
	official, err := s.GetOfficialByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := trimmedRequired("name", *input.Name)
		if err != nil {
			return nil, err
		}
		official.Name = name
	}

	emailChanged := false
	if input.Email != nil {
		email, err := validateOfficialEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != official.Email {
			// Новый адрес требует повторного подтверждения.
			token, err := utils.GenerateSecureToken(verificationTokenLength)
			if err != nil {
				return nil, fmt.Errorf("failed to generate verification token: %w", err)
			}
			official.Email = email
			official.Verified = false
			official.VerificationToken = &token
			emailChanged = true
		}
	}

	if err := s.officialRepo.Update(ctx, official); err != nil {
		switch {
		case errors.Is(err, repositories.ErrOfficialNotFound):
			return nil, ErrOfficialNotFound
		case errors.Is(err, repositories.ErrOfficialEmailTaken):
			return nil, ErrOfficialEmailConflict
		}
		return nil, fmt.Errorf("failed to update official %s: %w", id, err)
	}

	if emailChanged {
		s.sendVerification(ctx, official)
	}
	return official, nil
}

func (s *officialService) VerifyOfficial(ctx context.Context, token string) (*models.Official, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, newValidationError("token", "is required")
	}

	official, err := s.officialRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrOfficialNotFound) {
			return nil, newValidationError("token", "is invalid or already used")
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if official.Verified {
		return nil, ErrOfficialVerified
	}

	if err := s.officialRepo.MarkVerified(ctx, official.ID); err != nil {
		if errors.Is(err, repositories.ErrOfficialNotFound) {
			return nil, ErrOfficialNotFound
		}
		return nil, fmt.Errorf("failed to verify official %s: %w", official.ID, err)
	}

	official.Verified = true
	official.VerificationToken = nil
	s.logger.InfoContext(ctx, "official verified", slog.String("official_id", official.ID.String()))
	return official, nil
}
