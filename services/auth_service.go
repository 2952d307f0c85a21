package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/chess-league/utils"
	"github.com/golang-jwt/jwt/v4"
)

const tokenIssuer = "chess-league"

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) error
	IssueToken(ctx context.Context, username, password string) (*TokenResponse, error)
	ParseToken(tokenString string) (*Claims, error)
}

type AuthConfig struct {
	Username  string
	Password  string
	JWTSecret string
	TokenTTL  time.Duration
}

type Claims struct {
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type authService struct {
	username     string
	passwordHash string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthService keeps only a bcrypt hash of the configured password.
func NewAuthService(cfg AuthConfig) (AuthService, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("auth username and password are required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return &authService{
		username:     cfg.Username,
		passwordHash: hash,
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TokenTTL,
		now:          time.Now,
	}, nil
}

func (s *authService) Authenticate(_ context.Context, username, password string) error {
	// Хеш проверяется всегда, чтобы время ответа не зависело от логина.
	passwordOK := utils.CheckPasswordHash(password, s.passwordHash)
	if !utils.ConstantTimeEqual(username, s.username) || !passwordOK {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *authService) IssueToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	if err := s.Authenticate(ctx, username, password); err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
	}, nil
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != tokenIssuer || claims.Subject != s.username {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
