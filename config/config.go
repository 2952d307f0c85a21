package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort = 8080
	defaultJWTTTL     = 24 * time.Hour
	defaultSMTPPort   = 587
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	JWTTTL       time.Duration
	ServerPort   int

	AuthUsername string
	AuthPassword string

	CORSAllowedOrigins []string
	PublicURL          string

	R2 R2Config

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// R2Config is empty when object storage is not configured.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// Load загружает конфигурацию из переменных окружения.
// Файлы envFiles (или .env, если список пуст) подгружаются, если существуют;
// уже заданные переменные окружения не перезаписываются.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range envFiles {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
			}
		}
	}

	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		DatabaseURL:  required("DATABASE_URL"),
		JWTSecretKey: required("JWT_SECRET_KEY"),
		AuthUsername: required("AUTH_USERNAME"),
		AuthPassword: required("AUTH_PASSWORD"),
		PublicURL:    strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}

	port, err := intFromEnv("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	cfg.JWTTTL = defaultJWTTTL
	if raw := os.Getenv("JWT_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL environment variable: %w", err)
		}
		if ttl <= 0 {
			return nil, errors.New("JWT_TTL must be positive")
		}
		cfg.JWTTTL = ttl
	}

	cfg.SMTPPort, err = intFromEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}

	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	}

	r2, err := loadR2()
	if err != nil {
		return nil, err
	}
	cfg.R2 = r2

	return cfg, nil
}

func loadR2() (R2Config, error) {
	r2 := R2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	values := []string{r2.AccountID, r2.AccessKeyID, r2.SecretAccessKey, r2.BucketName, r2.PublicBaseURL}
	set := 0
	for _, v := range values {
		if v != "" {
			set++
		}
	}
	switch set {
	case 0:
		return R2Config{}, nil
	case len(values):
		return r2, nil
	default:
		return R2Config{}, errors.New("R2 storage requires R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME and R2_PUBLIC_BASE_URL to be set together")
	}
}

func intFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
