package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the application.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	TokenTTL     time.Duration
	ServerPort   int

	// Fixed round configuration of the race format.
	LoopTempoLimite int     // seconds
	LoopDistanciaKM float64

	// Background time-limit monitor.
	MonitorInterval     time.Duration
	MonitorErrorBackoff time.Duration

	// S3-compatible image storage (MinIO, Cloudflare R2). Optional: when the
	// endpoint is empty the application runs without image uploads.
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3PublicBaseURL   string
}

// Load reads configuration from environment variables. A .env file is loaded
// first when present, which keeps local development simple.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	tokenTTL, err := durationEnv("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	tempoLimite, err := intEnv("LOOP_TEMPO_LIMITE", 3600)
	if err != nil {
		return nil, err
	}
	if tempoLimite <= 0 {
		return nil, fmt.Errorf("LOOP_TEMPO_LIMITE must be positive, got %d", tempoLimite)
	}

	distancia, err := floatEnv("LOOP_DISTANCIA_KM", 6.7)
	if err != nil {
		return nil, err
	}
	if distancia <= 0 {
		return nil, fmt.Errorf("LOOP_DISTANCIA_KM must be positive, got %f", distancia)
	}

	monitorInterval, err := durationEnv("MONITOR_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	monitorBackoff, err := durationEnv("MONITOR_ERROR_BACKOFF", 60*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:         dbURL,
		JWTSecretKey:        jwtKey,
		TokenTTL:            tokenTTL,
		ServerPort:          port,
		LoopTempoLimite:     tempoLimite,
		LoopDistanciaKM:     distancia,
		MonitorInterval:     monitorInterval,
		MonitorErrorBackoff: monitorBackoff,
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		S3Region:            os.Getenv("S3_REGION"),
		S3AccessKeyID:       os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3BucketName:        os.Getenv("S3_BUCKET_NAME"),
		S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
