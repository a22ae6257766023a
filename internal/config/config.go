package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DevJWTSecret is only used when JWT_SECRET_KEY is unset.
const DevJWTSecret = "Clave secreta para examen"

// DefaultCORSOrigin is the frontend allowed to call both resource groups.
const DefaultCORSOrigin = "https://main.d2vpy1q92z41yt.amplifyapp.com"

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
	LogLevel string
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Port int
}

// DatabaseConfig contains the relational store location.
type DatabaseConfig struct {
	URL string // SQLite path, or a postgres:// URL
}

// AuthConfig contains token signing settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	UsingDevSK bool
}

// CORSConfig holds the single allowed origin of each resource group.
type CORSConfig struct {
	UsuariosOrigin  string
	ProductosOrigin string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("JWT_EXPIRES", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid duration for JWT_EXPIRES: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES must be positive")
	}

	secret := getEnv("JWT_SECRET_KEY", "")
	devSecret := secret == ""
	if devSecret {
		secret = DevJWTSecret
	}

	origin := getEnv("CORS_ORIGIN", DefaultCORSOrigin)

	return &Config{
		Server: ServerConfig{Port: port},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "./tienda.db"),
		},
		Auth: AuthConfig{
			JWTSecret:  secret,
			TokenTTL:   ttl,
			UsingDevSK: devSecret,
		},
		CORS: CORSConfig{
			UsuariosOrigin:  getEnv("USUARIOS_CORS_ORIGIN", origin),
			ProductosOrigin: getEnv("PRODUCTOS_CORS_ORIGIN", origin),
		},
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}, nil
}

// String returns a string representation of the config with the secret masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Database: %s, Auth: *** (masked) ***, CORS: %s | %s}",
		c.Server.Port, c.Database.URL, c.CORS.UsuariosOrigin, c.CORS.ProductosOrigin)
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}
