package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	JWT     JWTConfig
	Server  ServerConfig
	Storage StorageConfig
	GPT     GPTConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret        string
	ExpiryMinutes int
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

type StorageConfig struct {
	Root string
}

type GPTConfig struct {
	URL    string
	APIKey string
	Model  string
}

// Load builds the configuration from the environment. The result is
// constructed once in main and passed by reference to every component.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "projecthub"),
			Password: getEnv("DB_PASSWORD", "projecthub_secret"),
			Name:     getEnv("DB_NAME", "projecthub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-me-in-production"),
			ExpiryMinutes: getEnvAsInt("JWT_EXPIRY_MINUTES", 30),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3001,http://127.0.0.1:3001"),
		},
		Storage: StorageConfig{
			Root: getEnv("STORAGE_ROOT", "./project_storage"),
		},
		GPT: GPTConfig{
			URL:    getEnv("GPT_URL", ""),
			APIKey: getEnv("GPT_API_KEY", ""),
			Model:  getEnv("GPT_MODEL", "llama-3.3-70b-versatile"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
