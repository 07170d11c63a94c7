package config

import (
	"os"
	"strconv"
)

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// MQConfig holds RabbitMQ settings.
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// EmailConfig holds the transactional email provider settings.
// Sending is fire-and-forget; a missing key disables sending entirely.
type EmailConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

// CalendarConfig holds the ICS feed settings. The feed is fetched by
// calendar apps that cannot send auth headers, so access is gated by a
// shared key in the query string.
type CalendarConfig struct {
	FeedKey string `yaml:"feed_key"`
}

// OverrideDBFromEnv applies DB_* environment variables.
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv applies the MQ_URL environment variable.
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv applies REDIS_* environment variables.
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv applies the JWT_SECRET environment variable.
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv applies the SERVER_PORT environment variable.
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideEmailFromEnv applies EMAIL_* environment variables.
func OverrideEmailFromEnv(cfg *EmailConfig) {
	if url := os.Getenv("EMAIL_API_URL"); url != "" {
		cfg.APIURL = url
	}
	if key := os.Getenv("EMAIL_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		cfg.From = from
	}
}

// OverrideCalendarFromEnv applies the CALENDAR_FEED_KEY environment variable.
func OverrideCalendarFromEnv(cfg *CalendarConfig) {
	if key := os.Getenv("CALENDAR_FEED_KEY"); key != "" {
		cfg.FeedKey = key
	}
}
