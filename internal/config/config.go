package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Error logging levels, as stored in ERROR_LOGGING.
const (
	ErrorLoggingOff = 0
	ErrorLoggingOn  = 1
	ErrorLoggingAll = 2
)

type Config struct {
	DBDriver string
	DBHost   string
	DBPort   string
	DBUser   string
	DBPass   string
	DBName   string
	DBPath   string

	ServerPort  string
	FrontendURL string
	Env         string

	RedisURL string
	RedisTTL time.Duration

	MinioURL      string
	MinioUser     string
	MinioPassword string
	MinioBucket   string

	// ArchiveRetention is how long error log archives stay in the bucket.
	ArchiveRetention time.Duration

	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	ScriptURL       string
	ForumName       string
	WebmasterEmail  string
	DefaultLanguage string
	SessionCookie   string

	ErrorLogging     int
	PostModeration   bool
	DefaultMaxTopics int
	SearchAPI        string

	Maintenance        int
	MaintenanceTitle   string
	MaintenanceMessage string
	LoadAvgForum       float64

	DBErrorSend     bool
	DBLastErrorFile string
}

func LoadConfig() Config {
	ttlStr := getEnv("REDIS_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		ttl = 5 * time.Minute
	}

	retention, err := time.ParseDuration(getEnv("ARCHIVE_RETENTION", "720h"))
	if err != nil {
		retention = 720 * time.Hour
	}

	return Config{
		DBDriver: strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:   getEnv("DB_HOST", "postgres"),
		DBPort:   getEnv("DB_PORT", "5432"),
		DBUser:   getEnv("DB_USER", "postgres"),
		DBPass:   getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "elkarte"),
		DBPath:   getEnv("DB_PATH", "elkarte.db"),

		ServerPort:  getEnv("SERVER_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		Env:         getEnv("ENV", "dev"),

		RedisURL: getEnv("REDIS_URL", "redis:6379"),
		RedisTTL: ttl,

		MinioURL:      getEnv("MINIO_URL", "localhost:9000"),
		MinioUser:     getEnv("MINIO_USER", "minioadmin"),
		MinioPassword: getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioBucket:   getEnv("MINIO_BUCKET", "elkarte-errorlog"),

		ArchiveRetention: retention,

		SMTPAddr:     getEnv("SMTP_ADDR", ""),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@localhost"),

		ScriptURL:       getEnv("SCRIPT_URL", "/index.php"),
		ForumName:       getEnv("FORUM_NAME", "ElkArte Community"),
		WebmasterEmail:  getEnv("WEBMASTER_EMAIL", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "english"),
		SessionCookie:   getEnv("SESSION_COOKIE", "session_key"),

		ErrorLogging:     getEnvAsInt("ERROR_LOGGING", ErrorLoggingOn),
		PostModeration:   getEnvAsBool("POST_MODERATION", false),
		DefaultMaxTopics: getEnvAsInt("DEFAULT_MAX_TOPICS", 20),
		SearchAPI:        getEnv("SEARCH_API", "custom"),

		Maintenance:        getEnvAsInt("MAINTENANCE", 0),
		MaintenanceTitle:   getEnv("MAINTENANCE_TITLE", "Maintenance Mode"),
		MaintenanceMessage: getEnv("MAINTENANCE_MESSAGE", "This forum is in maintenance mode."),
		LoadAvgForum:       getEnvAsFloat("LOADAVG_FORUM", 0),

		DBErrorSend:     getEnvAsBool("DB_ERROR_SEND", true),
		DBLastErrorFile: getEnv("DB_LAST_ERROR_FILE", "db_last_error"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return fallback
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}
