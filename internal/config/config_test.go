package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "/index.php", cfg.ScriptURL)
	assert.Equal(t, "english", cfg.DefaultLanguage)
	assert.Equal(t, ErrorLoggingOn, cfg.ErrorLogging)
	assert.Equal(t, 20, cfg.DefaultMaxTopics)
	assert.Equal(t, 5*time.Minute, cfg.RedisTTL)
	assert.Equal(t, 720*time.Hour, cfg.ArchiveRetention)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("ERROR_LOGGING", "2")
	t.Setenv("POST_MODERATION", "true")
	t.Setenv("LOADAVG_FORUM", "3.5")
	t.Setenv("REDIS_TTL", "not-a-duration")

	cfg := LoadConfig()

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, ErrorLoggingAll, cfg.ErrorLogging)
	assert.True(t, cfg.PostModeration)
	assert.InDelta(t, 3.5, cfg.LoadAvgForum, 0.0001)
	assert.Equal(t, 5*time.Minute, cfg.RedisTTL)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPass: "p", DBName: "forum", DBPort: "5433"}
	assert.Equal(t, "host=db user=u password=p dbname=forum port=5433 sslmode=disable", cfg.PostgresDSN())
}
