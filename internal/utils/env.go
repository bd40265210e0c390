package utils

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv loads the given env files, or .env when none are given. Missing
// files are not an error; defaults from the config package apply instead.
func LoadEnv(logger *zap.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Warn("ENV file not found or failed to load, using defaults", zap.Strings("files", files))
	} else {
		logger.Info("ENV file loaded successfully", zap.Strings("files", files))
	}
}
