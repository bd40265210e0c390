package cmd

import (
	"fmt"
	"os"

	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "elkarte",
	Short:         "ElkArte forum backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the env files, then the config and logger every command needs.
func setup() (*config.Config, *zap.Logger, error) {
	bootLogger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	utils.LoadEnv(bootLogger, envFiles...)

	cfg := config.LoadConfig()
	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize zap logger: %w", err)
	}

	logger.Info("Config loaded",
		zap.String("server_port", cfg.ServerPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("db_host", cfg.DBHost),
		zap.String("redis_url", cfg.RedisURL),
		zap.String("env", cfg.Env),
	)
	return &cfg, logger, nil
}
