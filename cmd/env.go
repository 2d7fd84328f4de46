package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/config"
	"github.com/eiken-drill/eiken/internal/logger"
	"github.com/eiken-drill/eiken/internal/mistakes"
	"github.com/eiken-drill/eiken/internal/store"
)

// env is the state shared by commands that touch the database.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store

	closeLog func()
}

// openEnv loads configuration, starts the log and opens the store.
// Callers must call close.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}

	log.Debug("environment ready",
		zap.String("db", dbPath),
		zap.String("config", cfg.ConfigFile))

	return &env{cfg: cfg, logger: log, store: st, closeLog: closeLog}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close store", zap.Error(err))
	}
	e.closeLog()
}

func (e *env) mistakes(cmd *cobra.Command) (*mistakes.Store, error) {
	m, err := mistakes.Load(cmd.Context(), e.store.BlobRepo(), mistakes.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("load review list: %w", err)
	}
	return m, nil
}
