package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/app"
	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/llm"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/selfupdate"
	"github.com/eiken-drill/eiken/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	catalog, err := loadCatalog(e.cfg)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	mistakeStore, err := e.mistakes(cmd)
	if err != nil {
		return err
	}

	eventRepo := e.store.EventRepo()
	provider, err := llm.NewProvider(ctx, e.cfg.LLM, eventRepo, e.logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI explanations will be unavailable.")
		e.logger.Warn("llm provider unavailable", zap.Error(err))
	}
	tutorCfg := e.cfg.Tutor
	tutorCfg.Timeout = e.cfg.TutorTimeout()

	e.logger.Info("starting",
		zap.String("version", version),
		zap.Int("questions", catalog.Size()),
		zap.Int("mistakes", mistakeStore.Len()))

	return app.Run(app.Options{
		Deps: screen.Deps{
			Controller: session.New(catalog, mistakeStore, session.WithLogger(e.logger)),
			Catalog:    catalog,
			Mistakes:   mistakeStore,
			Events:     eventRepo,
			Tutor:      explain.NewTutor(provider, tutorCfg, e.logger),
			Logger:     e.logger,
		},
		Version: version,
		Checker: selfupdate.NewChecker(),
	})
}
