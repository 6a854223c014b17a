package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mnemo/internal/config"
	"mnemo/internal/database"
	"mnemo/internal/engine"
	"mnemo/internal/logger"
	"mnemo/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Adaptive spaced-repetition learning engine",
	Long: `Mnemo schedules flashcard reviews with an adaptive spaced-repetition
algorithm, maps cards into a concept knowledge graph to find gaps and study
order, and forecasts when a deck will be mastered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// app bundles everything a subcommand needs.
type app struct {
	cfg    *config.Config
	db     *database.DB
	engine *engine.Engine
	cards  *repository.CardRepository
	log    *zap.Logger
}

// openApp wires config, database, repositories and the engine. The caller
// must invoke close when done.
func openApp() (*app, func(), error) {
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(cfg.DatabaseType, database.ConnConfig{
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Sync()
		return nil, nil, err
	}

	cards := repository.NewCardRepository(db)
	reviews := repository.NewReviewRepository(db)
	tags := repository.NewTagRepository(db)

	a := &app{
		cfg:    cfg,
		db:     db,
		engine: engine.New(cards, reviews, tags, log),
		cards:  cards,
		log:    log,
	}
	closeFn := func() {
		db.Close()
		log.Sync()
	}
	return a, closeFn, nil
}
