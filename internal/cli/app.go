package cli

import (
	"context"

	"github.com/vytor/sqlflash/internal/assessment"
	"github.com/vytor/sqlflash/internal/cache"
	"github.com/vytor/sqlflash/internal/config"
	"github.com/vytor/sqlflash/internal/db"
	"github.com/vytor/sqlflash/internal/flashcard"
	"github.com/vytor/sqlflash/internal/llm"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/repository"
	"github.com/vytor/sqlflash/internal/repository/sqlstore"
	"github.com/vytor/sqlflash/internal/services"
	"github.com/vytor/sqlflash/internal/worker"
)

// app is the wired dependency graph shared by the subcommands.
type app struct {
	cfg   config.Config
	db    *db.DB
	cache *cache.Cache

	cards       repository.CardRepository
	assessments repository.AssessmentRepository

	provider   llm.Provider
	options    *flashcard.OptionsService
	generator  *flashcard.Generator
	flashcards services.FlashcardService
	assessment services.AssessmentService

	gradingPool *worker.Pool
}

// openDB opens the configured database, applying pending migrations.
func openDB(ctx context.Context, cfg config.Config) (*db.DB, error) {
	return db.Open(ctx, cfg.DBDriver, cfg.DBDSN)
}

// newApp wires stores, the LLM provider and the services. withPools starts
// the grading pool used by assessment completion.
func newApp(ctx context.Context, cfg config.Config, withPools bool) (*app, error) {
	log := logger.FromContext(ctx)

	database, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:         cfg,
		db:          database,
		cards:       sqlstore.NewCardRepository(database),
		assessments: sqlstore.NewAssessmentRepository(database),
	}

	var optionsCache flashcard.OptionsCache
	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL, cfg.OptionsCacheTTL)
		if err != nil {
			log.Warn("options cache disabled: %v", err)
		} else {
			a.cache = c
			optionsCache = c
		}
	}

	provider, err := llm.NewProvider(ctx, llm.SettingsFrom(cfg), sqlstore.NewLLMEventRepository(database))
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.provider = provider
	log.Info("llm provider: %s (model %s)", cfg.LLMProvider, provider.ModelID())

	a.options = flashcard.NewOptionsService(sqlstore.NewOptionsRepository(database), optionsCache, provider, nil)

	var gen services.CardGenerator
	if cfg.LLMProvider != "none" {
		a.generator = flashcard.NewGenerator(a.cards, provider)
		gen = a.generator
	}
	a.flashcards = services.NewFlashcardService(
		a.cards,
		sqlstore.NewProgressRepository(database),
		sqlstore.NewStatsRepository(database),
		a.options,
		gen,
	)

	if withPools {
		a.gradingPool = worker.NewPool("grading", cfg.GradingWorkerCount, cfg.GradingQueueSize)
		a.gradingPool.Start(ctx)
	}
	completer := assessment.NewCompleter(a.assessments, assessment.NewLLMGrader(provider), a.gradingPool)
	a.assessment = services.NewAssessmentService(a.assessments, completer)

	return a, nil
}

func (a *app) close(ctx context.Context) {
	log := logger.FromContext(ctx)
	if a.gradingPool != nil {
		log.Debug("stopping grading pool")
		a.gradingPool.Stop()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Warn("failed to close cache: %v", err)
		}
	}
	log.Debug("closing database connection")
	if err := a.db.Close(); err != nil {
		log.Warn("failed to close database: %v", err)
	}
}
