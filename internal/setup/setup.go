package setup

import (
	"fmt"
	"log"
	"time"

	"github.com/hllmod/reportbot/internal/adjudication"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/ai"
	aiClient "github.com/hllmod/reportbot/internal/ai/client"
	"github.com/hllmod/reportbot/internal/prompts"
	"github.com/hllmod/reportbot/internal/redis"
	"github.com/hllmod/reportbot/internal/report"
	"github.com/hllmod/reportbot/internal/resolver"
	"github.com/hllmod/reportbot/internal/setup/config"
	"github.com/hllmod/reportbot/internal/setup/telemetry"
	"github.com/hllmod/reportbot/internal/translations"
	"github.com/hllmod/reportbot/pkg/utils"
	"go.uber.org/zap"
)

// LedgerBackendRedis selects the Redis warning ledger.
const LedgerBackendRedis = "redis"

// App bundles the services of the report pipeline.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	LogManager   *telemetry.Manager
	RedisManager *redis.Manager
	AdminAPI     *adminapi.Client
	AIClient     *aiClient.AIClient
	Prompts      *prompts.Store
	Translations *translations.Table
	Players      *resolver.PlayerResolver
	Classifier   *ai.Classifier
	Machine      *adjudication.Machine
	Dispatcher   *report.Dispatcher
	Executor     *report.Executor
}

// InitializeApp loads the configuration and wires every component in dependency order.
func InitializeApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging comes first so later failures are recorded
	logManager, err := telemetry.NewManager(&cfg.Debug, &cfg.Sentry)
	if err != nil {
		return nil, err
	}

	logger, err := logManager.GetLogger()
	if err != nil {
		logManager.Stop()
		return nil, err
	}

	if cfg.LegacyThreshold != 0 {
		logger.Warn("Score threshold looks like a probability, using the default instead",
			zap.Float64("configured", cfg.LegacyThreshold),
			zap.Float64("threshold", cfg.Report.ScoreThreshold))
	}

	app := &App{
		Config:     cfg,
		Logger:     logger,
		LogManager: logManager,
	}

	ledger, err := app.newLedger()
	if err != nil {
		app.Cleanup()
		return nil, err
	}

	app.AdminAPI = adminapi.NewClient(cfg.API.Token, time.Duration(cfg.API.RequestTimeout)*time.Millisecond, logger)
	if cfg.API.ReadRetries > 0 {
		app.AdminAPI.SetRetryOptions(utils.GetReadRetryOptions(uint64(cfg.API.ReadRetries)))
	}

	app.AIClient = aiClient.NewClient(&cfg.AI, logger)
	app.Prompts = prompts.NewStore(cfg.Report.PromptsDir, cfg.Language, logger)

	app.Translations, err = translations.Load(cfg.Report.TranslationsFile, cfg.Language, logger)
	if err != nil {
		app.Cleanup()
		return nil, err
	}

	localizer := app.Translations.For(cfg.Language)

	app.Players = resolver.NewPlayerResolver(cfg.Report.ScoreThreshold, logger)
	app.Classifier = ai.NewClassifier(app.AIClient.Chat(), app.Prompts, app.AIClient.Model(), logger)
	app.Machine = adjudication.NewMachine(ledger, app.Classifier, cfg.DryRun, logger)
	app.Dispatcher = report.NewDispatcher(
		cfg.Servers,
		app.Endpoint,
		app.Players,
		app.Classifier,
		app.Machine,
		report.NewCards(localizer, cfg.DryRun),
		logger,
	)
	app.Executor = report.NewExecutor(app.Dispatcher, localizer, cfg.DryRun, logger)

	logger.Info("Application initialized",
		zap.Int("servers", len(cfg.Servers)),
		zap.String("ledger", cfg.Report.LedgerBackend),
		zap.String("language", cfg.Language),
		zap.Bool("dry_run", cfg.DryRun))

	return app, nil
}

// Endpoint returns the admin API bound to baseURL.
func (s *App) Endpoint(baseURL string) adminapi.API {
	return s.AdminAPI.At(baseURL)
}

// newLedger returns the configured warning ledger.
func (s *App) newLedger() (adjudication.Ledger, error) {
	switch s.Config.Report.LedgerBackend {
	case LedgerBackendRedis:
		s.RedisManager = redis.NewManager(&s.Config.Redis, s.Logger)

		client, err := s.RedisManager.GetClient(redis.LedgerDBIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to open warning ledger: %w", err)
		}

		return adjudication.NewRedisLedger(client), nil
	case "", "memory":
		return adjudication.NewMemoryLedger(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownLedger, s.Config.Report.LedgerBackend)
	}
}

// Cleanup releases resources in reverse initialization order.
func (s *App) Cleanup() {
	if s.AdminAPI != nil {
		s.AdminAPI.Close()
	}

	if s.RedisManager != nil {
		s.RedisManager.Close()
	}

	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	s.LogManager.Stop()
}
