package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ContentPublisher/internal/config"
	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/infrastructure/ai"
	"ContentPublisher/internal/infrastructure/flags"
	"ContentPublisher/internal/infrastructure/llm"
	"ContentPublisher/internal/infrastructure/ml"
	redisstore "ContentPublisher/internal/infrastructure/redis"
	"ContentPublisher/internal/infrastructure/scheduler"
	"ContentPublisher/internal/infrastructure/seo"
	"ContentPublisher/internal/infrastructure/storage"
	"ContentPublisher/internal/infrastructure/telegram"
	"ContentPublisher/internal/logging"
	"ContentPublisher/internal/monitor"
	"ContentPublisher/internal/ports"
	"ContentPublisher/internal/templates"
	"ContentPublisher/internal/usecase"
)

const alertDeliveryTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	log      *slog.Logger
	content  *usecase.ContentService
	workflow *usecase.WorkflowEngine
	monitor  *monitor.Monitor
	flags    ports.FlagStore
	reporter *usecase.PerformanceReporter
	closers  []func() error
}

// New builds the application from configuration. Call Close to release storage and Redis.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	}
	a := &Application{cfg: cfg, log: baseLogger}

	repository, err := a.buildRepository()
	if err != nil {
		return nil, a.abort(err)
	}

	registry, err := templates.Builtin()
	if err != nil {
		return nil, a.abort(err)
	}

	scorer := a.buildAIScorer()

	var scoring ports.ScoringPolicy = usecase.PlaceholderScoring{}
	if cfg.Workflow.Scoring == config.ScoringReports {
		scoring = usecase.ReportScoring{}
	}

	a.content = usecase.NewContentService(usecase.ContentDeps{
		Repository: repository,
		Templates:  registry,
		SEO:        seo.NewAnalyzer(cfg.Site.BaseURL),
		AI:         scorer,
		Scoring:    scoring,
		Logger:     baseLogger.With("component", "content"),
	})
	a.workflow = usecase.NewWorkflowEngine(usecase.WorkflowDeps{
		Content:       a.content,
		Repository:    repository,
		Templates:     registry,
		AI:            scorer,
		Organization:  cfg.Site.Organization,
		ReviewMinimum: cfg.Workflow.ReviewMinimum,
		StepTimeout:   cfg.Workflow.StepTimeout,
		Logger:        baseLogger.With("component", "workflow"),
	})

	notifiers, err := a.buildFlagsAndNotifiers(ctx)
	if err != nil {
		return nil, a.abort(err)
	}

	a.monitor = monitor.New(monitor.Deps{
		Thresholds: cfg.Monitor.Thresholds,
		Triggers:   cfg.Monitor.Triggers,
		Capacity:   cfg.Monitor.BufferSize,
		Flags:      a.flags,
		Logger:     baseLogger.With("component", "monitor"),
	})
	for _, notifier := range notifiers {
		a.monitor.OnAlert(a.forward(notifier))
	}

	a.reporter = usecase.NewPerformanceReporter(
		scheduler.NewTickerScheduler(cfg.Monitor.SummaryInterval),
		a.monitor,
		cfg.Monitor.SummaryWindowMinutes,
		baseLogger.With("component", "reporter"),
	)

	return a, nil
}

// Content exposes the content service to the embedding UI layer.
func (a *Application) Content() *usecase.ContentService { return a.content }

// Workflow exposes the publishing workflow engine.
func (a *Application) Workflow() *usecase.WorkflowEngine { return a.workflow }

// Monitor exposes the performance threshold monitor.
func (a *Application) Monitor() *monitor.Monitor { return a.monitor }

// Flags exposes the feature-flag store the monitor writes to.
func (a *Application) Flags() ports.FlagStore { return a.flags }

// Run starts the periodic performance summary and blocks until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if err := a.reporter.Start(ctx); err != nil {
		return fmt.Errorf("start reporter: %w", err)
	}
	a.log.Info("content publisher running",
		"storage", a.cfg.Storage.Driver,
		"templates", len(a.content.GetAllTemplates()),
	)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.reporter.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop reporter: %w", err)
	}
	return nil
}

// Close releases the resources opened by New.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Application) abort(err error) error {
	if cerr := a.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

func (a *Application) buildRepository() (ports.ContentRepository, error) {
	switch a.cfg.Storage.Driver {
	case "", config.StorageMemory:
		return storage.NewMemoryRepository(), nil
	case config.StorageSQLite:
		repo, err := storage.OpenSQLite(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
}

func (a *Application) buildAIScorer() ports.AIScorer {
	if a.cfg.ML.InferenceURL != "" {
		return ml.NewClient(a.cfg.ML.InferenceURL, a.cfg.ML.APIKey)
	}

	var formatter ports.Formatter
	if a.cfg.ChatGPT.APIKey != "" {
		formatter = llm.NewChatGPTClient(a.cfg.ChatGPT)
	}
	return ai.NewScorer(a.cfg.Site.BaseURL, formatter)
}

func (a *Application) buildFlagsAndNotifiers(ctx context.Context) ([]ports.AlertNotifier, error) {
	var notifiers []ports.AlertNotifier

	if a.cfg.Redis.Addr == "" {
		a.flags = flags.NewMemoryStore(a.cfg.FeatureFlags)
	} else {
		client, err := redisstore.NewClient(ctx, a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)

		store := redisstore.NewFlagStore(client, a.cfg.Redis.FlagPrefix)
		if err := store.Seed(ctx, a.cfg.FeatureFlags); err != nil {
			return nil, err
		}
		a.flags = store
		notifiers = append(notifiers, redisstore.NewAlertPublisher(client, a.cfg.Redis.AlertChannel))
	}

	tg := a.cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		notifiers = append(notifiers, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}
	return notifiers, nil
}

// forward adapts an outbound notifier to a synchronous alert callback.
func (a *Application) forward(notifier ports.AlertNotifier) func(domain.PerformanceAlert) {
	return func(alert domain.PerformanceAlert) {
		ctx, cancel := context.WithTimeout(context.Background(), alertDeliveryTimeout)
		defer cancel()
		if err := notifier.PublishAlert(ctx, alert); err != nil {
			a.log.Error("alert delivery failed", "alert", alert.ID, "error", err)
		}
	}
}
