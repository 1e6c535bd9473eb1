package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/scry-quest/internal/api"
	"github.com/phrazzld/scry-quest/internal/api/middleware"
	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/domain/achievement"
	"github.com/phrazzld/scry-quest/internal/domain/progression"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/grading"
	"github.com/phrazzld/scry-quest/internal/platform/postgres"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/phrazzld/scry-quest/internal/service/auth"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/phrazzld/scry-quest/internal/task"
)

// application holds the wired dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	stores    store.Stores
	uow       store.UnitOfWork
	evaluator *achievement.Evaluator
	emitter   *events.InMemoryEmitter

	jwtService   auth.JWTService
	progression  service.ProgressionService
	challenges   service.ChallengeService
	achievements service.AchievementService
	reviews      service.ReviewService

	scheduler *task.Scheduler
	router    http.Handler

	closers []io.Closer
}

// newApplication wires stores, services, handlers and the scheduler around an
// open database and grader.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sqlx.DB,
	grader grading.Grader,
) (*application, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if grader == nil {
		return nil, errors.New("grader cannot be nil")
	}

	app := &application{config: cfg, logger: logger, db: db}

	loc, err := time.LoadLocation(cfg.Progression.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid default time zone %q: %w", cfg.Progression.DefaultTimezone, err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.stores = store.Stores{
		Progress:     postgres.NewPostgresUserProgressStore(db, logger),
		Challenges:   postgres.NewPostgresChallengeStore(db, nil, logger),
		Achievements: postgres.NewPostgresAchievementStore(db, logger),
	}
	app.uow = store.NewSQLUnitOfWork(db, app.stores)
	cache := achievement.NewMemoryCacheWithConfig(achievement.CacheConfig{
		MaxUsers: cfg.Progression.AchievementCacheMaxUsers,
		TTL:      time.Duration(cfg.Progression.AchievementCacheTTLSeconds) * time.Second,
	})
	app.evaluator = achievement.NewEvaluator(app.stores.Achievements, cache, nil, logger)

	app.emitter = events.NewInMemoryEmitter(logger)
	app.emitter.RegisterHandler(events.NewLogHandler(logger))

	curve := cfg.Progression
	opts := service.Options{
		Progression: progression.NewServiceWithParams(progression.NewParams(progression.ParamsConfig{
			LevelBaseXP:   curve.LevelBaseXP,
			LevelExponent: curve.LevelExponent,
			XPPerCard:     curve.XPPerCard,
			XPPerMinute:   curve.XPPerMinute,
			SessionXPCap:  curve.SessionXPCap,
		})),
		DefaultLocation: loc,
		Events:          app.emitter,
	}

	if app.progression, err = service.NewProgressionService(app.uow, app.evaluator, opts, logger); err != nil {
		return nil, fmt.Errorf("failed to create progression service: %w", err)
	}
	if app.challenges, err = service.NewChallengeService(app.uow, app.evaluator, opts, logger); err != nil {
		return nil, fmt.Errorf("failed to create challenge service: %w", err)
	}
	if app.achievements, err = service.NewAchievementService(app.stores, app.evaluator, opts, logger); err != nil {
		return nil, fmt.Errorf("failed to create achievement service: %w", err)
	}
	if app.reviews, err = service.NewReviewService(grader, app.uow, opts, logger); err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	if app.scheduler, err = newScheduler(cfg.Progression, app.stores.Challenges, logger); err != nil {
		return nil, err
	}

	app.router = api.NewRouter(api.RouterConfig{
		Auth:         middleware.NewAuthMiddleware(app.jwtService),
		Progress:     api.NewProgressHandler(app.progression, logger),
		Challenges:   api.NewChallengeHandler(app.challenges, logger),
		Achievements: api.NewAchievementHandler(app.achievements, logger),
		Reviews:      api.NewReviewHandler(app.reviews, logger),
		Logger:       logger,
	})

	logger.Info("application initialized")
	return app, nil
}

// newScheduler registers the challenge cleanup job. Cron expressions are
// evaluated in UTC.
func newScheduler(cfg config.ProgressionConfig, challenges store.ChallengeStore, logger *slog.Logger) (*task.Scheduler, error) {
	scheduler, err := task.NewScheduler(task.SchedulerConfig{TaskTimeout: 5 * time.Minute}, logger)
	if err != nil {
		return nil, err
	}

	cleanup, err := task.NewChallengeCleanupTask(challenges, cfg.ChallengeRetentionDays, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cleanup task: %w", err)
	}
	if err := scheduler.Register(cfg.CleanupCron, cleanup); err != nil {
		return nil, err
	}
	return scheduler, nil
}

// addCloser registers c to be closed by cleanup. A nil closer is ignored.
func (app *application) addCloser(c io.Closer) {
	if c != nil {
		app.closers = append(app.closers, c)
	}
}

// cleanup releases the grader and the database pool.
func (app *application) cleanup() {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error("failed to close resource", slog.String("error", err.Error()))
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
	app.logger.Info("application shutdown completed")
}

// runServe loads configuration, wires the application and runs it until ctx
// is cancelled or a signal arrives.
func runServe(ctx context.Context, configPath string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	grader, closer, err := newGrader(ctx, cfg.LLM, log)
	if err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(cfg, log, db, grader)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	app.addCloser(closer)
	defer app.cleanup()

	return app.Run(ctx)
}
