// Package main is the entry point of the daily proof bot.
//
// The architecture follows Clean Architecture and DDD:
//   - Domain: registry, ledger and reporting logic with no external dependencies
//   - Application: use case orchestration (Commands/Queries)
//   - Infrastructure: partition stores, Discord client, scheduler, artifacts
//   - Interface: the bot loop and command routing
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/solvecircle/dailyproof/config"
	"github.com/solvecircle/dailyproof/internal/application/command"
	"github.com/solvecircle/dailyproof/internal/application/query"
	"github.com/solvecircle/dailyproof/internal/domain/member"
	"github.com/solvecircle/dailyproof/internal/domain/report"
	"github.com/solvecircle/dailyproof/internal/domain/storage"
	"github.com/solvecircle/dailyproof/internal/domain/submission"
	api "github.com/solvecircle/dailyproof/internal/infrastructure/external/discord"
	"github.com/solvecircle/dailyproof/internal/infrastructure/persistence/memory"
	"github.com/solvecircle/dailyproof/internal/infrastructure/persistence/postgres"
	redisstore "github.com/solvecircle/dailyproof/internal/infrastructure/persistence/redis"
	"github.com/solvecircle/dailyproof/internal/infrastructure/persistence/sqlite"
	"github.com/solvecircle/dailyproof/internal/infrastructure/scheduler"
	"github.com/solvecircle/dailyproof/internal/infrastructure/scheduler/jobs"
	"github.com/solvecircle/dailyproof/internal/infrastructure/service"
	bot "github.com/solvecircle/dailyproof/internal/interface/discord"
	"github.com/solvecircle/dailyproof/internal/interface/discord/handler"
	"github.com/solvecircle/dailyproof/internal/interface/discord/middleware"
	"github.com/solvecircle/dailyproof/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	log.Info("starting",
		"app", cfg.App.Name,
		"environment", string(cfg.App.Environment),
		"timezone", cfg.App.Timezone,
		"storage_driver", cfg.Storage.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Storage ──────────────────────────────────────────────────────────

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	registry := member.NewRegistry(store)
	if err := registry.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate registry: %w", err)
	}
	if err := registry.EnsureHeader(ctx); err != nil {
		return fmt.Errorf("ensure registry header: %w", err)
	}
	log.Info("registry hydrated", "members", registry.Count())

	ledger := submission.NewLedger(store)

	var counter submission.DailyCounter
	if cfg.Redis.Enabled {
		rc, err := redisstore.NewCounter(ctx, redisstore.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rc.Close()
		counter = rc
	} else {
		counter = memory.NewCounter()
	}

	// ── Services and application layer ───────────────────────────────────

	artifacts, err := service.NewArtifactService(service.ArtifactConfig{
		Dir:          cfg.Artifacts.Dir,
		BaseURL:      cfg.Artifacts.BaseURL,
		FetchTimeout: cfg.Artifacts.FetchTimeout,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("artifact service: %w", err)
	}

	reporter := report.NewReporter(registry, ledger, store)

	registerCmd := command.NewRegisterMemberHandler(registry)
	submitCmd := command.NewSubmitProofHandler(registry, ledger, counter, artifacts)
	statusQry := query.NewSubmissionStatusHandler(registry, counter)
	pendingQry := query.NewNotCompletedHandler(reporter, store)
	summaryQry := query.NewMonthlySummaryHandler(reporter)

	// ── Discord ──────────────────────────────────────────────────────────

	clientCfg := api.DefaultClientConfig(cfg.Discord.Token)
	clientCfg.Logger = log
	client := api.NewClient(clientCfg)

	gatewayCfg := api.DefaultGatewayConfig(cfg.Discord.Token)
	gatewayCfg.Logger = log
	gateway := api.NewGateway(client, gatewayCfg)

	botCfg := bot.DefaultBotConfig()
	botCfg.Logger = log
	botCfg.AdminChannelID = cfg.Discord.AdminChannelID
	b := bot.NewBot(botCfg, client, gateway.Events())

	router := bot.NewRouter(
		bot.RouterConfig{Logger: log, ReplyWindow: cfg.Discord.ReplyWindow},
		b,
		bot.Handlers{
			Register:     handler.NewRegisterHandler(registry, registerCmd),
			Submit:       handler.NewSubmitHandler(submitCmd, cfg.App.Location),
			Status:       handler.NewStatusHandler(statusQry),
			NotCompleted: handler.NewNotCompletedHandler(pendingQry, cfg.App.Location),
			Summarize:    handler.NewSummarizeHandler(summaryQry, cfg.App.Location),
		},
		middleware.NewAccessMiddleware(middleware.AccessConfig{
			AdminUserIDs: cfg.Discord.AdminUserIDs,
			AdminRoleIDs: cfg.Discord.AdminRoleIDs,
		}),
		middleware.NewRecoveryMiddleware(middleware.RecoveryConfig{
			EnableStackTrace: true,
			UserErrorMessage: middleware.DefaultRecoveryConfig().UserErrorMessage,
			Logger:           log,
		}),
	)
	b.AttachRouter(router)

	// ── Scheduler ────────────────────────────────────────────────────────

	sched := scheduler.NewScheduler(log)
	if cfg.Scheduler.Enabled {
		reminder := jobs.NewDailyReminder(registry, counter, b, b, log)
		if err := sched.Register(reminder,
			scheduler.NewDailySchedule(cfg.Scheduler.ReminderHour, cfg.Scheduler.ReminderMinute, cfg.App.Location)); err != nil {
			return fmt.Errorf("register reminder job: %w", err)
		}

		monthly := jobs.NewMonthlyReport(summaryQry, b, b, cfg.App.Location, log)
		if err := sched.Register(monthly,
			scheduler.NewMonthlyFirstSchedule(cfg.Scheduler.ReportHour, cfg.Scheduler.ReportMinute, cfg.App.Location)); err != nil {
			return fmt.Errorf("register report job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// ── Run ──────────────────────────────────────────────────────────────

	errCh := make(chan error, 2)
	go func() {
		errCh <- gateway.Run(ctx)
	}()
	go func() {
		errCh <- b.Run(ctx)
	}()

	log.Info("bot running")
	err = <-errCh
	stop()

	// Let the second goroutine unwind before the deferred teardown.
	<-errCh

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// openStore builds the configured partition store and its closer.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Storage.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return postgres.NewPartitionStore(conn), conn.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn("failed to close sqlite store", "error", err)
			}
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory storage, all data is lost on restart")
		return memory.NewStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
