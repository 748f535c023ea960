package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-labs/support-bot/internal/api/http"
	"github.com/helpdesk-labs/support-bot/internal/api/http/handlers"
	"github.com/helpdesk-labs/support-bot/internal/auth"
	"github.com/helpdesk-labs/support-bot/internal/bot"
	"github.com/helpdesk-labs/support-bot/internal/config"
	"github.com/helpdesk-labs/support-bot/internal/events"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
	"github.com/helpdesk-labs/support-bot/internal/observability"
	"github.com/helpdesk-labs/support-bot/internal/persistence"
	"github.com/helpdesk-labs/support-bot/internal/policy"
	"github.com/helpdesk-labs/support-bot/internal/repository"
	"github.com/helpdesk-labs/support-bot/internal/service"
	"github.com/helpdesk-labs/support-bot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo  repository.TicketRepository
		ratingRepo  repository.RatingRepository
		historyRepo repository.TicketHistoryRepository
		updateLog   repository.UpdateLogRepository
	)
	if pg.Enabled() {
		pool := pg.PoolHandle()
		ticketRepo = repository.NewTicketRepository(pool)
		ratingRepo = repository.NewRatingRepository(pool)
		historyRepo = repository.NewTicketHistoryRepository(pool)
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
		ratingRepo = repository.NewMemoryRatingRepository()
		historyRepo = repository.NewMemoryTicketHistoryRepository()
	}
	if redis.Enabled() {
		updateLog = repository.NewRedisUpdateLog(redis.Client, cfg.Bot.DedupTTL())
	} else {
		updateLog = repository.NewMemoryUpdateLog(cfg.Bot.SessionCapacity, cfg.Bot.DedupTTL())
	}

	telegram, err := gateway.NewTelegram(cfg.Telegram.Token, cfg.Telegram.HTTPTimeout(), logger)
	if err != nil {
		logger.Fatal("failed to init telegram gateway", zap.Error(err))
	}

	dispatcher := events.NewSyncDispatcher(logger)
	service.NewNotificationService(dispatcher, historyRepo, logger).RegisterHandlers()

	contentPolicy := policy.NewContentPolicy(cfg.Bot.Blocklist)
	sessions := session.NewLRUStore(cfg.Bot.SessionCapacity, cfg.Bot.SessionTTL())

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:        ticketRepo,
		RatingRepo:        ratingRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
		StoreTimeout:      cfg.Tickets.StoreTimeout(),
		StrictTransitions: cfg.Tickets.StrictTransitions,
	})
	router := service.NewMessageRouter(service.RouterDependencies{
		Tickets:         ticketService,
		Gateway:         telegram,
		Policy:          contentPolicy,
		ModeratorChatID: cfg.Telegram.ModeratorChatID,
		Logger:          logger,
	})
	conversation := service.NewConversationService(service.ConversationDependencies{
		Tickets:         ticketService,
		Router:          router,
		Sessions:        sessions,
		Gateway:         telegram,
		ModeratorChatID: cfg.Telegram.ModeratorChatID,
		Brand:           cfg.Bot.Brand,
		Logger:          logger,
	})
	moderation := service.NewModerationService(ticketService, telegram, cfg.Telegram.ModeratorChatID, logger)
	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		Gateway:     telegram,
		Tickets:     ticketService,
		HistoryRepo: historyRepo,
		Logger:      logger,
	})

	updates := bot.NewDispatcher(bot.Dependencies{
		Conversation:    conversation,
		Moderation:      moderation,
		Router:          router,
		Gateway:         telegram,
		UpdateLog:       updateLog,
		ModeratorChatID: cfg.Telegram.ModeratorChatID,
		Logger:          logger,
	})

	if cfg.Telegram.SetWebhookOnStart {
		if _, err := adminService.RegisterWebhook(ctx, ""); err != nil {
			logger.Error("failed to register webhook on start", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Webhook:        handlers.NewWebhookHandler(updates, contentPolicy, logger),
		Admin:          handlers.NewAdminHandler(adminService, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(adminService.TokenManager()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
