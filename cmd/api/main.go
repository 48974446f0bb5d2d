package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/eventia-service/internal/api/http"
	"github.com/spec-kit/eventia-service/internal/api/http/handlers"
	"github.com/spec-kit/eventia-service/internal/auth"
	"github.com/spec-kit/eventia-service/internal/cache"
	"github.com/spec-kit/eventia-service/internal/config"
	"github.com/spec-kit/eventia-service/internal/events"
	"github.com/spec-kit/eventia-service/internal/observability"
	"github.com/spec-kit/eventia-service/internal/persistence"
	"github.com/spec-kit/eventia-service/internal/repository"
	"github.com/spec-kit/eventia-service/internal/service"
	"github.com/spec-kit/eventia-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := cache.NewStore(redis.ClientHandle(), cfg.Cache.TTL(), logger)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	eventRepo := repository.NewEventRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	organizerRepo := repository.NewOrganizerRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		Cache:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	participantService := service.NewParticipantService(service.ParticipantDependencies{
		ParticipantRepo: participantRepo,
		Cache:           store,
		Logger:          logger,
	})
	attendanceService := service.NewAttendanceService(service.AttendanceDependencies{
		AttendanceRepo:  attendanceRepo,
		EventRepo:       eventRepo,
		ParticipantRepo: participantRepo,
		Cache:           store,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		OrganizerRepo:     organizerRepo,
		PasswordResetRepo: resetRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), organizerRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Organizers:     handlers.NewOrganizersHandler(authService),
		Events:         handlers.NewEventsHandler(eventService),
		Participants:   handlers.NewParticipantsHandler(participantService),
		Attendances:    handlers.NewAttendancesHandler(attendanceService),
		AuthMiddleware: authMiddleware,
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
