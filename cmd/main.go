package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	cancelBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/cancel_booking"
	commitBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/commit_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_booking"
	getUserReservationsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_user_reservations"
	getVenueHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_venue"
	getVenueReservationsHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/get_venue_reservations"
	quoteBookingHandler "github.com/m04kA/SMC-CourtBooking/internal/api/handlers/quote_booking"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/config"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed/pgfeed"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed/redisfeed"
	reservationRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/reservation"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	userServiceClient "github.com/m04kA/SMC-CourtBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
	reservationsService "github.com/m04kA/SMC-CourtBooking/internal/service/reservations"
	venuesService "github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	commitBookingUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/commit_booking"
	getAvailabilityUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/get_availability"
	quoteBookingUC "github.com/m04kA/SMC-CourtBooking/internal/usecase/quote_booking"
	"github.com/m04kA/SMC-CourtBooking/migrations"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/metrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/scheduler"
	"github.com/m04kA/SMC-CourtBooking/pkg/txmanager"
)

// rateLimiterIdle после стольких минут простоя лимитер пользователя удаляется
const rateLimiterIdle = 10 * time.Minute

// changeFeed общий интерфейс драйверов ленты изменений
type changeFeed interface {
	Publish(ctx context.Context, changes ...domain.ReservationChange) error
	Subscribe(ctx context.Context, venueID int64, date time.Time) (feed.Subscription, error)
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CourtBooking...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены). Методы *metrics.Metrics допускают nil
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(config.Seconds(cfg.Database.ConnMaxLifetime))

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Migrations applied")
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем ленту изменений
	var (
		changes     changeFeed
		closeFeed   func() error
		feedDetails string
	)

	switch cfg.Feed.Driver {
	case config.FeedDriverRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		changes = redisfeed.New(redisClient, cfg.Feed.Buffer, log)
		closeFeed = redisClient.Close
		feedDetails = cfg.Redis.Addr
	default:
		pgFeed := pgfeed.New(cfg.Database.DSN(), wrappedDB, pgfeed.Config{
			MinReconnectInterval: config.Millis(cfg.Feed.MinReconnectInterval),
			MaxReconnectInterval: config.Millis(cfg.Feed.MaxReconnectInterval),
			Buffer:               cfg.Feed.Buffer,
		}, log)
		changes = pgFeed
		closeFeed = pgFeed.Close
		feedDetails = "LISTEN/NOTIFY"
	}
	log.Info("Change feed initialized (driver=%s, %s)", cfg.Feed.Driver, feedDetails)

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		config.Seconds(cfg.UserService.Timeout),
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout)

	// Инициализируем репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB, txMgr)
	venueRepository := venueRepo.NewRepository(wrappedDB, txMgr)

	// Инициализируем сервисы
	venueSvc := venuesService.NewService(
		venueRepository,
		config.Seconds(cfg.Booking.VenueCacheTTL),
		nil,
		log,
	)
	registry := availability.NewRegistry(
		reservationRepository,
		changes,
		availability.Config{
			IdleTTL:        config.Seconds(cfg.Availability.IdleTTL),
			ResyncInterval: config.Seconds(cfg.Availability.ResyncInterval),
		},
		log,
		availability.WithMetrics(metricsCollector),
	)
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		venueSvc,
		changes,
		log,
	)

	// Инициализируем use cases
	commitBookingUseCase := commitBookingUC.NewUseCase(
		reservationRepository,
		venueSvc,
		registry,
		changes,
		config.Seconds(cfg.Booking.CommitTimeout),
		log,
		commitBookingUC.WithMetrics(metricsCollector),
		commitBookingUC.WithUserClient(userClient),
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(venueSvc, registry, nil, log)
	quoteBookingUseCase := quoteBookingUC.NewUseCase(venueSvc, registry, nil, log)

	// Инициализируем handlers
	commitBooking := commitBookingHandler.NewHandler(commitBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	quoteBooking := quoteBookingHandler.NewHandler(quoteBookingUseCase, log)
	getVenue := getVenueHandler.NewHandler(venueSvc, log)
	getBooking := getBookingHandler.NewHandler(reservationSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(reservationSvc, log)
	getUserReservations := getUserReservationsHandler.NewHandler(reservationSvc, log)
	getVenueReservations := getVenueReservationsHandler.NewHandler(reservationSvc, log)

	rateLimiter := middleware.NewRateLimiter(cfg.Booking.RateLimitPerSec, cfg.Booking.RateLimitBurst)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Площадка и её тарифы
	api.HandleFunc("/venues/{venueId}", getVenue.Handle).Methods(http.MethodGet)

	// Сетка занятости на дату
	api.HandleFunc("/venues/{venueId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Предварительный расчёт стоимости выбора
	api.HandleFunc("/venues/{venueId}/quote", quoteBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Коммит выбора (ограничен по частоте на пользователя)
	protected.Handle("/bookings",
		rateLimiter.Middleware()(http.HandlerFunc(commitBooking.Handle))).Methods(http.MethodPost)

	// Транзакция по ID
	protected.HandleFunc("/bookings/{transactionId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена транзакции
	protected.HandleFunc("/bookings/{transactionId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/reservations", getUserReservations.Handle).Methods(http.MethodGet)

	// --- Для менеджеров площадки ---
	protected.HandleFunc("/venues/{venueId}/reservations", getVenueReservations.Handle).Methods(http.MethodGet)

	// Фоновые задачи: выгрузка простаивающих индексов, чистка кэшей
	jobs, err := scheduler.New(log)
	if err != nil {
		log.Fatal("Failed to create scheduler: %v", err)
	}
	if interval := config.Seconds(cfg.Availability.EvictInterval); interval > 0 {
		if _, err := jobs.AddIntervalJob("evict-idle-indexes", interval, func() {
			if n := registry.EvictIdle(); n > 0 {
				log.Info("Evicted %d idle availability indexes, live=%d", n, registry.Len())
			}
		}); err != nil {
			log.Fatal("Failed to schedule index eviction: %v", err)
		}
	}
	if ttl := config.Seconds(cfg.Booking.VenueCacheTTL); ttl > 0 {
		if _, err := jobs.AddIntervalJob("purge-venue-cache", ttl, func() {
			venueSvc.PurgeExpired()
		}); err != nil {
			log.Fatal("Failed to schedule venue cache purge: %v", err)
		}
	}
	if _, err := jobs.AddIntervalJob("cleanup-rate-limiters", rateLimiterIdle, func() {
		rateLimiter.Cleanup(rateLimiterIdle)
	}); err != nil {
		log.Fatal("Failed to schedule rate limiter cleanup: %v", err)
	}
	jobs.Start()

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.Server.IdleTimeout),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("%v", err)
	}

	if err := jobs.Stop(); err != nil {
		log.Error("Failed to stop scheduler: %v", err)
	}

	registry.Close()
	if err := closeFeed(); err != nil {
		log.Error("Failed to close change feed: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
