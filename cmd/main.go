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

	createBookingHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/create_booking"
	findNextSlotHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/find_next_slot"
	getAvailabilityHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_booking"
	getBookingHistoryHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_booking_history"
	getProviderBookingsHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_provider_bookings"
	getScheduleHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_schedule"
	getUserBookingsHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_user_bookings"
	manageBlocksHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/manage_blocks"
	rescheduleBookingHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/reschedule_booking"
	transitionBookingHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/transition_booking"
	updateScheduleDayHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/update_schedule_day"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/config"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/locker"
	bookingRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/catalog"
	historyRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/history"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/memory"
	outboxRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/outbox"
	scheduleRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/schedule"
	statsRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/stats"
	"github.com/m04kA/SMC-SpaBookingService/internal/integrations/notifier"
	bookingsService "github.com/m04kA/SMC-SpaBookingService/internal/service/bookings"
	scheduleService "github.com/m04kA/SMC-SpaBookingService/internal/service/schedule"
	createBookingUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
	findNextSlotUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/find_next_slot"
	getAvailabilityUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_availability"
	rescheduleBookingUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/reschedule_booking"
	transitionBookingUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/transition_booking"
	"github.com/m04kA/SMC-SpaBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SpaBookingService/pkg/txmanager"
)

// Наборы методов, которые нужны всем потребителям одного хранилища
type (
	bookingRepository interface {
		createBookingUC.BookingRepository
		transitionBookingUC.BookingRepository
		rescheduleBookingUC.BookingRepository
		bookingsService.BookingRepository
		scheduleService.BookingRepository
	}
	scheduleRepository interface {
		createBookingUC.ScheduleRepository
		rescheduleBookingUC.ScheduleRepository
		getAvailabilityUC.ScheduleRepository
		scheduleService.ScheduleRepository
	}
	historyRepository interface {
		createBookingUC.HistoryRepository
		bookingsService.HistoryRepository
	}
	outboxRepository interface {
		createBookingUC.OutboxRepository
		notifier.OutboxRepository
	}
	transactionManager interface {
		createBookingUC.TransactionManager
		notifier.TransactionManager
	}
)

type storage struct {
	bookings  bookingRepository
	schedule  scheduleRepository
	catalog   getAvailabilityUC.CatalogRepository
	history   historyRepository
	outbox    outboxRepository
	stats     transitionBookingUC.StatsRepository
	txManager transactionManager
	close     func()
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-SpaBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(cfg, metricsCollector, log, ctx.Done())
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	bookingLocker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize locker: %v", err)
	}
	defer closeLocker()

	// Публикация событий: Kafka, если заданы брокеры, иначе лог
	var publisher notifier.Publisher
	if cfg.Kafka.Enabled() {
		publisher = notifier.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.WriteTimeout())
		log.Info("Kafka publisher initialized (brokers=%v)", cfg.Kafka.Brokers)
	} else {
		publisher = notifier.NewLogPublisher(log)
		log.Info("Kafka brokers not configured, events are written to log")
	}
	defer publisher.Close()

	bookingNotifier := notifier.NewNotifier(publisher, cfg.Kafka.NotificationTopic, log)
	defer bookingNotifier.Wait()

	defaultLocation, _ := time.LoadLocation(cfg.Booking.DefaultTimezone)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(store.bookings, store.history, log)
	scheduleSvc := scheduleService.NewService(
		store.schedule,
		store.bookings,
		bookingLocker,
		store.txManager,
		scheduleService.Config{LockWait: cfg.Booking.LockWait()},
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		store.schedule,
		store.catalog,
		store.bookings,
		getAvailabilityUC.Config{
			LeadTime:        cfg.Booking.LeadTime(),
			MaxHorizonDays:  cfg.Booking.MaxHorizonDays,
			DefaultLocation: defaultLocation,
		},
		log,
	)

	findNextSlotUseCase := findNextSlotUC.NewUseCase(
		store.schedule,
		store.catalog,
		store.bookings,
		findNextSlotUC.Config{
			LeadTime:        cfg.Booking.LeadTime(),
			MaxHorizonDays:  cfg.Booking.MaxHorizonDays,
			DefaultLocation: defaultLocation,
		},
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		store.schedule,
		store.catalog,
		store.bookings,
		store.history,
		store.outbox,
		bookingLocker,
		store.txManager,
		bookingNotifier,
		metricsCollector,
		createBookingUC.Config{
			LeadTime:        cfg.Booking.LeadTime(),
			MaxHorizonDays:  cfg.Booking.MaxHorizonDays,
			LockWait:        cfg.Booking.LockWait(),
			DefaultLocation: defaultLocation,
		},
		log,
	)

	transitionBookingUseCase := transitionBookingUC.NewUseCase(
		store.bookings,
		store.stats,
		store.history,
		store.outbox,
		store.txManager,
		bookingNotifier,
		metricsCollector,
		transitionBookingUC.Config{
			MinClientCancelNotice:   cfg.Booking.MinCancelNotice(),
			MinProviderCancelNotice: cfg.Booking.MinProviderCancelNotice(),
		},
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		store.schedule,
		store.bookings,
		store.history,
		store.outbox,
		bookingLocker,
		store.txManager,
		bookingNotifier,
		metricsCollector,
		rescheduleBookingUC.Config{
			LeadTime:               cfg.Booking.LeadTime(),
			WindowDays:             cfg.Booking.RescheduleWindowDays,
			LockWait:               cfg.Booking.LockWait(),
			MaxClientReschedules:   cfg.Booking.MaxClientReschedules,
			MaxProviderReschedules: cfg.Booking.MaxProviderReschedules,
			DefaultLocation:        defaultLocation,

			MinClientRescheduleNotice: cfg.Booking.MinRescheduleNotice(),
		},
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	findNextSlot := findNextSlotHandler.NewHandler(findNextSlotUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateScheduleDay := updateScheduleDayHandler.NewHandler(scheduleSvc, log)
	manageBlocks := manageBlocksHandler.NewHandler(scheduleSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBookingHistory := getBookingHistoryHandler.NewHandler(bookingSvc, log)
	transitionBooking := transitionBookingHandler.NewHandler(transitionBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/providers/{providerId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/next-slot", findNextSlot.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID, роль в X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Расписание мастера ---
	protected.HandleFunc("/providers/{providerId}/schedule/{dayOfWeek}", updateScheduleDay.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/blocks", manageBlocks.Create).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/blocks", manageBlocks.List).Methods(http.MethodGet)
	protected.HandleFunc("/providers/{providerId}/blocks/{blockId}", manageBlocks.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", transitionBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/history", getBookingHistory.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Outbox.Enabled {
		relay := notifier.NewRelay(store.outbox, store.txManager, publisher, metricsCollector, log, notifier.RelayConfig{
			PollInterval: cfg.Outbox.PollInterval(),
			BatchSize:    cfg.Outbox.BatchSize,
		})
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
		return
	}

	log.Info("Server stopped gracefully")
}

// openStorage открывает PostgreSQL или in-memory хранилище в зависимости от storage.driver
func openStorage(cfg *config.Config, m *metrics.Metrics, log *logger.Logger, stopCh <-chan struct{}) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		store := memory.NewStore()
		if cfg.Storage.SeedFile != "" {
			if err := store.LoadSeed(cfg.Storage.SeedFile); err != nil {
				return nil, err
			}
			log.Info("In-memory storage seeded from %s", cfg.Storage.SeedFile)
		}
		log.Warn("Using in-memory storage: data is lost on restart")

		return &storage{
			bookings:  store.Bookings(),
			schedule:  store.Schedule(),
			catalog:   store.Catalog(),
			history:   store.History(),
			outbox:    store.Outbox(),
			stats:     store.Stats(),
			txManager: store.TxManager(),
			close:     func() {},
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка работает как прозрачный прокси
	wrapped := dbmetrics.WrapWithDefault(db, m, stopCh)

	return &storage{
		bookings:  bookingRepo.NewRepository(wrapped),
		schedule:  scheduleRepo.NewRepository(wrapped),
		catalog:   catalogRepo.NewRepository(wrapped),
		history:   historyRepo.NewRepository(wrapped),
		outbox:    outboxRepo.NewRepository(wrapped),
		stats:     statsRepo.NewRepository(wrapped),
		txManager: txmanager.New(wrapped),
		close:     func() { db.Close() },
	}, nil
}

// scheduleLocker блокировка расписания мастера, общая для создания и переноса
type scheduleLocker interface {
	Lock(ctx context.Context, key string, wait time.Duration) (locker.Unlock, error)
}

// newLocker Redis для нескольких инстансов, in-process для одного
func newLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (scheduleLocker, func(), error) {
	if cfg.Booking.Locker != config.LockerRedis {
		log.Info("Using in-process booking locker")
		return locker.NewMemoryLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("Using Redis booking locker (addr=%s)", cfg.Redis.Addr)

	return locker.NewRedisLocker(rdb, cfg.Booking.LockTTL(), log), func() { rdb.Close() }, nil
}
