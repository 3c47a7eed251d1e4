package main

import (
	"context"
	"database/sql"
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

	cancelBookingHandler "github.com/m04kA/SMC-EnrollmentService/internal/api/handlers/cancel_booking"
	getSlotWaitlistHandler "github.com/m04kA/SMC-EnrollmentService/internal/api/handlers/get_slot_waitlist"
	getStudentWaitlistHandler "github.com/m04kA/SMC-EnrollmentService/internal/api/handlers/get_student_waitlist"
	requestOTPHandler "github.com/m04kA/SMC-EnrollmentService/internal/api/handlers/request_otp"
	requestSeatHandler "github.com/m04kA/SMC-EnrollmentService/internal/api/handlers/request_seat"
	withdrawWaitlistHandler "github.com/m04kA/SMC-EnrollmentService/internal/api/handlers/withdraw_waitlist"
	"github.com/m04kA/SMC-EnrollmentService/internal/api/middleware"
	"github.com/m04kA/SMC-EnrollmentService/internal/config"
	"github.com/m04kA/SMC-EnrollmentService/internal/infra/migrate"
	bookingRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/booking"
	ratelimitStore "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/ratelimit"
	slotRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/slot"
	waitlistRepo "github.com/m04kA/SMC-EnrollmentService/internal/infra/storage/waitlist"
	notifyServiceClient "github.com/m04kA/SMC-EnrollmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-EnrollmentService/internal/scheduler"
	capacityService "github.com/m04kA/SMC-EnrollmentService/internal/service/capacity"
	ratelimitService "github.com/m04kA/SMC-EnrollmentService/internal/service/ratelimit"
	waitlistService "github.com/m04kA/SMC-EnrollmentService/internal/service/waitlist"
	cancelBookingUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/cancel_booking"
	promoteNextUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/promote_next"
	requestOTPUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_otp"
	requestSeatUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/request_seat"
	sweepExpiredUC "github.com/m04kA/SMC-EnrollmentService/internal/usecase/sweep_expired"
	"github.com/m04kA/SMC-EnrollmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-EnrollmentService/pkg/keymutex"
	"github.com/m04kA/SMC-EnrollmentService/pkg/logger"
	"github.com/m04kA/SMC-EnrollmentService/pkg/metrics"
	"github.com/m04kA/SMC-EnrollmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-EnrollmentService/pkg/txmanager"
)

// Доменные счетчики, общие для сервисов и use case-ов
// При выключенных метриках подставляется noop-реализация
type domainMetrics interface {
	IncSeatConfirmed()
	IncStudentWaitlisted()
	IncPromotion()
	AddWaitlistExpired(n int)
	IncRateLimitRejection()
	IncNotificationFailure()
}

type noopMetrics struct{}

func (noopMetrics) IncSeatConfirmed()        {}
func (noopMetrics) IncStudentWaitlisted()    {}
func (noopMetrics) IncPromotion()            {}
func (noopMetrics) AddWaitlistExpired(n int) {}
func (noopMetrics) IncRateLimitRejection()   {}
func (noopMetrics) IncNotificationFailure()  {}

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

	log.Info("Starting SMC-EnrollmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	var businessMetrics domainMetrics = noopMetrics{}
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		businessMetrics = metricsCollector
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
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Применяем миграции
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrate.Up(migrateCtx, db); err != nil {
		cancelMigrate()
		log.Fatal("Failed to apply migrations: %v", err)
	}
	cancelMigrate()

	if version, err := migrate.Version(context.Background(), db); err == nil {
		log.Info("Database migrations applied, schema version %d", version)
	}

	// Инициализируем клиента сервиса уведомлений
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (NotifyService=%s timeout=%ds)",
		cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository     *slotRepo.Repository
		bookingRepository  *bookingRepo.Repository
		waitlistRepository *waitlistRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		waitlistRepository = waitlistRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		waitlistRepository = waitlistRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Общий реестр per-slot блокировок: все мутации очереди и admission
	// решения одного слота сериализуются через него
	slotLocker := keymutex.New()

	// Инициализируем сервисы
	capacitySvc := capacityService.NewService(slotRepository, bookingRepository, log)

	waitlistSvc := waitlistService.NewService(
		waitlistRepository,
		slotRepository,
		bookingRepository,
		capacitySvc,
		slotLocker,
		time.Duration(cfg.Waitlist.TTLHours)*time.Hour,
		log,
	)

	// Хранилище окон лимитера: in-memory либо Redis для нескольких инстансов
	var windowStore ratelimitService.WindowStore
	var redisClient *redis.Client

	if cfg.RateLimit.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()

		windowStore = ratelimitStore.NewRedisStore(redisClient)
		log.Info("Rate limit backend: redis (addr=%s)", cfg.Redis.Addr)
	} else {
		windowStore = ratelimitStore.NewMemoryStore()
		log.Info("Rate limit backend: memory")
	}

	rateLimitSvc := ratelimitService.NewService(
		windowStore,
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
		businessMetrics,
		log,
	)

	// Инициализируем use cases
	promoteNextUseCase := promoteNextUC.NewUseCase(
		slotRepository,
		bookingRepository,
		waitlistSvc,
		notifyClient,
		txMgr,
		slotLocker,
		businessMetrics,
		log,
	)

	requestSeatUseCase := requestSeatUC.NewUseCase(
		slotRepository,
		bookingRepository,
		waitlistRepository,
		waitlistSvc,
		notifyClient,
		txMgr,
		slotLocker,
		businessMetrics,
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		promoteNextUseCase,
		txMgr,
		slotLocker,
		log,
	)

	sweepExpiredUseCase := sweepExpiredUC.NewUseCase(
		waitlistRepository,
		waitlistSvc,
		notifyClient,
		businessMetrics,
		log,
	)

	requestOTPUseCase := requestOTPUC.NewUseCase(rateLimitSvc, notifyClient, log)

	// Инициализируем handlers
	requestSeat := requestSeatHandler.NewHandler(requestSeatUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	withdrawWaitlist := withdrawWaitlistHandler.NewHandler(waitlistSvc, log)
	getSlotWaitlist := getSlotWaitlistHandler.NewHandler(waitlistSvc, log)
	getStudentWaitlist := getStudentWaitlistHandler.NewHandler(waitlistSvc, log)
	requestOTP := requestOTPHandler.NewHandler(requestOTPUseCase, log)

	// Фоновые задачи: вытеснение просроченных записей и очистка окон лимитера
	backgroundScheduler := scheduler.New(
		sweepExpiredUseCase,
		rateLimitSvc,
		time.Duration(cfg.Sweeper.IntervalMinutes)*time.Minute,
		time.Duration(cfg.RateLimit.CleanupIntervalMinutes)*time.Minute,
		log,
	)
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	backgroundScheduler.Start(schedulerCtx)
	defer cancelScheduler()

	// Настраиваем роутер
	r := mux.NewRouter()

	// Грубая защита от флуда на уровне транспорта,
	// бизнес-лимит OTP считается отдельно в rate limit сервисе
	stopRateLimiterCh := make(chan struct{})
	ipLimiter := middleware.NewRateLimiter(50, 100, stopRateLimiterCh)
	r.Use(ipLimiter.Middleware)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Запрос одноразового кода (выполняется до аутентификации)
	api.HandleFunc("/otp/request", requestOTP.Handle).Methods(http.MethodPost)

	// Очередь слота
	api.HandleFunc("/slots/{slotId}/waitlist", getSlotWaitlist.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Запрос места: бронирование либо постановка в лист ожидания
	protected.HandleFunc("/seat-requests", requestSeat.Handle).Methods(http.MethodPost)

	// Выход из листа ожидания
	protected.HandleFunc("/slots/{slotId}/waitlist/withdraw", withdrawWaitlist.Handle).Methods(http.MethodPost)

	// Записи студента во всех очередях
	protected.HandleFunc("/students/{studentId}/waitlist", getStudentWaitlist.Handle).Methods(http.MethodGet)

	// Отмена бронирования с автоматическим промоушеном
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи
	backgroundScheduler.Stop()
	cancelScheduler()
	close(stopRateLimiterCh)

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
