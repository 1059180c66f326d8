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

	cancelScheduleHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/cancel_schedule"
	createScheduleHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/create_schedule"
	getPaymentHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/get_payment"
	getScheduleHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/get_schedule"
	getSlotAvailabilityHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/get_slot_availability"
	getUserSchedulesHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/get_user_schedules"
	listSchedulesHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/list_schedules"
	recordPaymentHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/record_payment"
	updateStatusHandler "github.com/m04kA/MDC-ScheduleService/internal/api/handlers/update_status"
	"github.com/m04kA/MDC-ScheduleService/internal/api/middleware"
	"github.com/m04kA/MDC-ScheduleService/internal/config"
	idempotencyRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/idempotency"
	scheduleRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
	userServiceClient "github.com/m04kA/MDC-ScheduleService/internal/integrations/userservice"
	schedulesService "github.com/m04kA/MDC-ScheduleService/internal/service/schedules"
	createBookingUC "github.com/m04kA/MDC-ScheduleService/internal/usecase/create_booking"
	getSlotAvailabilityUC "github.com/m04kA/MDC-ScheduleService/internal/usecase/get_slot_availability"
	"github.com/m04kA/MDC-ScheduleService/pkg/dbmetrics"
	"github.com/m04kA/MDC-ScheduleService/pkg/logger"
	"github.com/m04kA/MDC-ScheduleService/pkg/metrics"
	"github.com/m04kA/MDC-ScheduleService/pkg/simpletxmanager"
	"github.com/m04kA/MDC-ScheduleService/pkg/txmanager"
)

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

	log.Info("Starting MDC-ScheduleService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds, CatalogService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout, cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		scheduleRepository    *scheduleRepo.Repository
		idempotencyRepository *idempotencyRepo.Repository
	)

	var txMgr createBookingUC.TransactionManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		idempotencyRepository = idempotencyRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		scheduleRepository = scheduleRepo.NewRepository(db)
		idempotencyRepository = idempotencyRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Фоновая очистка отработавших ключей идемпотентности
	cleanupStopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := idempotencyRepository.Cleanup(context.Background(), 24*time.Hour); err != nil {
					log.Warn("Idempotency keys cleanup failed: %v", err)
				}
			case <-cleanupStopCh:
				return
			}
		}
	}()

	// Инициализируем сервисы
	scheduleSvc := schedulesService.NewService(
		scheduleRepository,
		catalogClient,
		userClient,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		scheduleRepository,
		idempotencyRepository,
		catalogClient,
		txMgr,
		log,
	)

	getSlotAvailabilityUseCase := getSlotAvailabilityUC.NewUseCase(
		scheduleRepository,
		catalogClient,
		log,
	)

	// Инициализируем handlers
	createSchedule := createScheduleHandler.NewHandler(createBookingUseCase, log)
	getSlotAvailability := getSlotAvailabilityHandler.NewHandler(getSlotAvailabilityUseCase, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	cancelSchedule := cancelScheduleHandler.NewHandler(scheduleSvc, log)
	updateStatus := updateStatusHandler.NewHandler(scheduleSvc, log)
	getUserSchedules := getUserSchedulesHandler.NewHandler(scheduleSvc, log)
	listSchedules := listSchedulesHandler.NewHandler(scheduleSvc, log)
	getPayment := getPaymentHandler.NewHandler(scheduleSvc, log)
	recordPayment := recordPaymentHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	r.Use(middleware.RequestID)

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

	// Доступность слотов недели для пакета
	api.HandleFunc("/packages/{packageId}/slot-availability",
		getSlotAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи расписания ---
	// Создание записи (бронирование слота)
	protected.HandleFunc("/schedules", createSchedule.Handle).Methods(http.MethodPost)

	// Листинг записей с фильтрацией и пагинацией
	protected.HandleFunc("/schedules", listSchedules.Handle).Methods(http.MethodGet)

	// Получение записи по ID
	protected.HandleFunc("/schedules/{scheduleId}", getSchedule.Handle).Methods(http.MethodGet)

	// Переход статуса записи
	protected.HandleFunc("/schedules/{scheduleId}/status", updateStatus.Handle).Methods(http.MethodPatch)

	// Отмена записи
	protected.HandleFunc("/schedules/{scheduleId}/cancel", cancelSchedule.Handle).Methods(http.MethodPatch)

	// --- Платежи ---
	// Платежное состояние записи
	protected.HandleFunc("/schedules/{scheduleId}/payment", getPayment.Handle).Methods(http.MethodGet)

	// Фиксация оплаты (callback биллинга)
	protected.HandleFunc("/schedules/{scheduleId}/payments", recordPayment.Handle).Methods(http.MethodPost)

	// --- Записи пользователя ---
	protected.HandleFunc("/users/{userId}/schedules", getUserSchedules.Handle).Methods(http.MethodGet)

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

	close(cleanupStopCh)

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
