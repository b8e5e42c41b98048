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

	cancelBookingHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/get_booking"
	getBookingPolicyHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/get_booking_policy"
	getStationBookingsHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/get_station_bookings"
	getStationPortsHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/get_station_ports"
	getUserBookingsHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/get_user_bookings"
	updateBookingPolicyHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/update_booking_policy"
	updatePortStatusHandler "github.com/m04kA/EVC-BookingService/internal/api/handlers/update_port_status"
	"github.com/m04kA/EVC-BookingService/internal/api/middleware"
	"github.com/m04kA/EVC-BookingService/internal/config"
	availabilityCache "github.com/m04kA/EVC-BookingService/internal/infra/cache/availability"
	policyRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/policy"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	reservationRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/reservation"
	stationServiceClient "github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	policyService "github.com/m04kA/EVC-BookingService/internal/service/policy"
	portsService "github.com/m04kA/EVC-BookingService/internal/service/ports"
	reservationsService "github.com/m04kA/EVC-BookingService/internal/service/reservations"
	createBookingUC "github.com/m04kA/EVC-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/EVC-BookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/EVC-BookingService/internal/worker/expirer"
	"github.com/m04kA/EVC-BookingService/pkg/dbmetrics"
	"github.com/m04kA/EVC-BookingService/pkg/logger"
	"github.com/m04kA/EVC-BookingService/pkg/metrics"
	"github.com/m04kA/EVC-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/EVC-BookingService/pkg/txmanager"
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

	log.Info("Starting EVC-BookingService...")
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

	// Инициализируем клиент StationService
	stationClient := stationServiceClient.NewClient(
		cfg.StationService.URL,
		time.Duration(cfg.StationService.Timeout)*time.Second,
		log,
	)
	log.Info("StationService client initialized (url=%s, timeout=%ds)",
		cfg.StationService.URL, cfg.StationService.Timeout)

	// Инициализируем кеш доступности (если включен).
	// Интерфейсные переменные остаются nil при выключенном Redis,
	// потребители трактуют nil как "без кеша".
	var (
		slotsCacheUC  getAvailableSlotsUC.SlotsCache
		slotsCacheCB  createBookingUC.SlotsCache
		slotsCacheSvc reservationsService.SlotsCache
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		defer rdb.Close()

		slotsCache := availabilityCache.New(rdb, time.Duration(cfg.Redis.TTLMs)*time.Millisecond, log)
		slotsCacheUC = slotsCache
		slotsCacheCB = slotsCache
		slotsCacheSvc = slotsCache
		log.Info("Availability cache enabled (redis=%s, ttl=%dms)", cfg.Redis.Addr, cfg.Redis.TTLMs)
	}

	// Бизнес-метрики для use cases и сервисов (nil = выключены)
	var (
		bookingMetrics     createBookingUC.BusinessMetrics
		reservationMetrics reservationsService.BusinessMetrics
	)
	if cfg.Metrics.Enabled {
		bookingMetrics = metricsCollector
		reservationMetrics = metricsCollector
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		portRepository        *portRepo.Repository
		policyRepository      *policyRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		portRepository = portRepo.NewRepository(wrappedDB)
		policyRepository = policyRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		portRepository = portRepo.NewRepository(db)
		policyRepository = policyRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		stationClient,
		slotsCacheSvc,
		reservationMetrics,
		log,
	)
	policySvc := policyService.NewService(
		policyRepository,
		portRepository,
		stationClient,
		log,
	)
	portSvc := portsService.NewService(
		portRepository,
		stationClient,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		reservationRepository,
		portRepository,
		policyRepository,
		stationClient,
		txMgr,
		slotsCacheCB,
		bookingMetrics,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		reservationRepository,
		portRepository,
		policyRepository,
		stationClient,
		txMgr,
		slotsCacheUC,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(reservationSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(reservationSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(reservationSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(reservationSvc, log)
	getStationBookings := getStationBookingsHandler.NewHandler(reservationSvc, log)
	getStationPorts := getStationPortsHandler.NewHandler(portSvc, log)
	updatePortStatus := updatePortStatusHandler.NewHandler(portSvc, log)
	getBookingPolicy := getBookingPolicyHandler.NewHandler(policySvc, log)
	updateBookingPolicy := updateBookingPolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

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

	// Календарь доступных слотов порта
	api.HandleFunc("/stations/{stationId}/ports/{portId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Список портов станции
	api.HandleFunc("/stations/{stationId}/ports",
		getStationPorts.Handle).Methods(http.MethodGet)

	// Действующая политика бронирования станции/порта
	api.HandleFunc("/stations/{stationId}/booking-policy",
		getBookingPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Брони ---
	// Создание брони
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение брони по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена брони
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// Подтверждение брони (начало зарядки)
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)

	// История броней пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Управление станцией (для менеджеров) ---
	// Список броней станции
	protected.HandleFunc("/stations/{stationId}/bookings", getStationBookings.Handle).Methods(http.MethodGet)

	// Изменение статуса порта
	protected.HandleFunc("/stations/{stationId}/ports/{portId}/status",
		updatePortStatus.Handle).Methods(http.MethodPatch)

	// Создание/обновление политики бронирования
	protected.HandleFunc("/stations/{stationId}/booking-policy",
		updateBookingPolicy.Handle).Methods(http.MethodPut)

	// Запускаем фоновую джобу истечения pending-броней
	var expirerWorker *expirer.Worker
	if cfg.Expirer.Enabled {
		expirerWorker = expirer.NewWorker(
			reservationSvc,
			cfg.Expirer.Schedule,
			cfg.Expirer.GraceMinutes,
			time.Duration(cfg.Expirer.RunTimeout)*time.Second,
			log,
		)
		if err := expirerWorker.Start(); err != nil {
			log.Fatal("Failed to start expirer worker: %v", err)
		}
	}

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

	// Останавливаем фоновую джобу
	if expirerWorker != nil {
		expirerWorker.Stop()
	}

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
