package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	cancelbookinghandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/cancel_booking"
	getavailableslotshandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_available_slots"
	getbookinghandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_booking"
	getcourtbookingshandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_court_bookings"
	getcourtshandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_courts"
	getuserbookingshandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_user_bookings"
	reserveslothandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/reserve_slot"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/config"
	bookingstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	slotstore "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-CourtBookingService/internal/worker/expiration"
	"github.com/m04kA/SMC-CourtBookingService/migrations"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-CourtBookingService/pkg/txmanager"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	applyMigrations := flag.Bool("migrate", true, "apply database migrations on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.Path, cfg.Logs.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting court booking service on port %d", cfg.Server.Port)

	// Подключение к базе
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatal("failed to ping database: %v", err)
	}

	if *applyMigrations {
		if err := migrations.Up(db); err != nil {
			log.Fatal("failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// Метрики опциональны: при выключенных метриках репозитории работают
	// с голым *sql.DB и упрощенным транзакционным менеджером.
	var (
		dbExecutor       dbmetrics.DBExecutor
		txMgr            bookings.TransactionManager
		metricsCollector *metrics.Metrics
		stopPoolStats    chan struct{}
	)

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		stopPoolStats = make(chan struct{})
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopPoolStats)
		defer close(stopPoolStats)

		dbExecutor = wrappedDB
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		dbExecutor = db
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Репозитории
	slotRepo := slotstore.NewRepository(dbExecutor)
	bookingRepo := bookingstore.NewRepository(dbExecutor)
	courtRepo := courtstore.NewRepository(dbExecutor)

	// Интеграции
	userClient := userservice.NewClient(cfg.UserService.BaseURL, cfg.UserService.TimeoutDuration(), log)

	// Сервисы и use case-ы
	bookingService := bookings.NewService(bookingRepo, slotRepo, courtRepo, txMgr, log)
	reserveUseCase := reserve_slot.NewUseCase(slotRepo, bookingRepo, courtRepo, log)
	slotsUseCase := get_available_slots.NewUseCase(slotRepo, courtRepo, log)

	// HTTP-обработчики
	reserveHandler := reserveslothandler.NewHandler(reserveUseCase, log)
	cancelHandler := cancelbookinghandler.NewHandler(bookingService, log)
	getBookingHandler := getbookinghandler.NewHandler(bookingService, log)
	userBookingsHandler := getuserbookingshandler.NewHandler(bookingService, log)
	courtBookingsHandler := getcourtbookingshandler.NewHandler(bookingService, log)
	slotsHandler := getavailableslotshandler.NewHandler(slotsUseCase, log)
	courtsHandler := getcourtshandler.NewHandler(courtRepo, log)

	// Роутер
	router := mux.NewRouter()
	router.Use(middleware.RequestID())
	if metricsCollector != nil {
		router.Use(middleware.Metrics(metricsCollector))
		router.Path("/metrics").Handler(promhttp.Handler())
	}
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Публичные маршруты: каталог и свободные слоты
	api.HandleFunc("/courts", courtsHandler.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId}", courtsHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId}/available-slots", slotsHandler.Handle).Methods(http.MethodGet)

	// Защищенные маршруты: всё, что касается бронирований
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(userClient, log))
	protected.HandleFunc("/bookings", reserveHandler.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBookingHandler.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelHandler.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/users/{userId}/bookings", userBookingsHandler.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/courts/{courtId}/bookings", courtBookingsHandler.Handle).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Sweeper.Enabled {
		var sweeperMetrics expiration.Metrics
		if metricsCollector != nil {
			sweeperMetrics = metricsCollector
		}
		sweeper := expiration.NewSweeper(bookingService, cfg.Sweeper.IntervalDuration(), sweeperMetrics, log)
		group.Go(func() error {
			if err := sweeper.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("sweeper: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
		os.Exit(1)
	}

	log.Info("Service stopped")
}
