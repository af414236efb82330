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
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/config"
	"github.com/mudon/freelance-management-system-sub000/internal/handler"
	"github.com/mudon/freelance-management-system-sub000/internal/metrics"
	"github.com/mudon/freelance-management-system-sub000/internal/repository"
	"github.com/mudon/freelance-management-system-sub000/internal/service"
)

const serviceTokenExpiry = time.Hour

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Загрузка конфигурации приложения
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	metrics.Init()

	remote, err := repository.NewRemoteClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	if err != nil {
		logger.Fatalf("Ошибка настройки клиента API: %v", err)
	}

	// Инициализация репозиториев
	logger.Info("Инициализация репозиториев...")
	quoteRepo := repository.NewQuoteRepository(remote, cfg.Endpoints.Quotes, cfg.Location, logger)
	invoiceRepo := repository.NewInvoiceRepository(remote, cfg.Endpoints.Invoices, cfg.Location, logger)
	projectRepo := repository.NewProjectRepository(remote, cfg.Endpoints.Projects, cfg.Location, logger)
	clientRepo := repository.NewClientRepository(remote, cfg.Endpoints.Clients, cfg.Location, logger)

	// Хранилище снимков подключается, только если задан DB_HOST
	var snapshotRepo *repository.SnapshotRepository
	if cfg.SnapshotsEnabled() {
		db, err := sql.Open("postgres", fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		))
		if err != nil {
			logger.Fatalf("Ошибка подключения к базе данных: %v", err)
		}
		defer db.Close()

		// Проверка соединения с БД
		if err := db.Ping(); err != nil {
			logger.Fatalf("Ошибка проверки соединения с БД: %v", err)
		}

		snapshotRepo = repository.NewSnapshotRepository(db, logger)
		if err := snapshotRepo.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("Ошибка создания таблицы снимков: %v", err)
		}
	}

	// Инициализация сервисов
	logger.Info("Инициализация сервисов...")
	authService := service.NewAuthService(cfg.JWTSecret, serviceTokenExpiry, logger)
	emailSender := service.NewEmailSender(logger)
	dashboardService := service.NewDashboardService(
		quoteRepo,
		invoiceRepo,
		projectRepo,
		clientRepo,
		service.DashboardOptions{
			Location: cfg.Location,
			Timeout:  cfg.AggregationTimeout,
			Fallback: cfg.ChartFallback,
		},
		logger,
	)
	snapshotService := service.NewSnapshotService(
		dashboardService,
		snapshotRepo,
		emailSender,
		authService,
		cfg.SnapshotToken,
		cfg.DigestRecipient,
		logger,
	)

	// Инициализация HTTP обработчиков
	logger.Info("Инициализация обработчиков API...")
	dashboardHandler := handler.NewDashboardHandler(dashboardService, snapshotService, logger)

	// Настройка маршрутизатора
	router := mux.NewRouter()
	router.Use(handler.LoggingMiddleware(logger))

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	// Защищенные API маршруты (требуется JWT токен)
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))

	dashboardRouter := apiRouter.PathPrefix("/dashboard").Subrouter()
	dashboardHandler.RegisterRoutes(dashboardRouter)

	// Настройка планировщика снимков дашборда
	c := cron.New()
	if snapshotService.Enabled() {
		logger.Info("Настройка планировщика снимков дашборда...")
		_, err = c.AddFunc(cfg.SnapshotSchedule, func() {
			logger.Info("Запуск создания снимка дашборда")
			if _, err := snapshotService.Run(context.Background()); err != nil {
				logger.WithError(err).Error("Ошибка создания снимка дашборда")
			} else {
				logger.Info("Снимок дашборда создан успешно")
			}
		})
		if err != nil {
			logger.Fatalf("Ошибка настройки планировщика: %v", err)
		}
		c.Start()
	} else {
		logger.Info("Снимки дашборда отключены: нет базы данных и рассылки")
	}

	// Настройка и запуск HTTP сервера
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("Запуск сервера на %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигналов для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера...")
	<-c.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Ошибка при завершении работы сервера: %v", err)
	}
	logger.Info("Сервер успешно остановлен")
}
