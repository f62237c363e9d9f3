package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/ozon-tracker/config"
	"github.com/athebyme/ozon-tracker/internal/adapters/cache"
	"github.com/athebyme/ozon-tracker/internal/adapters/logger"
	"github.com/athebyme/ozon-tracker/internal/adapters/ozon"
	"github.com/athebyme/ozon-tracker/internal/adapters/storage"
	"github.com/athebyme/ozon-tracker/internal/api"
	"github.com/athebyme/ozon-tracker/internal/domain/services"
	"github.com/athebyme/ozon-tracker/internal/interfaces"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	// Кэш не является обязательной зависимостью: при недоступном Redis
	// сервис продолжает работу без кэширования
	var cacheClient interfaces.CachePort
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisCache(
			ctx,
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			log.Warn("Redis недоступен, сервис работает без кэша",
				interfaces.LogField{Key: "error", Value: err.Error()})
		} else {
			cacheClient = redisClient
			defer redisClient.Close()
			log.Info("Кэш инициализирован")
		}
	}

	ozonClient, err := ozon.NewClient(ozon.Config{
		BaseURL:  cfg.Ozon.BaseURL,
		ClientID: cfg.Ozon.ClientID,
		APIKey:   cfg.Ozon.APIKey,
		Timeout:  cfg.Ozon.Timeout,
	})
	if err != nil {
		log.Fatal("Ошибка инициализации клиента Ozon Seller API",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Клиент Ozon Seller API инициализирован")

	store := storage.NewMemoryStore()
	syncService := services.NewSyncService(ozonClient, store, cacheClient, log, cfg.Ozon.PageLimit)
	log.Info("Сервис синхронизации инициализирован")

	// Первичная синхронизация при старте. Ошибка не фатальна:
	// статус соединения и причина попадают в журнал синхронизаций
	startupCtx, startupCancel := context.WithTimeout(ctx, cfg.Ozon.Timeout*3+5*time.Second)
	if count, err := syncService.SyncFromRemote(startupCtx); err != nil {
		log.Warn("Первичная синхронизация не удалась",
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "connection_status", Value: store.ConnectionStatus()})
	} else {
		log.Info("Первичная синхронизация завершена",
			interfaces.LogField{Key: "products", Value: count})
	}
	startupCancel()

	router := api.SetupRouter(syncService, store, cacheClient, log, cfg.Security.CORSAllowOrigins, cfg.Metrics.Enabled)
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		log.Info("HTTP сервер остановлен")

		if cacheClient != nil {
			if err := cacheClient.Close(); err != nil {
				log.Error("Ошибка при закрытии Redis",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
	_ = log.Sync()
}
