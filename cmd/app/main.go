package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/booking-link-engine/internal/adapters/in/http"
	"github.com/suchimauz/booking-link-engine/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/booking-link-engine/internal/adapters/out/cache"
	"github.com/suchimauz/booking-link-engine/internal/adapters/out/logger"
	"github.com/suchimauz/booking-link-engine/internal/adapters/out/meeting"
	"github.com/suchimauz/booking-link-engine/internal/adapters/out/notifier"
	"github.com/suchimauz/booking-link-engine/internal/adapters/out/postgres"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
	"github.com/suchimauz/booking-link-engine/internal/core/services"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMq.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключение к Postgres и миграция схемы
	db, err := postgres.NewPostgresDB(cfg, logger.WithModule("Postgres"))
	if err != nil {
		logger.Error("app.postgres.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		logger.Error("app.postgres.migrate_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Инициализация адаптеров
	storageAdapter := postgres.NewStorageAdapter(db, logger.WithModule("StorageAdapter"))
	meetingAdapter := meeting.NewMeetingAdapter(cfg, logger.WithModule("MeetingAdapter"))

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		lruAdapter, err := cache.NewCacheAdapter(cfg, logger.WithModule("CacheAdapter"))
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = lruAdapter
	}

	var notifierAdapter out.NotifierPort
	if cfg.RabbitMq.Enabled {
		rabbitNotifier, err := notifier.NewRabbitMqNotifier(cfg, logger.WithModule("RabbitMqNotifier"))
		if err != nil {
			logger.Error("app.notifier.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		notifierAdapter = rabbitNotifier
		defer func() {
			if err := rabbitNotifier.Stop(); err != nil {
				logger.Error("app.notifier.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	// Инициализация сервисов
	availabilityService := services.NewAvailabilityService(
		storageAdapter,
		cacheAdapter,
		logger.WithModule("AvailabilityService"),
		cfg,
	)
	bookingService := services.NewBookingService(
		storageAdapter,
		meetingAdapterOrNil(meetingAdapter),
		notifierAdapter,
		cacheAdapter,
		logger.WithModule("BookingService"),
		cfg,
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := http.NewBookingController(availabilityService, bookingService, cfg)
	controller.RegisterRoutes(router)

	// Настройка слушателя изменений календаря только если RabbitMQ включен
	if cfg.RabbitMq.Enabled {
		listener, err := rabbitmq.NewCalendarListener(
			availabilityService,
			cfg,
			logger.WithModule("CalendarListener"),
		)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	logger.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}

// meetingAdapterOrNil: выключенный провайдер - это типизированный nil *MeetingAdapter,
// его нельзя класть в интерфейс напрямую, иначе проверка на nil перестанет работать
func meetingAdapterOrNil(adapter *meeting.MeetingAdapter) out.MeetingLinkPort {
	if adapter == nil {
		return nil
	}
	return adapter
}
