package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Postgres struct {
		Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
		User     string `env:"POSTGRES_USER" envDefault:"booking"`
		Password string `env:"POSTGRES_PASSWORD"`
		DBName   string `env:"POSTGRES_DB" envDefault:"booking"`
		SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	}

	MeetingLink struct {
		Enabled  bool   `env:"MEETING_LINK_ENABLED"`
		URL      string `env:"MEETING_LINK_URL"`
		Username string `env:"MEETING_LINK_USERNAME"`
		Password string `env:"MEETING_LINK_PASSWORD"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"booking_engine:booking_engine"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMq struct {
		Enabled bool   `env:"RABBITMQ_ENABLED"`
		AmqpUri string `env:"RABBITMQ_URL"`

		QueueConfig struct {
			CalendarQueueName     string `env:"RABBITMQ_CALENDAR_QUEUE" envDefault:"booking-engine.calendar"`
			CalendarQueueBind     string `env:"RABBITMQ_CALENDAR_QUEUE_BIND" envDefault:"calendar.booking-engine.#"`
			CalendarQueueExchange string `env:"RABBITMQ_CALENDAR_QUEUE_EXCHANGE" envDefault:"calendar"`
		}

		NotifyExchange   string `env:"RABBITMQ_NOTIFY_EXCHANGE" envDefault:"booking-engine.events"`
		NotifyKeyPrefix  string `env:"RABBITMQ_NOTIFY_KEY_PREFIX" envDefault:"booking-engine"`
	}

	Cache struct {
		Enabled   bool `env:"CACHE_ENABLED"`
		SlotsSize int  `env:"CACHE_SLOTS_SIZE" envDefault:"1000"`
	}

	Booking struct {
		// Бюджет на побочные эффекты после сохранения брони (секунды)
		SideEffectTimeoutSeconds int `env:"BOOKING_SIDE_EFFECT_TIMEOUT" envDefault:"5"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Разбор пар логин:пароль для basic-авторизации между сервисами
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	// Кэш без RabbitMQ жил бы без инвалидации от календаря, поэтому не включаем
	if !cfg.RabbitMq.Enabled {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

func (c *Config) SideEffectTimeout() time.Duration {
	return time.Duration(c.Booking.SideEffectTimeoutSeconds) * time.Second
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
