package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/suchimauz/booking-link-engine/internal/config"
	"github.com/suchimauz/booking-link-engine/internal/core/ports/out"
)

// NewPostgresDB открывает пул соединений с повторными попытками:
// при старте в контейнерах база может подниматься дольше сервиса
func NewPostgresDB(cfg *config.Config, logger out.LoggerPort) (*sql.DB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Postgres.User, cfg.Postgres.Password,
		cfg.Postgres.Host, cfg.Postgres.Port,
		cfg.Postgres.DBName, cfg.Postgres.SSLMode)

	var db *sql.DB
	var err error
	maxRetries := 10

	for i := 1; i <= maxRetries; i++ {
		logger.Info("postgres.connect.attempt", out.LogFields{
			"attempt": i,
			"max":     maxRetries,
		})

		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
		}

		if err == nil {
			logger.Info("postgres.connect.success", out.LogFields{
				"host": cfg.Postgres.Host,
				"db":   cfg.Postgres.DBName,
			})
			return db, nil
		}

		logger.Warn("postgres.connect.retry", out.LogFields{
			"error": err.Error(),
		})
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("postgres.connect.failed: %w", err)
}
