package db

import (
	"fmt"
	"time"

	"github.com/booktime/booktime/config"
	appLogger "github.com/booktime/booktime/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const slowQueryThreshold = 500 * time.Millisecond

// queryWriter forwards gorm's SQL trace to the application logger.
type queryWriter struct {
	log *appLogger.Logger
}

func (w queryWriter) Printf(format string, args ...interface{}) {
	w.log.Debug(fmt.Sprintf(format, args...))
}

func gormLogger(logQueries bool) logger.Interface {
	if !logQueries {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(queryWriter{log: appLogger.Named("sql")}, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Info,
		IgnoreRecordNotFoundError: true,
	})
}

// Initialize opens the PostgreSQL connection pool.
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":        cfg.Host,
		"port":        cfg.Port,
		"database":    cfg.DBName,
		"user":        cfg.User,
		"log_queries": cfg.LogQueries,
	})

	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger(cfg.LogQueries),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database did not answer ping: %w", err)
	}
	DB = conn

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"max_idle_conns": cfg.MaxIdleConns,
		"max_open_conns": cfg.MaxOpenConns,
	})
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
