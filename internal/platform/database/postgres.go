package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/gautamkshah/wise-academy/internal/platform/config"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

//go:embed schema.sql
var schema string

var DB *sql.DB

func Connect(log *logger.Logger) {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatal("Error opening database", "error", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		log.Fatal("Error connecting to database", "error", err)
	}

	log.Info("Connected to PostgreSQL", "host", config.AppConfig.DBHost, "db", config.AppConfig.DBName)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	return nil
}

func Close(log *logger.Logger) {
	if DB != nil {
		DB.Close()
		log.Info("Database connection closed")
	}
}
