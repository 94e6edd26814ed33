package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens the task store. The sqlite driver is the default; DB_DRIVER=pgx
// with a postgres DSN selects PostgreSQL. All repository SQL is written to run
// on both.
func Init(driver, connection string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		// The database file's directory may not exist on first boot.
		err := os.MkdirAll(filepath.Dir(connection), 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	database, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", driver)

	return database, nil
}
