// Package database wires the MySQL store: connection setup, migrations and the
// transaction runner every engine operation goes through.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationsTable keeps this service's migration version apart from other services sharing the schema
const migrationsTable = "progress_schema_migrations"

// Connect opens and pings a MySQL connection pool
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// RunMigrations applies the SQL files under migrationsDir. A missing directory falls back
// to ../migrations so the binaries also run from their cmd/ folder.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		migrationsDir = "../" + migrationsDir
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MySQL error numbers that abort a transaction which is safe to run again
const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// RetryCode returns the MySQL error number when err is a transaction conflict
// that can be retried from scratch.
func RetryCode(err error) (uint16, bool) {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return 0, false
	}
	switch mysqlErr.Number {
	case errDeadlock, errLockWaitTimeout, errDuplicateEntry:
		return mysqlErr.Number, true
	}
	return 0, false
}
