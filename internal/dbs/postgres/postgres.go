package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const pkg = "postgres/"

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Config struct {
	Addr     string
	Port     int
	User     string
	Password string
	DB       string
	SSLMode  string
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Addr, c.Port, c.User, c.Password, c.DB, sslMode)
}

func New(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	op := pkg + "New"

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db, nil
}

// Migrate applies every embedded migration that has not run yet.
// The database handle stays open; the caller owns it.
func Migrate(db *sqlx.DB, dbName string) error {
	op := pkg + "Migrate"

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}

	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{DatabaseName: dbName})
	if err != nil {
		source.Close()
		return fmt.Errorf("%s: driver: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		source.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}

	return nil
}
