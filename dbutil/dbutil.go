package dbutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func GetConnectionString(typ, user, pass, host, port, db string) string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s?sslmode=disable", typ, user, pass, host, port, db)
}

func InitDbPool(connStr string) (*pgxpool.Pool, error) {
	return pgxpool.New(context.Background(), connStr)
}

// RunMigrateScripts applies all pending up migrations from migrateDir (a file:// URL)
// and reports the schema version before and after.
func RunMigrateScripts(migrateDir, connStr string) (uint, uint, bool, error) {
	var versionFrom, versionTo uint
	var dirty bool
	m, err := migrate.New(migrateDir, connStr)
	if err != nil {
		return versionFrom, versionTo, dirty, fmt.Errorf("failed to initiate migration: %w", err)
	}
	defer m.Close()
	versionFrom, dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return versionFrom, versionTo, dirty, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return versionFrom, versionTo, dirty, fmt.Errorf("database schema is dirty at version %d", versionFrom)
	}
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return versionFrom, versionTo, dirty, fmt.Errorf("failed to run migration: %w", err)
	}
	versionTo, dirty, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return versionFrom, versionTo, dirty, fmt.Errorf("failed to get migration version after running: %w", err)
	}
	return versionFrom, versionTo, dirty, nil
}

func StartPGContainer() (context.Context, *postgres.PostgresContainer, string, error) {
	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx, "postgres",
		postgres.WithDatabase("econtent"),
		postgres.WithUsername("econtent"),
		postgres.WithPassword("econtent"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(10*time.Second)),
	)
	if err != nil {
		return ctx, pgContainer, "", fmt.Errorf("failed to start db container: %w", err)
	}
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return ctx, pgContainer, "", fmt.Errorf("failed to get conn string: %w", err)
	}
	return ctx, pgContainer, connStr, nil
}

func TerminatePGContainer(ctx context.Context, pgContainer testcontainers.Container) error {
	if err := pgContainer.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to stop db container: %w", err)
	}
	return nil
}
