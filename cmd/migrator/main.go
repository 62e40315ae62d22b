package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	databaseURLFlag   = "database-url"
	migrationPathFlag = "migrations-path"
)

func main() {
	databaseURL, migrationsPath := getFlagsValues()
	validateFlags(databaseURL, migrationsPath)
	makeMigrations(databaseURL, migrationsPath)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() (databaseURL, migrations string) {
	urlFlag := pflag.StringP(databaseURLFlag, "d", os.Getenv("STOREFRONT_DATABASE_URL"), "")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "migrations", "")
	pflag.Parse()
	return *urlFlag, *migrationsPath
}

func validateFlags(databaseURL, migrationsPath string) {
	var errs []error

	if databaseURL == "" {
		errs = append(errs, fmt.Errorf("--%s flag or STOREFRONT_DATABASE_URL: required", databaseURLFlag))
	}

	if migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

func makeMigrations(databaseURL, migrationsPath string) {
	// golang-migrate's pgx driver registers under the pgx5 scheme.
	sourceURL := fmt.Sprintf("file://%s", migrationsPath)
	dbURL := strings.Replace(databaseURL, "postgres://", "pgx5://", 1)
	dbURL = strings.Replace(dbURL, "postgresql://", "pgx5://", 1)

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migrations applied\n")
}

func fallDown() {
	os.Exit(2)
}
