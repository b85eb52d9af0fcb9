package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Drivers suportados pelas migrações
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// RunMigrations aplica as migrações pendentes do driver informado.
// Para o PostgreSQL, target é a DATABASE_URL; para o SQLite, o caminho do arquivo.
func RunMigrations(driver, target string, log logger.Logger) error {
	m, err := newMigrate(driver, target)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn("erro ao fechar migrate", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("nenhuma migração pendente", "driver", driver)
			return nil
		}
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}

	version, _, _ := m.Version()
	log.Info("migrações aplicadas com sucesso", "driver", driver, "version", version)
	return nil
}

// RollbackMigrations reverte todas as migrações do driver informado
func RollbackMigrations(driver, target string, log logger.Logger) error {
	m, err := newMigrate(driver, target)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("erro ao reverter migrações: %w", err)
	}
	log.Info("migrações revertidas", "driver", driver)
	return nil
}

func newMigrate(driver, target string) (*migrate.Migrate, error) {
	var dir, databaseURL string
	switch driver {
	case DriverPostgres:
		if target == "" {
			return nil, ErrMissingDatabaseURL
		}
		dir, databaseURL = "migrations/postgres", target
	case DriverSQLite:
		dir, databaseURL = "migrations/sqlite", "sqlite://"+target
	default:
		return nil, fmt.Errorf("driver de banco desconhecido: %q", driver)
	}

	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir migrações: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("erro ao criar fonte de migrações: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar migrate: %w", err)
	}
	return m, nil
}
