package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-hclog"
	"go.mongodb.org/mongo-driver/mongo"
)

//go:embed migrations/*.json
var migrations embed.FS

// migrationLogger adapts hclog to the migrate.Logger interface
type migrationLogger struct {
	log hclog.Logger
}

func (l *migrationLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *migrationLogger) Verbose() bool {
	return l.log.IsDebug()
}

// Migrate declares the collection indexes of database
func Migrate(client *mongo.Client, database string, logger hclog.Logger) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("unable to open migrations: %w", err)
	}

	driver, err := mongodb.WithInstance(client, &mongodb.Config{DatabaseName: database})
	if err != nil {
		return fmt.Errorf("unable to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, database, driver)
	if err != nil {
		return fmt.Errorf("unable to create migrator: %w", err)
	}
	m.Log = &migrationLogger{log: logger}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("No migrations to apply")
			return nil
		}
		return fmt.Errorf("unable to migrate: %w", err)
	}

	logger.Info("Migrations applied")
	return nil
}
