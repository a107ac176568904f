package database

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stwalsh4118/hearth/api/internal/logger"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies every pending migration from the embedded migrations directory.
func (db *Database) Migrate(ctx context.Context, log *logger.Logger) error {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{log: log.Component("migrations")})

	if err := goose.SetDialect(string(goose.DialectPostgres)); err != nil {
		return fmt.Errorf("setting dialect for migrations: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through the application logger.
type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)), nil, nil)
}
