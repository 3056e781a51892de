package sessionsqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pressly/goose/v3"

	_ "github.com/mattn/go-sqlite3"

	slogctx "github.com/veqryn/slog-context"
)

const (
	DriverName = "sqlite3"
	MemoryPath = ":memory:"

	dialect = "sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Prepare creates the directory holding the database file.
func Prepare(path string) error {
	if path == MemoryPath {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	return nil
}

// Migrate brings the schema of db up to date.
func Migrate(ctx context.Context, db *sql.DB) error {
	// A second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{ctx: ctx})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// Open opens or creates the database at path and migrates it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := Prepare(path); err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

type gooseLogger struct {
	ctx context.Context
}

func (l gooseLogger) Printf(format string, v ...any) {
	slogctx.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	slogctx.Error(l.ctx, fmt.Sprintf(format, v...))
}
