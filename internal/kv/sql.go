package kv

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	loadQuery   = `SELECT value FROM kv_entries WHERE key = ?`
	saveQuery   = `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteQuery = `DELETE FROM kv_entries WHERE key = ?`
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SQLBackend stores values in the kv_entries table of a SQLite or
// PostgreSQL database
type SQLBackend struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) a SQLite database file and
// migrates it
func OpenSQLite(path string, logger *zap.Logger) (*SQLBackend, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sqlx.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	backend, err := newSQLBackend(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Key-value store initialized",
		zap.String("driver", DriverSQLite),
		zap.String("db_path", path))
	return backend, nil
}

// OpenPostgres connects to a PostgreSQL database and migrates it
func OpenPostgres(url string, logger *zap.Logger) (*SQLBackend, error) {
	db, err := sqlx.Connect(DriverPostgres, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	backend, err := newSQLBackend(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Key-value store initialized", zap.String("driver", DriverPostgres))
	return backend, nil
}

func newSQLBackend(db *sqlx.DB, logger *zap.Logger) (*SQLBackend, error) {
	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLBackend{db: db, logger: logger}, nil
}

// migrateSchema applies the embedded migrations. The migrate instance is
// not closed because that would close db as well.
func migrateSchema(db *sqlx.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver database.Driver
	switch db.DriverName() {
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	case DriverPostgres:
		driver, err = migratepostgres.WithInstance(db.DB, &migratepostgres.Config{})
	default:
		return fmt.Errorf("unsupported driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("failed to get database instance for running migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.DriverName(), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (b *SQLBackend) Load(key string) ([]byte, bool, error) {
	var value string
	err := b.db.Get(&value, b.db.Rebind(loadQuery), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (b *SQLBackend) Save(key string, value []byte) error {
	_, err := b.db.Exec(b.db.Rebind(saveQuery), key, string(value), time.Now().UnixMilli())
	return err
}

func (b *SQLBackend) Delete(key string) error {
	_, err := b.db.Exec(b.db.Rebind(deleteQuery), key)
	return err
}

// Close closes the database connection
func (b *SQLBackend) Close() error {
	return b.db.Close()
}

// Open picks a backend by driver name. For sqlite, dsn is a file path;
// for postgres, a connection URL.
func Open(driver, dsn string, logger *zap.Logger) (Backend, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(dsn, logger)
	case DriverPostgres:
		return OpenPostgres(dsn, logger)
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", driver)
	}
}
