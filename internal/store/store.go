// ABOUTME: Core SQLite store for the mock backend API.
// ABOUTME: Handles database initialization, versioned migrations, and connection management.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Migration version constants
const (
	MigrationV1 = 1 // request_logs table
	MigrationV2 = 2 // restaurants, providers and users
	MigrationV3 = 3 // composite indexes for log aggregation and provider filtering
)

// CurrentSchemaVersion is the target version for the database schema
const CurrentSchemaVersion = MigrationV3

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// dsn applies the connection pragmas through the driver so that every
// pooled connection gets them, not just the first.
func dsn(dbPath string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if dbPath != ":memory:" {
		params += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return dbPath + "?" + params
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection for health endpoints.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Reset deletes every restaurant, provider, user and request log.
func (s *Store) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"providers", "restaurants", "users", "request_logs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	// Restart AUTOINCREMENT counters so reseeded ids match the fixtures.
	if _, err := tx.Exec("DELETE FROM sqlite_sequence"); err != nil {
		return fmt.Errorf("reset sequences: %w", err)
	}
	return tx.Commit()
}

// migrate runs all pending migrations
func (s *Store) migrate() error {
	if err := s.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := s.getCurrentMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	log.Printf("Database schema version: %d, target version: %d", currentVersion, CurrentSchemaVersion)

	migrations := []struct {
		version int
		run     func() error
	}{
		{MigrationV1, s.migrateV1},
		{MigrationV2, s.migrateV2},
		{MigrationV3, s.migrateV3},
	}
	for _, m := range migrations {
		if currentVersion >= m.version {
			continue
		}
		if err := m.run(); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
	}

	return nil
}

func (s *Store) createMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		)
	`)
	return err
}

func (s *Store) getCurrentMigrationVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigration runs schema and records version in one transaction.
func (s *Store) applyMigration(version int, description string, statements ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`, version, description); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("Applied migration v%d: %s", version, description)
	return nil
}

func (s *Store) migrateV1() error {
	return s.applyMigration(MigrationV1, "Create request_logs table and indexes", `
	CREATE TABLE IF NOT EXISTS request_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		resource TEXT DEFAULT '',
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		status_code INTEGER,
		duration_ms INTEGER,
		user_id TEXT,
		ip_address TEXT,
		user_agent TEXT,
		request_body TEXT,
		response_body TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_request_logs_timestamp ON request_logs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_request_logs_path ON request_logs(path);
	CREATE INDEX IF NOT EXISTS idx_request_logs_status ON request_logs(status_code);
	CREATE INDEX IF NOT EXISTS idx_request_logs_resource ON request_logs(resource);
	`)
}

func (s *Store) migrateV2() error {
	return s.applyMigration(MigrationV2, "Create restaurants, providers and users tables", `
	CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre TEXT NOT NULL,
		ciudad TEXT NOT NULL DEFAULT '',
		zona TEXT NOT NULL DEFAULT '',
		porcentaje REAL NOT NULL DEFAULT 0,
		estado TEXT NOT NULL DEFAULT 'Activo',
		descripcion TEXT NOT NULL DEFAULT '',
		direccion TEXT NOT NULL DEFAULT '',
		email_contacto TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS providers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre TEXT NOT NULL,
		categoria TEXT NOT NULL DEFAULT '',
		telefono TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		restaurante_id INTEGER NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nombre TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		rol TEXT NOT NULL DEFAULT 'admin',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`)
}

func (s *Store) migrateV3() error {
	return s.applyMigration(MigrationV3, "Add composite indexes for aggregation and filtering queries",
		// GetTopEndpoints groups by path
		"CREATE INDEX IF NOT EXISTS idx_request_logs_path_count ON request_logs(path, status_code)",
		// GetResourceRequestCount and GetResourceErrorRate filter by resource and time
		"CREATE INDEX IF NOT EXISTS idx_request_logs_resource_timestamp ON request_logs(resource, timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_request_logs_user_id ON request_logs(user_id) WHERE user_id != ''",
		"CREATE INDEX IF NOT EXISTS idx_providers_restaurant ON providers(restaurante_id, id)",
	)
}
