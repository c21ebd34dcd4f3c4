// ABOUTME: Tests for SQLite store initialization and schema migrations.
// ABOUTME: Verifies table creation, migration idempotence and Reset.

package store

import (
	"path/filepath"
	"testing"
)

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "provadmin.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	tables := []string{"schema_migrations", "request_logs", "restaurants", "providers", "users"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("getCurrentMigrationVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestNewStore_ReopenSkipsApplied(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "provadmin.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.CreateRestaurant(&Restaurant{Name: "Casa Pepe"}); err != nil {
		t.Fatalf("CreateRestaurant() error = %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	var applied int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatal(err)
	}
	if applied != CurrentSchemaVersion {
		t.Errorf("migrations recorded = %d, want %d", applied, CurrentSchemaVersion)
	}
	if n, _ := s.CountRestaurants(); n != 1 {
		t.Errorf("restaurants after reopen = %d, want 1", n)
	}
}

func TestReset(t *testing.T) {
	s := setupTestDB(t)
	defer s.Close()

	r := &Restaurant{Name: "Casa Pepe"}
	if err := s.CreateRestaurant(r); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateProvider(&Provider{Name: "Frutas Ana", RestaurantID: r.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(&User{Email: "admin@example.com", PasswordHash: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.LogRequest(&RequestLog{Method: "GET", Path: "/api/proveedores", StatusCode: 200}); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	for _, table := range []string{"providers", "restaurants", "users", "request_logs"} {
		var n int
		s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
		if n != 0 {
			t.Errorf("%s has %d rows after Reset", table, n)
		}
	}

	again := &Restaurant{Name: "Otra"}
	if err := s.CreateRestaurant(again); err != nil {
		t.Fatal(err)
	}
	if again.ID != 1 {
		t.Errorf("id after reset = %d, want 1", again.ID)
	}
}

// Helper to setup a test database
func setupTestDB(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return s
}
