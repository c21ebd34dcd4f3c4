// ABOUTME: Entry point for the provadmin admin UI and its mock backend API.
// ABOUTME: Wires config, store, backend, client and admin handlers behind cobra commands.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/2389/provadmin/internal/admin"
	"github.com/2389/provadmin/internal/auth"
	"github.com/2389/provadmin/internal/backend"
	"github.com/2389/provadmin/internal/client"
	"github.com/2389/provadmin/internal/config"
	"github.com/2389/provadmin/internal/metrics"
	"github.com/2389/provadmin/internal/provider"
	"github.com/2389/provadmin/internal/restaurants"
	"github.com/2389/provadmin/internal/seed"
	"github.com/2389/provadmin/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg     config.Config
	withAPI bool
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "provadmin",
		Short: "Provider administration for restaurants",
		Long: `provadmin is the admin UI for managing the providers (suppliers) of each restaurant.

It ships with a mock backend API (login, providers, restaurants) backed by SQLite,
so the UI can run standalone or against an existing backend.

Quick Start:
  provadmin seed                # Create restaurants, providers and the admin user
  provadmin serve --with-api    # Admin UI on :8080 plus the API on :3001
  provadmin reset               # Wipe and reseed the database`,
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin UI",
		Long: `Start the admin UI on the specified port.

The UI provides:
  • Login at http://localhost:PORT/login
  • Restaurant list at http://localhost:PORT/admin/proveedores
  • Provider management at http://localhost:PORT/admin/restaurantes/{id}
  • Health check at /healthz and Prometheus metrics at /metrics

With --with-api the mock backend runs in the same process on --api-port and
the request log is browsable at /admin/registros.

Environment Variables:
  PROVADMIN_PORT                Admin UI port (default: 8080)
  PROVADMIN_API_URL             Backend base URL (default: http://localhost:3001/api)
  PROVADMIN_BACKEND_TIMEOUT     Timeout for backend calls (default: 10s)
  PROVADMIN_ADMIN_RENDER_WAIT   How long a page waits for providers (default: 2s)
  PROVADMIN_RESTAURANT_SOURCE   static or api (default: static)`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on")
	serveCmd.Flags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Backend API base URL")
	serveCmd.Flags().BoolVar(&withAPI, "with-api", false, "Also run the mock backend API")
	serveCmd.Flags().StringVar(&cfg.APIPort, "api-port", cfg.APIPort, "Port for the embedded API")
	serveCmd.Flags().StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "Database path (with --with-api)")

	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Start the mock backend API",
		Long: `Start the backend REST API consumed by the admin UI.

Endpoints:
  POST   /api/login
  GET    /api/proveedores[?restaurante_id={id}][&q={term}]
  POST   /api/proveedores
  GET    /api/proveedores/{id}
  PUT    /api/proveedores/{id}
  DELETE /api/proveedores/{id}
  GET    /api/restaurantes, /api/restaurantes/{id}

Every endpoint except login requires "Authorization: Bearer <token>".`,
		RunE: runAPI,
	}
	apiCmd.Flags().StringVarP(&cfg.APIPort, "port", "p", cfg.APIPort, "Port to listen on")
	apiCmd.Flags().StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "Database path")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with test data",
		Long: `Seed the database with restaurants, providers and the admin user.

AI-Powered Generation:
  Set OPENAI_API_KEY to generate realistic providers per restaurant.
  Falls back to static test data if no API key is provided.

Note: Seed is not idempotent. Use 'provadmin reset' to clear data before reseeding.`,
		RunE: runSeed,
	}
	seedCmd.Flags().StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "Database path")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database (wipe and reseed)",
		Long: `Delete the database file and create a fresh one with new test data.

Warning: This permanently deletes all data in the database!`,
		RunE: runReset,
	}
	resetCmd.Flags().StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "Database path")

	rootCmd.AddCommand(serveCmd, apiCmd, seedCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// validateAndCleanDBPath validates and cleans a database path.
// Handles Unix/Linux, macOS, and Windows paths (including UNC and drive letters).
func validateAndCleanDBPath(path string) (string, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == ":memory:" {
		return cleanPath, nil
	}
	cleanPath = filepath.Clean(cleanPath)

	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}

	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("database path cannot be a bare drive letter")
	}

	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	badPatterns := []string{
		".git",
		".svn",
		"node_modules",
		".env",
		"credentials",
		"secret",
	}
	lowerPath := strings.ToLower(cleanPath)
	for _, pattern := range badPatterns {
		if strings.Contains(lowerPath, pattern) {
			return "", fmt.Errorf("database path cannot contain '%s' directory", pattern)
		}
	}

	return cleanPath, nil
}

// jwtSecret returns the configured secret, or a random one that only lives
// as long as the process.
func jwtSecret(c config.Config) string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}
	log.Println("Warning: PROVADMIN_JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	return uuid.NewString()
}

// newAPI opens the store and builds the backend handler.
func newAPI(c config.Config) (*store.Store, http.Handler, error) {
	s, err := store.New(c.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	issuer := auth.NewIssuer(jwtSecret(c), c.JWTTTL)
	return s, backend.NewServer(s, issuer).Router(), nil
}

// newAdmin builds the admin UI handler. logs may be nil.
func newAdmin(c config.Config, logs admin.LogSource) http.Handler {
	m := metrics.New()
	api := client.New(c.APIURL,
		client.WithHTTPClient(&http.Client{Timeout: c.BackendTimeout}),
		client.WithMetrics(m),
	)

	var dir provider.RestaurantService = restaurants.NewStatic()
	if c.RestaurantSource == config.RestaurantSourceAPI {
		dir = api
	}

	return admin.NewHandlers(admin.Config{
		Providers:      api,
		Restaurants:    dir,
		Auth:           api,
		Logs:           logs,
		Metrics:        m,
		Sessions:       admin.NewSessions(c.SessionTTL),
		RenderWait:     c.RenderWait,
		BackendTimeout: c.BackendTimeout,
	}).Router()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{}
	var logs admin.LogSource

	if withAPI {
		var err error
		cfg.DBPath, err = validateAndCleanDBPath(cfg.DBPath)
		if err != nil {
			return err
		}
		s, apiHandler, err := newAPI(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := seedIfEmpty(ctx, s); err != nil {
			return err
		}

		logs = s
		servers = append(servers, &http.Server{Addr: ":" + cfg.APIPort, Handler: apiHandler})
		log.Printf("API listening on :%s", cfg.APIPort)
		log.Printf("Database: %s", cfg.DBPath)
	}

	servers = append(servers, &http.Server{Addr: ":" + cfg.Port, Handler: newAdmin(cfg, logs)})
	log.Printf("Admin UI listening on :%s (backend %s)", cfg.Port, cfg.APIURL)

	return serveAll(ctx, servers...)
}

func runAPI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	cfg.DBPath, err = validateAndCleanDBPath(cfg.DBPath)
	if err != nil {
		return err
	}
	s, h, err := newAPI(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	log.Printf("API listening on :%s", cfg.APIPort)
	log.Printf("Database: %s", cfg.DBPath)
	return serveAll(ctx, &http.Server{Addr: ":" + cfg.APIPort, Handler: h})
}

// serveAll runs every server until ctx ends or one of them fails, then shuts
// them all down.
func serveAll(ctx context.Context, servers ...*http.Server) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		eg.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})
	return eg.Wait()
}

func runSeed(cmd *cobra.Command, args []string) error {
	var err error
	cfg.DBPath, err = validateAndCleanDBPath(cfg.DBPath)
	if err != nil {
		return err
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return seedData(cmd.Context(), s)
}

func runReset(cmd *cobra.Command, args []string) error {
	var err error
	cfg.DBPath, err = validateAndCleanDBPath(cfg.DBPath)
	if err != nil {
		return err
	}

	// Remove existing database - ignore if file doesn't exist
	if err := os.Remove(cfg.DBPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing database: %w", err)
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	return seedData(cmd.Context(), s)
}

func seedOptions(c config.Config) seed.Options {
	return seed.Options{
		AdminName:     c.AdminName,
		AdminEmail:    c.AdminEmail,
		AdminPassword: c.AdminPassword,
	}
}

func seedData(ctx context.Context, s *store.Store) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log.Println("Seeding database with test data...")

	sum, err := seed.Run(ctx, s, seed.NewGenerator(cfg.OpenAIKey, cfg.OpenAIModel), seedOptions(cfg))
	if errors.Is(err, seed.ErrAlreadySeeded) {
		log.Println("\nNote: Database already contains seed data. Use 'provadmin reset' to clear and reseed.")
		return err
	}
	if err != nil {
		return err
	}

	log.Printf("\nSeeding complete! Created %s", sum)
	if sum.Users > 0 {
		log.Printf("Log in as %s", cfg.AdminEmail)
	}
	return nil
}

// seedIfEmpty seeds a fresh embedded database so serve --with-api works on
// first run.
func seedIfEmpty(ctx context.Context, s *store.Store) error {
	n, err := s.CountRestaurants()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return seedData(ctx, s)
}
