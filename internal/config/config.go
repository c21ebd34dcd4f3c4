// ABOUTME: Runtime configuration read from the environment and optional .env files.
// ABOUTME: Command-line flags override these values in cmd/provadmin.

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Restaurant directory sources for the admin UI.
const (
	RestaurantSourceStatic = "static"
	RestaurantSourceAPI    = "api"
)

// Config holds settings for both the admin UI and the embedded backend.
type Config struct {
	Port    string `env:"PROVADMIN_PORT" envDefault:"8080"`
	APIPort string `env:"PROVADMIN_API_PORT" envDefault:"3001"`
	APIURL  string `env:"PROVADMIN_API_URL" envDefault:"http://localhost:3001/api"`
	DBPath  string `env:"PROVADMIN_DB_PATH"`

	JWTSecret string        `env:"PROVADMIN_JWT_SECRET"`
	JWTTTL    time.Duration `env:"PROVADMIN_JWT_TTL" envDefault:"12h"`

	BackendTimeout time.Duration `env:"PROVADMIN_BACKEND_TIMEOUT" envDefault:"10s"`
	RenderWait     time.Duration `env:"PROVADMIN_ADMIN_RENDER_WAIT" envDefault:"2s"`
	SessionTTL     time.Duration `env:"PROVADMIN_SESSION_TTL" envDefault:"30m"`

	RestaurantSource string `env:"PROVADMIN_RESTAURANT_SOURCE" envDefault:"static"`

	AdminName     string `env:"PROVADMIN_ADMIN_NAME" envDefault:"Administrador"`
	AdminEmail    string `env:"PROVADMIN_ADMIN_EMAIL" envDefault:"admin@provadmin.local"`
	AdminPassword string `env:"PROVADMIN_ADMIN_PASSWORD" envDefault:"admin"`

	OpenAIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"gpt-5-mini"`
}

// Load reads .env files (current and parent dirs, then home) and parses the
// environment. Variables already set win over .env values.
func Load() (Config, error) {
	loadDotEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		godotenv.Load(filepath.Join(home, ".env"))
	}
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	switch c.RestaurantSource {
	case RestaurantSourceStatic, RestaurantSourceAPI:
	default:
		return fmt.Errorf("PROVADMIN_RESTAURANT_SOURCE must be %q or %q, got %q",
			RestaurantSourceStatic, RestaurantSourceAPI, c.RestaurantSource)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("PROVADMIN_BACKEND_TIMEOUT must be positive")
	}
	if c.RenderWait < 0 {
		return fmt.Errorf("PROVADMIN_ADMIN_RENDER_WAIT must not be negative")
	}
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("PROVADMIN_API_URL must not be empty")
	}
	return nil
}

// DefaultDBPath returns the default database path.
// Priority: ./provadmin.db if present > XDG_DATA_HOME/provadmin/provadmin.db.
func DefaultDBPath() string {
	cwdPath := "./provadmin.db"
	if _, err := os.Stat(cwdPath); err == nil {
		return cwdPath
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil || homeDir == "" || homeDir == "/" {
			log.Printf("Warning: Could not determine valid home directory (%q): %v, using %s", homeDir, err, cwdPath)
			return cwdPath
		}

		// Windows: %LOCALAPPDATA%; elsewhere the XDG default.
		if runtime.GOOS == "windows" {
			dataHome = os.Getenv("LOCALAPPDATA")
			if dataHome == "" {
				dataHome = filepath.Join(homeDir, "AppData", "Local")
			}
		} else {
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(dataHome, "provadmin")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Printf("Warning: Could not create data directory %s: %v, using %s", dataDir, err, cwdPath)
		return cwdPath
	}
	return filepath.Join(dataDir, "provadmin.db")
}
