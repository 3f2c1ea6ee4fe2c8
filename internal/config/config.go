// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBase     string
	ListenAddr  string
	DBPath      string
	Categories  []string
	PINLength   int
	HTTPTimeout time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. VOTEBOOTH_API_BASE is required (the election backend's /api root).
// Optional variables with defaults: VOTEBOOTH_LISTEN_ADDR (127.0.0.1:8090),
// VOTEBOOTH_DB_PATH (votebooth.db), VOTEBOOTH_CATEGORIES (the standard
// five-contest ballot, comma-separated and in ballot order),
// VOTEBOOTH_PIN_LENGTH (5), VOTEBOOTH_HTTP_TIMEOUT (10s).
func Load() (*Config, error) {
	apiBase := strings.TrimRight(os.Getenv("VOTEBOOTH_API_BASE"), "/")
	if apiBase == "" {
		return nil, fmt.Errorf("VOTEBOOTH_API_BASE is required")
	}

	listenAddr := "127.0.0.1:8090"
	if v, ok := os.LookupEnv("VOTEBOOTH_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "votebooth.db"
	if v, ok := os.LookupEnv("VOTEBOOTH_DB_PATH"); ok {
		dbPath = v
	}

	categories := []string{"KING", "QUEEN", "PRINCE", "PRINCESS", "COUPLE"}
	if v, ok := os.LookupEnv("VOTEBOOTH_CATEGORIES"); ok && v != "" {
		categories = categories[:0]
		for _, token := range strings.Split(v, ",") {
			token = strings.ToUpper(strings.TrimSpace(token))
			if token != "" {
				categories = append(categories, token)
			}
		}
		if len(categories) == 0 {
			return nil, fmt.Errorf("VOTEBOOTH_CATEGORIES %q contains no categories", v)
		}
	}

	pinLength := 5
	if v, ok := os.LookupEnv("VOTEBOOTH_PIN_LENGTH"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("VOTEBOOTH_PIN_LENGTH has invalid value %q", v)
		}
		pinLength = parsed
	}

	httpTimeout := 10 * time.Second
	if v, ok := os.LookupEnv("VOTEBOOTH_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("VOTEBOOTH_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		httpTimeout = parsed
	}

	return &Config{
		APIBase:     apiBase,
		ListenAddr:  listenAddr,
		DBPath:      dbPath,
		Categories:  categories,
		PINLength:   pinLength,
		HTTPTimeout: httpTimeout,
	}, nil
}
