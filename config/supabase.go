package config

import (
	"fmt"
	"os"

	supa "github.com/supabase-community/supabase-go"
)

// Config holds the environment-derived settings for the gateway. Clients are
// constructed once here and injected explicitly; there is no ambient global
// client state.
type Config struct {
	SupabaseURL string
	SupabaseKey string
	// JWTSecret verifies Supabase access tokens on incoming requests.
	JWTSecret string
	Port      string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		JWTSecret:   os.Getenv("SUPABASE_JWT_SECRET"),
		Port:        os.Getenv("PORT"),
	}
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg, nil
}

// NewSupabaseClient builds the Supabase client used for both PostgREST
// queries and Storage calls.
func NewSupabaseClient(cfg *Config) (*supa.Client, error) {
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing Supabase client: %w", err)
	}
	return client, nil
}
