package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vvka-141/pairload/pkg/pairload"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

// Credentials are the two settings the remote table service requires.
type Credentials struct {
	URL        string
	ServiceKey string
}

// LookupFunc reads one environment variable. os.Getenv satisfies it.
type LookupFunc func(key string) string

// ResolveCredentials reads the service URL and key from the environment.
func ResolveCredentials(getenv LookupFunc) Credentials {
	url := strings.TrimSpace(getenv(pairload.EnvSupabaseURL))
	if url == "" {
		url = strings.TrimSpace(getenv(pairload.EnvSupabaseURLFallback))
	}
	return Credentials{
		URL:        url,
		ServiceKey: strings.TrimSpace(getenv(pairload.EnvSupabaseServiceKey)),
	}
}

// Validate reports every missing credential at once.
func (c Credentials) Validate() error {
	var missing []string
	if c.URL == "" {
		missing = append(missing, pairload.EnvSupabaseURL)
	}
	if c.ServiceKey == "" {
		missing = append(missing, pairload.EnvSupabaseServiceKey)
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s not set: %w", pairload.ErrMissingCredentials,
		strings.Join(missing, " and "), pairload.ErrInvalidConfig)
}
