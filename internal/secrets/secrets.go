// Package secrets resolves named credentials such as GEMINI_API_KEY.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/liliang-cn/finsight/internal/domain"
)

// Store looks up a secret by name. A missing or blank secret is reported
// as domain.ErrCredentialMissing.
type Store interface {
	Lookup(name string) (string, error)
}

// EnvStore reads secrets from the process environment
type EnvStore struct{}

// NewEnvStore creates an environment store, first loading the given dotenv
// files. Files that do not exist are skipped; variables already set in the
// environment win over the files.
func NewEnvStore(files ...string) (*EnvStore, error) {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return &EnvStore{}, nil
}

// Lookup implements Store
func (s *EnvStore) Lookup(name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s is not set", domain.ErrCredentialMissing, name)
	}
	return v, nil
}

// MapStore holds secrets in memory, e.g. from the config file
type MapStore map[string]string

// Lookup implements Store
func (m MapStore) Lookup(name string) (string, error) {
	v := strings.TrimSpace(m[name])
	if v == "" {
		return "", fmt.Errorf("%w: %s is not set", domain.ErrCredentialMissing, name)
	}
	return v, nil
}

// Chain tries each store in order and returns the first secret found
type Chain []Store

// Lookup implements Store
func (c Chain) Lookup(name string) (string, error) {
	for _, s := range c {
		v, err := s.Lookup(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, domain.ErrCredentialMissing) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s is not set", domain.ErrCredentialMissing, name)
}
