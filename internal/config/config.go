// Package config resolves where the appointment book lives before any
// command runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/keyring"
	"github.com/julianstephens/apptbook/internal/logger"
	"github.com/julianstephens/apptbook/internal/storage"
	"github.com/julianstephens/apptbook/internal/storage/postgres"
	"github.com/julianstephens/apptbook/internal/storage/sqlite"
)

// Source records where a database target came from.
type Source string

const (
	SourceFlag    Source = "--config"
	SourceEnv     Source = constants.EnvDBConnection
	SourceKeyring Source = "keyring"
	SourceDefault Source = "default"
)

// Target is a resolved database location: a SQLite file path or a
// PostgreSQL connection string.
type Target struct {
	Value  string
	Source Source
}

// IsPostgres reports whether the target is a PostgreSQL connection string.
func (t Target) IsPostgres() bool {
	return postgres.IsConnString(t.Value)
}

// Describe returns a form of the target that is safe to print.
func (t Target) Describe() string {
	if t.IsPostgres() {
		return keyring.MaskPassword(t.Value)
	}
	return t.Value
}

// LoadEnv reads .env from the working directory and then from dir.
// Variables that are already set are never overridden.
func LoadEnv(dir string) {
	_ = godotenv.Load()

	if dir == "" {
		return
	}
	envPath := filepath.Join(ExpandHome(dir), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn("Failed to load .env file", "path", envPath, "error", err)
		}
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

var lookupKeyring = keyring.GetConnectionString

// Resolve picks the database target. An explicit --config wins, then
// APPTBOOK_DB_CONNECTION, then a connection string in the OS keyring,
// then the default SQLite file.
func Resolve(configFlag string) (Target, error) {
	if configFlag != "" && configFlag != constants.DefaultConfigPath {
		t := Target{Value: configFlag, Source: SourceFlag}
		if !t.IsPostgres() {
			t.Value = ExpandHome(t.Value)
			return t, nil
		}
		// Passwords on the command line end up in shell history and ps output
		if _, err := postgres.ValidateConnString(configFlag); err != nil {
			return Target{}, err
		}
		return t, nil
	}

	if env := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); env != "" {
		return Target{Value: env, Source: SourceEnv}, nil
	}

	connStr, err := lookupKeyring()
	switch {
	case err == nil && connStr != "":
		return Target{Value: connStr, Source: SourceKeyring}, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring lookup failed, using default database", "error", err)
	}

	return Target{Value: ExpandHome(constants.DefaultConfigPath), Source: SourceDefault}, nil
}

// Open returns the record store for t without connecting to it.
func Open(t Target) (storage.Provider, error) {
	if strings.TrimSpace(t.Value) == "" {
		return nil, fmt.Errorf("no database configured")
	}
	if t.IsPostgres() {
		return postgres.New(t.Value), nil
	}
	return sqlite.NewStore(t.Value), nil
}

// Dir returns the directory apptbook keeps logs and .env in for t.
func Dir(t Target) string {
	if t.IsPostgres() {
		return filepath.Dir(ExpandHome(constants.DefaultConfigPath))
	}
	return filepath.Dir(t.Value)
}
