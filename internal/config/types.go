// Package config provides shared configuration types for anosql.
// This package is decoupled from CLI concerns: it knows how a database target
// is described and where project configuration files live, not how flags or
// environment variables are layered on top.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/leapstack-labs/anosql/pkg/adapter"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // sqlite, postgres

	// DSN is handed to the driver verbatim and wins over the fields below.
	DSN string `koanf:"dsn"`

	// File-based databases use Database as a path, network databases as a name.
	Database string `koanf:"database"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Additional driver-specific options (e.g., sslmode)
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration, decoded by the adapter.
	Params map[string]any `koanf:"params"`
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}

// ToAdapterConfig converts the target into the config adapters connect with.
func (t *TargetConfig) ToAdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		DSN:      t.DSN,
		Database: t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// ExpandEnv expands ${VAR} references in the connection fields.
func (t *TargetConfig) ExpandEnv() {
	if t == nil {
		return
	}
	t.DSN = ExpandEnvVars(t.DSN)
	t.Database = ExpandEnvVars(t.Database)
	t.Host = ExpandEnvVars(t.Host)
	t.User = ExpandEnvVars(t.User)
	t.Password = ExpandEnvVars(t.Password)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars expands ${VAR} patterns in s with environment variable values.
// References to unset variables are left untouched.
func ExpandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}
