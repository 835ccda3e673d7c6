package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/anosql/pkg/adapter"
	_ "github.com/leapstack-labs/anosql/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/anosql/pkg/adapters/sqlite"
)

func TestTargetConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		target    TargetConfig
		errSubstr string
	}{
		{name: "empty type", target: TargetConfig{}, errSubstr: "target type is required"},
		{name: "sqlite", target: TargetConfig{Type: "sqlite"}},
		{name: "postgres uppercase", target: TargetConfig{Type: "Postgres"}},
		{name: "unknown", target: TargetConfig{Type: "oracle"}, errSubstr: "no database adapter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestTargetConfig_Validate_UnknownAdapterError(t *testing.T) {
	err := (&TargetConfig{Type: "oracle"}).Validate()

	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
	assert.Contains(t, unknown.Available, "sqlite")
	assert.Contains(t, unknown.Available, "postgres")
}

func TestTargetConfig_ToAdapterConfig(t *testing.T) {
	target := TargetConfig{
		Type:     "POSTGRES",
		Database: "app",
		Host:     "db",
		Port:     6543,
		User:     "svc",
		Password: "secret",
		Options:  map[string]string{"sslmode": "disable"},
		Params:   map[string]any{"native": true},
	}

	got := target.ToAdapterConfig()
	assert.Equal(t, adapter.Config{
		Type:     "postgres",
		Database: "app",
		Host:     "db",
		Port:     6543,
		Username: "svc",
		Password: "secret",
		Options:  map[string]string{"sslmode": "disable"},
		Params:   map[string]any{"native": true},
	}, got)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ANOSQL_TEST_PASSWORD", "hunter2")
	t.Setenv("ANOSQL_TEST_EMPTY", "")

	tests := []struct {
		in   string
		want string
	}{
		{"${ANOSQL_TEST_PASSWORD}", "hunter2"},
		{"pre-${ANOSQL_TEST_PASSWORD}-post", "pre-hunter2-post"},
		{"${ANOSQL_TEST_EMPTY}", ""},
		{"${ANOSQL_TEST_UNSET_VARIABLE}", "${ANOSQL_TEST_UNSET_VARIABLE}"},
		{"$ANOSQL_TEST_PASSWORD", "$ANOSQL_TEST_PASSWORD"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandEnvVars(tt.in))
		})
	}
}

func TestTargetConfig_ExpandEnv(t *testing.T) {
	t.Setenv("ANOSQL_TEST_HOST", "db.internal")
	target := &TargetConfig{Host: "${ANOSQL_TEST_HOST}", Password: "${ANOSQL_TEST_HOST}"}
	target.ExpandEnv()
	assert.Equal(t, "db.internal", target.Host)
	assert.Equal(t, "db.internal", target.Password)

	var nilTarget *TargetConfig
	assert.NotPanics(t, nilTarget.ExpandEnv)
}

func TestApplyTargetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		target  TargetConfig
		dialect string
		want    TargetConfig
	}{
		{
			name:    "type from dialect",
			dialect: "sqlite",
			want:    TargetConfig{Type: "sqlite"},
		},
		{
			name:    "postgres network defaults",
			dialect: "postgres",
			want:    TargetConfig{Type: "postgres", Host: "localhost", Port: 5432},
		},
		{
			name:    "postgres dsn skips network defaults",
			target:  TargetConfig{DSN: "postgres://x"},
			dialect: "postgres",
			want:    TargetConfig{Type: "postgres", DSN: "postgres://x"},
		},
		{
			name:    "explicit type kept",
			target:  TargetConfig{Type: "SQLite"},
			dialect: "postgres",
			want:    TargetConfig{Type: "sqlite"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			ApplyTargetDefaults(&target, tt.dialect)
			assert.Equal(t, tt.want, target)
		})
	}

	assert.NotPanics(t, func() { ApplyTargetDefaults(nil, "sqlite") })
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Empty(t, FindConfigFile(root))

	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileNameAlt), []byte("dialect: sqlite\n"), 0o600))
	assert.Equal(t, filepath.Join(root, ConfigFileNameAlt), FindConfigFile(root))
	assert.Equal(t, root, FindProjectRoot(nested))

	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("dialect: sqlite\n"), 0o600))
	assert.Equal(t, filepath.Join(root, ConfigFileName), FindConfigFile(root), "yaml preferred over yml")
}

func TestFindProjectRoot_Limit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte{}, 0o600))

	deep := root
	for i := 0; i < MaxUpwardSearchLevels; i++ {
		deep = filepath.Join(deep, "d")
	}
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Empty(t, FindProjectRoot(deep))
	assert.Equal(t, root, FindProjectRoot(filepath.Dir(deep)))
}
