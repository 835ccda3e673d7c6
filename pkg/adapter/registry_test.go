package adapter

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAdapter records Connect calls.
type stubAdapter struct {
	BaseSQLAdapter
	connectErr error
	connected  Config
}

func (s *stubAdapter) Connect(_ context.Context, cfg Config) error {
	s.connected = cfg
	return s.connectErr
}

func (s *stubAdapter) DialectName() string { return "stub" }

var _ Adapter = (*stubAdapter)(nil)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"postgres", "sqlite"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db", "error should mention the unknown type")
	assert.Contains(t, msg, "postgres", "error should list available adapters")
	assert.Contains(t, msg, "anosql.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return &stubAdapter{} })

	assert.True(t, IsRegistered("test_adapter_internal"))
	assert.Contains(t, ListAdapters(), "test_adapter_internal")

	factory, ok := Get("test_adapter_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)
}

func TestNewAdapter_EmptyType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.ErrorIs(t, err, ErrTypeRequired)
	assert.Equal(t, "adapter type not specified", err.Error())
}

func TestNewAdapter_Unknown(t *testing.T) {
	_, err := NewAdapter(Config{Type: "nope"}, nil)

	var unknown *UnknownAdapterError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.Type)
}

func TestOpen(t *testing.T) {
	stub := &stubAdapter{}
	Register("test_open", func(_ *slog.Logger) Adapter { return stub })

	cfg := Config{Type: "test_open", Database: "db"}
	a, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Same(t, stub, a)
	assert.Equal(t, cfg, stub.connected)

	stub.connectErr = errors.New("refused")
	_, err = Open(context.Background(), cfg, nil)
	assert.EqualError(t, err, "refused")
}
