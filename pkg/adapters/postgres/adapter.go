// Package postgres provides a PostgreSQL database adapter for anosql.
//
// The adapter always opens a database/sql pool through the pgx stdlib
// driver. With params.native set it also opens a pgxpool.Pool, and queries
// run on pool connections instead.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/leapstack-labs/anosql/pkg/adapter"
	pgdialect "github.com/leapstack-labs/anosql/pkg/dialects/postgres"
	"github.com/leapstack-labs/anosql/pkg/handle"
)

// Params holds PostgreSQL-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Native runs queries on a pgxpool.Pool instead of database/sql.
	Native bool `mapstructure:"native"`

	// MaxConns caps the native pool size. Zero keeps the pgxpool default.
	MaxConns int32 `mapstructure:"max_conns"`

	// ApplicationName is reported to the server.
	ApplicationName string `mapstructure:"application_name"`
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
	Params Params
	pool   *pgxpool.Pool
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return pgdialect.Name
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := decodeParams(cfg.Params)
	if err != nil {
		return err
	}
	a.Params = params

	dsn := cfg.DSN
	if dsn == "" {
		dsn = buildPostgresDSN(cfg, params)
	}

	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
		slog.Bool("native", params.Native))

	if err := a.Open(ctx, "pgx", dsn, cfg); err != nil {
		return err
	}

	if params.Native {
		pool, err := newPool(ctx, dsn, params)
		if err != nil {
			_ = a.BaseSQLAdapter.Close()
			a.Conn = nil
			return err
		}
		a.pool = pool
	}
	return nil
}

func newPool(ctx context.Context, dsn string, params Params) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection string: %w", err)
	}
	if params.MaxConns > 0 {
		poolCfg.MaxConns = params.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres pool: %w", err)
	}
	return pool, nil
}

// Handle returns the pgx pool handle in native mode, the database/sql handle
// otherwise.
func (a *Adapter) Handle() handle.Handle {
	if a.pool != nil {
		return handle.FromConnection(handle.NewPgxPool(a.pool))
	}
	return a.BaseSQLAdapter.Handle()
}

// Pool returns the native pool, nil unless params.native is set.
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}

// Close closes the native pool and the database/sql pool.
func (a *Adapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return a.BaseSQLAdapter.Close()
}

func decodeParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("invalid postgres params: %w", err)
	}
	return p, nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg adapter.Config, params Params) string {
	// key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	if params.ApplicationName != "" {
		dsn += fmt.Sprintf(" application_name=%s", params.ApplicationName)
	}

	return dsn
}
