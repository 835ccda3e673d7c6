package sqlite

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/anosql/pkg/adapter"
)

// MemoryDatabase is the database used when no path is configured.
const MemoryDatabase = ":memory:"

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// BusyTimeout is how long, in milliseconds, to wait on a locked database.
	BusyTimeout int `mapstructure:"busy_timeout"`

	// ForeignKeys enables foreign key enforcement when set.
	ForeignKeys *bool `mapstructure:"foreign_keys"`

	// JournalMode sets the journal mode (e.g., "wal", "delete").
	JournalMode string `mapstructure:"journal_mode"`

	// Pragmas are applied verbatim, e.g. {"synchronous": "normal"}.
	Pragmas map[string]string `mapstructure:"pragmas"`
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
		return p, fmt.Errorf("invalid sqlite params: %w", err)
	}
	return p, nil
}

// pragmas returns the pragma(value) list in a stable order.
func (p Params) pragmas() []string {
	var out []string
	if p.BusyTimeout > 0 {
		out = append(out, fmt.Sprintf("busy_timeout(%d)", p.BusyTimeout))
	}
	if p.ForeignKeys != nil {
		v := 0
		if *p.ForeignKeys {
			v = 1
		}
		out = append(out, fmt.Sprintf("foreign_keys(%d)", v))
	}
	if p.JournalMode != "" {
		out = append(out, fmt.Sprintf("journal_mode(%s)", strings.ToUpper(p.JournalMode)))
	}

	keys := make([]string, 0, len(p.Pragmas))
	for k := range p.Pragmas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s(%s)", k, p.Pragmas[k]))
	}
	return out
}

// buildSQLiteDSN builds a modernc.org/sqlite DSN. Pragmas become _pragma
// query parameters, which the driver runs on every new connection.
func buildSQLiteDSN(cfg adapter.Config, params Params) string {
	path := cfg.Database
	if path == "" {
		path = MemoryDatabase
	}

	pragmas := params.pragmas()
	if len(pragmas) == 0 {
		return path
	}

	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}
