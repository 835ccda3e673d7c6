package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/anosql/pkg/core"
	"github.com/leapstack-labs/anosql/pkg/dialects/postgres"
	"github.com/leapstack-labs/anosql/pkg/dialects/sqlite"
)

func TestParse_Markers(t *testing.T) {
	tests := []struct {
		token   string
		name    string
		kind    core.Kind
		mapping bool
	}{
		{"get-users", "get_users", core.KindSelect, false},
		{"get_users", "get_users", core.KindSelect, false},
		{"$get-users", "get_users", core.KindSelect, true},
		{"update-user!", "update_user", core.KindMutate, false},
		{"$update-user!", "update_user", core.KindMutate, true},
		{"create-user<!", "create_user_auto", core.KindAutoGen, false},
		{"$create-user<!", "create_user_auto", core.KindAutoGen, true},
		{"weird!<!", "weird_auto", core.KindAutoGen, false},
		{"a$b", "ab", core.KindSelect, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			spec, err := Parse("-- name: "+tt.token+"\nselect 1", sqlite.SQLite)
			require.NoError(t, err)
			require.NotNil(t, spec)

			assert.Equal(t, tt.name, spec.Name)
			assert.Equal(t, tt.kind, spec.Kind)
			assert.Equal(t, tt.mapping, spec.ColumnMapping)
			assert.NotContains(t, spec.Name, "<!")
			assert.NotContains(t, spec.Name, "!")
			assert.NotContains(t, spec.Name, "$")
		})
	}
}

func TestParse_HeaderWhitespace(t *testing.T) {
	for _, header := range []string{
		"-- name: q",
		"--name: q",
		"-- name : q",
		"--  name:q",
		"   -- name:   q   ",
		"\t--\tname\t:\tq",
	} {
		t.Run(header, func(t *testing.T) {
			spec, err := Parse(header+"\nselect 1", sqlite.SQLite)
			if header == "--name: q" {
				// at least one space is required after the dashes
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, spec)
			assert.Equal(t, "q", spec.Name)
		})
	}
}

func TestParse_ScenarioA(t *testing.T) {
	block := "-- name: get-user-by-id\n-- fetch one user\nselect * from users where id = :id"

	spec, err := Parse(block, sqlite.SQLite)
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "get_user_by_id", spec.Name)
	assert.Equal(t, core.KindSelect, spec.Kind)
	assert.False(t, spec.ColumnMapping)
	assert.Equal(t, "fetch one user\n", spec.Doc)
	assert.Equal(t, "select * from users where id = :id", spec.SQL)

	spec, err = Parse(block, postgres.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "select * from users where id = @id", spec.SQL)
	assert.Equal(t, []string{"id"}, spec.Params)
}

func TestParse_ScenarioB(t *testing.T) {
	spec, err := Parse("-- name: insert-user!\ninsert into users(name) values (:name)", postgres.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "insert_user", spec.Name)
	assert.Equal(t, core.KindMutate, spec.Kind)
	assert.Equal(t, "insert into users(name) values (@name)", spec.SQL)
	assert.Equal(t, []string{"name"}, spec.Params)
}

func TestParse_Params(t *testing.T) {
	spec, err := Parse("-- name: q\nselect :a, :b-c, :a, ?, ':x', col::text", postgres.Postgres)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b_c"}, spec.Params)

	spec, err = Parse("-- name: q\nselect * from t where id = ?", sqlite.SQLite)
	require.NoError(t, err)
	assert.Empty(t, spec.Params)
}

func TestParse_ScenarioC(t *testing.T) {
	block := "-- name: create-user<!\ninsert into users(name) values (:name)"

	spec, err := Parse(block, postgres.Postgres)
	require.NoError(t, err)
	assert.Equal(t, "create_user_auto", spec.Name)
	assert.Equal(t, core.KindAutoGen, spec.Kind)
	assert.True(t, strings.HasSuffix(spec.SQL, " RETURNING id"))
	assert.Equal(t, "insert into users(name) values (@name) RETURNING id", spec.SQL)

	spec, err = Parse(block, sqlite.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "insert into users(name) values (:name)", spec.SQL)
}

func TestParse_Documentation(t *testing.T) {
	block := strings.Join([]string{
		"-- name: q",
		"-- first line",
		"--   indented",
		"  -- leading spaces",
		"--no space ends docs",
		"select 1",
	}, "\n")

	spec, err := Parse(block, sqlite.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "first line\n  indented\nleading spaces\n", spec.Doc)
	assert.Equal(t, "--no space ends docs select 1", spec.SQL)
}

func TestParse_BodyJoinedVerbatim(t *testing.T) {
	block := "-- name: q\nselect a,\n  b\nfrom t\r\nwhere x = :x  "

	spec, err := Parse(block, sqlite.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "select a,   b from t where x = :x  ", spec.SQL)
}

func TestParse_EmptyBody(t *testing.T) {
	tests := map[string]string{
		"empty":              "",
		"whitespace only":    "  \n\t\n",
		"header only":        "-- name: q",
		"header and docs":    "-- name: q\n-- only docs\n-- here",
		"header blank lines": "-- name: q\n   \n",
	}

	for name, block := range tests {
		t.Run(name, func(t *testing.T) {
			spec, err := Parse(block, postgres.Postgres)
			require.NoError(t, err)
			assert.Nil(t, spec)
		})
	}
}

func TestParse_LeadingBlankLines(t *testing.T) {
	spec, err := Parse("\n  \n-- name: q\nselect 1\n", sqlite.SQLite)
	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "select 1", spec.SQL)
}

func TestParse_AnnotationMissing(t *testing.T) {
	for _, block := range []string{
		"select 1",
		"-- just a comment\nselect 1",
		"-- names: q\nselect 1",
		"-- name:\nselect 1",
	} {
		t.Run(block, func(t *testing.T) {
			spec, err := Parse(block, sqlite.SQLite)
			require.Error(t, err)
			assert.Nil(t, spec)
			assert.True(t, IsAnnotationMissing(err))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.NotEmpty(t, perr.Text)
		})
	}
}

func TestParse_EmptyName(t *testing.T) {
	for _, token := range []string{"!", "$", "$!"} {
		t.Run(token, func(t *testing.T) {
			_, err := Parse("-- name: "+token+"\nselect 1", sqlite.SQLite)
			require.ErrorIs(t, err, ErrEmptyName)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Block: 3, Line: 12, Text: "select 1", Err: ErrAnnotationMissing}
	assert.Equal(t, `parse error in block 3 at line 12: query does not start with "-- name:" (got "select 1")`, err.Error())

	err = &ParseError{Name: "!", Err: ErrEmptyName}
	assert.Equal(t, `parse error: query name is empty after removing markers (name "!")`, err.Error())
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		texts []string
		lines []int
	}{
		{
			name:  "single block",
			input: "a\nb",
			texts: []string{"a\nb"},
			lines: []int{1},
		},
		{
			name:  "one blank line",
			input: "a\n\nb",
			texts: []string{"a", "b"},
			lines: []int{1, 3},
		},
		{
			name:  "several blank lines with trailing spaces",
			input: "a\n  \n\t\n\nb\nc",
			texts: []string{"a", "b\nc"},
			lines: []int{1, 5},
		},
		{
			name:  "crlf",
			input: "a\r\nb\r\n\r\nc",
			texts: []string{"a\r\nb", "c"},
			lines: []int{1, 4},
		},
		{
			name:  "single crlf does not split",
			input: "a\r\nb",
			texts: []string{"a\r\nb"},
			lines: []int{1},
		},
		{
			name:  "old mac line endings",
			input: "a\r\rb",
			texts: []string{"a", "b"},
			lines: []int{1, 3},
		},
		{
			name:  "trailing separator",
			input: "a\n\n",
			texts: []string{"a", ""},
			lines: []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Split(tt.input)
			require.Len(t, blocks, len(tt.texts))
			for i, b := range blocks {
				assert.Equal(t, i+1, b.Index)
				assert.Equal(t, tt.texts[i], b.Text)
				assert.Equal(t, tt.lines[i], b.Line)
			}
			assert.Equal(t, tt.texts, SplitBlocks(tt.input))
		})
	}
}
