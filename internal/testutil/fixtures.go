package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// UsersSchema creates the table used by UsersQueries.
const UsersSchema = `create table users (
	id integer primary key autoincrement,
	name text not null,
	email text
)`

// UsersQueries is an annotated query file covering every query kind.
const UsersQueries = `-- name: get-all-users
-- Get all users.
select id, name, email from users order by id

-- name: $get-user-by-id
-- Get one user, keyed by column name.
select id, name, email from users where id = :id

-- name: get-user-by-name
select id, name from users where name = ?

-- name: create-user<!
-- Create a user and return its id.
insert into users(name, email) values (:name, :email)

-- name: rename-user!
update users set name = :name where id = :id

-- name: delete-users!
delete from users
`

// WriteFile writes content to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
