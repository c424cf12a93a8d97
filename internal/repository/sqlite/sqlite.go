// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver.
//
// Every multi-statement write runs inside an explicit transaction started
// with BeginTx; `defer tx.Rollback()` is the guaranteed-release path, so a
// failure at any statement leaves no partial state and no connection checked
// out. Constraint violations are translated to domain errors here — raw
// driver errors never leave this package.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces.
type DB struct {
	conn *sql.DB
}

// New opens a connection pool to the SQLite database and runs migrations.
//
// dbPath examples:
//   - "data/snipvault.db" — file-based, persistent
//   - ":memory:"          — in-memory, used by tests
func New(dbPath string) (*DB, error) {
	// Pragmas go in the DSN so they apply to every pooled connection, not
	// just the one that happens to run an Exec. Foreign keys are off by
	// default in SQLite and the cascade semantics in this package depend on
	// them; WAL allows concurrent reads while a write transaction is open.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and with
	// ":memory:" each new connection would otherwise get its own empty
	// database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
//
// Note the deliberate asymmetry in the references:
//   - snippets.folder_id / snippets.project_id are detached in application
//     code before the parent row is deleted (cascade-to-null, explicit and
//     ordered inside one transaction)
//   - project_members rows are likewise deleted explicitly in Delete
//   - snippet_tags rows are deleted explicitly when their snippet goes away
//
// Keeping these as plain REFERENCES (no ON DELETE clauses) means the
// ordering is visible in this package and testable, instead of hidden in
// trigger behavior.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL DEFAULT '',
			full_name     TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			github_id     INTEGER,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS languages (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS folders (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color       TEXT NOT NULL DEFAULT '#3B82F6',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_folders_user_id ON folders(user_id);

		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color       TEXT NOT NULL DEFAULT '#10B981',
			is_public   INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS project_members (
			project_id TEXT NOT NULL REFERENCES projects(id),
			user_id    TEXT NOT NULL REFERENCES users(id),
			role       TEXT NOT NULL CHECK (role IN ('owner', 'admin', 'member')),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (project_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_project_members_user_id ON project_members(user_id);

		CREATE TABLE IF NOT EXISTS snippets (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			code        TEXT NOT NULL DEFAULT '',
			language_id TEXT REFERENCES languages(id),
			folder_id   TEXT REFERENCES folders(id),
			project_id  TEXT REFERENCES projects(id),
			is_favorite INTEGER NOT NULL DEFAULT 0,
			is_public   INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (folder_id IS NULL OR project_id IS NULL)
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_user_id ON snippets(user_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_folder_id ON snippets(folder_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_project_id ON snippets(project_id);

		CREATE TABLE IF NOT EXISTS snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES snippets(id),
			tag        TEXT NOT NULL,
			PRIMARY KEY (snippet_id, tag)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if err := db.seedLanguages(); err != nil {
		return fmt.Errorf("seeding languages: %w", err)
	}

	return nil
}

// seedLanguages inserts the reference language rows, keyed by slug so the
// seed is idempotent across restarts.
func (db *DB) seedLanguages() error {
	seed := []struct{ name, slug string }{
		{"JavaScript", "javascript"},
		{"TypeScript", "typescript"},
		{"Python", "python"},
		{"Go", "go"},
		{"Rust", "rust"},
		{"Java", "java"},
		{"C", "c"},
		{"C++", "cpp"},
		{"C#", "csharp"},
		{"Ruby", "ruby"},
		{"PHP", "php"},
		{"Swift", "swift"},
		{"Kotlin", "kotlin"},
		{"SQL", "sql"},
		{"HTML", "html"},
		{"CSS", "css"},
		{"Shell", "shell"},
		{"Other", "other"},
	}

	for _, lang := range seed {
		var existing string
		err := db.conn.QueryRow(`SELECT id FROM languages WHERE slug = ?`, lang.slug).Scan(&existing)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return err
		}
		if _, err := db.conn.Exec(
			`INSERT INTO languages (id, name, slug) VALUES (?, ?, ?)`,
			xid.New().String(), lang.name, lang.slug,
		); err != nil {
			return err
		}
	}
	return nil
}

// isConstraint reports whether err is a SQLite error with one of the given
// extended result codes.
func isConstraint(err error, codes ...int) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, code := range codes {
		if se.Code() == code {
			return true
		}
	}
	return false
}

// isUniqueViolation matches duplicate-key failures (UNIQUE or PRIMARY KEY).
func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

// isForeignKeyViolation matches writes referencing a missing parent row.
func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}

// nullable converts the model's "" sentinel to SQL NULL for optional
// reference columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
