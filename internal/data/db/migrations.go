package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedded embed.FS

// migrationFile matches NNNN_name.up.sql and NNNN_name.down.sql.
var migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration is one numbered schema change with its reversal.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

type migrator struct {
	conn   *sql.DB
	log    zerolog.Logger
	source fs.FS
}

func newMigrator(conn *sql.DB, log zerolog.Logger) *migrator {
	sub, _ := fs.Sub(embedded, "migrations")
	return &migrator{conn: conn, log: log, source: sub}
}

// migrateUp brings conn up to the newest embedded schema.
func migrateUp(ctx context.Context, conn *sql.DB, log zerolog.Logger) error {
	return newMigrator(conn, log).up(ctx)
}

// Rollback reverts the newest n applied migrations, newest first.
func (db *DB) Rollback(ctx context.Context, n int) error {
	return newMigrator(db.conn, db.logger).down(ctx, n)
}

// load reads every migration in the source, ordered by version. Each version
// needs exactly one up and one down file.
func (m *migrator) load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.source, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, name, dir, err := parseFilename(entry.Name())
		if err != nil {
			return nil, err
		}

		body, err := fs.ReadFile(m.source, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		}
		if mig.Name != name {
			return nil, fmt.Errorf("migration %04d has two names: %q and %q", version, mig.Name, name)
		}

		slot := &mig.UpSQL
		if dir == "down" {
			slot = &mig.DownSQL
		}
		if *slot != "" {
			return nil, fmt.Errorf("migration %04d has more than one %s file", version, dir)
		}
		*slot = string(body)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.UpSQL == "" || mig.DownSQL == "" {
			return nil, fmt.Errorf("migration %04d (%s) needs both an up and a down file", mig.Version, mig.Name)
		}
		out = append(out, *mig)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })

	return out, nil
}

// parseFilename splits "0002_create_chat_messages.up.sql" into its version,
// name and direction.
func parseFilename(filename string) (version int, name, dir string, err error) {
	match := migrationFile.FindStringSubmatch(filename)
	if match == nil {
		return 0, "", "", fmt.Errorf("migration file %q: want NNNN_name.{up,down}.sql", filename)
	}

	version, err = strconv.Atoi(match[1])
	if err != nil || version < 1 {
		return 0, "", "", fmt.Errorf("migration file %q: version must be a positive number", filename)
	}

	return version, match[2], match[3], nil
}

func (m *migrator) up(ctx context.Context) error {
	migrations, applied, err := m.state(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("applying migration")
		err := m.inTx(ctx, mig.UpSQL,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			mig.Version, mig.Name, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("apply migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

func (m *migrator) down(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("rollback count must be positive, got %d", n)
	}

	migrations, applied, err := m.state(ctx)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, mig := range slices.Backward(migrations) {
		if applied[mig.Version] {
			revert = append(revert, mig)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot roll back %d migrations, only %d applied", n, len(revert))
	}

	for _, mig := range revert[:n] {
		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("reverting migration")
		err := m.inTx(ctx, mig.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		if err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// state loads the migrations and the set of versions already recorded,
// creating the bookkeeping table on first use.
func (m *migrator) state(ctx context.Context) ([]Migration, map[int]bool, error) {
	migrations, err := m.load()
	if err != nil {
		return nil, nil, err
	}

	_, err = m.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return nil, nil, err
	}
	return migrations, applied, nil
}

func (m *migrator) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := m.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// inTx runs the schema change and its bookkeeping statement atomically.
func (m *migrator) inTx(ctx context.Context, schemaSQL, bookkeeping string, args ...any) error {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
