package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	migrationsGlob   = "sql/migrations/*.sql"
	migrationLockKey = int64(20250731)

	migrationTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
)

var (
	//go:embed sql/migrations/*.sql
	migrationsFS embed.FS

	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrateUp применяет все недостающие up-миграции схемы киоска.
func (s *Store) MigrateUp(ctx context.Context) error {
	return s.withMigrationLock(ctx, func(conn *sql.Conn, migrations []migration) error {
		applied, err := appliedVersions(ctx, conn)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if applied[m.Version] {
				continue
			}
			if err := execMigration(ctx, conn, m.UpSQL, `
				INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, NOW())
			`, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// MigrateDown откатывает последнюю применённую миграцию.
func (s *Store) MigrateDown(ctx context.Context) error {
	return s.withMigrationLock(ctx, func(conn *sql.Conn, migrations []migration) error {
		var version int64
		err := conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
		if err != nil {
			return fmt.Errorf("query latest migration: %w", err)
		}
		if version == 0 {
			return nil
		}
		for _, m := range migrations {
			if m.Version == version {
				return execMigration(ctx, conn, m.DownSQL, `
					DELETE FROM schema_migrations WHERE version = $1 AND name = $2
				`, m)
			}
		}
		return fmt.Errorf("cannot rollback unknown migration version %d", version)
	})
}

// MigrationStatus возвращает текущую версию схемы и число применённых миграций.
func (s *Store) MigrationStatus(ctx context.Context) (int64, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, fmt.Errorf("postgres store is not initialized")
	}
	if _, err := s.db.ExecContext(ctx, migrationTableDDL); err != nil {
		return 0, 0, fmt.Errorf("ensure migration table: %w", err)
	}

	var (
		version int64
		count   int
	)
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0), COUNT(*) FROM schema_migrations
	`).Scan(&version, &count); err != nil {
		return 0, 0, fmt.Errorf("query migration status: %w", err)
	}
	return version, count, nil
}

// withMigrationLock выполняет fn под advisory-lock, защищающим от параллельных миграций.
func (s *Store) withMigrationLock(ctx context.Context, fn func(*sql.Conn, []migration) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := conn.ExecContext(ctx, migrationTableDDL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return fn(conn, migrations)
}

func execMigration(ctx context.Context, conn *sql.Conn, body, recordSQL string, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx (%d): %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %d_%s: %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, recordSQL, m.Version, m.Name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %d_%s: %w", m.Version, m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int64]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, migrationsGlob)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int64]*migration)
	for _, file := range files {
		base := filepath.Base(file)
		matches := migrationFilePattern.FindStringSubmatch(base)
		if len(matches) != 4 {
			return nil, fmt.Errorf("invalid migration file name: %s", base)
		}
		version, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", base, err)
		}

		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration file %s: %w", file, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{Version: version, Name: matches[2]}
			byVersion[version] = m
		}
		if matches[3] == "up" {
			m.UpSQL = strings.TrimSpace(string(body))
		} else {
			m.DownSQL = strings.TrimSpace(string(body))
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %d_%s has no up script", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}
