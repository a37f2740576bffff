package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	stdfs "io/fs"
	"regexp"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Handle is an open database together with the SQL dialect it speaks.
type Handle struct {
	*sql.DB
	Dialect Dialect
}

// Open opens (or creates) the database for the given driver and applies pending migrations.
// For sqlite the dsn is a file path or a file: URI; for postgres it is a pgx connection string.
// Migrations are versioned .sql files embedded under internal/db/migrations/<dialect>:
//
//	0001_name.up.sql / 0001_name.down.sql
//
// Only new migrations are applied. Use RollbackLast to revert the last applied migration.
func Open(driver, dsn string) (*Handle, error) {
	h, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(h); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

// Connect opens and pings the database without touching its schema.
func Connect(driver, dsn string) (*Handle, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite && dsn == "" {
		dsn = "app.db"
	}
	d, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	if dialect == SQLite {
		if err := prepareSQLite(d); err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	return &Handle{DB: d, Dialect: dialect}, nil
}

// Migrate applies every pending migration in version order.
func Migrate(h *Handle) error {
	if h == nil {
		return errors.New("nil db")
	}
	return applyMigrations(h)
}

// prepareSQLite sets connection pragmas. A single connection serializes writers, which
// keeps busy errors away from concurrent requests and in-memory databases alive.
func prepareSQLite(d *sql.DB) error {
	d.SetMaxOpenConns(1)
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		return err
	}
	if _, err := d.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return err
	}
	return nil
}

// Querier returns a placeholder-rebinding view of the pool.
func (h *Handle) Querier() Querier {
	return Bind(h.DB, h.Dialect)
}

// InTx runs fn inside a single transaction. The transaction commits when fn returns nil
// and rolls back on error or panic; the connection is released on every path.
func (h *Handle) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := h.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(Bind(tx, h.Dialect)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// RollbackLast rolls back the most recently applied migration, if its down script exists.
// It returns the reverted version, or 0 when nothing was applied.
func RollbackLast(h *Handle) (int, error) {
	if h == nil {
		return 0, errors.New("nil db")
	}
	if err := ensureMigrationsTable(h); err != nil {
		return 0, err
	}
	var version int
	err := h.QueryRow(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil // nothing to rollback
	} else if err != nil {
		return 0, err
	}
	migs, err := loadMigrations(h.Dialect)
	if err != nil {
		return 0, err
	}
	m, ok := migs[version]
	if !ok || m.downFile == "" {
		return 0, fmt.Errorf("no down migration found for version %d", version)
	}
	sqlText, err := migrationsFS.ReadFile(m.downFile)
	if err != nil {
		return 0, err
	}
	del := Rebind(h.Dialect, `DELETE FROM schema_migrations WHERE version = ?`)
	if err := execMigration(h, string(sqlText), del, version); err != nil {
		return 0, err
	}
	return version, nil
}

// Applied returns the applied migration versions in ascending order.
func Applied(h *Handle) ([]int, error) {
	got, err := appliedVersions(h)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(got))
	for v := range got {
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string // path inside embedded FS
	downFile string // path inside embedded FS
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

func loadMigrations(dialect Dialect) (map[int]migration, error) {
	entries := map[int]migration{}
	dir := "migrations/" + dialect.migrationDir()
	list, err := stdfs.ReadDir(migrationsFS, dir)
	if err != nil {
		// if directory missing, just return empty set
		return entries, nil
	}
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		m := migFileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		verStr, migName, kind := m[1], m[2], m[3]
		var ver int
		if _, err := fmt.Sscanf(verStr, "%04d", &ver); err != nil {
			continue
		}
		item := entries[ver]
		item.version = ver
		item.name = migName
		p := dir + "/" + name
		if kind == "up" {
			item.upFile = p
		} else {
			item.downFile = p
		}
		entries[ver] = item
	}
	return entries, nil
}

func ensureMigrationsTable(h *Handle) error {
	_, err := h.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
	return err
}

func appliedVersions(h *Handle) (map[int]bool, error) {
	if err := ensureMigrationsTable(h); err != nil {
		return nil, err
	}
	rows, err := h.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}

func applyMigrations(h *Handle) error {
	migs, err := loadMigrations(h.Dialect)
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		// nothing to do
		return nil
	}
	applied, err := appliedVersions(h)
	if err != nil {
		return err
	}
	// order versions
	versions := make([]int, 0, len(migs))
	for v := range migs {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	ins := Rebind(h.Dialect, `INSERT INTO schema_migrations(version) VALUES(?)`)
	for _, v := range versions {
		if applied[v] {
			continue
		}
		m := migs[v]
		if strings.TrimSpace(m.upFile) == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		sqlText, err := migrationsFS.ReadFile(m.upFile)
		if err != nil {
			return err
		}
		if err := execMigration(h, string(sqlText), ins, v); err != nil {
			return fmt.Errorf("migration %04d failed: %w", v, err)
		}
	}
	return nil
}

// execMigration runs a migration script and records the bookkeeping statement, inside a
// transaction unless the script starts with "-- NO_TX".
func execMigration(h *Handle, text, bookkeeping string, version int) error {
	if strings.HasPrefix(strings.TrimSpace(text), "-- NO_TX") {
		// Execute as-is without wrapping in a transaction
		if _, err := h.Exec(text); err != nil {
			return err
		}
		_, err := h.Exec(bookkeeping, version)
		return err
	}
	tx, err := h.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(text); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(bookkeeping, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
