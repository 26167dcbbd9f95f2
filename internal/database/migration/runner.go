// Package migration applies the embedded V<version>__<name>.sql files in
// version order, recording each one in schema_migrations with its checksum.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"unimarket/internal/pkg/logger"
)

// lockKey is the pg_advisory_lock key shared by every runner process.
const lockKey int64 = 0x756d6b74

// ErrChecksumMismatch means an applied migration file was edited afterwards.
var ErrChecksumMismatch = errors.New("applied migration was modified")

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// State is one migration as seen by Status.
type State struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
	Modified  bool
}

type Runner struct {
	FS     fs.FS
	Logger logger.Logger
}

type applied struct {
	checksum  string
	appliedAt time.Time
}

// Run applies pending migrations under an advisory lock and returns them.
// Every applied checksum is verified before anything new runs.
func (r Runner) Run(ctx context.Context, db *sql.DB) ([]Migration, error) {
	if db == nil {
		return nil, errors.New("migration: nil db")
	}
	log := r.logger()

	migs, err := r.load()
	if err != nil || len(migs) == 0 {
		return nil, err
	}

	if err := ensureTable(ctx, db); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		if _, err := db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey); err != nil {
			log.Warn("release migration lock failed", logger.Error(err))
		}
	}()

	done, err := loadApplied(ctx, db)
	if err != nil {
		return nil, err
	}

	pending := make([]Migration, 0, len(migs))
	for _, m := range migs {
		a, ok := done[m.Version]
		if !ok {
			pending = append(pending, m)
			continue
		}
		if a.checksum != m.Checksum {
			return nil, fmt.Errorf("%w: version=%d file=%s", ErrChecksumMismatch, m.Version, m.Filename)
		}
	}

	for i, m := range pending {
		start := time.Now()
		if err := applyOne(ctx, db, m); err != nil {
			return pending[:i], err
		}
		log.Info("migration applied",
			logger.Int64("version", m.Version),
			logger.String("name", m.Name),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
	return pending, nil
}

// Status lists every known migration with whether and when it was applied.
func (r Runner) Status(ctx context.Context, db *sql.DB) ([]State, error) {
	if db == nil {
		return nil, errors.New("migration: nil db")
	}
	migs, err := r.load()
	if err != nil {
		return nil, err
	}
	if err := ensureTable(ctx, db); err != nil {
		return nil, err
	}
	done, err := loadApplied(ctx, db)
	if err != nil {
		return nil, err
	}

	out := make([]State, 0, len(migs))
	for _, m := range migs {
		st := State{Version: m.Version, Name: m.Name}
		if a, ok := done[m.Version]; ok {
			st.Applied = true
			st.AppliedAt = a.appliedAt
			st.Modified = a.checksum != m.Checksum
		}
		out = append(out, st)
	}
	return out, nil
}

func (r Runner) logger() logger.Logger {
	if r.Logger == nil {
		return logger.Nop()
	}
	return r.Logger.With(logger.String("component", "migration"))
}

func (r Runner) load() ([]Migration, error) {
	if r.FS == nil {
		return nil, errors.New("migration: no source filesystem")
	}
	return loadMigrations(r.FS)
}

func loadMigrations(src fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		m := fileRe.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", e.Name())
		}
		b, err := fs.ReadFile(src, e.Name())
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(b))
		if body == "" {
			return nil, fmt.Errorf("empty migration file: %s", e.Name())
		}
		sum := sha256.Sum256([]byte(body))
		migs = append(migs, Migration{
			Version:  v,
			Name:     m[2],
			Filename: e.Name(),
			SQL:      body,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}
	return migs, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func loadApplied(ctx context.Context, db *sql.DB) (map[int64]applied, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	out := map[int64]applied{}
	for rows.Next() {
		var (
			v int64
			a applied
		)
		if err := rows.Scan(&v, &a.checksum, &a.appliedAt); err != nil {
			return nil, err
		}
		out[v] = a
	}
	return out, rows.Err()
}

// applyOne runs the file and its bookkeeping row in one transaction.
func applyOne(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration version=%d file=%s: %w", m.Version, m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return fmt.Errorf("record migration version=%d: %w", m.Version, err)
	}
	return tx.Commit()
}
