// Package migrations applies the embedded postgres schema of the settings
// store. Files are named NNN_description.sql and run in version order, each
// in its own transaction.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/internal/wproofd/database"
)

//go:embed *.sql
var files embed.FS

// lockID serializes concurrent migrators across wproofd instances
const lockID = 0x77_70_72_6f_6f_66

const table = "schema_migrations"

// Migration is one schema change
type Migration struct {
	Version     int
	Description string
	Up          string
}

// Statements returns the individual SQL statements of the migration
func (m Migration) Statements() []string {
	return SplitStatements(m.Up)
}

// LoadMigrations returns the embedded migrations in version order
func LoadMigrations() ([]Migration, error) {
	return load(files)
}

func load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("error listing migrations: %w", err)
	}

	seen := make(map[int]string, len(names))
	out := make([]Migration, 0, len(names))
	for _, name := range names {
		prefix, rest, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "_")
		if !ok || rest == "" {
			return nil, fmt.Errorf("migration %s is not named NNN_description.sql", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version < 1 {
			return nil, fmt.Errorf("migration %s has an invalid version", name)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, name, version)
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("error reading migration %s: %w", name, err)
		}
		out = append(out, Migration{Version: version, Description: rest, Up: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// SplitStatements splits SQL on semicolons, dropping empty statements. The
// schema files contain no semicolons inside literals or function bodies.
func SplitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Migrator brings a database up to the embedded schema
type Migrator struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewMigrator creates a migrator for db
func NewMigrator(db *sql.DB, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With().Str("component", "migrations").Logger(),
	}
}

// Up applies every pending migration and returns how many ran. Several
// instances may call it at once; each migration is applied exactly once.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+table+` (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`); err != nil {
		return 0, fmt.Errorf("error creating migration table: %w", err)
	}

	all, err := LoadMigrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range all {
		ran, err := m.apply(ctx, mig)
		if err != nil {
			return applied, fmt.Errorf("error applying migration %d: %w", mig.Version, err)
		}
		if ran {
			applied++
			m.logger.Info().
				Int("version", mig.Version).
				Str("description", mig.Description).
				Msg("migration applied")
		}
	}
	return applied, nil
}

func appliedQuery(version int) sq.SelectBuilder {
	return database.Builder.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(sq.Eq{"version": version}).
		Suffix(")")
}

// apply runs mig unless it is already recorded. The advisory lock is held
// until the transaction ends, so the check and the insert cannot race.
func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	ran := false
	err := database.RunInTx(ctx, m.db, nil, func(tx *database.Tx) error {
		ran = false
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockID); err != nil {
			return err
		}

		var done bool
		err := appliedQuery(mig.Version).RunWith(tx.Tx).QueryRowContext(ctx).Scan(&done)
		if err != nil || done {
			return err
		}

		for _, stmt := range mig.Statements() {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("error executing statement: %w", err)
			}
		}

		if _, err := tx.Builder().
			Insert(table).
			Columns("version", "description").
			Values(mig.Version, mig.Description).
			ExecContext(ctx); err != nil {
			return err
		}
		ran = true
		return nil
	})
	return ran, err
}
