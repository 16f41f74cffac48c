package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/declgen/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migration is one embedded schema change, named NNN_description.sql.
type Migration struct {
	Version string
	File    string
}

// Migrations lists the embedded migrations in the order they apply.
func Migrations() ([]Migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, errors.Newf("migration %s has no version prefix", entry.Name())
		}
		out = append(out, Migration{Version: version, File: entry.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrate brings the manifest schema up to date.
// If logger is provided, logs migration progress; otherwise operates silently.
//
// A manifest that records a version this build does not know was written by
// a newer declgen and is refused rather than modified.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	all, err := Migrations()
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(all))
	for _, m := range all {
		known[m.Version] = true
	}
	for version := range applied {
		if !known[version] {
			return errors.WithHint(
				errors.Newf("manifest schema version %s is newer than this declgen", version),
				"upgrade declgen, or delete the manifest to start over",
			)
		}
	}

	ran := 0
	for _, m := range all {
		if applied[m.Version] {
			continue
		}
		if logger != nil {
			logger.Debugw("Applying migration", "migration", m.File, "version", m.Version)
		}
		if err := apply(db, m); err != nil {
			return err
		}
		ran++
	}

	if logger != nil {
		logger.Debugw("Migrations complete",
			"applied", ran,
			"total_migrations", len(all),
		)
	}
	return nil
}

// appliedVersions returns the recorded versions; none before 000 has run.
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	var tables int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&tables)
	if err != nil {
		return nil, errors.Wrap(err, "inspect schema")
	}
	applied := make(map[string]bool)
	if tables == 0 {
		return applied, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read applied migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, errors.Wrap(err, "scan applied migration")
		}
		applied[version] = true
	}
	return applied, errors.Wrap(rows.Err(), "read applied migrations")
}

// apply runs one migration and records it in the same transaction
// (000 creates schema_migrations, then records itself).
func apply(db *sql.DB, m Migration) error {
	sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, m.File))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.File)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.File)
	}
	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", m.File)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.File)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", m.File)
	}
	return nil
}
