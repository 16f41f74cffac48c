// Package manifest records which artifacts the last successful run wrote,
// so a later process can delete the ones that are no longer produced.
package manifest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/teranos/declgen/db"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/pipeline"
)

// Entry is one recorded artifact.
type Entry struct {
	Name string
	Hash string
}

// EntryFor records a by name and content digest.
func EntryFor(a pipeline.Artifact) Entry {
	return Entry{Name: a.Name, Hash: HashText(a.Text)}
}

// HashText is the digest stored for an artifact's text.
func HashText(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(text), 16)
}

// Store persists the artifact set between processes.
type Store interface {
	// Load returns the entries recorded by the last Replace, sorted by name.
	Load(ctx context.Context) ([]Entry, error)
	// Replace atomically swaps the recorded set.
	Replace(ctx context.Context, runID string, entries []Entry) error
}

// SQLStore keeps entries in the artifacts table.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore wraps a migrated database.
func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn, logger: logger.ComponentLogger("manifest")}
}

// Open opens (creating if needed) the manifest database at path.
func Open(path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create manifest directory for %s", path)
	}
	log := logger.ComponentLogger("manifest")
	conn, err := db.OpenWithMigrations(path, log)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to open artifact manifest"),
			"delete the manifest file to start over; the next run rewrites every artifact",
		)
	}
	return &SQLStore{db: conn, logger: log}, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, hash FROM artifacts ORDER BY name`)
	if err != nil {
		return nil, wrapClosed(err, "failed to load artifact manifest")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Hash); err != nil {
			return nil, errors.Wrap(err, "failed to scan manifest entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapClosed(err, "failed to read artifact manifest")
	}
	return entries, nil
}

func (s *SQLStore) Replace(ctx context.Context, runID string, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapClosed(err, "failed to begin manifest transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM artifacts`); err != nil {
		return errors.Wrap(err, "failed to clear artifact manifest")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO artifacts (name, hash, run_id) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare manifest insert")
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, e.Hash, runID); err != nil {
			return errors.Wrapf(err, "failed to record artifact %s", e.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapClosed(err, "failed to commit artifact manifest")
	}

	s.logger.Debugw("Manifest updated",
		logger.FieldRunID, runID,
		logger.FieldCount, len(entries),
	)
	return nil
}

func wrapClosed(err error, msg string) error {
	if db.IsDatabaseClosed(err) {
		return errors.Wrap(db.ErrDatabaseClosed, msg)
	}
	return errors.Wrap(err, msg)
}
