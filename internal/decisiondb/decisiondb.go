// Package decisiondb persists snapshots of mode choice decisions in SQLite,
// so a later run can warm start its selector from an earlier one.
package decisiondb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/LdDl/multimodal"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	decisions  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	run_id          TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	person_id       TEXT NOT NULL,
	mode            TEXT NOT NULL,
	distance_meters REAL NOT NULL,
	decisions_num   INTEGER NOT NULL,
	PRIMARY KEY (run_id, person_id)
);
`

// DecisionRecord is a cached decision of a single traveler.
type DecisionRecord struct {
	PersonID multimodal.PersonID
	Decision multimodal.CachedDecision
}

// Run describes a stored snapshot.
type Run struct {
	ID        string
	CreatedAt time.Time
	Decisions int
}

// DB is a SQLite backed storage of decision snapshots.
type DB struct {
	db *sql.DB
}

// Open opens (and creates when needed) database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveSnapshot stores records under runID in a single transaction. An existing snapshot of the same run is replaced.
func (d *DB) SaveSnapshot(ctx context.Context, runID string, records []DecisionRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete previous snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, decisions) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), len(records)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (run_id, person_id, mode, distance_meters, decisions_num)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			runID,
			string(record.PersonID),
			record.Decision.Mode.String(),
			record.Decision.DistanceMeters,
			record.Decision.Decisions,
		); err != nil {
			return fmt.Errorf("failed to insert decision of person '%s': %w", record.PersonID, err)
		}
	}
	return tx.Commit()
}

// LoadSnapshot returns records of runID sorted by person.
func (d *DB) LoadSnapshot(ctx context.Context, runID string) ([]DecisionRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT person_id, mode, distance_meters, decisions_num
		FROM decisions
		WHERE run_id = ?
		ORDER BY person_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	records := []DecisionRecord{}
	for rows.Next() {
		var personID, modeText string
		record := DecisionRecord{}
		if err := rows.Scan(&personID, &modeText, &record.Decision.DistanceMeters, &record.Decision.Decisions); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		mode, err := multimodal.ParseTransportMode(modeText)
		if err != nil {
			return nil, fmt.Errorf("bad mode of person '%s': %w", personID, err)
		}
		record.PersonID = multimodal.PersonID(personID)
		record.Decision.Mode = mode
		records = append(records, record)
	}
	return records, rows.Err()
}

// Runs returns stored snapshots, newest first.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT run_id, created_at, decisions FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.Decisions); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad creation time of run '%s': %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FromSnapshot converts store snapshot into records sorted by person.
func FromSnapshot(snapshot map[multimodal.PersonID]multimodal.CachedDecision) []DecisionRecord {
	records := make([]DecisionRecord, 0, len(snapshot))
	for person, decision := range snapshot {
		records = append(records, DecisionRecord{PersonID: person, Decision: decision})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PersonID < records[j].PersonID
	})
	return records
}

// ToSnapshot is the inverse of FromSnapshot. Suitable for DecisionStore.Restore.
func ToSnapshot(records []DecisionRecord) map[multimodal.PersonID]multimodal.CachedDecision {
	snapshot := make(map[multimodal.PersonID]multimodal.CachedDecision, len(records))
	for _, record := range records {
		snapshot[record.PersonID] = record.Decision
	}
	return snapshot
}
