package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
	StatusFailed   = "failed"

	PartitionOK     = "ok"
	PartitionFailed = "failed"
)

// Build is one recorded reference table build.
type Build struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	Language       string
	Version        string
	Source         string
	Marker         string
	Workers        int
	PartitionCount int
	SucceededCount int
	FailedCount    int
	WordCount      int
	OutputPath     string
	OutputBytes    int64
	Status         string
	Partitions     []BuildPartition
}

// BuildPartition is the status of one partition within a build.
type BuildPartition struct {
	Key          string
	Status       string
	ErrorMessage string
}

// NewRunID returns a new time-ordered run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// BuildStatus derives the status of a build from its partition counts.
func BuildStatus(succeeded, failed int) string {
	switch {
	case succeeded == 0:
		return StatusFailed
	case failed > 0:
		return StatusPartial
	default:
		return StatusComplete
	}
}

// RecordBuild inserts a build and its partitions in one transaction.
func (db *DB) RecordBuild(b *Build) error {
	if b.RunID == "" {
		b.RunID = NewRunID()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO builds (run_id, started_at, finished_at, language, version, source, marker,
		                    workers, partition_count, succeeded_count, failed_count, word_count,
		                    output_path, output_bytes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.RunID, b.StartedAt.UTC().Format(time.RFC3339Nano), b.FinishedAt.UTC().Format(time.RFC3339Nano),
		b.Language, b.Version, b.Source, b.Marker, b.Workers, b.PartitionCount, b.SucceededCount,
		b.FailedCount, b.WordCount, b.OutputPath, b.OutputBytes, b.Status)
	if err != nil {
		return fmt.Errorf("failed to insert build: %w", err)
	}

	for _, p := range b.Partitions {
		var msg interface{}
		if p.ErrorMessage != "" {
			msg = p.ErrorMessage
		}
		_, err = tx.Exec(`
			INSERT INTO build_partitions (run_id, partition_key, status, error_message)
			VALUES (?, ?, ?, ?)
		`, b.RunID, p.Key, p.Status, msg)
		if err != nil {
			return fmt.Errorf("failed to insert partition %q: %w", p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build: %w", err)
	}
	return nil
}

const buildColumns = `run_id, started_at, finished_at, language, version, source, marker, workers,
	partition_count, succeeded_count, failed_count, word_count, output_path, output_bytes, status`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(row rowScanner) (*Build, error) {
	var b Build
	var started, finished string
	if err := row.Scan(&b.RunID, &started, &finished, &b.Language, &b.Version, &b.Source, &b.Marker,
		&b.Workers, &b.PartitionCount, &b.SucceededCount, &b.FailedCount, &b.WordCount,
		&b.OutputPath, &b.OutputBytes, &b.Status); err != nil {
		return nil, err
	}

	var err error
	if b.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
	}
	if b.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("invalid finished_at %q: %w", finished, err)
	}
	return &b, nil
}

// GetBuild retrieves a build and its partitions by run ID
func (db *DB) GetBuild(runID string) (*Build, error) {
	b, err := scanBuild(db.QueryRow(`SELECT `+buildColumns+` FROM builds WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("build %s: %w", runID, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}

	b.Partitions, err = db.GetBuildPartitions(runID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBuildPartitions returns the partitions of a build ordered by key
func (db *DB) GetBuildPartitions(runID string) ([]BuildPartition, error) {
	rows, err := db.Query(`
		SELECT partition_key, status, error_message
		FROM build_partitions
		WHERE run_id = ?
		ORDER BY partition_key
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get build partitions: %w", err)
	}
	defer rows.Close()

	var parts []BuildPartition
	for rows.Next() {
		var p BuildPartition
		var msg sql.NullString
		if err := rows.Scan(&p.Key, &p.Status, &msg); err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		if msg.Valid {
			p.ErrorMessage = msg.String
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// ListBuilds retrieves builds ordered by most recent first
func (db *DB) ListBuilds(limit int) ([]Build, error) {
	query := `SELECT ` + buildColumns + ` FROM builds ORDER BY run_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		builds = append(builds, *b)
	}
	return builds, rows.Err()
}

// FailedPartitionKeys returns the failed partition keys of a build.
func (db *DB) FailedPartitionKeys(runID string) ([]string, error) {
	rows, err := db.Query(`
		SELECT partition_key FROM build_partitions
		WHERE run_id = ? AND status = ?
		ORDER BY partition_key
	`, runID, PartitionFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed partitions: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan partition key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
