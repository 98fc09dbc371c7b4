package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per reference table build
CREATE TABLE IF NOT EXISTS builds (
    run_id TEXT PRIMARY KEY,          -- ULID, sortable by start time
    started_at TEXT NOT NULL,         -- RFC3339
    finished_at TEXT NOT NULL,
    language TEXT NOT NULL,
    version TEXT NOT NULL,
    source TEXT NOT NULL,             -- base URL or local directory
    marker TEXT NOT NULL,
    workers INTEGER NOT NULL,
    partition_count INTEGER NOT NULL,
    succeeded_count INTEGER NOT NULL,
    failed_count INTEGER NOT NULL,
    word_count INTEGER NOT NULL,
    output_path TEXT NOT NULL,
    output_bytes INTEGER DEFAULT 0,
    status TEXT NOT NULL              -- complete, partial, failed
);

CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);

-- Per-partition status of a build; no frequency data is stored
CREATE TABLE IF NOT EXISTS build_partitions (
    run_id TEXT NOT NULL,
    partition_key TEXT NOT NULL,
    status TEXT NOT NULL,             -- ok, failed
    error_message TEXT,
    PRIMARY KEY (run_id, partition_key),
    FOREIGN KEY (run_id) REFERENCES builds(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_build_partitions_status ON build_partitions(status);
`
