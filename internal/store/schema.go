package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    prefix TEXT NOT NULL,
    command TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rewrites (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    old_line TEXT NOT NULL,
    new_line TEXT NOT NULL,
    rewritten_at TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rewrites_run ON rewrites(run_id);
CREATE INDEX IF NOT EXISTS idx_rewrites_path ON rewrites(path);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
