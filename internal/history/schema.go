package history

// Schema creates the analysis tables.
const Schema = `
CREATE TABLE IF NOT EXISTS analyses (
    id             TEXT PRIMARY KEY,
    source         TEXT NOT NULL DEFAULT '',
    white          TEXT NOT NULL DEFAULT '',
    black          TEXT NOT NULL DEFAULT '',
    moves_analyzed INTEGER NOT NULL,
    avg_cpl        INTEGER NOT NULL,
    accuracy       REAL NOT NULL,
    inaccuracies   INTEGER NOT NULL,
    mistakes       INTEGER NOT NULL,
    blunders       INTEGER NOT NULL,
    created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_moves (
    analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
    ply         INTEGER NOT NULL,
    played      TEXT NOT NULL,
    best        TEXT NOT NULL DEFAULT '',
    cpl         INTEGER NOT NULL,
    label       TEXT NOT NULL,
    PRIMARY KEY (analysis_id, ply)
);

CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
`
