// Package history persists whole-game analyses in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned when an analysis id is unknown.
var ErrNotFound = errors.New("history: analysis not found")

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Move is one reviewed ply of a game.
type Move struct {
	Ply    int    `json:"ply"`
	Played string `json:"played"`
	Best   string `json:"best"`
	CPL    int    `json:"cpl"`
	Label  string `json:"tag"`
}

// Record is a stored game analysis.
type Record struct {
	ID            string    `json:"analysis_id"`
	Source        string    `json:"file"`
	White         string    `json:"white,omitempty"`
	Black         string    `json:"black,omitempty"`
	MovesAnalyzed int       `json:"movesAnalyzed"`
	AvgCPL        int       `json:"avgCPL"`
	Accuracy      float64   `json:"accuracy"`
	Inaccuracies  int       `json:"inaccuracies"`
	Mistakes      int       `json:"mistakes"`
	Blunders      int       `json:"blunders"`
	CreatedAt     time.Time `json:"created_at"`
	Moves         []Move    `json:"moves,omitempty"`
}

// Store is a SQLite-backed analysis history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores r with its moves, assigning ID and CreatedAt.
func (s *Store) Save(ctx context.Context, r *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()
	created := s.now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (id, source, white, black, moves_analyzed, avg_cpl, accuracy, inaccuracies, mistakes, blunders, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.Source, r.White, r.Black, r.MovesAnalyzed, r.AvgCPL, r.Accuracy,
		r.Inaccuracies, r.Mistakes, r.Blunders, created.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	for _, m := range r.Moves {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO analysis_moves (analysis_id, ply, played, best, cpl, label) VALUES (?, ?, ?, ?, ?, ?)`,
			id, m.Ply, m.Played, m.Best, m.CPL, m.Label,
		)
		if err != nil {
			return fmt.Errorf("insert move %d: %w", m.Ply, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.ID = id
	r.CreatedAt = created
	return nil
}

// Recent returns up to limit analyses, newest first, without their moves.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, white, black, moves_analyzed, avg_cpl, accuracy, inaccuracies, mistakes, blunders, created_at
		 FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored analyses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return n, nil
}

// Get returns one analysis with its moves.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, white, black, moves_analyzed, avg_cpl, accuracy, inaccuracies, mistakes, blunders, created_at
		 FROM analyses WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ply, played, best, cpl, label FROM analysis_moves WHERE analysis_id = ? ORDER BY ply`, id)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.Ply, &m.Played, &m.Best, &m.CPL, &m.Label); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		r.Moves = append(r.Moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r       Record
		created string
	)
	err := sc.Scan(&r.ID, &r.Source, &r.White, &r.Black, &r.MovesAnalyzed, &r.AvgCPL,
		&r.Accuracy, &r.Inaccuracies, &r.Mistakes, &r.Blunders, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan analysis: %w", err)
	}
	r.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return r, fmt.Errorf("parse created_at: %w", err)
	}
	return r, nil
}
