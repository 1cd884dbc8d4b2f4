package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/theimaginaryfoundation/cha2hatena/summary/provider"
)

const historySchema = `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS runs (
    id             TEXT PRIMARY KEY,
    created_at     TEXT NOT NULL,
    source_file    TEXT NOT NULL,
    ai_name        TEXT NOT NULL DEFAULT '',
    provider       TEXT NOT NULL,
    model          TEXT NOT NULL,
    thoughts_level TEXT NOT NULL DEFAULT '',
    title          TEXT NOT NULL DEFAULT '',
    input_tokens   INTEGER NOT NULL DEFAULT 0,
    input_fee      REAL NOT NULL DEFAULT 0,
    output_tokens  INTEGER NOT NULL DEFAULT 0,
    output_fee     REAL NOT NULL DEFAULT 0,
    total_fee      REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS runs_model ON runs(provider, model);
`

// History is the SQLite run log.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// OpenHistory opens or creates the database at dbPath.
func OpenHistory(dbPath string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("OpenHistory: create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("OpenHistory: open db: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenHistory: init schema: %w", err)
	}
	return &History{db: db, now: time.Now}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Insert stores rec, assigning an id and timestamp when they are empty. title is kept
// separately from the full summary so listings stay short.
func (h *History) Insert(ctx context.Context, rec *Record, title string) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = h.now().UTC()
	}
	_, err := h.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, source_file, ai_name, provider, model, thoughts_level, title,
                  input_tokens, input_fee, output_tokens, output_fee, total_fee)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.SourceFile, rec.AIName, string(rec.Provider), rec.Model,
		rec.ThoughtsLevel, title, rec.InputTokens, rec.InputFee, rec.OutputTokens, rec.OutputFee, rec.TotalFee)
	if err != nil {
		return fmt.Errorf("History.Insert: %w", err)
	}
	return nil
}

// Run is a stored row as listed by Recent.
type Run struct {
	ID         string
	CreatedAt  time.Time
	SourceFile string
	Provider   provider.ID
	Model      string
	Title      string
	TotalFee   float64
}

// Recent returns the newest runs first.
func (h *History) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `
SELECT id, created_at, source_file, provider, model, title, total_fee
FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("History.Recent: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			created string
			prov    string
		)
		if err := rows.Scan(&r.ID, &created, &r.SourceFile, &prov, &r.Model, &r.Title, &r.TotalFee); err != nil {
			return nil, fmt.Errorf("History.Recent: scan: %w", err)
		}
		r.Provider = provider.ID(prov)
		at, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("History.Recent: created_at %q: %w", created, err)
		}
		r.CreatedAt = at
		out = append(out, r)
	}
	return out, rows.Err()
}

// Total is the aggregate spend for one model.
type Total struct {
	Provider     provider.ID
	Model        string
	Runs         int
	InputTokens  int64
	OutputTokens int64
	TotalFee     float64
}

// Totals aggregates spend per provider and model, most expensive first.
func (h *History) Totals(ctx context.Context) ([]Total, error) {
	rows, err := h.db.QueryContext(ctx, `
SELECT provider, model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(total_fee)
FROM runs GROUP BY provider, model ORDER BY SUM(total_fee) DESC, model`)
	if err != nil {
		return nil, fmt.Errorf("History.Totals: %w", err)
	}
	defer rows.Close()

	var out []Total
	for rows.Next() {
		var (
			t    Total
			prov string
		)
		if err := rows.Scan(&prov, &t.Model, &t.Runs, &t.InputTokens, &t.OutputTokens, &t.TotalFee); err != nil {
			return nil, fmt.Errorf("History.Totals: scan: %w", err)
		}
		t.Provider = provider.ID(prov)
		out = append(out, t)
	}
	return out, rows.Err()
}
