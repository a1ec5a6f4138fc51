package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hectorgimenez/labbot/internal/event"
	_ "modernc.org/sqlite"
)

const (
	KindReceived      = "received"
	KindStarted       = "started"
	KindReset         = "reset"
	KindCycleFinished = "cycle_finished"
	KindCheckFailed   = "check_failed"
)

// Entry is one recorded research event. Slot and Attempts are -1 when the
// event has none.
type Entry struct {
	ID         int64
	OccurredAt time.Time
	Supervisor string
	Kind       string
	CycleID    string
	Slot       int
	Attempts   int
	Message    string
}

// Recorder keeps research events in a SQLite database so past cycles can be
// listed after a restart.
type Recorder struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	r := &Recorder{db: db}
	if err := r.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

func (r *Recorder) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS research_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		occurred_at INTEGER NOT NULL,
		supervisor TEXT NOT NULL,
		kind TEXT NOT NULL,
		cycle_id TEXT NOT NULL DEFAULT '',
		slot INTEGER NOT NULL DEFAULT -1,
		attempts INTEGER NOT NULL DEFAULT -1,
		message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_research_events_occurred ON research_events(occurred_at);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Handle stores research events and ignores the rest.
func (r *Recorder) Handle(ctx context.Context, e event.Event) error {
	entry := Entry{
		OccurredAt: e.OccurredAt(),
		Supervisor: e.Supervisor(),
		Slot:       -1,
		Attempts:   -1,
		Message:    e.Message(),
	}

	switch evt := e.(type) {
	case event.ResearchReceivedEvent:
		entry.Kind, entry.CycleID, entry.Slot = KindReceived, evt.CycleID.String(), evt.Slot
	case event.ResearchStartedEvent:
		entry.Kind, entry.CycleID, entry.Slot = KindStarted, evt.CycleID.String(), evt.Slot
	case event.ResearchResetEvent:
		entry.Kind, entry.CycleID = KindReset, evt.CycleID.String()
	case event.ResearchCycleFinishedEvent:
		entry.Kind, entry.CycleID, entry.Slot, entry.Attempts = KindCycleFinished, evt.CycleID.String(), evt.Finished, evt.Attempts
	case event.CheckFailedEvent:
		entry.Kind, entry.Message = KindCheckFailed, evt.Err
	default:
		return nil
	}

	return r.Add(ctx, entry)
}

func (r *Recorder) Add(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO research_events (occurred_at, supervisor, kind, cycle_id, slot, attempts, message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.OccurredAt.UnixMilli(), e.Supervisor, e.Kind, e.CycleID, e.Slot, e.Attempts, e.Message)
	if err != nil {
		return fmt.Errorf("failed to record %s event: %w", e.Kind, err)
	}
	return nil
}

// Recent returns the newest n entries, newest first.
func (r *Recorder) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, occurred_at, supervisor, kind, cycle_id, slot, attempts, message
		FROM research_events ORDER BY occurred_at DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &ms, &e.Supervisor, &e.Kind, &e.CycleID, &e.Slot, &e.Attempts, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		e.OccurredAt = time.UnixMilli(ms)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountSince returns how many entries of each kind were recorded since t.
func (r *Recorder) CountSince(ctx context.Context, t time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM research_events WHERE occurred_at >= ? GROUP BY kind`, t.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
