package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/inplace/internal/migrations"
	"github.com/studiowebux/inplace/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// Manager stores the update journal in SQLite
type Manager struct {
	db    *sql.DB
	now   func() time.Time
	cache *statsCache
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	// Run database migrations
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, now: time.Now, cache: newStatsCache(statsCacheTTL)}, nil
}

// Recorder journals updates sent from one document
type Recorder struct {
	m        *Manager
	document string
}

// For returns a recorder tagging entries with document
func (m *Manager) For(document string) *Recorder {
	return &Recorder{m: m, document: document}
}

// Record stores one update attempt
func (r *Recorder) Record(req *types.UpdateRequest, res *types.UpdateResult) error {
	return r.m.save(r.document, req, res)
}

// Record stores one update attempt without a document
func (m *Manager) Record(req *types.UpdateRequest, res *types.UpdateResult) error {
	return m.save("", req, res)
}

func (m *Manager) save(document string, req *types.UpdateRequest, res *types.UpdateResult) error {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if res == nil {
		res = &types.UpdateResult{}
	}

	query := `
		INSERT INTO journal (
			id, timestamp, document, method, url, field, value,
			status, response_body, duration_ms, request_size, response_size, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		id,
		m.now().UTC().Format(timestampLayout),
		document,
		req.Method,
		req.URL,
		req.Field(),
		req.Value,
		res.Status,
		res.Body,
		res.Duration,
		res.RequestSize,
		res.ResponseSize,
		res.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	m.cache.invalidate()
	return nil
}

// Filter narrows Load
type Filter struct {
	Document string
	Field    string
	Failed   bool // only entries with an error or a non-2xx status
	Limit    int
}

// Load returns entries matching f, newest first
func (m *Manager) Load(f Filter) ([]types.JournalEntry, error) {
	var where []string
	var args []any
	if f.Document != "" {
		where = append(where, "document = ?")
		args = append(args, f.Document)
	}
	if f.Field != "" {
		where = append(where, "field = ?")
		args = append(args, f.Field)
	}
	if f.Failed {
		where = append(where, "(COALESCE(error, '') != '' OR status < 200 OR status >= 300)")
	}

	query := `
		SELECT id, timestamp, document, method, url, field, value,
		       status, response_body, duration_ms, error
		FROM journal`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Get returns a single entry
func (m *Manager) Get(id string) (*types.JournalEntry, error) {
	rows, err := m.db.Query(`
		SELECT id, timestamp, document, method, url, field, value,
		       status, response_body, duration_ms, error
		FROM journal WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("journal entry %s not found", id)
	}
	return &entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]types.JournalEntry, error) {
	var entries []types.JournalEntry

	for rows.Next() {
		var e types.JournalEntry
		var timestamp string
		var errorMsg sql.NullString

		if err := rows.Scan(
			&e.ID,
			&timestamp,
			&e.Document,
			&e.Method,
			&e.URL,
			&e.Field,
			&e.Value,
			&e.Status,
			&e.Body,
			&e.DurationMs,
			&errorMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		parsed, err := time.ParseInLocation(timestampLayout, timestamp, time.UTC)
		if err != nil {
			// Older rows or driver-formatted values
			parsed, err = time.Parse(time.RFC3339Nano, timestamp)
			if err != nil {
				parsed = time.Time{}
			}
		}
		e.Timestamp = parsed
		e.Error = errorMsg.String

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM journal")
	if err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	m.cache.invalidate()
	return nil
}

func (m *Manager) Delete(id string) error {
	_, err := m.db.Exec("DELETE FROM journal WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	m.cache.invalidate()
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM journal").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get journal count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
