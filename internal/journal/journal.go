// Package journal records classified keystrokes in a SQLite database so a
// developer can inspect what the engine decided for each key.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"kanakey/internal/keycode"
	"kanakey/internal/keyevent"
)

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal: closed")

// pruneEvery is how many records pass between automatic prunes.
const pruneEvery = 100

// Entry is one classified key.
type Entry struct {
	ID        int64
	Time      time.Time
	Code      keycode.Code
	Modifiers keyevent.Modifiers
	Locale    keyevent.Locale
	Chars     string
	Rule      string
	Intent    string
	Action    string
	From      string
	To        string

	// IntentRedacted and ActionRedacted render Intent and Action without
	// typed text. A redacting journal stores them in place of Intent and
	// Action.
	IntentRedacted string
	ActionRedacted string
}

// Options configures a journal.
type Options struct {
	// Redact drops Chars and stores the text-free intent and action
	// renderings.
	Redact bool

	// MaxEntries bounds the table size; 0 keeps everything.
	MaxEntries int
}

// Journal is a SQLite-backed classification log. It is safe for
// concurrent use.
type Journal struct {
	mu      sync.Mutex
	db      *sql.DB
	opts    Options
	written int
}

// Open opens or creates the journal at path and runs migrations.
func Open(path string, opts Options) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db, opts: opts}, nil
}

// Record appends e. Its ID and, when zero, Time are filled in.
func (j *Journal) Record(e *Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return ErrClosed
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	var chars sql.NullString
	intent, act := e.Intent, e.Action
	if j.opts.Redact {
		intent, act = e.IntentRedacted, e.ActionRedacted
	} else {
		chars = sql.NullString{String: e.Chars, Valid: true}
	}

	result, err := j.db.Exec(`
		INSERT INTO entries (timestamp_ns, key_code, modifiers, locale, chars, rule, intent, action, state_from, state_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UnixNano(), int(e.Code), int(e.Modifiers), e.Locale.String(), chars,
		e.Rule, intent, act, e.From, e.To,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	j.written++
	if j.opts.MaxEntries > 0 && j.written%pruneEvery == 0 {
		if _, err := j.prune(j.opts.MaxEntries); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil, ErrClosed
	}

	rows, err := j.db.Query(`
		SELECT id, timestamp_ns, key_code, modifiers, locale, chars, rule, intent, action, state_from, state_to
		FROM entries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			ts        int64
			code, mod int
			locale    string
			chars     sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &code, &mod, &locale, &chars, &e.Rule, &e.Intent, &e.Action, &e.From, &e.To); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Time = time.Unix(0, ts)
		e.Code = keycode.Code(code)
		e.Modifiers = keyevent.Modifiers(mod)
		e.Chars = chars.String
		if l, err := keyevent.ParseLocale(locale); err == nil {
			e.Locale = l
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (j *Journal) Count() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return 0, ErrClosed
	}
	var n int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest max entries and reports how many rows
// were removed.
func (j *Journal) Prune(max int) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return 0, ErrClosed
	}
	return j.prune(max)
}

func (j *Journal) prune(max int) (int64, error) {
	if max < 0 {
		max = 0
	}
	result, err := j.db.Exec(`
		DELETE FROM entries WHERE id NOT IN (
			SELECT id FROM entries ORDER BY id DESC LIMIT ?
		)`, max)
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}
	return result.RowsAffected()
}

// Version returns the applied schema version.
func (j *Journal) Version() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return 0, ErrClosed
	}
	return schemaVersion(j.db)
}

// Close closes the database. Further calls return ErrClosed.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}
