package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai_app_generator/generator"
)

// ErrNotFound is returned when a version does not exist.
var ErrNotFound = errors.New("version not found")

// Entry is one accepted document version.
type Entry struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Version   uint64       `json:"version"`
	Op        generator.Op `json:"op"`
	Input     string       `json:"input"`
	Title     string       `json:"title,omitempty"`
	HTML      string       `json:"html,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Store persists accepted versions.
type Store struct {
	db *sql.DB
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts an accepted document. input is the description or feedback
// that produced it.
func (s *Store) Record(ctx context.Context, sessionID, input string, doc generator.Document) (Entry, error) {
	e := Entry{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Version:   doc.Version,
		Op:        doc.Op,
		Input:     input,
		Title:     doc.Title,
		HTML:      doc.HTML,
		CreatedAt: doc.CreatedAt.UTC(),
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO versions (id, session_id, version, op, input, title, html, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, int64(e.Version), string(e.Op), e.Input, e.Title, e.HTML,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting version: %w", err)
	}
	return e, nil
}

// List returns a session's versions, oldest first, without their HTML.
func (s *Store) List(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, version, op, input, title, '', created_at
		FROM versions WHERE session_id = ? ORDER BY version ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get returns one version including its HTML.
func (s *Store) Get(ctx context.Context, sessionID string, version uint64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, version, op, input, title, html, created_at
		FROM versions WHERE session_id = ? AND version = ?`, sessionID, int64(version))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e       Entry
		version int64
		op, ts  string
	)
	if err := sc.Scan(&e.ID, &e.SessionID, &version, &op, &e.Input, &e.Title, &e.HTML, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning version: %w", err)
	}
	e.Version = uint64(version)
	e.Op = generator.Op(op)
	created, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", ts, err)
	}
	e.CreatedAt = created
	return &e, nil
}
