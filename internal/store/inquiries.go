// Package store provides SQLite-backed persistence for user inquiries.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no inquiry matches the requested identifier.
var ErrNotFound = errors.New("inquiry not found")

// Inquiry is one acknowledged free-text message from a dashboard user.
type Inquiry struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Contact    string    `json:"contact"`
	ReceivedAt time.Time `json:"received_at"`
}

// InquiryStore persists inquiries in a SQLite database.
type InquiryStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewInquiryStore opens or creates the database at dbPath. An empty dbPath
// defaults to $TMPDIR/balloon-quake-aggregation/inquiries.db.
func NewInquiryStore(dbPath string, clock clockwork.Clock) (*InquiryStore, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "balloon-quake-aggregation", "inquiries.db")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &InquiryStore{db: db, clock: clock}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *InquiryStore) Close() error {
	return s.db.Close()
}

func (s *InquiryStore) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS inquiries (
		id          TEXT PRIMARY KEY,
		message     TEXT NOT NULL,
		contact     TEXT NOT NULL,
		received_at INTEGER NOT NULL
	)`)
	return err
}

// Save stores a new inquiry and returns the acknowledgment record with its
// generated identifier and received-at instant.
func (s *InquiryStore) Save(message, contact string) (Inquiry, error) {
	inq := Inquiry{
		ID:         uuid.NewString(),
		Message:    message,
		Contact:    contact,
		ReceivedAt: s.clock.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO inquiries (id, message, contact, received_at) VALUES (?, ?, ?, ?)`,
		inq.ID, inq.Message, inq.Contact, inq.ReceivedAt.UnixMilli(),
	)
	if err != nil {
		return Inquiry{}, fmt.Errorf("save inquiry: %w", err)
	}
	return inq, nil
}

// Get returns one inquiry by identifier.
func (s *InquiryStore) Get(id string) (Inquiry, error) {
	var inq Inquiry
	var receivedAt int64
	err := s.db.QueryRow(
		`SELECT id, message, contact, received_at FROM inquiries WHERE id = ?`, id,
	).Scan(&inq.ID, &inq.Message, &inq.Contact, &receivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Inquiry{}, ErrNotFound
	}
	if err != nil {
		return Inquiry{}, fmt.Errorf("get inquiry: %w", err)
	}
	inq.ReceivedAt = time.UnixMilli(receivedAt).UTC()
	return inq, nil
}

// Recent returns up to limit inquiries, newest first.
func (s *InquiryStore) Recent(limit int) ([]Inquiry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, message, contact, received_at FROM inquiries ORDER BY received_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		var inq Inquiry
		var receivedAt int64
		if err := rows.Scan(&inq.ID, &inq.Message, &inq.Contact, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		inq.ReceivedAt = time.UnixMilli(receivedAt).UTC()
		out = append(out, inq)
	}
	return out, rows.Err()
}
