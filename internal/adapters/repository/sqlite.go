package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/examworld/awr/internal/domain/model"
	"github.com/examworld/awr/pkg/metrics"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// schema creates the participants table. Safe to run multiple times.
// The UNIQUE constraint on email is the atomicity primitive that
// concurrent submitters race on; the awr column is the only mutable field.
const schema = `
CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    marks TEXT NOT NULL,
    total_marks INTEGER NOT NULL,
    percentage REAL NOT NULL,
    awr INTEGER,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_participants_score
    ON participants(total_marks DESC, created_at ASC, id ASC);
`

// scoreOrder is the deterministic scan order shared by AllByScore and TopN.
const scoreOrder = "ORDER BY total_marks DESC, created_at ASC, id ASC"

// SQLiteStore implements Store over a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the participant store at path and applies the schema.
// The special path ":memory:" opens an in-memory database for tests.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// An in-memory database exists per connection; keep the pool at one.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks connectivity to the database.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// FindByEmail returns the record registered under email.
func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (model.Participant, error) {
	start := time.Now()
	defer observeQuery(start)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, marks, total_marks, percentage, awr, created_at
		 FROM participants WHERE email = ?`, email)
	return scanParticipant(row)
}

// FindByID returns the record with the given store-assigned id.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (model.Participant, error) {
	start := time.Now()
	defer observeQuery(start)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, marks, total_marks, percentage, awr, created_at
		 FROM participants WHERE id = ?`, id)
	return scanParticipant(row)
}

// Insert persists a new record and returns the assigned id.
func (s *SQLiteStore) Insert(ctx context.Context, rec model.Participant) (string, error) {
	start := time.Now()
	defer observeWrite(start)

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	marksJSON, err := json.Marshal(rec.Marks)
	if err != nil {
		return "", fmt.Errorf("encode marks: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var rank any // NULL until the first recomputation pass
	if rec.Rank > 0 {
		rank = rec.Rank
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO participants (id, name, email, marks, total_marks, percentage, awr, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Name, rec.Email, string(marksJSON), rec.TotalMarks, rec.Percentage, rank, toMillis(createdAt))
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateEmail
		}
		metrics.RecordStoreError()
		return "", fmt.Errorf("insert participant: %w", err)
	}

	return id, nil
}

// UpdateRank sets the rank of a single record.
func (s *SQLiteStore) UpdateRank(ctx context.Context, id string, rank int) error {
	start := time.Now()
	defer observeWrite(start)

	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET awr = ? WHERE id = ?`, rank, id)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update rank: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rank: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AllByScore returns every record in deterministic score order.
func (s *SQLiteStore) AllByScore(ctx context.Context) ([]model.Participant, error) {
	start := time.Now()
	defer observeQuery(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, marks, total_marks, percentage, awr, created_at
		 FROM participants `+scoreOrder)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("scan participants: %w", err)
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		rec, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("scan participants: %w", err)
	}
	return out, nil
}

// TopN returns the leaderboard projection for the first n records.
func (s *SQLiteStore) TopN(ctx context.Context, n int) ([]model.LeaderboardRow, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer observeQuery(start)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total_marks, percentage, awr
		 FROM participants `+scoreOrder+` LIMIT ?`, n)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []model.LeaderboardRow
	for rows.Next() {
		var entry model.LeaderboardRow
		var rank sql.NullInt64
		if err := rows.Scan(&entry.Name, &entry.TotalMarks, &entry.Percentage, &rank); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entry.Rank = int(rank.Int64)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return out, nil
}

// Count returns the number of participant records.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count); err != nil {
		return 0
	}
	return count
}

// scanner abstracts *sql.Row and *sql.Rows for scanParticipant.
type scanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row scanner) (model.Participant, error) {
	var rec model.Participant
	var marksJSON string
	var rank sql.NullInt64
	var createdAt int64

	err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &marksJSON,
		&rec.TotalMarks, &rec.Percentage, &rank, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Participant{}, ErrNotFound
		}
		metrics.RecordStoreError()
		return model.Participant{}, fmt.Errorf("scan participant: %w", err)
	}

	if err := json.Unmarshal([]byte(marksJSON), &rec.Marks); err != nil {
		return model.Participant{}, fmt.Errorf("decode marks: %w", err)
	}
	rec.Rank = int(rank.Int64)
	rec.CreatedAt = fromMillis(createdAt)
	return rec, nil
}

// isUniqueViolation detects SQLite unique-constraint failures on insert.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}

func observeWrite(start time.Time) {
	metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
}

var _ Store = (*SQLiteStore)(nil)
