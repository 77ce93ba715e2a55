package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Entry represents a learning-log entry record
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	DayNumber int        `json:"day_number"`
	Title     string     `json:"title"`
	Excerpt   string     `json:"excerpt"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MaxDayNumber returns the highest day number among persisted entries, or
// nil when the table is empty.
func (db *DB) MaxDayNumber(ctx context.Context) (*int, error) {
	var max *int
	err := db.pool.QueryRow(ctx,
		`SELECT MAX(day_number) FROM tils`,
	).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to query max day number: %w", err)
	}
	return max, nil
}

// CreateEntry persists a generated entry and returns its ID. The unique
// constraint on day_number rejects duplicates from concurrent generations.
func (db *DB) CreateEntry(ctx context.Context, entry *Entry) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO tils (day_number, title, excerpt, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		entry.DayNumber, entry.Title, entry.Excerpt, entry.Content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return id, nil
}

// GetEntryByDay retrieves an entry by its day number. Returns nil when no
// entry exists for that day.
func (db *DB) GetEntryByDay(ctx context.Context, dayNumber int) (*Entry, error) {
	var entry Entry
	err := db.pool.QueryRow(ctx,
		`SELECT id, day_number, title, excerpt, content, created_at, updated_at
		 FROM tils WHERE day_number = $1`,
		dayNumber,
	).Scan(&entry.ID, &entry.DayNumber, &entry.Title, &entry.Excerpt, &entry.Content, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return &entry, nil
}

// ListEntries retrieves recent entries, newest day first.
func (db *DB) ListEntries(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, day_number, title, excerpt, content, created_at, updated_at
		 FROM tils ORDER BY day_number DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.DayNumber, &entry.Title, &entry.Excerpt, &entry.Content, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
