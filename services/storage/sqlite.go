package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLiteSchema creates the contact_messages table. AUTOINCREMENT keeps
// ids from being reused even after the highest row is gone.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS contact_messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    subject    TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

// SQLiteStorage implements Storage on a SQLite database through sqlx.
type SQLiteStorage struct {
	DB  *sqlx.DB
	now func() time.Time
}

var _ Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage wraps an open database handle.
func NewSQLiteStorage(db *sqlx.DB) (*SQLiteStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("repository: db connection cannot be nil")
	}
	return &SQLiteStorage{DB: db, now: time.Now}, nil
}

// sqliteRow mirrors ContactMessage with created_at kept as stored text.
type sqliteRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Subject   string `db:"subject"`
	Message   string `db:"message"`
	CreatedAt string `db:"created_at"`
}

// Migrate creates the contact_messages table if it does not exist.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.DB.ExecContext(timeoutCtx, SQLiteSchema); err != nil {
		return fmt.Errorf("failed to create contact_messages: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateMessage(ctx context.Context, in NewContactMessage) (*ContactMessage, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	createdAt := s.now().UTC()
	res, err := s.DB.ExecContext(timeoutCtx, `
        INSERT INTO contact_messages (name, email, subject, message, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.Email, in.Subject, in.Message, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}

	return &ContactMessage{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: createdAt,
	}, nil
}

func (s *SQLiteStorage) ListMessages(ctx context.Context, opts ListOptions) ([]ContactMessage, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// LIMIT -1 is SQLite for "no limit".
	limit := -1
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	var rows []sqliteRow
	err := s.DB.SelectContext(timeoutCtx, &rows, `
        SELECT id, name, email, subject, message, created_at
        FROM contact_messages
        ORDER BY id ASC
        LIMIT ? OFFSET ?`,
		limit, max(opts.Offset, 0),
	)
	if err != nil {
		return nil, err
	}

	messages := make([]ContactMessage, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("message %d: invalid created_at %q: %w", row.ID, row.CreatedAt, err)
		}
		messages = append(messages, ContactMessage{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Subject:   row.Subject,
			Message:   row.Message,
			CreatedAt: createdAt,
		})
	}
	return messages, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.DB.PingContext(timeoutCtx)
}
