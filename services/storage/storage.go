package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout bounds every statement issued by the SQL stores.
const queryTimeout = 5 * time.Second

// ErrUnavailable is returned by stores that cannot currently serve requests.
var ErrUnavailable = errors.New("storage: unavailable")

// DB abstracts the database operations used by the storage layer.
// Satisfied by *pgxpool.Pool in production and pgxmock in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Storage defines the interface for contact message persistence.
// The contact service depends on this abstraction only, so the backing
// store (memory, Postgres, SQLite) is chosen at startup.
type Storage interface {
	// CreateMessage persists in and returns the stored record with its
	// assigned ID and CreatedAt. IDs are unique and strictly increasing.
	CreateMessage(ctx context.Context, in NewContactMessage) (*ContactMessage, error)
	// ListMessages returns stored records ordered by ID ascending.
	ListMessages(ctx context.Context, opts ListOptions) ([]ContactMessage, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// PostgresSchema creates the contact_messages table.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS contact_messages (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    subject    TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgStorage implements Storage using PostgreSQL.
type PgStorage struct {
	DB DB
}

var _ Storage = (*PgStorage)(nil)

// NewInstance creates a new PostgreSQL-backed Storage implementation.
func NewInstance(db *pgxpool.Pool) (*PgStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("repository: db connection cannot be nil")
	}
	return &PgStorage{DB: db}, nil
}

// Migrate creates the contact_messages table if it does not exist.
func (r *PgStorage) Migrate(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.DB.Exec(timeoutCtx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to create contact_messages: %w", err)
	}
	return nil
}

// CreateMessage inserts a row and reads the database-assigned id and
// created_at back through RETURNING.
func (r *PgStorage) CreateMessage(ctx context.Context, in NewContactMessage) (*ContactMessage, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	msg := &ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
	err := r.DB.QueryRow(timeoutCtx, `
        INSERT INTO contact_messages (name, email, subject, message)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`,
		in.Name, in.Email, in.Subject, in.Message,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns messages in insertion order.
func (r *PgStorage) ListMessages(ctx context.Context, opts ListOptions) ([]ContactMessage, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        SELECT id, name, email, subject, message, created_at
        FROM contact_messages
        ORDER BY id ASC`
	var args []any
	if opts.Limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, opts.Limit, opts.Offset)
	} else if opts.Offset > 0 {
		query += ` OFFSET $1`
		args = append(args, opts.Offset)
	}

	rows, err := r.DB.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []ContactMessage{}
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PgStorage) Ping(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.DB.Ping(timeoutCtx)
}
