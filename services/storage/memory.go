package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps messages in process memory. It is the default store
// when no database is configured; records do not survive a restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	nextID   int64
	messages []ContactMessage
	now      func() time.Time
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{now: time.Now}
}

func (s *MemoryStorage) CreateMessage(ctx context.Context, in NewContactMessage) (*ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg := ContactMessage{
		ID:        s.nextID,
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}
	s.messages = append(s.messages, msg)

	out := msg
	return &out, nil
}

func (s *MemoryStorage) ListMessages(ctx context.Context, opts ListOptions) ([]ContactMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := min(max(opts.Offset, 0), len(s.messages))
	end := len(s.messages)
	if opts.Limit > 0 {
		end = min(start+opts.Limit, end)
	}

	out := make([]ContactMessage, end-start)
	copy(out, s.messages[start:end])
	return out, nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}
