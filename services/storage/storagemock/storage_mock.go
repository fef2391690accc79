package storagemock

import (
	"context"
	"sync"
	"time"

	"portfolio-contact/api/services/storage"
)

// StorageMock implements storage.Storage. Each method delegates to its
// *Mock func when set; otherwise it behaves like a tiny in-memory store.
// Calls are counted so tests can assert that a stage was never reached.
type StorageMock struct {
	CreateMessageMock func(ctx context.Context, in storage.NewContactMessage) (*storage.ContactMessage, error)
	ListMessagesMock  func(ctx context.Context, opts storage.ListOptions) ([]storage.ContactMessage, error)
	PingMock          func(ctx context.Context) error

	mu          sync.Mutex
	createCalls int
	listCalls   int
	messages    []storage.ContactMessage
}

var _ storage.Storage = (*StorageMock)(nil)

func (m *StorageMock) CreateMessage(ctx context.Context, in storage.NewContactMessage) (*storage.ContactMessage, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()

	if m.CreateMessageMock != nil {
		return m.CreateMessageMock(ctx, in)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	msg := storage.ContactMessage{
		ID:        int64(len(m.messages) + 1),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *StorageMock) ListMessages(ctx context.Context, opts storage.ListOptions) ([]storage.ContactMessage, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	if m.ListMessagesMock != nil {
		return m.ListMessagesMock(ctx, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.ContactMessage, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

func (m *StorageMock) Ping(ctx context.Context) error {
	if m.PingMock != nil {
		return m.PingMock(ctx)
	}
	return nil
}

// CreateCalls returns how many times CreateMessage was invoked.
func (m *StorageMock) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// ListCalls returns how many times ListMessages was invoked.
func (m *StorageMock) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}
