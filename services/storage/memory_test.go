package storage_test

import (
	"context"
	"sync"
	"testing"

	"portfolio-contact/api/services/storage"
)

func TestMemoryStorage_IDsStrictlyIncrease(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		msg, err := store.CreateMessage(ctx, testInput)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.ID <= last {
			t.Fatalf("expected id > %d, got %d", last, msg.ID)
		}
		if msg.CreatedAt.IsZero() {
			t.Error("expected created_at to be assigned")
		}
		last = msg.ID
	}
}

func TestMemoryStorage_ConcurrentCreatesAreUnique(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, err := store.CreateMessage(ctx, testInput)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			ids <- msg.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("id %d issued twice", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d ids, got %d", n, len(seen))
	}
}

func TestMemoryStorage_List(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStorage()
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := store.CreateMessage(ctx, testInput); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		name    string
		opts    storage.ListOptions
		wantIDs []int64
	}{
		{name: "all", wantIDs: []int64{1, 2, 3, 4}},
		{name: "limit", opts: storage.ListOptions{Limit: 2}, wantIDs: []int64{1, 2}},
		{name: "limit and offset", opts: storage.ListOptions{Limit: 2, Offset: 3}, wantIDs: []int64{4}},
		{name: "offset past end", opts: storage.ListOptions{Offset: 10}, wantIDs: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListMessages(ctx, tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d messages, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("message %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestMemoryStorage_ListReturnsCopy(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStorage()
	ctx := context.Background()
	if _, err := store.CreateMessage(ctx, testInput); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.ListMessages(ctx, storage.ListOptions{})
	got[0].Name = "mutated"

	again, _ := store.ListMessages(ctx, storage.ListOptions{})
	if again[0].Name != "Jo" {
		t.Errorf("stored record was mutated through listing: %q", again[0].Name)
	}
}

func TestMemoryStorage_CanceledContext(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.CreateMessage(ctx, testInput); err == nil {
		t.Error("expected error for canceled context")
	}
}
