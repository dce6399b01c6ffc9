package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_GetPut(t *testing.T) {
	store := NewMemoryStore[string](0)

	ctx := context.Background()
	id := "test-id"
	value := "test-value"

	// Test Put
	err := store.Put(ctx, id, value)
	if err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}

	// Test Get existing
	got, ok, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist")
	}
	if got != value {
		t.Errorf("Expected value '%s', got '%s'", value, got)
	}

	// Test Get non-existing
	_, ok, err = store.Get(ctx, "non-existent")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if ok {
		t.Error("Expected value to not exist")
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore[int](0)

	ctx := context.Background()
	id := "test-id"

	// Put initial value
	err := store.Put(ctx, id, 10)
	if err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}

	// Overwrite with new value
	err = store.Put(ctx, id, 20)
	if err != nil {
		t.Fatalf("Unexpected error on overwrite Put: %v", err)
	}

	// Verify overwrite
	got, ok, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist")
	}
	if got != 20 {
		t.Errorf("Expected value 20, got %d", got)
	}
}

func TestMemoryStore_NewID(t *testing.T) {
	store := NewMemoryStore[string](0)

	// Generate multiple IDs and ensure they're unique
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.NewID()
		if ids[id] {
			t.Errorf("Duplicate ID generated: %s", id)
		}
		ids[id] = true

		// IDs should be hex strings (32 chars for 16 bytes)
		if len(id) != 32 {
			t.Errorf("Expected ID length 32, got %d", len(id))
		}
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore[int](0)

	ctx := context.Background()

	// Test concurrent writes
	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			err := store.Put(ctx, "key", id)
			if err != nil {
				t.Errorf("Error in concurrent Put: %v", err)
			}
			done <- true
		}(i)
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}

	// Verify we can still read
	_, ok, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Unexpected error on Get: %v", err)
	}
	if !ok {
		t.Error("Expected value to exist after concurrent writes")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore[string](0)
	ctx := context.Background()

	if err := store.Put(ctx, "id", "v"); err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}
	if err := store.Delete(ctx, "id"); err != nil {
		t.Fatalf("Unexpected error on Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "id"); ok {
		t.Error("Expected value to be gone after Delete")
	}
	if err := store.Delete(ctx, "never-stored"); err != nil {
		t.Errorf("Deleting a missing id should not fail: %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore[int](time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Put(ctx, "old", 1)
	now = now.Add(50 * time.Second)
	_ = store.Put(ctx, "fresh", 2)
	now = now.Add(20 * time.Second)

	if _, ok, _ := store.Get(ctx, "old"); ok {
		t.Error("Expected idle session to be expired")
	}
	if v, ok, _ := store.Get(ctx, "fresh"); !ok || v != 2 {
		t.Errorf("Expected fresh session, got %d, %v", v, ok)
	}

	if n := store.Sweep(); n != 1 {
		t.Errorf("Expected 1 swept session, got %d", n)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 remaining session, got %d", store.Len())
	}
}

func TestMemoryStore_Janitor(t *testing.T) {
	store := NewMemoryStore[int](time.Nanosecond)
	_ = store.Put(context.Background(), "a", 1)
	time.Sleep(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 1)
	go store.Janitor(ctx, time.Millisecond, func(n int) {
		select {
		case swept <- n:
		default:
		}
	})
	select {
	case n := <-swept:
		if n != 1 {
			t.Errorf("Expected 1 swept session, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Error("Janitor did not sweep")
	}
	cancel()
}

type names struct{ items []string }

func (n names) Clone() names {
	return names{items: append([]string(nil), n.items...)}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore[names](0)
	ctx := context.Background()
	if err := store.Put(ctx, "id", names{items: []string{"a", "b"}}); err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}

	got, _, _ := store.Get(ctx, "id")
	got.items[0], got.items[1] = got.items[1], got.items[0]

	again, _, _ := store.Get(ctx, "id")
	if again.items[0] != "a" || again.items[1] != "b" {
		t.Errorf("Stored value changed through a copy: %v", again.items)
	}
}

func TestMemoryStore_PutKeepsCopy(t *testing.T) {
	store := NewMemoryStore[names](0)
	ctx := context.Background()
	v := names{items: []string{"a"}}
	_ = store.Put(ctx, "id", v)
	v.items[0] = "changed"

	got, _, _ := store.Get(ctx, "id")
	if got.items[0] != "a" {
		t.Errorf("Expected stored value to be unaffected, got %v", got.items)
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore[names](0)
	ctx := context.Background()

	err := store.Update(ctx, "id", func(v *names) error {
		v.items = append(v.items, "first")
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error on Update: %v", err)
	}

	errStop := errors.New("stop")
	err = store.Update(ctx, "id", func(v *names) error {
		v.items[0] = "lost"
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("Expected fn error, got %v", err)
	}

	got, ok, _ := store.Get(ctx, "id")
	if !ok || len(got.items) != 1 || got.items[0] != "first" {
		t.Errorf("Expected a failed update to leave the value alone, got %v", got.items)
	}
}

func TestMemoryStore_UpdateConcurrent(t *testing.T) {
	store := NewMemoryStore[names](0)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update(ctx, "id", func(v *names) error {
				v.items = append(v.items, fmt.Sprint(i))
				return nil
			})
		}()
	}
	wg.Wait()

	got, _, _ := store.Get(ctx, "id")
	if len(got.items) != n {
		t.Errorf("Expected %d items, got %d", n, len(got.items))
	}
}
