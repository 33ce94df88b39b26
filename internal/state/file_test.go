package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/salecheck/internal/product"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.json"))
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	return s
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := newFileStore(t)

	if s.Exists() {
		t.Fatal("Exists() = true before first write")
	}
	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(snap.Products) != 0 || snap.LastUpdate != nil {
		t.Fatalf("Load = %#v, want zero snapshot", snap)
	}
}

func TestFileStore_RoundTripAndAtomicWrite(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_760_000_000_123)

	err := s.Save(ctx, Snapshot{
		Products:   []product.Record{{ID: "A", Title: "One", CurrentPriceText: "$1.00", OriginalPriceText: "$2.00"}},
		LastUpdate: &now,
	})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !s.Exists() {
		t.Fatal("Exists() = false after write")
	}

	// A second store instance sees the same data.
	other, err := NewFileStore(s.Path())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	snap, err := other.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(snap.Products) != 1 || snap.Products[0].OriginalPriceText != "$2.00" {
		t.Fatalf("Load products = %#v", snap.Products)
	}
	if snap.LastUpdate == nil || snap.LastUpdate.UnixMilli() != now.UnixMilli() {
		t.Fatalf("LastUpdate = %v, want %v", snap.LastUpdate, now)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir returned error: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temporary file %s left behind", e.Name())
		}
	}
}

func TestFileStore_UpdateErrorLeavesFileUntouched(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, Snapshot{Products: []product.Record{{ID: "A"}}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}

	boom := errors.New("boom")
	if _, err := s.Update(ctx, func(snap *Snapshot) error {
		snap.Products = append(snap.Products, product.Record{ID: "B"})
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}

	after, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("state file changed after failed update:\n%s\n---\n%s", before, after)
	}
}

func TestFileStore_CorruptFileErrors(t *testing.T) {
	s := newFileStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not-json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("Load returned nil error for corrupt state")
	}
	if _, err := s.Update(context.Background(), func(*Snapshot) error { return nil }); err == nil {
		t.Fatal("Update returned nil error for corrupt state")
	}
}

func TestFileStore_CancelledContextFailsToLock(t *testing.T) {
	s := newFileStore(t)

	holder, err := NewFileStore(s.Path())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if err := holder.lock.Lock(); err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}
	defer func() { _ = holder.lock.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := s.Update(ctx, func(*Snapshot) error { return nil }); err == nil {
		t.Fatal("Update returned nil error while another handle holds the lock")
	}
}

func TestFileStore_WatchDeliversExternalWrites(t *testing.T) {
	s := newFileStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	writer, err := NewFileStore(s.Path())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	// The watcher may not be registered yet; keep writing until one lands.
	for i := 0; ; i++ {
		select {
		case snap := <-updates:
			if len(snap.Products) != 1 || snap.Products[0].ID != "external" {
				t.Fatalf("watcher delivered %#v", snap.Products)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-tick.C:
			rec := product.Record{ID: "external", Title: time.Now().String()}
			if err := writer.Save(context.Background(), Snapshot{Products: []product.Record{rec}}); err != nil {
				t.Fatalf("Save returned error: %v", err)
			}
		case <-deadline:
			t.Fatal("no external write delivered by watcher")
		}
	}
}
