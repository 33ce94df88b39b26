package state

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/five82/salecheck/internal/product"
)

// Snapshot is the complete persisted state.
type Snapshot struct {
	Products   []product.Record
	LastUpdate *time.Time
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	dup := Snapshot{Products: product.CloneAll(s.Products)}
	if s.LastUpdate != nil {
		ts := *s.LastUpdate
		dup.LastUpdate = &ts
	}
	return dup
}

type persisted struct {
	Products   []product.Record `json:"products"`
	LastUpdate *int64           `json:"lastUpdate,omitempty"`
}

// MarshalJSON writes the snapshot in the persisted layout.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := persisted{Products: s.Products}
	if out.Products == nil {
		out.Products = []product.Record{}
	}
	if s.LastUpdate != nil {
		ms := s.LastUpdate.UnixMilli()
		out.LastUpdate = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the persisted layout.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in persisted
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Products = in.Products
	s.LastUpdate = nil
	if in.LastUpdate != nil {
		ts := time.UnixMilli(*in.LastUpdate)
		s.LastUpdate = &ts
	}
	return nil
}

// Store is the persistence abstraction shared by all components.
type Store interface {
	// Load returns a copy of the current snapshot. A store that has never been
	// written returns the zero Snapshot.
	Load(ctx context.Context) (Snapshot, error)
	// Save replaces the snapshot.
	Save(ctx context.Context, snap Snapshot) error
	// Update applies fn to a copy of the current snapshot and writes the result
	// atomically. If fn returns an error nothing is written and that error is
	// returned.
	Update(ctx context.Context, fn func(*Snapshot) error) (Snapshot, error)
	// Subscribe registers for change notifications. The returned function
	// unsubscribes and closes the channel.
	Subscribe() (<-chan Snapshot, func())
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)

// MemoryStore is an in-process Store. The zero value is ready to use.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot Snapshot
	hub      hub
}

// Load returns a copy of the current snapshot.
func (s *MemoryStore) Load(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone(), nil
}

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	_, err := s.Update(ctx, func(cur *Snapshot) error {
		*cur = snap.Clone()
		return nil
	})
	return err
}

// Update applies fn under the write lock.
func (s *MemoryStore) Update(_ context.Context, fn func(*Snapshot) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot.Clone()
	if err := fn(&next); err != nil {
		return s.snapshot.Clone(), err
	}
	s.snapshot = next.Clone()
	// Published under the lock so subscribers see writes in commit order.
	s.hub.publish(next)
	return next, nil
}

// Subscribe registers for change notifications.
func (s *MemoryStore) Subscribe() (<-chan Snapshot, func()) {
	return s.hub.subscribe()
}

// hub fans snapshots out to subscribers, keeping only the newest value for
// subscribers that have not drained their channel.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Snapshot
}

func (h *hub) subscribe() (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]chan Snapshot)
	}
	id := h.next
	h.next++
	ch := make(chan Snapshot, 1)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

func (h *hub) publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		// Replace any undelivered snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap.Clone():
		default:
		}
	}
}
