// Package state provides the persistent store shared by the refresh cycle, the
// CLI and the list view.
//
// # Overview
//
// The store holds a single Snapshot: the ordered list of tracked products and
// the time of the last successful refresh. Every component depends on the Store
// interface rather than a concrete implementation:
//
//	Writer (refresh cycle):        Readers/writers (CLI, list view):
//	┌──────────────────┐          ┌──────────────────┐
//	│ Load()           │          │ Load() / Update()│
//	│ fetch + merge    │          │ Subscribe()      │
//	│ Update()  ───────┼─────────→│   ← full Snapshot│
//	└──────────────────┘          └──────────────────┘
//
// # Implementations
//
//   - MemoryStore: mutex-protected, used in tests and as an embedded store.
//   - FileStore: JSON file with an advisory file lock and atomic rename, plus a
//     file watcher so writes from other processes reach subscribers.
//
// # Update Semantics
//
// Update runs a read-modify-write under the store's exclusive lock. The callback
// receives a private copy; returning an error discards the change and nothing is
// written. Products and LastUpdate are always written together, so readers never
// observe one without the other.
//
// # Change Notification
//
// Subscribe returns a channel of full snapshots. Delivery keeps only the latest
// value for a slow subscriber: intermediate snapshots may be skipped, the newest
// one never is.
//
// # Persisted Layout
//
//	{
//	  "products": [ {"id": "...", "title": "...", "customTitle": null,
//	                 "currentPriceText": "$15.00", "originalPriceText": "$30.00",
//	                 "isUnreadDrop": true} ],
//	  "lastUpdate": 1760486400000
//	}
//
// lastUpdate is epoch milliseconds and is omitted until the first refresh.
package state
