// Package logtail reads the end of the daemon log and highlights it for the
// logs command.
//
// Read uses a ring buffer of maxLines entries, so it makes one pass over the
// file and keeps O(maxLines) memory regardless of file size. A missing file
// reads as no lines. A non-positive maxLines returns the whole file.
//
// Highlighter understands the slog text format written by the daemon:
//
//	time=2026-10-15T08:00:00.000Z level=INFO msg="Refresh cycle finished" trigger=timer phase=committed
//
// The timestamp is dimmed, the level is colored by severity and error
// attributes are shown in red. Anything else passes through untouched.
package logtail
