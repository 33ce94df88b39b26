package refresh

import "time"

// DefaultMinInterval keeps a daily wake from being skipped by small schedule drift.
const DefaultMinInterval = 23 * time.Hour

// ShouldRefresh reports whether enough time has passed since lastUpdate. A nil
// lastUpdate means no refresh has ever completed.
func ShouldRefresh(now time.Time, lastUpdate *time.Time, minInterval time.Duration) bool {
	if lastUpdate == nil {
		return true
	}
	return now.Sub(*lastUpdate) >= minInterval
}
