// Package reconcile merges freshly fetched prices into the tracked product list.
package reconcile

import (
	"github.com/five82/salecheck/internal/money"
	"github.com/five82/salecheck/internal/product"
)

// Result is the outcome of a merge.
type Result struct {
	Merged []product.Record
	// DropCount is the number of records whose current price fell in this merge.
	DropCount int
}

// Reconcile merges fresh price observations into old, preserving the order and
// membership of old exactly. Records without a fresh counterpart are kept as is.
// For matched records the current price is always replaced, the original price
// is replaced only when the fresh value is non-empty, and a drop is recorded when
// both current prices parse and the fresh one is lower. A previously set
// IsUnreadDrop flag is never cleared here. Neither input is modified.
func Reconcile(old []product.Record, fresh []product.PriceUpdate) Result {
	index := make(map[string]product.PriceUpdate, len(fresh))
	for _, update := range fresh {
		index[update.ID] = update
	}

	result := Result{Merged: make([]product.Record, 0, len(old))}
	for _, record := range old {
		merged := record.Clone()
		update, ok := index[record.ID]
		if !ok {
			result.Merged = append(result.Merged, merged)
			continue
		}

		if money.Less(update.CurrentPriceText, record.CurrentPriceText) {
			result.DropCount++
			merged.IsUnreadDrop = true
		}
		merged.CurrentPriceText = update.CurrentPriceText
		if update.OriginalPriceText != "" {
			merged.OriginalPriceText = update.OriginalPriceText
		}
		result.Merged = append(result.Merged, merged)
	}
	return result
}
