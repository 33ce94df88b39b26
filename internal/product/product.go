// Package product defines the tracked product record and the rules that govern
// the tracked set: capacity, uniqueness, admission and user edits.
package product

import (
	"errors"
	"slices"
	"strings"

	"github.com/five82/salecheck/internal/money"
)

// MaxTracked is the largest number of products a user may track.
const MaxTracked = 5

// Record is one tracked product as persisted in the state file.
type Record struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	CustomTitle       *string `json:"customTitle"`
	CurrentPriceText  string  `json:"currentPriceText"`
	OriginalPriceText string  `json:"originalPriceText,omitempty"`
	IsUnreadDrop      bool    `json:"isUnreadDrop"`
}

// PriceUpdate is a fresh price observation returned by the refresh endpoint.
type PriceUpdate struct {
	ID                string `json:"id"`
	CurrentPriceText  string `json:"currentPriceText"`
	OriginalPriceText string `json:"originalPriceText,omitempty"`
}

// DisplayName returns the custom title when set, otherwise the fetched title.
func (r Record) DisplayName() string {
	if r.CustomTitle != nil && *r.CustomTitle != "" {
		return *r.CustomTitle
	}
	return r.Title
}

// DiscountPercent reports the current discount against the original price.
func (r Record) DiscountPercent() int {
	return money.DiscountPercent(r.CurrentPriceText, r.OriginalPriceText)
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r.CustomTitle != nil {
		title := *r.CustomTitle
		r.CustomTitle = &title
	}
	return r
}

// CloneAll deep-copies a record slice. A nil or empty input yields nil.
func CloneAll(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]Record, len(records))
	for i, r := range records {
		dup[i] = r.Clone()
	}
	return dup
}

// IDs returns the ids of records in order.
func IDs(records []Record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

// IndexOf returns the position of id in records, or -1.
func IndexOf(records []Record, id string) int {
	return slices.IndexFunc(records, func(r Record) bool { return r.ID == id })
}

var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrDuplicateItem    = errors.New("duplicate item")
	ErrMissingPriceData = errors.New("missing price data")
	ErrMissingID        = errors.New("missing product id")
	ErrNotFound         = errors.New("product not found")
)

// ValidationError is a user-facing rejection of an edit to the tracked set.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func rejected(kind error, message string) error {
	return &ValidationError{Kind: kind, Message: message}
}

// CheckCapacity rejects another addition once MaxTracked records are tracked.
func CheckCapacity(records []Record) error {
	if len(records) >= MaxTracked {
		return rejected(ErrCapacityExceeded, "Maximum capacity reached (5 items).")
	}
	return nil
}

// Add appends candidate to records after checking capacity, price data and
// uniqueness, in that order. The input slice is not modified.
func Add(records []Record, candidate Record) ([]Record, error) {
	candidate.ID = strings.TrimSpace(candidate.ID)
	if candidate.ID == "" {
		return records, rejected(ErrMissingID, "Product identifier unavailable.")
	}
	if err := CheckCapacity(records); err != nil {
		return records, err
	}
	if _, ok := money.Parse(candidate.OriginalPriceText); !ok {
		return records, rejected(ErrMissingPriceData, "Price comparison data unavailable.")
	}
	if IndexOf(records, candidate.ID) >= 0 {
		return records, rejected(ErrDuplicateItem, "This product is already in the list.")
	}

	candidate.CustomTitle = nil
	candidate.IsUnreadDrop = false
	out := CloneAll(records)
	return append(out, candidate), nil
}

// Remove drops the record with id.
func Remove(records []Record, id string) ([]Record, error) {
	idx := IndexOf(records, id)
	if idx < 0 {
		return records, ErrNotFound
	}
	out := CloneAll(records)
	return slices.Delete(out, idx, idx+1), nil
}

// Rename sets a custom title. Blank titles leave the record unchanged.
func Rename(records []Record, id, title string) ([]Record, error) {
	idx := IndexOf(records, id)
	if idx < 0 {
		return records, ErrNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return records, nil
	}
	out := CloneAll(records)
	out[idx].CustomTitle = &title
	return out, nil
}

// ResetTitle removes a custom title so the fetched title is shown again.
func ResetTitle(records []Record, id string) ([]Record, error) {
	idx := IndexOf(records, id)
	if idx < 0 {
		return records, ErrNotFound
	}
	out := CloneAll(records)
	out[idx].CustomTitle = nil
	return out, nil
}

// Move relocates the record with id to position to, clamped to the list bounds.
func Move(records []Record, id string, to int) ([]Record, error) {
	from := IndexOf(records, id)
	if from < 0 {
		return records, ErrNotFound
	}
	to = max(0, min(to, len(records)-1))
	out := CloneAll(records)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item), nil
}

// Acknowledge clears the unread-drop flag on the record with id.
func Acknowledge(records []Record, id string) ([]Record, error) {
	idx := IndexOf(records, id)
	if idx < 0 {
		return records, ErrNotFound
	}
	out := CloneAll(records)
	out[idx].IsUnreadDrop = false
	return out, nil
}

// AcknowledgeAll clears every unread-drop flag.
func AcknowledgeAll(records []Record) []Record {
	out := CloneAll(records)
	for i := range out {
		out[i].IsUnreadDrop = false
	}
	return out
}

// UnreadDrops counts records flagged with an unacknowledged drop.
func UnreadDrops(records []Record) int {
	n := 0
	for _, r := range records {
		if r.IsUnreadDrop {
			n++
		}
	}
	return n
}
