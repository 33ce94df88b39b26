package product

import (
	"slices"
	"strings"

	"github.com/five82/salecheck/internal/money"
	"github.com/shopspring/decimal"
)

// SortColumn names a sortable list column.
type SortColumn int

const (
	SortNone SortColumn = iota
	SortName
	SortWas
	SortNow
	SortPercent
)

func (c SortColumn) String() string {
	switch c {
	case SortName:
		return "name"
	case SortWas:
		return "was"
	case SortNow:
		return "now"
	case SortPercent:
		return "percent"
	default:
		return "none"
	}
}

// Sorted returns a sorted copy of records. Name sorts ascending, percent sorts
// largest discount first, and price columns honour descending. Invalid prices
// sort as zero. The sort is stable so ties keep the user's order.
func Sorted(records []Record, column SortColumn, descending bool) []Record {
	out := CloneAll(records)
	switch column {
	case SortName:
		slices.SortStableFunc(out, func(a, b Record) int {
			return strings.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
		})
	case SortPercent:
		slices.SortStableFunc(out, func(a, b Record) int {
			return b.DiscountPercent() - a.DiscountPercent()
		})
	case SortWas, SortNow:
		price := func(r Record) decimal.Decimal {
			text := r.CurrentPriceText
			if column == SortWas {
				text = r.OriginalPriceText
			}
			v, _ := money.Parse(text)
			return v
		}
		slices.SortStableFunc(out, func(a, b Record) int {
			cmp := price(a).Cmp(price(b))
			if descending {
				return -cmp
			}
			return cmp
		})
	}
	return out
}

// SortState tracks the list view's sort toggle. Selecting the same column again
// advances through its cycle: name and percent toggle between sorted and the
// user's order, price columns go ascending, descending, then back.
type SortState struct {
	Column SortColumn
	Step   int
}

// Next returns the state after the user selects column.
func (s SortState) Next(column SortColumn) SortState {
	cycle := 2
	if column == SortWas || column == SortNow {
		cycle = 3
	}
	if s.Column != column {
		return SortState{Column: column, Step: 0}
	}
	step := (s.Step + 1) % cycle
	if step == cycle-1 {
		return SortState{}
	}
	return SortState{Column: column, Step: step}
}

// Apply renders records under the state. The zero state keeps stored order.
func (s SortState) Apply(records []Record) []Record {
	if s.Column == SortNone {
		return CloneAll(records)
	}
	return Sorted(records, s.Column, s.Step == 1)
}
