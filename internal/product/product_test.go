package product

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func sample(id, current, original string) Record {
	return Record{ID: id, Title: "Item " + id, CurrentPriceText: current, OriginalPriceText: original}
}

func fullSet() []Record {
	return []Record{
		sample("A", "$10.00", "$12.00"),
		sample("B", "$20.00", "$22.00"),
		sample("C", "$30.00", "$32.00"),
		sample("D", "$40.00", "$42.00"),
		sample("E", "$50.00", "$52.00"),
	}
}

func TestAdd_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		records   []Record
		candidate Record
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "capacity exceeded",
			records:   fullSet(),
			candidate: sample("F", "$5.00", "$9.00"),
			wantErr:   ErrCapacityExceeded,
			wantMsg:   "Maximum capacity reached (5 items).",
		},
		{
			name:      "missing original price",
			records:   nil,
			candidate: sample("F", "$5.00", ""),
			wantErr:   ErrMissingPriceData,
			wantMsg:   "Price comparison data unavailable.",
		},
		{
			name:      "unparsable original price",
			records:   nil,
			candidate: sample("F", "$5.00", "see options"),
			wantErr:   ErrMissingPriceData,
		},
		{
			name:      "duplicate id",
			records:   []Record{sample("A", "$10.00", "$12.00")},
			candidate: sample("A", "$9.00", "$12.00"),
			wantErr:   ErrDuplicateItem,
			wantMsg:   "This product is already in the list.",
		},
		{
			name:      "missing id",
			candidate: sample("  ", "$9.00", "$12.00"),
			wantErr:   ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := CloneAll(tt.records)
			got, err := Add(tt.records, tt.candidate)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, verr.Error())
			}
			assert.Equal(t, before, CloneAll(got), "rejected add must leave the set unchanged")
		})
	}
}

func TestAdd_AppendsAndResetsUserFields(t *testing.T) {
	t.Parallel()

	records := []Record{sample("A", "$10.00", "$12.00")}
	candidate := sample("B", "$5.00", "$9.00")
	candidate.CustomTitle = ptr("stale")
	candidate.IsUnreadDrop = true

	got, err := Add(records, candidate)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"A", "B"}, IDs(got))
	assert.Nil(t, got[1].CustomTitle)
	assert.False(t, got[1].IsUnreadDrop)
	assert.Len(t, records, 1, "input slice must not grow")
}

func TestEdits(t *testing.T) {
	t.Parallel()

	records := fullSet()

	renamed, err := Rename(records, "B", "  Headphones  ")
	require.NoError(t, err)
	assert.Equal(t, "Headphones", renamed[1].DisplayName())
	assert.Equal(t, "Item B", records[1].DisplayName(), "Rename must not mutate its input")

	same, err := Rename(renamed, "B", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Headphones", same[1].DisplayName())

	reset, err := ResetTitle(renamed, "B")
	require.NoError(t, err)
	assert.Nil(t, reset[1].CustomTitle)
	assert.Equal(t, "Item B", reset[1].DisplayName())

	removed, err := Remove(records, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "D", "E"}, IDs(removed))

	_, err = Remove(records, "Z")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Rename(records, "Z", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ResetTitle(records, "Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMove(t *testing.T) {
	t.Parallel()

	records := fullSet()

	tests := []struct {
		id   string
		to   int
		want []string
	}{
		{"A", 2, []string{"B", "C", "A", "D", "E"}},
		{"E", 0, []string{"E", "A", "B", "C", "D"}},
		{"B", 99, []string{"A", "C", "D", "E", "B"}},
		{"D", -3, []string{"D", "A", "B", "C", "E"}},
		{"C", 2, []string{"A", "B", "C", "D", "E"}},
	}
	for _, tt := range tests {
		got, err := Move(records, tt.id, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, IDs(got), "Move(%s, %d)", tt.id, tt.to)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, IDs(records))

	_, err := Move(records, "Z", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcknowledge(t *testing.T) {
	t.Parallel()

	records := fullSet()
	records[0].IsUnreadDrop = true
	records[3].IsUnreadDrop = true
	assert.Equal(t, 2, UnreadDrops(records))

	acked, err := Acknowledge(records, "A")
	require.NoError(t, err)
	assert.False(t, acked[0].IsUnreadDrop)
	assert.True(t, acked[3].IsUnreadDrop)
	assert.True(t, records[0].IsUnreadDrop)

	all := AcknowledgeAll(records)
	assert.Zero(t, UnreadDrops(all))

	_, err = Acknowledge(records, "Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := []Record{{ID: "A", CustomTitle: ptr("mine")}}
	dup := CloneAll(orig)
	*dup[0].CustomTitle = "changed"
	assert.Equal(t, "mine", *orig[0].CustomTitle)
	assert.Nil(t, CloneAll(nil))
}

func TestSortState(t *testing.T) {
	t.Parallel()

	var s SortState
	s = s.Next(SortNow)
	assert.Equal(t, SortState{Column: SortNow, Step: 0}, s)
	s = s.Next(SortNow)
	assert.Equal(t, SortState{Column: SortNow, Step: 1}, s)
	s = s.Next(SortNow)
	assert.Equal(t, SortState{}, s, "third press restores the user's order")

	s = s.Next(SortName)
	assert.Equal(t, SortName, s.Column)
	s = s.Next(SortName)
	assert.Equal(t, SortState{}, s)

	s = SortState{Column: SortWas, Step: 1}.Next(SortPercent)
	assert.Equal(t, SortState{Column: SortPercent}, s)
}

func TestSorted(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: "A", Title: "banana", CurrentPriceText: "$30.00", OriginalPriceText: "$40.00"},
		{ID: "B", Title: "Apple", CurrentPriceText: "$10.00", OriginalPriceText: "$50.00"},
		{ID: "C", Title: "cherry", CurrentPriceText: "$20.00", OriginalPriceText: "$20.00", CustomTitle: ptr("aardvark")},
	}

	assert.Equal(t, []string{"C", "B", "A"}, IDs(Sorted(records, SortName, false)))
	assert.Equal(t, []string{"B", "C", "A"}, IDs(Sorted(records, SortNow, false)))
	assert.Equal(t, []string{"A", "C", "B"}, IDs(Sorted(records, SortNow, true)))
	assert.Equal(t, []string{"C", "A", "B"}, IDs(Sorted(records, SortWas, false)))
	assert.Equal(t, []string{"B", "A", "C"}, IDs(Sorted(records, SortPercent, false)))
	assert.Equal(t, []string{"A", "B", "C"}, IDs(SortState{}.Apply(records)))
	assert.Equal(t, []string{"A", "C", "B"}, IDs(SortState{Column: SortNow, Step: 1}.Apply(records)))
}
