// Package ui provides the Bubble Tea list view for tracked products.
//
// The view loads the stored products, clears the drop indicator as soon as it
// opens, and then follows the store: each snapshot delivered by
// state.Store.Subscribe replaces the rows and resets any active sort. Edits are
// sent to the watchlist service and show up through the same subscription, so
// the view never patches its own copy.
//
// Keys: j/k move the cursor, K/J reorder, r renames, x resets the title, d
// removes, a marks a drop as seen, 1-4 cycle the sort on name/was/now/percent,
// T cycles the theme, ? toggles the key legend and q quits.
package ui
