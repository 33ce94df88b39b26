package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/five82/salecheck/internal/money"
	"github.com/five82/salecheck/internal/product"
)

const (
	defaultWidth = 80
	markerWidth  = 2
	priceWidth   = 9
	percentWidth = 6
	minNameWidth = 12
)

func (m Model) render() string {
	styles := m.theme.Styles()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{m.renderHeader(styles, width), ""}
	switch {
	case !m.loaded:
		sections = append(sections, styles.MutedText.Render("Loading..."))
	case len(m.rows) == 0:
		sections = append(sections, styles.MutedText.Render(
			fmt.Sprintf("No products tracked. Add one with: salecheck track <url> (up to %d).", product.MaxTracked)))
	default:
		sections = append(sections, m.renderTable(styles, width))
	}
	sections = append(sections, "", m.renderFooter(styles, width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles, width int) string {
	segments := []string{
		styles.Logo.Render("SaleCheck"),
		fmt.Sprintf("%d/%d tracked", len(m.products), product.MaxTracked),
	}
	if unread := product.UnreadDrops(m.products); unread > 0 {
		segments = append(segments, styles.DangerText.Render(fmt.Sprintf("%d new drop%s", unread, plural(unread))))
	}
	segments = append(segments, "checked "+formatLastUpdate(m.lastUpdate, time.Now()))
	return styles.Header.Width(width).Render(strings.Join(segments, "  •  "))
}

func (m Model) renderTable(styles Styles, width int) string {
	nameWidth := max(minNameWidth, width-markerWidth-2*priceWidth-percentWidth-2)

	header := strings.Repeat(" ", markerWidth) +
		padRight(m.columnTitle("Name", product.SortName), nameWidth) +
		padLeft(m.columnTitle("Was", product.SortWas), priceWidth) +
		padLeft(m.columnTitle("Now", product.SortNow), priceWidth) +
		padLeft(m.columnTitle("Off", product.SortPercent), percentWidth)

	lines := []string{styles.ColumnHeader.Render(header)}
	for i, r := range m.rows {
		lines = append(lines, m.renderRow(styles, r, nameWidth, i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(styles Styles, r product.Record, nameWidth int, selected bool) string {
	marker := "  "
	if r.IsUnreadDrop {
		marker = "● "
	}
	percent := r.DiscountPercent()
	off := ""
	if percent > 0 {
		off = fmt.Sprintf("%d%%", percent)
	}

	name := padRight(truncate(r.DisplayName(), nameWidth-1), nameWidth)
	was := padLeft(money.Format(r.OriginalPriceText), priceWidth)
	now := padLeft(money.Format(r.CurrentPriceText), priceWidth)
	off = padLeft(off, percentWidth)

	if selected {
		return styles.Selected.Render(marker + name + was + now + off)
	}
	return styles.DangerText.Render(marker) +
		styles.Text.Render(name) +
		styles.MutedText.Render(was) +
		styles.SuccessText.Render(now) +
		styles.TierStyle(money.TierFor(percent)).Render(off)
}

func (m Model) columnTitle(title string, column product.SortColumn) string {
	if m.sort.Column != column {
		return title
	}
	if m.sort.Step == 1 {
		return title + " ▼"
	}
	return title + " ▲"
}

func (m Model) renderFooter(styles Styles, width int) string {
	var lines []string
	if m.renaming {
		lines = append(lines, m.input.View())
	}
	if m.status != "" {
		style := styles.SuccessText
		if m.statusErr {
			style = styles.DangerText
		}
		lines = append(lines, style.Render(m.status))
	}
	if m.showHelp {
		var parts []string
		for _, b := range m.keys.legend() {
			h := b.Help()
			parts = append(parts, styles.AccentText.Render(h.Key)+" "+h.Desc)
		}
		lines = append(lines, styles.Footer.Width(width).Render(strings.Join(parts, "  ")))
	}
	return strings.Join(lines, "\n")
}

func formatLastUpdate(last *time.Time, now time.Time) string {
	if last == nil {
		return "never"
	}
	ago := now.Sub(*last)
	switch {
	case ago < time.Minute:
		return "just now"
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		return last.Local().Format("Jan 2")
	}
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
