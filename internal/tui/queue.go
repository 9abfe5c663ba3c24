package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/reviewdesk/internal/review"
)

// emptyQueuePlaceholder is shown when no checkpoint awaits a decision.
const emptyQueuePlaceholder = "Queue is empty."

var (
	queueTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	invoiceIDStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C4B5FD"))
	amountStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	reasonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// countLabel renders the queue count exactly as the service UI does.
func countLabel(n int) string {
	return fmt.Sprintf("%d Pending", n)
}

// renderQueuePanel is a pure projection of the latest pending snapshot: a
// title with the count label and one row per item in server order.
func renderQueuePanel(items []review.PendingItem, selected int, focused bool, width int) string {
	title := queueTitleStyle.Render(fmt.Sprintf("Review Queue · %s", countLabel(len(items))))
	if len(items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, placeholderStyle.Render(emptyQueuePlaceholder))
	}
	rows := make([]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, renderQueueRow(item, focused && i == selected, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n"))
}

func renderQueueRow(item review.PendingItem, selected bool, width int) string {
	line1 := fmt.Sprintf("%s  %s", invoiceIDStyle.Render(item.InvoiceID), amountStyle.Render(review.FormatAmount(item.Amount)))
	line2 := reasonStyle.Render(item.DisplayReason())
	content := line1 + "\n" + line2
	style := lipgloss.NewStyle().Padding(0, 0, 1, 0)
	if width > 0 {
		style = style.Width(width)
	}
	if selected {
		style = style.Bold(true).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	}
	return style.Render(content)
}
