package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/reviewdesk/internal/review"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA")).MarginBottom(1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))

	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Padding(0, 2)
	focusedButtonStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#7C3AED")).
				Padding(0, 2)

	statusStyles = map[statusKind]lipgloss.Style{
		statusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		statusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		statusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")),
		statusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
)

var formLabels = []string{"Invoice ID", "Vendor Name", "Amount"}

// View renders the console: start form and queue side by side, the review
// modal when a session is open, the status line, and a short log tail.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	sections := []string{headerStyle.Render("⬡ REVIEWDESK · Invoice Review Console")}

	if a.mode == modeReview {
		sections = append(sections, a.renderModal())
	} else {
		left := panelStyle.Render(a.renderForm())
		rightWidth := width/2 - 6
		if rightWidth < 30 {
			rightWidth = 30
		}
		right := panelStyle.Render(renderQueuePanel(a.items, a.queueIndex, a.focus == focusQueue, rightWidth))
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, right))
		sections = append(sections, hintStyle.Render("Tab → switch panel · Enter → submit/open review · q → quit"))
	}

	if a.status.text != "" {
		sections = append(sections, statusStyles[a.status.kind].Render(a.status.text))
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderForm() string {
	title := queueTitleStyle.Render("Start Workflow")
	lines := []string{title}
	for i, input := range a.form {
		lines = append(lines, labelStyle.Render(formLabels[i]), input.View())
	}
	return strings.Join(lines, "\n")
}

// renderModal draws the single review dialog with the abbreviated checkpoint
// id, the notes input, and the approve/reject actions.
func (a *App) renderModal() string {
	title := queueTitleStyle.Render(fmt.Sprintf("Review Checkpoint %s", review.ShortCheckpointID(a.session.CheckpointID())))

	approve := buttonStyle.Render("Approve")
	reject := buttonStyle.Render("Reject")
	switch a.modalFocus {
	case modalApprove:
		approve = focusedButtonStyle.Render("Approve")
	case modalReject:
		reject = focusedButtonStyle.Render("Reject")
	}

	lines := []string{
		title,
		labelStyle.Render("Notes"),
		a.notes.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, approve, "  ", reject),
	}
	if a.alert != "" {
		lines = append(lines, alertStyle.Render(a.alert), hintStyle.Render("Press any key to continue"))
	} else {
		lines = append(lines, hintStyle.Render("Tab → next field · Enter → confirm · Esc → cancel"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	lines := a.logbook.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	head := labelStyle.Render("LOG")
	body := hintStyle.UnsetMarginTop().Render(strings.Join(lines, "\n"))
	return panelStyle.Render(head + "\n" + body)
}
