// Package tui is the reviewer console: a Bubble Tea model that polls the
// review service for pending checkpoints, renders the queue, and submits
// reviewer decisions.
//
// The poll timer and user-triggered submissions are independent commands
// multiplexed onto the same event loop. Every poll response is a complete
// snapshot that wholly replaces the rendered queue, so overlapping polls race
// benignly: whichever response is processed last wins.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/reviewdesk/internal/config"
	"github.com/kingrea/reviewdesk/internal/logbook"
	"github.com/kingrea/reviewdesk/internal/review"
	"github.com/kingrea/reviewdesk/internal/reviewapi"
)

// pollInterval is the fixed cadence of the pending-queue poll.
const pollInterval = 3 * time.Second

// Client is the slice of the review service the console depends on.
type Client interface {
	StartWorkflow(ctx context.Context, req reviewapi.StartRequest) (review.WorkflowStatus, error)
	PendingReviews(ctx context.Context) ([]review.PendingItem, error)
	SubmitDecision(ctx context.Context, d review.Decision) (review.WorkflowStatus, error)
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

// statusMessage is the single-slot status line; each write replaces the last.
type statusMessage struct {
	text string
	kind statusKind
}

type appMode int

const (
	modeBrowse appMode = iota
	modeReview
)

type focusArea int

const (
	focusForm focusArea = iota
	focusQueue
)

// Start form field order.
const (
	fieldInvoiceID = iota
	fieldVendorName
	fieldAmount
)

// Review modal focus order.
const (
	modalNotes = iota
	modalApprove
	modalReject
)

type pollTickMsg struct{}

type queueSnapshotMsg struct {
	items []review.PendingItem
	err   error
}

type startResultMsg struct {
	status review.WorkflowStatus
	err    error
}

type decisionResultMsg struct {
	decision string
	status   review.WorkflowStatus
	err      error
}

// App is the console model. It holds the latest queue snapshot, the start
// form, the single review session, and the status line.
type App struct {
	client     Client
	logbook    *logbook.Logbook
	reviewerID string

	mode  appMode
	focus focusArea

	form      []textinput.Model
	formIndex int

	items      []review.PendingItem
	queueIndex int

	session    reviewSession
	notes      textinput.Model
	modalFocus int
	alert      string

	status statusMessage
	width  int
	height int
}

// NewApp builds the console model around a review service client.
func NewApp(client Client, cfg *config.Config, lb *logbook.Logbook) *App {
	reviewerID := config.DefaultReviewerID
	if cfg != nil && cfg.ReviewerID != "" {
		reviewerID = cfg.ReviewerID
	}

	invoice := textinput.New()
	invoice.Placeholder = "INV-1001"
	invoice.CharLimit = 64
	invoice.Width = 24
	invoice.Focus()

	vendor := textinput.New()
	vendor.Placeholder = "Acme Corp"
	vendor.CharLimit = 64
	vendor.Width = 24

	amount := textinput.New()
	amount.Placeholder = "250.00"
	amount.CharLimit = 16
	amount.Width = 24

	notes := textinput.New()
	notes.Placeholder = "Notes for the audit trail"
	notes.CharLimit = 200
	notes.Width = 42

	lb.Info("Session opened · server reviewer %s", reviewerID)

	return &App{
		client:     client,
		logbook:    lb,
		reviewerID: reviewerID,
		form:       []textinput.Model{invoice, vendor, amount},
		notes:      notes,
	}
}

// Init starts the poll loop: one immediate fetch plus the standing timer.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchPending(), a.schedulePoll(), textinput.Blink)
}

// fetchPending issues one independent poll round trip. Polls are never
// serialized or cancelled; a slow response simply lands whenever it lands.
func (a *App) fetchPending() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		items, err := client.PendingReviews(context.Background())
		return queueSnapshotMsg{items: items, err: err}
	}
}

func (a *App) schedulePoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// Update is the message pump.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case pollTickMsg:
		return a, tea.Batch(a.fetchPending(), a.schedulePoll())

	case queueSnapshotMsg:
		return a.handleQueueSnapshot(msg)

	case startResultMsg:
		return a.handleStartResult(msg)

	case decisionResultMsg:
		return a.handleDecisionResult(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.updateFocusedInput(msg)
}

// handleQueueSnapshot replaces the rendered queue with the newest snapshot.
// Failures are logged and otherwise ignored: the previous snapshot stays on
// screen and the status line is untouched.
func (a *App) handleQueueSnapshot(msg queueSnapshotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.logbook.Warn("Poll failed: %v", msg.err)
		return a, nil
	}
	a.items = msg.items
	if len(a.items) == 0 {
		a.queueIndex = 0
	} else if a.queueIndex >= len(a.items) {
		a.queueIndex = len(a.items) - 1
	}
	return a, nil
}

func (a *App) handleStartResult(msg startResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.setStatus(fmt.Sprintf("Error: %v", msg.err), statusError)
		a.logbook.Error("Workflow start failed: %v", msg.err)
		return a, nil
	}
	switch msg.status.Kind {
	case review.StatusCompleted:
		a.setStatus("Workflow Completed!", statusSuccess)
	case review.StatusPaused:
		a.setStatus(fmt.Sprintf("Workflow Paused: %s", msg.status.Message), statusWarning)
		return a, a.fetchPending()
	case review.StatusResumed:
		a.setStatus(fmt.Sprintf("Status: %s", msg.status.Raw), statusInfo)
	default:
		a.setStatus(fmt.Sprintf("Status: %s", msg.status.Raw), statusInfo)
	}
	return a, nil
}

// handleDecisionResult interprets the reply to a submitted decision. The
// session closes only on the success path; a failed submission keeps the
// modal open behind a blocking alert. An extra poll is issued either way.
func (a *App) handleDecisionResult(msg decisionResultMsg) (tea.Model, tea.Cmd) {
	refresh := a.fetchPending()
	if msg.err != nil {
		a.alert = fmt.Sprintf("Failed to submit decision: %v", msg.err)
		a.logbook.Error("Decision submission failed: %v", msg.err)
		return a, refresh
	}
	a.closeReview()
	switch msg.status.Kind {
	case review.StatusResumed:
		a.setStatus(fmt.Sprintf("Decision '%s' applied. Workflow Resumed.", msg.decision), statusSuccess)
	case review.StatusPaused:
		a.setStatus(fmt.Sprintf("Decision sent. Workflow moved to %s.", msg.status.NextStage), statusWarning)
	case review.StatusCompleted:
		a.setStatus(fmt.Sprintf("Decision '%s' applied. Workflow Completed.", msg.decision), statusSuccess)
	default:
		a.setStatus(fmt.Sprintf("Status: %s", msg.status.Raw), statusInfo)
	}
	return a, refresh
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.mode == modeReview {
		return a.handleReviewKey(msg)
	}
	return a.handleBrowseKey(msg)
}

func (a *App) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if a.focus == focusForm {
			a.focus = focusQueue
			a.form[a.formIndex].Blur()
		} else {
			a.focus = focusForm
			a.form[a.formIndex].Focus()
		}
		return a, nil
	case "q":
		if a.focus == focusQueue {
			return a, tea.Quit
		}
	case "r":
		if a.focus == focusQueue {
			return a, a.fetchPending()
		}
	case "up", "k":
		if a.focus == focusQueue {
			if a.queueIndex > 0 {
				a.queueIndex--
			}
			return a, nil
		}
		if msg.String() == "up" && a.formIndex > 0 {
			a.moveFormFocus(a.formIndex - 1)
			return a, nil
		}
	case "down", "j":
		if a.focus == focusQueue {
			if a.queueIndex < len(a.items)-1 {
				a.queueIndex++
			}
			return a, nil
		}
		if msg.String() == "down" && a.formIndex < len(a.form)-1 {
			a.moveFormFocus(a.formIndex + 1)
			return a, nil
		}
	case "enter":
		if a.focus == focusQueue {
			if a.queueIndex < len(a.items) {
				a.openReview(a.items[a.queueIndex])
			}
			return a, nil
		}
		if a.formIndex < len(a.form)-1 {
			a.moveFormFocus(a.formIndex + 1)
			return a, nil
		}
		return a.submitStart()
	}
	return a, a.updateFocusedInput(msg)
}

func (a *App) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A failed submission blocks the modal until the alert is acknowledged.
	if a.alert != "" {
		a.alert = ""
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.closeReview()
		return a, nil
	case "tab", "down":
		a.moveModalFocus((a.modalFocus + 1) % 3)
		return a, nil
	case "shift+tab", "up":
		a.moveModalFocus((a.modalFocus + 2) % 3)
		return a, nil
	case "enter":
		switch a.modalFocus {
		case modalApprove:
			return a.submitDecision(review.DecisionApprove)
		case modalReject:
			return a.submitDecision(review.DecisionReject)
		default:
			a.moveModalFocus(modalApprove)
			return a, nil
		}
	}
	return a, a.updateFocusedInput(msg)
}

func (a *App) moveFormFocus(index int) {
	a.form[a.formIndex].Blur()
	a.formIndex = index
	a.form[a.formIndex].Focus()
}

func (a *App) moveModalFocus(index int) {
	a.modalFocus = index
	if index == modalNotes {
		a.notes.Focus()
	} else {
		a.notes.Blur()
	}
}

func (a *App) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if a.mode == modeReview {
		if a.modalFocus == modalNotes {
			a.notes, cmd = a.notes.Update(msg)
		}
		return cmd
	}
	if a.focus == focusForm {
		a.form[a.formIndex], cmd = a.form[a.formIndex].Update(msg)
	}
	return cmd
}

// openReview transitions the session Closed→Open for one queue row, clearing
// any notes left over from a previous review.
func (a *App) openReview(item review.PendingItem) {
	a.session.Open(item.CheckpointID)
	a.notes.SetValue("")
	a.notes.Focus()
	a.modalFocus = modalNotes
	a.alert = ""
	a.mode = modeReview
	a.logbook.Info("Review opened · checkpoint %s (%s)", item.CheckpointID, item.InvoiceID)
}

// closeReview destroys the session and returns to the queue view.
func (a *App) closeReview() {
	a.session.Close()
	a.notes.Blur()
	a.alert = ""
	a.mode = modeBrowse
}

// submitStart validates the form and issues the start request.
func (a *App) submitStart() (tea.Model, tea.Cmd) {
	invoiceID := strings.TrimSpace(a.form[fieldInvoiceID].Value())
	vendorName := strings.TrimSpace(a.form[fieldVendorName].Value())
	amountRaw := strings.TrimSpace(a.form[fieldAmount].Value())

	if invoiceID == "" {
		a.setStatus("Invoice ID is required.", statusError)
		return a, nil
	}
	var amount float64
	if amountRaw != "" {
		parsed, err := strconv.ParseFloat(amountRaw, 64)
		if err != nil {
			a.setStatus("Amount must be a number.", statusError)
			return a, nil
		}
		amount = parsed
	}

	a.setStatus("Starting workflow...", statusInfo)
	req := reviewapi.StartRequest{InvoiceID: invoiceID, VendorName: vendorName, Amount: amount}
	client := a.client
	return a, func() tea.Msg {
		status, err := client.StartWorkflow(context.Background(), req)
		return startResultMsg{status: status, err: err}
	}
}

// submitDecision sends the open session's checkpoint with the given verdict.
func (a *App) submitDecision(decision string) (tea.Model, tea.Cmd) {
	if !a.session.IsOpen() {
		return a, nil
	}
	d := review.Decision{
		CheckpointID: a.session.CheckpointID(),
		Decision:     decision,
		Notes:        a.notes.Value(),
		ReviewerID:   a.reviewerID,
	}
	client := a.client
	return a, func() tea.Msg {
		status, err := client.SubmitDecision(context.Background(), d)
		return decisionResultMsg{decision: decision, status: status, err: err}
	}
}

// setStatus replaces the single status line; last write wins.
func (a *App) setStatus(text string, kind statusKind) {
	a.status = statusMessage{text: text, kind: kind}
}
