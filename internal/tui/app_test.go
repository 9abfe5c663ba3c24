package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/reviewdesk/internal/config"
	"github.com/kingrea/reviewdesk/internal/logbook"
	"github.com/kingrea/reviewdesk/internal/review"
	"github.com/kingrea/reviewdesk/internal/reviewapi"
)

type fakeClient struct {
	pending    []review.PendingItem
	pendingErr error
	pollCalls  int

	startStatus review.WorkflowStatus
	startErr    error
	lastStart   reviewapi.StartRequest

	decisionStatus review.WorkflowStatus
	decisionErr    error
	lastDecision   review.Decision
	decisionCalls  int
}

func (f *fakeClient) StartWorkflow(_ context.Context, req reviewapi.StartRequest) (review.WorkflowStatus, error) {
	f.lastStart = req
	return f.startStatus, f.startErr
}

func (f *fakeClient) PendingReviews(context.Context) ([]review.PendingItem, error) {
	f.pollCalls++
	return f.pending, f.pendingErr
}

func (f *fakeClient) SubmitDecision(_ context.Context, d review.Decision) (review.WorkflowStatus, error) {
	f.decisionCalls++
	f.lastDecision = d
	return f.decisionStatus, f.decisionErr
}

func newTestApp(t *testing.T, client Client) *App {
	t.Helper()
	lb, err := logbook.New(filepath.Join(t.TempDir(), "reviewdesk.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	return NewApp(client, &config.Config{ReviewerID: "user_ui"}, lb)
}

// pump executes a command chain, feeding every produced message back into the
// model, expanding batches along the way.
func pump(t *testing.T, app *App, cmd tea.Cmd) *App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(pollTickMsg); ok {
			// Skip the standing timer in tests; it never terminates.
			continue
		}
		model, nextCmd := app.Update(msg)
		var okModel bool
		app, okModel = model.(*App)
		if !okModel {
			t.Fatalf("unexpected model type %T", model)
		}
		queue = append(queue, nextCmd)
	}
	return app
}

func TestInitialPollReplacesQueue(t *testing.T) {
	client := &fakeClient{pending: []review.PendingItem{
		{InvoiceID: "INV-1", Amount: 10, CheckpointID: "cp-1"},
	}}
	app := newTestApp(t, client)
	app = pump(t, app, app.fetchPending())
	if len(app.items) != 1 || app.items[0].CheckpointID != "cp-1" {
		t.Fatalf("expected snapshot applied, got %+v", app.items)
	}
}

func TestPollFailureLeavesQueueAndStatusUntouched(t *testing.T) {
	client := &fakeClient{pending: []review.PendingItem{
		{InvoiceID: "INV-1", Amount: 10, CheckpointID: "cp-1"},
	}}
	app := newTestApp(t, client)
	app = pump(t, app, app.fetchPending())

	client.pendingErr = errors.New("connection refused")
	app = pump(t, app, app.fetchPending())
	if len(app.items) != 1 {
		t.Fatalf("transient poll failure must not clear the queue, got %+v", app.items)
	}
	if app.status.text != "" {
		t.Fatalf("poll failure must not touch the status line, got %q", app.status.text)
	}
}

func TestOverlappingPollsLastArrivalWins(t *testing.T) {
	app := newTestApp(t, &fakeClient{})
	slow := queueSnapshotMsg{items: []review.PendingItem{{InvoiceID: "INV-OLD", CheckpointID: "cp-old"}}}
	fast := queueSnapshotMsg{items: []review.PendingItem{{InvoiceID: "INV-NEW", CheckpointID: "cp-new"}}}

	model, _ := app.Update(fast)
	app = model.(*App)
	if app.items[0].InvoiceID != "INV-NEW" {
		t.Fatalf("expected fast snapshot applied first")
	}

	// The slower poll's response arrives afterwards and overwrites the view;
	// arrival order is the only ordering guarantee.
	model, _ = app.Update(slow)
	app = model.(*App)
	if app.items[0].InvoiceID != "INV-OLD" {
		t.Fatalf("expected last-processed snapshot to win, got %+v", app.items)
	}
}

func TestOpenReviewTracksFullIDAndDisplaysShortID(t *testing.T) {
	app := newTestApp(t, &fakeClient{})
	app.openReview(review.PendingItem{InvoiceID: "INV-9", CheckpointID: "abc12345-xyz"})
	if !app.session.IsOpen() {
		t.Fatalf("expected session open")
	}
	if got := app.session.CheckpointID(); got != "abc12345-xyz" {
		t.Fatalf("session must track the full checkpoint id, got %q", got)
	}
	if view := app.View(); !strings.Contains(view, "abc12345...") {
		t.Fatalf("expected abbreviated checkpoint id in modal view:\n%s", view)
	}
}

func TestOpenReviewResetsNotes(t *testing.T) {
	app := newTestApp(t, &fakeClient{})
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})
	app.notes.SetValue("stale notes")
	app.closeReview()
	app.openReview(review.PendingItem{CheckpointID: "cp-2"})
	if app.notes.Value() != "" {
		t.Fatalf("opening a review must clear previous notes, got %q", app.notes.Value())
	}
}

func TestApproveResumedClosesSessionWithSuccessStatus(t *testing.T) {
	client := &fakeClient{decisionStatus: review.ParseWorkflowStatus("RESUMED", "", "RECONCILE")}
	app := newTestApp(t, client)
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})
	app.notes.SetValue("ok")

	model, cmd := app.submitDecision(review.DecisionApprove)
	app = pump(t, model.(*App), cmd)

	want := review.Decision{CheckpointID: "cp-1", Decision: "approve", Notes: "ok", ReviewerID: "user_ui"}
	if client.lastDecision != want {
		t.Fatalf("sent decision %+v, want %+v", client.lastDecision, want)
	}
	if app.session.IsOpen() {
		t.Fatalf("session must close on a successful submission")
	}
	if app.status.kind != statusSuccess || !strings.Contains(app.status.text, "Resumed") {
		t.Fatalf("expected success status mentioning Resumed, got %+v", app.status)
	}
}

func TestPausedReplyClosesSessionWithNextStage(t *testing.T) {
	client := &fakeClient{decisionStatus: review.ParseWorkflowStatus("PAUSED", "", "manager_approval")}
	app := newTestApp(t, client)
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})

	model, cmd := app.submitDecision(review.DecisionReject)
	app = pump(t, model.(*App), cmd)

	if app.session.IsOpen() {
		t.Fatalf("session must close even when the workflow pauses again")
	}
	if app.status.kind != statusWarning || !strings.Contains(app.status.text, "manager_approval") {
		t.Fatalf("expected warning status naming the next stage, got %+v", app.status)
	}
}

func TestUnknownDecisionReplyIsSurfaced(t *testing.T) {
	client := &fakeClient{decisionStatus: review.ParseWorkflowStatus("REQUIRES_MANUAL_HANDLING", "", "")}
	app := newTestApp(t, client)
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})

	model, cmd := app.submitDecision(review.DecisionApprove)
	app = pump(t, model.(*App), cmd)

	if app.session.IsOpen() {
		t.Fatalf("session must close for unrecognized statuses")
	}
	if app.status.kind != statusInfo || !strings.Contains(app.status.text, "REQUIRES_MANUAL_HANDLING") {
		t.Fatalf("expected raw status surfaced, got %+v", app.status)
	}
}

func TestFailedSubmissionKeepsSessionOpenAndStillPolls(t *testing.T) {
	client := &fakeClient{decisionErr: errors.New("network down")}
	app := newTestApp(t, client)
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})

	model, cmd := app.submitDecision(review.DecisionApprove)
	app = model.(*App)
	msg := cmd()
	pollsBefore := client.pollCalls

	model, refresh := app.Update(msg)
	app = model.(*App)
	if !app.session.IsOpen() {
		t.Fatalf("session must stay open after a failed submission")
	}
	if !strings.Contains(app.alert, "network down") {
		t.Fatalf("expected blocking alert with the error text, got %q", app.alert)
	}
	if refresh == nil {
		t.Fatalf("expected an extra poll despite the failure")
	}
	app = pump(t, app, refresh)
	if client.pollCalls != pollsBefore+1 {
		t.Fatalf("expected exactly one extra poll, got %d extra", client.pollCalls-pollsBefore)
	}

	// Any key acknowledges the alert; the modal stays open for a retry.
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	app = model.(*App)
	if app.alert != "" {
		t.Fatalf("expected alert dismissed")
	}
	if !app.session.IsOpen() {
		t.Fatalf("dismissing the alert must not close the session")
	}
}

func TestSuccessfulSubmissionTriggersExtraPoll(t *testing.T) {
	client := &fakeClient{decisionStatus: review.ParseWorkflowStatus("RESUMED", "", "")}
	app := newTestApp(t, client)
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})

	model, cmd := app.submitDecision(review.DecisionApprove)
	pollsBefore := client.pollCalls
	app = pump(t, model.(*App), cmd)
	if client.pollCalls != pollsBefore+1 {
		t.Fatalf("expected one extra poll after submission, got %d", client.pollCalls-pollsBefore)
	}
	_ = app
}

func TestStartWorkflowInterpretsReply(t *testing.T) {
	cases := []struct {
		name       string
		status     review.WorkflowStatus
		wantKind   statusKind
		wantText   string
		extraPolls int
	}{
		{"completed", review.ParseWorkflowStatus("COMPLETED", "", ""), statusSuccess, "Workflow Completed!", 0},
		{"paused", review.ParseWorkflowStatus("PAUSED", "Workflow paused for human review.", ""), statusWarning, "Workflow Paused: Workflow paused for human review.", 1},
		{"unknown", review.ParseWorkflowStatus("RUNNING", "", ""), statusInfo, "Status: RUNNING", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeClient{startStatus: tc.status}
			app := newTestApp(t, client)
			pollsBefore := client.pollCalls
			app = pump(t, app, func() tea.Msg { return startResultMsg{status: tc.status} })
			if app.status.kind != tc.wantKind || app.status.text != tc.wantText {
				t.Fatalf("got status %+v, want kind %d text %q", app.status, tc.wantKind, tc.wantText)
			}
			if client.pollCalls != pollsBefore+tc.extraPolls {
				t.Fatalf("expected %d extra polls, got %d", tc.extraPolls, client.pollCalls-pollsBefore)
			}
		})
	}
}

func TestStartFailureSetsErrorStatus(t *testing.T) {
	client := &fakeClient{startErr: errors.New("dial tcp: connection refused")}
	app := newTestApp(t, client)
	app.form[fieldInvoiceID].SetValue("INV-1")
	app.form[fieldAmount].SetValue("250")
	app.formIndex = fieldAmount

	model, cmd := app.submitStart()
	app = pump(t, model.(*App), cmd)
	if app.status.kind != statusError || !strings.Contains(app.status.text, "connection refused") {
		t.Fatalf("expected error status with underlying message, got %+v", app.status)
	}
	if client.lastStart.InvoiceID != "INV-1" || client.lastStart.Amount != 250 {
		t.Fatalf("unexpected start request %+v", client.lastStart)
	}
}

func TestSubmitStartValidatesInput(t *testing.T) {
	client := &fakeClient{}
	app := newTestApp(t, client)

	model, cmd := app.submitStart()
	app = model.(*App)
	if cmd != nil || app.status.kind != statusError {
		t.Fatalf("expected validation error for missing invoice id, got %+v", app.status)
	}

	app.form[fieldInvoiceID].SetValue("INV-1")
	app.form[fieldAmount].SetValue("not-a-number")
	model, cmd = app.submitStart()
	app = model.(*App)
	if cmd != nil || !strings.Contains(app.status.text, "Amount") {
		t.Fatalf("expected amount validation error, got %+v", app.status)
	}
}

func TestEscCancelsReviewWithoutSubmitting(t *testing.T) {
	client := &fakeClient{}
	app := newTestApp(t, client)
	app.openReview(review.PendingItem{CheckpointID: "cp-1"})

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(*App)
	if app.session.IsOpen() {
		t.Fatalf("expected esc to close the session")
	}
	if client.decisionCalls != 0 {
		t.Fatalf("cancel must not submit a decision")
	}
}

func TestEnterOnQueueRowOpensReview(t *testing.T) {
	client := &fakeClient{}
	app := newTestApp(t, client)
	app.items = []review.PendingItem{
		{InvoiceID: "INV-1", CheckpointID: "cp-1"},
		{InvoiceID: "INV-2", CheckpointID: "cp-2"},
	}
	app.focus = focusQueue
	app.queueIndex = 1

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(*App)
	if !app.session.IsOpen() || app.session.CheckpointID() != "cp-2" {
		t.Fatalf("expected review opened for the selected row, got %+v", app.session)
	}
}

func TestSnapshotClampsSelection(t *testing.T) {
	app := newTestApp(t, &fakeClient{})
	app.items = []review.PendingItem{{CheckpointID: "a"}, {CheckpointID: "b"}, {CheckpointID: "c"}}
	app.queueIndex = 2

	model, _ := app.Update(queueSnapshotMsg{items: []review.PendingItem{{CheckpointID: "a"}}})
	app = model.(*App)
	if app.queueIndex != 0 {
		t.Fatalf("expected selection clamped to the new snapshot, got %d", app.queueIndex)
	}
}
