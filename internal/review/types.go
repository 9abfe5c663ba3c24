// Package review holds the domain types shared between the reviewer console,
// the HTTP client, and the stub service: pending checkpoints, reviewer
// decisions, and the workflow status replies the remote service reports.
package review

import "fmt"

// DefaultReason is shown for a pending item whose server-side reason is empty.
const DefaultReason = "Review required"

// Decision values accepted by the review service.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// PendingItem is one paused workflow checkpoint awaiting a human decision.
// Items arrive as a complete snapshot on every poll; the client never mutates
// them and never patches a previous snapshot incrementally.
type PendingItem struct {
	InvoiceID    string  `json:"invoice_id"`
	Amount       float64 `json:"amount"`
	Reason       string  `json:"reason,omitempty"`
	CheckpointID string  `json:"checkpoint_id"`
}

// DisplayReason returns the server-provided reason, or DefaultReason when the
// server sent none.
func (p PendingItem) DisplayReason() string {
	if p.Reason == "" {
		return DefaultReason
	}
	return p.Reason
}

// Decision is a reviewer's verdict on a single checkpoint. It is constructed
// at submission time, sent once, and never persisted client-side.
type Decision struct {
	CheckpointID string `json:"checkpoint_id"`
	Decision     string `json:"decision"`
	Notes        string `json:"notes"`
	ReviewerID   string `json:"reviewer_id"`
}

// ShortCheckpointID abbreviates an opaque checkpoint id for display: the first
// eight characters followed by an ellipsis.
func ShortCheckpointID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return id + "..."
}

// FormatAmount renders an invoice amount the way queue rows display it.
func FormatAmount(amount float64) string {
	return fmt.Sprintf("$%g", amount)
}
