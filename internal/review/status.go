package review

// StatusKind enumerates the workflow states the service is known to report
// after a start or decision call. Anything else is StatusUnknown; consumers
// must handle all four kinds so an unrecognized status never falls through
// silently.
type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusCompleted
	StatusPaused
	StatusResumed
)

// WorkflowStatus is the tagged reply of a start or decision call. Message is
// set when the workflow pauses, NextStage when the service reports where the
// workflow is headed next. Raw always carries the status string exactly as
// received so unknown values can be surfaced.
type WorkflowStatus struct {
	Kind      StatusKind
	Message   string
	NextStage string
	Raw       string
}

// ParseWorkflowStatus maps a raw wire status onto the closed variant.
func ParseWorkflowStatus(raw, message, nextStage string) WorkflowStatus {
	status := WorkflowStatus{Raw: raw, Message: message, NextStage: nextStage}
	switch raw {
	case "COMPLETED":
		status.Kind = StatusCompleted
	case "PAUSED":
		status.Kind = StatusPaused
	case "RESUMED":
		status.Kind = StatusResumed
	default:
		status.Kind = StatusUnknown
	}
	return status
}
