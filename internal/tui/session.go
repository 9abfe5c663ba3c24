package tui

// sessionState is the review modal's lifecycle: Closed until a queue row's
// review action opens it, Open until the decision succeeds or the user
// cancels.
type sessionState int

const (
	sessionClosed sessionState = iota
	sessionOpen
)

// reviewSession tracks which checkpoint is currently open for decision. At
// most one session exists; it is the only mutable state shared between the
// queue view and the decision submitter.
type reviewSession struct {
	state        sessionState
	checkpointID string
}

// Open transitions Closed→Open for the given checkpoint.
func (s *reviewSession) Open(checkpointID string) {
	s.state = sessionOpen
	s.checkpointID = checkpointID
}

// Close transitions Open→Closed and forgets the checkpoint.
func (s *reviewSession) Close() {
	s.state = sessionClosed
	s.checkpointID = ""
}

// IsOpen reports whether a review is in progress.
func (s reviewSession) IsOpen() bool {
	return s.state == sessionOpen
}

// CheckpointID returns the tracked checkpoint id, empty when closed.
func (s reviewSession) CheckpointID() string {
	return s.checkpointID
}
