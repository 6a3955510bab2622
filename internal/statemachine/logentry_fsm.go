package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/pharmalog/elogbook-api/internal/models"
)

// LogEntryFSM wraps a log entry with its lifecycle state machine
type LogEntryFSM struct {
	entry *models.LogEntry
	fsm   *fsm.FSM
}

// NewLogEntryFSM creates a new log entry state machine seeded from the
// entry's current status
func NewLogEntryFSM(entry *models.LogEntry) *LogEntryFSM {
	lefsm := &LogEntryFSM{
		entry: entry,
	}

	lefsm.fsm = fsm.NewFSM(
		entry.Status,
		fsm.Events{
			// draft → submitted (author signs)
			{Name: "submit", Src: []string{models.LogStatusDraft}, Dst: models.LogStatusSubmitted},

			// submitted → approved (reviewer countersigns)
			{Name: "approve", Src: []string{models.LogStatusSubmitted}, Dst: models.LogStatusApproved},

			// submitted → rejected (reviewer declines)
			{Name: "reject", Src: []string{models.LogStatusSubmitted}, Dst: models.LogStatusRejected},
		},
		fsm.Callbacks{},
	)

	return lefsm
}

// Submit transitions the entry to submitted state
func (l *LogEntryFSM) Submit(ctx context.Context) error {
	if !l.entry.MaySubmit() {
		return fmt.Errorf("log entry cannot be submitted in current state: %s", l.entry.Status)
	}

	if err := l.fsm.Event(ctx, "submit"); err != nil {
		return fmt.Errorf("failed to submit log entry: %w", err)
	}

	l.entry.Status = l.fsm.Current()
	return nil
}

// Approve transitions the entry to approved state
func (l *LogEntryFSM) Approve(ctx context.Context) error {
	if !l.entry.MayApprove() {
		return fmt.Errorf("log entry cannot be approved in current state: %s", l.entry.Status)
	}

	if err := l.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve log entry: %w", err)
	}

	l.entry.Status = l.fsm.Current()
	return nil
}

// Reject transitions the entry to rejected state
func (l *LogEntryFSM) Reject(ctx context.Context) error {
	if !l.entry.MayReject() {
		return fmt.Errorf("log entry cannot be rejected in current state: %s", l.entry.Status)
	}

	if err := l.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject log entry: %w", err)
	}

	l.entry.Status = l.fsm.Current()
	return nil
}

// Current returns the current state
func (l *LogEntryFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LogEntryFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
