package statemachine

import (
	"context"
	"testing"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestLogEntryFSM_SubmitFromDraft(t *testing.T) {
	entry := &models.LogEntry{Status: models.LogStatusDraft}
	machine := NewLogEntryFSM(entry)

	err := machine.Submit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LogStatusSubmitted, entry.Status)
}

func TestLogEntryFSM_SubmitTwiceFails(t *testing.T) {
	entry := &models.LogEntry{Status: models.LogStatusDraft}
	machine := NewLogEntryFSM(entry)

	assert.NoError(t, machine.Submit(context.Background()))

	err := machine.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.LogStatusSubmitted, entry.Status)
}

func TestLogEntryFSM_ApproveRequiresSubmitted(t *testing.T) {
	entry := &models.LogEntry{Status: models.LogStatusDraft}
	machine := NewLogEntryFSM(entry)

	err := machine.Approve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.LogStatusDraft, entry.Status)
}

func TestLogEntryFSM_ApproveFromSubmitted(t *testing.T) {
	entry := &models.LogEntry{Status: models.LogStatusSubmitted}
	machine := NewLogEntryFSM(entry)

	err := machine.Approve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LogStatusApproved, entry.Status)
}

func TestLogEntryFSM_RejectFromSubmitted(t *testing.T) {
	entry := &models.LogEntry{Status: models.LogStatusSubmitted}
	machine := NewLogEntryFSM(entry)

	err := machine.Reject(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.LogStatusRejected, entry.Status)
}

func TestLogEntryFSM_TerminalStates(t *testing.T) {
	for _, status := range []string{models.LogStatusApproved, models.LogStatusRejected} {
		entry := &models.LogEntry{Status: status}
		machine := NewLogEntryFSM(entry)

		assert.False(t, machine.Can("submit"), "submit should be blocked from %s", status)
		assert.False(t, machine.Can("approve"), "approve should be blocked from %s", status)
		assert.False(t, machine.Can("reject"), "reject should be blocked from %s", status)
		assert.Error(t, machine.Approve(context.Background()))
		assert.Equal(t, status, entry.Status)
	}
}
