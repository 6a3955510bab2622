package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPMSchedule_NextDueAfter(t *testing.T) {
	completed := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		expected  time.Time
	}{
		{PMFrequencyDaily, time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)},
		{PMFrequencyWeekly, time.Date(2026, 3, 22, 10, 0, 0, 0, time.UTC)},
		{PMFrequencyMonthly, time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)},
		{PMFrequencyQuarterly, time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		pm := &PMSchedule{Frequency: tt.frequency}
		assert.Equal(t, tt.expected, pm.NextDueAfter(completed), "frequency %s", tt.frequency)
	}
}

func TestPMSchedule_IsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	yesterday := &PMSchedule{NextDue: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	assert.True(t, yesterday.IsOverdue(now))

	// Due earlier today is not overdue until tomorrow
	thisMorning := &PMSchedule{NextDue: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)}
	assert.False(t, thisMorning.IsOverdue(now))

	nextWeek := &PMSchedule{NextDue: time.Date(2026, 3, 22, 9, 0, 0, 0, time.UTC)}
	assert.False(t, nextWeek.IsOverdue(now))
}

func TestValidActivityType(t *testing.T) {
	assert.True(t, ValidActivityType(ActivityCalibration))
	assert.False(t, ValidActivityType("calibration"))
	assert.False(t, ValidActivityType(""))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, Role("QA").Valid())
	assert.False(t, Role("qa").Valid())
	assert.False(t, Role("").Valid())
}
