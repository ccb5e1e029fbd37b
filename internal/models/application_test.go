package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationTransitions(t *testing.T) {
	allowed := map[ApplicationStatus]map[ApplicationStatus]bool{
		AppStatusSubmitted:     {AppStatusPreEvaluation: true, AppStatusRejected: true},
		AppStatusPreEvaluation: {AppStatusEligible: true, AppStatusNotEligible: true},
		AppStatusEligible:      {AppStatusInvitedExam: true, AppStatusInterview: true, AppStatusSelected: true, AppStatusWaitlist: true},
		AppStatusNotEligible:   {AppStatusRejected: true},
		AppStatusInvitedExam:   {AppStatusPassedExam: true, AppStatusFailedExam: true},
		AppStatusPassedExam:    {AppStatusInterview: true, AppStatusSelected: true, AppStatusWaitlist: true},
		AppStatusFailedExam:    {AppStatusRejected: true},
		AppStatusInterview:     {AppStatusSelected: true, AppStatusWaitlist: true, AppStatusRejected: true},
		AppStatusSelected:      {AppStatusAwarded: true},
		AppStatusWaitlist:      {AppStatusSelected: true, AppStatusRejected: true},
		AppStatusRejected:      {},
		AppStatusAwarded:       {},
	}
	for _, from := range ApplicationStatuses {
		for _, to := range ApplicationStatuses {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestApplicationStatusTerminal(t *testing.T) {
	assert.True(t, AppStatusRejected.Terminal())
	assert.True(t, AppStatusAwarded.Terminal())
	for _, status := range ApplicationStatuses {
		if status == AppStatusRejected || status == AppStatusAwarded {
			continue
		}
		assert.False(t, status.Terminal(), string(status))
	}
	assert.False(t, ApplicationStatus("unknown").Terminal())
}

func TestApplicationAge(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	beforeBirthday := Application{BirthDate: time.Date(2000, 7, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 25, beforeBirthday.Age(now))

	afterBirthday := Application{BirthDate: time.Date(2000, 3, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 26, afterBirthday.Age(now))

	onBirthday := Application{BirthDate: time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 26, onBirthday.Age(now))
}

func TestStatusHistoryRoundTrip(t *testing.T) {
	history := StatusHistory{{
		Status:    AppStatusEligible,
		Comment:   "meets all eligibility requirements",
		ChangedBy: "admin-1",
		ChangedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}}
	raw, err := history.Value()
	require.NoError(t, err)

	var decoded StatusHistory
	require.NoError(t, decoded.Scan(raw))
	require.Len(t, decoded, 1)
	assert.Equal(t, AppStatusEligible, decoded[0].Status)
	assert.Equal(t, "admin-1", decoded[0].ChangedBy)
}

func TestApplicationFullName(t *testing.T) {
	app := Application{FirstName: "María", LastName: "García"}
	assert.Equal(t, "María García", app.FullName())
}
