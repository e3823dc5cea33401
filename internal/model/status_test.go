package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{AppointmentStatusRequested, AppointmentStatusScheduled, true},
		{AppointmentStatusRequested, AppointmentStatusCanceled, true},
		{AppointmentStatusRequested, AppointmentStatusCompleted, false},
		{AppointmentStatusScheduled, AppointmentStatusCompleted, true},
		{AppointmentStatusScheduled, AppointmentStatusCanceled, true},
		{AppointmentStatusScheduled, AppointmentStatusRequested, true},
		{AppointmentStatusCompleted, AppointmentStatusCanceled, false},
		{AppointmentStatusCompleted, AppointmentStatusScheduled, false},
		{AppointmentStatusCanceled, AppointmentStatusScheduled, false},
		{AppointmentStatusCanceled, AppointmentStatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusRequested.Terminal())
	assert.False(t, AppointmentStatusScheduled.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.True(t, AppointmentStatusCanceled.Terminal())
}

func TestScheduleStatusTransitions(t *testing.T) {
	assert.True(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatusCancelled))
	assert.True(t, ScheduleStatusScheduled.CanTransitionTo(ScheduleStatusCompleted))
	assert.False(t, ScheduleStatusCancelled.CanTransitionTo(ScheduleStatusCompleted))
	assert.False(t, ScheduleStatusCompleted.CanTransitionTo(ScheduleStatusCancelled))
	assert.True(t, ScheduleStatusCancelled.Terminal())
	assert.True(t, ScheduleStatusCompleted.Terminal())
}

func TestBillingStatusTransitions(t *testing.T) {
	assert.True(t, BillingStatusPending.CanTransitionTo(BillingStatusPaid))
	assert.False(t, BillingStatusPaid.CanTransitionTo(BillingStatusPending))
	assert.False(t, BillingStatusPaid.CanTransitionTo(BillingStatusPaid))
}

func TestScheduleCovers(t *testing.T) {
	window := &DoctorSchedule{
		StartDate: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC),
		Status:    ScheduleStatusScheduled,
	}

	assert.True(t, window.Covers(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)), "start bound is inclusive")
	assert.True(t, window.Covers(time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)), "end bound is inclusive")
	assert.True(t, window.Covers(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)))
	assert.False(t, window.Covers(time.Date(2025, 6, 1, 8, 59, 59, 0, time.UTC)))
	assert.False(t, window.Covers(time.Date(2025, 6, 1, 17, 0, 0, 1, time.UTC)))

	window.Status = ScheduleStatusCancelled
	assert.False(t, window.Covers(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)), "cancelled window covers nothing")
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RolePatient.Valid())
	assert.True(t, RoleDoctor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
