package models

import (
	"strings"
	"time"
)

// AppointmentStatus is the closed set of appointment states. Documents written
// by older app builds use a few alternate spellings; ParseStatus maps those to
// the canonical values and every write from this service emits canonical ones.
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusCompleted   AppointmentStatus = "completed"
)

// statusAliases maps legacy spellings to canonical statuses.
var statusAliases = map[string]AppointmentStatus{
	"canceled":             StatusCancelled,
	"reschedule_requested": StatusRescheduled,
}

// ParseStatus normalizes a raw status string. The second return reports
// whether the value mapped to a known status; unknown values are passed
// through lowercased so user-facing copy can still quote them.
func ParseStatus(raw string) (AppointmentStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := statusAliases[s]; ok {
		return alias, true
	}
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRescheduled, StatusCompleted:
		return AppointmentStatus(s), true
	}
	return AppointmentStatus(s), false
}

// transitions encodes the appointment state machine. completed is terminal,
// and nothing is reachable from cancelled except deletion by the client.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:     {StatusConfirmed, StatusCancelled, StatusRescheduled},
	StatusConfirmed:   {StatusCancelled, StatusRescheduled, StatusCompleted},
	StatusRescheduled: {StatusPending, StatusConfirmed, StatusCancelled},
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment mirrors a users/{ownerId}/appointments/{id} document.
type Appointment struct {
	ID        string
	OwnerID   string // patient user id owning the subcollection
	Status    AppointmentStatus
	DateTime  time.Time
	Note      string
	DoctorID  string
	CreatedAt time.Time
}

// AppointmentFromData decodes a raw document map, tolerating the legacy
// timestamp and status representations.
func AppointmentFromData(ownerID, id string, data map[string]interface{}) *Appointment {
	a := &Appointment{ID: id, OwnerID: ownerID}
	status, _ := ParseStatus(coerceString(data["status"]))
	a.Status = status
	if t, ok := CoerceTime(data["dateTime"]); ok {
		a.DateTime = t
	}
	if t, ok := CoerceTime(data["createdAt"]); ok {
		a.CreatedAt = t
	}
	a.Note = coerceString(data["note"])
	a.DoctorID = coerceString(data["doctorId"])
	return a
}

// SameSchedule reports whether two appointments share note and time. Time is
// compared at millisecond precision, the resolution the client writes.
func (a *Appointment) SameSchedule(other *Appointment) bool {
	return a.Note == other.Note && a.DateTime.UnixMilli() == other.DateTime.UnixMilli()
}

// AgeBasis is the instant a pending appointment's staleness is measured from:
// createdAt when present, otherwise the booked time (appointments written
// before the createdAt field existed carry only dateTime).
func (a *Appointment) AgeBasis() time.Time {
	if !a.CreatedAt.IsZero() {
		return a.CreatedAt
	}
	return a.DateTime
}

// StaleEligible reports whether the stale-pending sweep may delete this
// appointment. Undated documents are never deleted.
func (a *Appointment) StaleEligible(cutoff time.Time) bool {
	basis := a.AgeBasis()
	return a.Status == StatusPending && !basis.IsZero() && basis.Before(cutoff)
}

// CompleteEligible reports whether the auto-complete sweep should move this
// appointment to completed.
func (a *Appointment) CompleteEligible(now time.Time) bool {
	return a.Status == StatusConfirmed && !a.DateTime.IsZero() && a.DateTime.Before(now)
}
