// Package rules holds the notification decision engine: one evaluator per
// trigger, sharing the notification store writer and the data contracts in
// models. Evaluators never call each other; every side effect is issued as an
// ordered list (write record, attempt push, attempt email) with per-effect
// error isolation.
package rules

import (
	"context"
	"time"

	"github.com/safespace/safespace_backend/models"
)

// Notification titles. The drastic-vitals cooldown and the patient-message
// dedup both match on the exact title, so these are single sources of truth.
const (
	TitleAppointmentCanceled      = "Appointment Canceled"
	TitleAppointmentStatusUpdated = "Appointment Status Updated"
	TitleAppointmentUpdated       = "Appointment Updated"
	TitleAppointmentConfirmed     = "Appointment Confirmed"
	TitleRescheduleRequest        = "Reschedule Request"
	TitleNewAppointmentRequest    = "New Appointment Request"
	TitleDrasticVitals            = "Drastic Change in Patient's Vital Signs"
	TitleNewMessageFromDoctor     = "New Message from Your Doctor"
	TitleNewMessageFromPatient    = "New Message from Your Patient"
	TitleUnreadNotifications      = "You Have Unread Notifications"
	TitleUnreadMessages           = "You Have Unread Messages"
	TitleSymptomReminder          = "Daily Symptom Reminder"
	TitleAppointmentReminder      = "Appointment Reminder"
)

// UserStore reads user accounts.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetDoctorFor(ctx context.Context, patient *models.User) (*models.User, error)
	ListPatients(ctx context.Context) ([]*models.User, error)
}

// NotificationStore writes and queries in-app notification records.
type NotificationStore interface {
	Create(ctx context.Context, userID, title, body string) error
	ExistsWithTitleSince(ctx context.Context, userID, title string, since time.Time) (bool, error)
	ExistsUnreadWithTitle(ctx context.Context, userID, title string) (bool, error)
	ListUnreadUndigested(ctx context.Context, userID string) ([]models.Notification, error)
	MarkDigestSent(ctx context.Context, userID string, ids []string) error
}

// AppointmentStore runs the cross-user appointment sweeps.
type AppointmentStore interface {
	ConfirmedBetween(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	DeleteStalePending(ctx context.Context, cutoff time.Time) (int, error)
	CompletePast(ctx context.Context, now time.Time) (int, error)
}

// MessageStore counts chat messages for the unread-message digest.
type MessageStore interface {
	CountUnreadFrom(ctx context.Context, patientID, doctorID string) (int, error)
}

// Pusher delivers one push notification to a device token.
type Pusher interface {
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) error
}

// Emailer delivers one transactional email.
type Emailer interface {
	Enabled() bool
	Send(to, replyTo, fromName, subject, text, html string) error
}

// AlertGuard is the best-effort lock suppressing duplicate alerts produced by
// concurrent invocations. May be nil (guard disabled).
type AlertGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) bool
}

// doctorFromName renders the doctor-attributed From display name used on
// patient-facing email.
func doctorFromName(doctor *models.User) string {
	if doctor == nil {
		return "Safe Space"
	}
	return "Safe Space - Dr. " + doctor.DisplayName()
}

func replyTo(doctor *models.User) string {
	if doctor == nil {
		return ""
	}
	return doctor.Email
}

func greetingName(u *models.User) string {
	if u == nil || u.Name == "" {
		return "there"
	}
	return u.Name
}
