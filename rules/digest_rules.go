package rules

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/safespace/safespace_backend/models"
	"github.com/safespace/safespace_backend/utils"
)

// DigestRules are the periodic fan-out sweeps over all patients. Every sweep
// isolates per-patient failures: one patient's error is logged and counted,
// never aborting the remaining patients.
type DigestRules struct {
	users         UserStore
	notifications NotificationStore
	appointments  AppointmentStore
	messages      MessageStore
	push          Pusher
	email         Emailer
	minUnread     int // unread count at which a digest email is sent
}

func NewDigestRules(users UserStore, notifications NotificationStore, appointments AppointmentStore, messages MessageStore, push Pusher, email Emailer, minUnread int) *DigestRules {
	if minUnread < 1 {
		minUnread = 1
	}
	return &DigestRules{
		users:         users,
		notifications: notifications,
		appointments:  appointments,
		messages:      messages,
		push:          push,
		email:         email,
		minUnread:     minUnread,
	}
}

// forEachPatient runs fn per patient with failure isolation and logs the
// aggregate outcome.
func (r *DigestRules) forEachPatient(ctx context.Context, sweep string, fn func(*models.User) error) error {
	patients, err := r.users.ListPatients(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", sweep, err)
	}

	processed, failed := 0, 0
	for _, p := range patients {
		if err := fn(p); err != nil {
			log.Printf("%s: patient %s: %v", sweep, p.ID, err)
			failed++
			continue
		}
		processed++
	}
	log.Printf("%s complete: %d processed, %d failed", sweep, processed, failed)
	return nil
}

// UnreadNotificationDigest emails each qualifying patient a summary of their
// unread notifications and marks every included record digestSent in one
// atomic batch.
func (r *DigestRules) UnreadNotificationDigest(ctx context.Context) error {
	return r.forEachPatient(ctx, "unread notification digest", func(p *models.User) error {
		if p.FCMToken == "" || p.DoctorID == "" || p.Email == "" {
			return nil
		}

		unread, err := r.notifications.ListUnreadUndigested(ctx, p.ID)
		if err != nil {
			return err
		}
		if len(unread) < r.minUnread {
			return nil
		}

		doctor, err := r.users.GetDoctorFor(ctx, p)
		if err != nil {
			return err
		}
		if doctor == nil || doctor.Email == "" {
			return nil
		}

		body := fmt.Sprintf("You have %d unread notification(s) from Safe Space.", len(unread))
		if err := r.push.SendToToken(ctx, p.FCMToken, TitleUnreadNotifications, body, map[string]string{"type": "digest"}); err != nil {
			log.Printf("digest push to %s failed: %v", p.ID, err)
		}

		if r.email.Enabled() {
			text, html := digestEmailBodies(p, unread)
			if err := r.email.Send(p.Email, doctor.Email, doctorFromName(doctor), "You Have Unread Notifications from Safe Space", text, html); err != nil {
				// The digest still counts as sent; retrying the email next
				// run would re-include already-surfaced notifications.
				log.Printf("digest email to %s failed: %v", p.Email, err)
			}
		}

		ids := make([]string, 0, len(unread))
		for _, n := range unread {
			ids = append(ids, n.ID)
		}
		return r.notifications.MarkDigestSent(ctx, p.ID, ids)
	})
}

func digestEmailBodies(p *models.User, unread []models.Notification) (string, string) {
	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\nYou have %d unread notification(s):\n\n", greetingName(p), len(unread))
	var html strings.Builder
	fmt.Fprintf(&html, "<p>Hello %s,</p><p>You have <strong>%d</strong> unread notification(s):</p><ul>", greetingName(p), len(unread))

	for _, n := range unread {
		when := utils.FormatReadingTime(n.Timestamp)
		fmt.Fprintf(&text, "- [%s] %s: %s\n", when, n.Title, n.Body)
		fmt.Fprintf(&html, "<li><em>%s</em> <strong>%s</strong>: %s</li>", when, n.Title, n.Body)
	}

	text.WriteString("\nPlease open the Safe Space app to review them.")
	html.WriteString("</ul><p>Open Safe Space to review them.</p>")
	return text.String(), html.String()
}

// UnreadMessageDigest pushes each patient the count of unread messages from
// their doctor. No record and no marker: the push may repeat across days
// while the messages stay unread.
func (r *DigestRules) UnreadMessageDigest(ctx context.Context) error {
	return r.forEachPatient(ctx, "unread message digest", func(p *models.User) error {
		if p.FCMToken == "" || p.DoctorID == "" {
			return nil
		}

		count, err := r.messages.CountUnreadFrom(ctx, p.ID, p.DoctorID)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		body := fmt.Sprintf("You have %d unread message(s) from your doctor.", count)
		return r.push.SendToToken(ctx, p.FCMToken, TitleUnreadMessages, body, map[string]string{"type": "chat"})
	})
}

// DailySymptomReminder pushes every patient the fixed daily reminder and
// records it in their notification feed.
func (r *DigestRules) DailySymptomReminder(ctx context.Context) error {
	const body = "Don't forget to log your symptoms in Safe Space today."
	return r.forEachPatient(ctx, "daily symptom reminder", func(p *models.User) error {
		if p.FCMToken == "" {
			return nil
		}
		if err := r.notifications.Create(ctx, p.ID, TitleSymptomReminder, body); err != nil {
			return err
		}
		if err := r.push.SendToToken(ctx, p.FCMToken, TitleSymptomReminder, body, map[string]string{"type": "reminder"}); err != nil {
			log.Printf("symptom reminder push to %s failed: %v", p.ID, err)
		}
		return nil
	})
}

// AppointmentReminder notifies each patient with confirmed appointments
// falling anywhere in tomorrow (application timezone), one notification per
// patient listing the time(s).
func (r *DigestRules) AppointmentReminder(ctx context.Context) error {
	from, to := utils.TomorrowWindow(time.Now())
	appointments, err := r.appointments.ConfirmedBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("appointment reminder: %w", err)
	}

	byPatient := make(map[string][]*models.Appointment)
	for _, a := range appointments {
		byPatient[a.OwnerID] = append(byPatient[a.OwnerID], a)
	}

	notified, failed := 0, 0
	for patientID, appts := range byPatient {
		if err := r.remindPatient(ctx, patientID, appts); err != nil {
			log.Printf("appointment reminder: patient %s: %v", patientID, err)
			failed++
			continue
		}
		notified++
	}
	log.Printf("appointment reminder complete: %d notified, %d failed", notified, failed)
	return nil
}

func (r *DigestRules) remindPatient(ctx context.Context, patientID string, appts []*models.Appointment) error {
	patient, err := r.users.GetUser(ctx, patientID)
	if err != nil {
		return err
	}
	if patient == nil || patient.FCMToken == "" {
		return nil
	}

	var body string
	if len(appts) == 1 {
		body = fmt.Sprintf("Reminder: you have an appointment tomorrow at %s.", utils.FormatClockTime(appts[0].DateTime))
	} else {
		times := make([]string, 0, len(appts))
		for _, a := range appts {
			times = append(times, utils.FormatClockTime(a.DateTime))
		}
		body = fmt.Sprintf("Reminder: you have %d appointments tomorrow: %s.", len(appts), strings.Join(times, ", "))
	}

	if err := r.notifications.Create(ctx, patientID, TitleAppointmentReminder, body); err != nil {
		return err
	}
	if err := r.push.SendToToken(ctx, patient.FCMToken, TitleAppointmentReminder, body, map[string]string{"type": "appointment_patient"}); err != nil {
		log.Printf("appointment reminder push to %s failed: %v", patientID, err)
	}
	return nil
}
