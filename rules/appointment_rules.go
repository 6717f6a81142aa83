package rules

import (
	"context"
	"fmt"
	"log"

	"github.com/safespace/safespace_backend/models"
	"github.com/safespace/safespace_backend/utils"
)

// AppointmentRules reacts to appointment document creation and updates.
type AppointmentRules struct {
	users         UserStore
	notifications NotificationStore
	push          Pusher
	email         Emailer
}

func NewAppointmentRules(users UserStore, notifications NotificationStore, push Pusher, email Emailer) *AppointmentRules {
	return &AppointmentRules{users: users, notifications: notifications, push: push, email: email}
}

type changeKind int

const (
	changeNone changeKind = iota
	changeCancelled
	changeStatus
	changeDetails
)

type changeDecision struct {
	kind         changeKind
	title, body  string
	emailSubject string // empty when the change sends no email
}

// decideChange applies the patient-facing decision table to a before/after
// pair. First matching rule wins; a transition into rescheduled is handled by
// the doctor-facing companion rule and produces nothing here.
func decideChange(before, after *models.Appointment) changeDecision {
	if after.Status == models.StatusRescheduled {
		return changeDecision{kind: changeNone}
	}
	if before.Status != after.Status {
		if after.Status == models.StatusCancelled {
			return changeDecision{
				kind:         changeCancelled,
				title:        TitleAppointmentCanceled,
				body:         "Your appointment has been cancelled.",
				emailSubject: "Your Appointment Has Been Cancelled",
			}
		}
		return changeDecision{
			kind:         changeStatus,
			title:        TitleAppointmentStatusUpdated,
			body:         fmt.Sprintf("Your appointment status changed to %q.", string(after.Status)),
			emailSubject: "Your Appointment Status Has Changed",
		}
	}
	if !before.SameSchedule(after) {
		return changeDecision{
			kind:  changeDetails,
			title: TitleAppointmentUpdated,
			body:  fmt.Sprintf("Your appointment has been updated to %s.", utils.FormatAppointmentTime(after.DateTime)),
		}
	}
	return changeDecision{kind: changeNone}
}

// OnUpdated notifies the owning patient about status or schedule changes.
// The notification record write is the only effect allowed to fail the
// invocation; push and email failures are logged and swallowed.
func (r *AppointmentRules) OnUpdated(ctx context.Context, before, after *models.Appointment) error {
	d := decideChange(before, after)
	if d.kind == changeNone {
		return nil
	}

	patient, err := r.users.GetUser(ctx, after.OwnerID)
	if err != nil {
		return fmt.Errorf("load patient %s: %w", after.OwnerID, err)
	}

	if err := r.notifications.Create(ctx, after.OwnerID, d.title, d.body); err != nil {
		return err
	}
	if patient == nil {
		return nil
	}

	if patient.FCMToken != "" {
		if err := r.push.SendToToken(ctx, patient.FCMToken, d.title, d.body, map[string]string{"type": "appointment_patient"}); err != nil {
			log.Printf("appointment push to %s failed: %v", patient.ID, err)
		}
	}

	if d.emailSubject != "" && patient.Email != "" && r.email.Enabled() {
		doctor, err := r.users.GetDoctorFor(ctx, patient)
		if err != nil {
			log.Printf("resolve doctor for %s: %v", patient.ID, err)
		}
		text := fmt.Sprintf("Hello %s,\n\n%s", greetingName(patient), d.body)
		html := fmt.Sprintf("<p>Hello %s,</p><p>%s</p>", greetingName(patient), d.body)
		if err := r.email.Send(patient.Email, replyTo(doctor), doctorFromName(doctor), d.emailSubject, text, html); err != nil {
			log.Printf("appointment email to %s failed: %v", patient.Email, err)
		}
	}
	return nil
}

// OnRescheduleRequested is the doctor-facing companion rule: it fires only
// when the status transitioned into rescheduled, and alerts the patient's
// assigned doctor.
func (r *AppointmentRules) OnRescheduleRequested(ctx context.Context, before, after *models.Appointment) error {
	if before.Status == after.Status || after.Status != models.StatusRescheduled {
		return nil
	}

	patient, err := r.users.GetUser(ctx, after.OwnerID)
	if err != nil {
		return fmt.Errorf("load patient %s: %w", after.OwnerID, err)
	}
	doctor, err := r.users.GetDoctorFor(ctx, patient)
	if err != nil {
		return err
	}
	if doctor == nil || doctor.FCMToken == "" {
		return nil
	}

	body := fmt.Sprintf("%s requested to reschedule their appointment on %s.",
		patient.DisplayName(), utils.FormatAppointmentTime(after.DateTime))

	if err := r.notifications.Create(ctx, doctor.ID, TitleRescheduleRequest, body); err != nil {
		return err
	}
	if err := r.push.SendToToken(ctx, doctor.FCMToken, TitleRescheduleRequest, body, map[string]string{"type": "appointment_doctor"}); err != nil {
		log.Printf("reschedule push to doctor %s failed: %v", doctor.ID, err)
	}
	log.Printf("Reschedule request sent to doctor %s", doctor.ID)
	return nil
}

// OnRequestedPending fires on a transition into pending from some other
// status and alerts the doctor of the new request, mirroring OnCreated for
// appointments that re-enter the booking flow after a reschedule.
func (r *AppointmentRules) OnRequestedPending(ctx context.Context, before, after *models.Appointment) error {
	if before.Status == after.Status || after.Status != models.StatusPending {
		return nil
	}
	return r.notifyDoctorOfRequest(ctx, after)
}

// OnCreated handles newly booked appointments: pending bookings alert the
// chosen doctor, and bookings created already confirmed get the patient
// confirmation record and email.
func (r *AppointmentRules) OnCreated(ctx context.Context, appt *models.Appointment) error {
	switch appt.Status {
	case models.StatusPending:
		if appt.DoctorID == "" {
			return nil
		}
		return r.notifyDoctorOfRequest(ctx, appt)
	case models.StatusConfirmed:
		return r.sendConfirmation(ctx, appt)
	}
	return nil
}

func (r *AppointmentRules) notifyDoctorOfRequest(ctx context.Context, appt *models.Appointment) error {
	patient, err := r.users.GetUser(ctx, appt.OwnerID)
	if err != nil {
		return fmt.Errorf("load patient %s: %w", appt.OwnerID, err)
	}
	doctor, err := r.users.GetDoctorFor(ctx, patient)
	if err != nil {
		return err
	}
	if doctor == nil || doctor.FCMToken == "" {
		return nil
	}

	body := fmt.Sprintf("%s requested a new appointment on %s.",
		patient.DisplayName(), utils.FormatAppointmentTime(appt.DateTime))

	if err := r.notifications.Create(ctx, doctor.ID, TitleNewAppointmentRequest, body); err != nil {
		return err
	}
	if err := r.push.SendToToken(ctx, doctor.FCMToken, TitleNewAppointmentRequest, body, map[string]string{"type": "appointment_doctor"}); err != nil {
		log.Printf("appointment request push to doctor %s failed: %v", doctor.ID, err)
	}
	return nil
}

func (r *AppointmentRules) sendConfirmation(ctx context.Context, appt *models.Appointment) error {
	patient, err := r.users.GetUser(ctx, appt.OwnerID)
	if err != nil {
		return fmt.Errorf("load patient %s: %w", appt.OwnerID, err)
	}
	if patient == nil || patient.Email == "" || patient.DoctorID == "" {
		return nil
	}
	doctor, err := r.users.GetDoctorFor(ctx, patient)
	if err != nil {
		return err
	}
	if doctor == nil || doctor.Email == "" {
		return nil
	}

	when := utils.FormatAppointmentTime(appt.DateTime)
	body := fmt.Sprintf("Your appointment is confirmed for %s.", when)

	if err := r.notifications.Create(ctx, patient.ID, TitleAppointmentConfirmed, body); err != nil {
		return err
	}

	if r.email.Enabled() {
		text := fmt.Sprintf("Hello %s,\n\nYour appointment is confirmed for %s.", greetingName(patient), when)
		html := fmt.Sprintf("<p>Hello %s,</p><p>Your appointment is confirmed for <strong>%s</strong>.</p>", greetingName(patient), when)
		if err := r.email.Send(patient.Email, doctor.Email, doctorFromName(doctor), "Your Appointment is Confirmed", text, html); err != nil {
			log.Printf("confirmation email to %s failed: %v", patient.Email, err)
		}
	}
	return nil
}
