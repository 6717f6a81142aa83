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

// Fixed vital-sign safety bands. Readings outside any band are drastic.
const (
	heartRateLow  = 50.0  // bpm
	heartRateHigh = 120.0 // bpm
	tempLow       = 27.0  // °C
	tempHigh      = 37.5  // °C
	spo2Low       = 90.0  // percent
)

// ReadingRules alerts a patient's doctor when a new vital-sign reading falls
// outside the safety bands, with a cooldown so a burst of readings produces
// one alert.
type ReadingRules struct {
	users         UserStore
	notifications NotificationStore
	push          Pusher
	guard         AlertGuard // nil disables the concurrent-invocation guard
	cooldown      time.Duration
}

func NewReadingRules(users UserStore, notifications NotificationStore, push Pusher, guard AlertGuard, cooldown time.Duration) *ReadingRules {
	return &ReadingRules{users: users, notifications: notifications, push: push, guard: guard, cooldown: cooldown}
}

// drasticParts returns one formatted fragment per metric outside its band,
// empty when the reading is normal.
func drasticParts(rd *models.Reading) []string {
	var parts []string
	if rd.HeartRate < heartRateLow || rd.HeartRate > heartRateHigh {
		parts = append(parts, fmt.Sprintf("Heart Rate: %g bpm", rd.HeartRate))
	}
	if rd.Temperature < tempLow || rd.Temperature > tempHigh {
		parts = append(parts, fmt.Sprintf("Temperature: %g°C", rd.Temperature))
	}
	if rd.SpO2 < spo2Low {
		parts = append(parts, fmt.Sprintf("SpO2: %g%%", rd.SpO2))
	}
	return parts
}

// OnCreated evaluates one new reading.
func (r *ReadingRules) OnCreated(ctx context.Context, rd *models.Reading) error {
	parts := drasticParts(rd)
	if len(parts) == 0 {
		return nil
	}

	patient, err := r.users.GetUser(ctx, rd.PatientID)
	if err != nil {
		return fmt.Errorf("load patient %s: %w", rd.PatientID, err)
	}
	doctor, err := r.users.GetDoctorFor(ctx, patient)
	if err != nil {
		return err
	}
	if doctor == nil || doctor.FCMToken == "" {
		return nil
	}

	recordedAt := rd.Timestamp
	if recordedAt.IsZero() {
		// Malformed timestamp on the reading; alert with the current time
		// rather than dropping the alert.
		recordedAt = time.Now()
	}
	body := fmt.Sprintf("%s has abnormal readings at %s: %s.",
		patient.DisplayName(), utils.FormatReadingTime(recordedAt), strings.Join(parts, ". "))

	// Authoritative cooldown: a same-title notification to this doctor
	// within the window suppresses the alert entirely.
	recent, err := r.notifications.ExistsWithTitleSince(ctx, doctor.ID, TitleDrasticVitals, time.Now().Add(-r.cooldown))
	if err != nil {
		return err
	}
	if recent {
		log.Printf("Skipped duplicate vitals alert to doctor %s", doctor.ID)
		return nil
	}

	// Best-effort guard against two concurrent invocations passing the
	// query before either has written its record.
	if r.guard != nil && !r.guard.Acquire(ctx, "vitals-alert:"+doctor.ID, r.cooldown) {
		log.Printf("Skipped concurrent vitals alert to doctor %s", doctor.ID)
		return nil
	}

	if err := r.push.SendToToken(ctx, doctor.FCMToken, TitleDrasticVitals, body, map[string]string{"type": "monitor"}); err != nil {
		log.Printf("vitals alert push to doctor %s failed: %v", doctor.ID, err)
	}
	if err := r.notifications.Create(ctx, doctor.ID, TitleDrasticVitals, body); err != nil {
		return err
	}
	log.Printf("Drastic vitals alert sent to doctor %s for patient %s", doctor.ID, rd.PatientID)
	return nil
}
