package utils

import "time"

// All human-facing dates in Safe Space are rendered in Jordan time.
const appTimeZone = "Asia/Amman"

var amman *time.Location

func init() {
	loc, err := time.LoadLocation(appTimeZone)
	if err != nil {
		// Jordan stays on UTC+3 year-round since 2022.
		loc = time.FixedZone(appTimeZone, 3*60*60)
	}
	amman = loc
}

// Amman returns the application timezone used for formatting and scheduling.
func Amman() *time.Location {
	return amman
}

// FormatAppointmentTime renders an appointment time the way the app shows it,
// e.g. "Monday, July 21, 2025 at 02:00 PM".
func FormatAppointmentTime(t time.Time) string {
	return t.In(amman).Format("Monday, January 2, 2006 at 03:04 PM")
}

// FormatReadingTime renders a vital-sign reading time in the compact form used
// in doctor alerts, e.g. "Mon, Jul 21, 2025, 02:00 PM".
func FormatReadingTime(t time.Time) string {
	return t.In(amman).Format("Mon, Jan 2, 2006, 03:04 PM")
}

// FormatClockTime renders just the local time of day, e.g. "02:00 PM".
func FormatClockTime(t time.Time) string {
	return t.In(amman).Format("03:04 PM")
}

// TomorrowWindow returns the [start, end) bounds of the whole next calendar
// day in the application timezone, as seen from the given instant.
func TomorrowWindow(now time.Time) (time.Time, time.Time) {
	local := now.In(amman)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, amman).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, 1)
}
