package rules

import (
	"context"
	"time"

	"github.com/safespace/safespace_backend/models"
)

// In-memory fakes for the store and delivery interfaces.

type fakeUserStore struct {
	users    map[string]*models.User
	patients []*models.User
	err      error
}

func (f *fakeUserStore) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeUserStore) GetDoctorFor(_ context.Context, patient *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if patient == nil || patient.DoctorID == "" {
		return nil, nil
	}
	doctor := f.users[patient.DoctorID]
	if doctor == nil || !doctor.IsDoctor() {
		return nil, nil
	}
	return doctor, nil
}

func (f *fakeUserStore) ListPatients(_ context.Context) ([]*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.patients, nil
}

type createdNotification struct {
	userID, title, body string
}

type fakeNotificationStore struct {
	created      []createdNotification
	createErr    error
	recentTitles map[string]bool // userID + "|" + title
	unreadTitles map[string]bool // userID + "|" + title
	unread       map[string][]models.Notification
	unreadErr    map[string]error
	digested     map[string][]string
	queryErr     error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{
		recentTitles: make(map[string]bool),
		unreadTitles: make(map[string]bool),
		unread:       make(map[string][]models.Notification),
		unreadErr:    make(map[string]error),
		digested:     make(map[string][]string),
	}
}

func (f *fakeNotificationStore) Create(_ context.Context, userID, title, body string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, createdNotification{userID, title, body})
	return nil
}

func (f *fakeNotificationStore) ExistsWithTitleSince(_ context.Context, userID, title string, _ time.Time) (bool, error) {
	if f.queryErr != nil {
		return false, f.queryErr
	}
	return f.recentTitles[userID+"|"+title], nil
}

func (f *fakeNotificationStore) ExistsUnreadWithTitle(_ context.Context, userID, title string) (bool, error) {
	if f.queryErr != nil {
		return false, f.queryErr
	}
	return f.unreadTitles[userID+"|"+title], nil
}

func (f *fakeNotificationStore) ListUnreadUndigested(_ context.Context, userID string) ([]models.Notification, error) {
	if err := f.unreadErr[userID]; err != nil {
		return nil, err
	}
	return f.unread[userID], nil
}

func (f *fakeNotificationStore) MarkDigestSent(_ context.Context, userID string, ids []string) error {
	f.digested[userID] = append(f.digested[userID], ids...)
	return nil
}

type pushRecord struct {
	token, title, body string
}

type fakePusher struct {
	sent []pushRecord
	err  error
}

func (f *fakePusher) SendToToken(_ context.Context, token, title, body string, _ map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, pushRecord{token, title, body})
	return nil
}

type emailRecord struct {
	to, fromName, subject, text string
}

type fakeEmailer struct {
	enabled bool
	sent    []emailRecord
	err     error
}

func (f *fakeEmailer) Enabled() bool { return f.enabled }

func (f *fakeEmailer) Send(to, _, fromName, subject, text, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, emailRecord{to, fromName, subject, text})
	return nil
}

type fakeAppointmentStore struct {
	confirmed     []*models.Appointment
	confirmedFrom time.Time
	confirmedTo   time.Time
	err           error

	deleteCutoff time.Time
	deleted      int
	completeNow  time.Time
	completed    int
}

func (f *fakeAppointmentStore) ConfirmedBetween(_ context.Context, from, to time.Time) ([]*models.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.confirmedFrom, f.confirmedTo = from, to
	return f.confirmed, nil
}

func (f *fakeAppointmentStore) DeleteStalePending(_ context.Context, cutoff time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.deleteCutoff = cutoff
	return f.deleted, nil
}

func (f *fakeAppointmentStore) CompletePast(_ context.Context, now time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.completeNow = now
	return f.completed, nil
}

type fakeMessageStore struct {
	counts map[string]int // patientID + "|" + doctorID
	err    error
}

func (f *fakeMessageStore) CountUnreadFrom(_ context.Context, patientID, doctorID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[patientID+"|"+doctorID], nil
}

type fakeGuard struct {
	allow bool
	keys  []string
}

func (f *fakeGuard) Acquire(_ context.Context, key string, _ time.Duration) bool {
	f.keys = append(f.keys, key)
	return f.allow
}
