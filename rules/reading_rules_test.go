package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safespace/safespace_backend/models"
)

func reading(hr, temp, spo2 float64) *models.Reading {
	return &models.Reading{
		ID:          "rd-1",
		PatientID:   "patient-1",
		HeartRate:   hr,
		Temperature: temp,
		SpO2:        spo2,
		Timestamp:   time.Date(2025, 7, 21, 11, 0, 0, 0, time.UTC),
	}
}

func TestDrasticParts(t *testing.T) {
	tests := []struct {
		name            string
		hr, temp, spo2  float64
		wantParts       int
	}{
		{"high heart rate only", 130, 36, 95, 1},
		{"all normal", 70, 36, 95, 0},
		{"boundary values are normal", 50, 37.5, 90, 0},
		{"low heart rate", 49, 36, 95, 1},
		{"just above heart rate band", 121, 36, 95, 1},
		{"low temperature", 70, 26, 95, 1},
		{"high temperature", 70, 37.6, 95, 1},
		{"low spo2", 70, 36, 89, 1},
		{"everything drastic", 130, 40, 80, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, drasticParts(reading(tt.hr, tt.temp, tt.spo2)), tt.wantParts)
		})
	}
}

func newReadingRules(users *fakeUserStore, notifications *fakeNotificationStore, push *fakePusher, guard AlertGuard) *ReadingRules {
	return NewReadingRules(users, notifications, push, guard, time.Hour)
}

func TestOnCreated_NormalReadingIsNoOp(t *testing.T) {
	notifications := newFakeNotificationStore()
	push := &fakePusher{}
	r := newReadingRules(testUsers(), notifications, push, nil)

	require.NoError(t, r.OnCreated(context.Background(), reading(70, 36, 95)))
	assert.Empty(t, notifications.created)
	assert.Empty(t, push.sent)
}

func TestOnCreated_DrasticReadingAlertsDoctor(t *testing.T) {
	notifications := newFakeNotificationStore()
	push := &fakePusher{}
	r := newReadingRules(testUsers(), notifications, push, nil)

	require.NoError(t, r.OnCreated(context.Background(), reading(130, 36, 95)))

	require.Len(t, notifications.created, 1)
	assert.Equal(t, "doctor-1", notifications.created[0].userID)
	assert.Equal(t, TitleDrasticVitals, notifications.created[0].title)
	assert.Contains(t, notifications.created[0].body, "Heart Rate: 130 bpm")
	assert.Contains(t, notifications.created[0].body, "Lina")
	assert.NotContains(t, notifications.created[0].body, "Temperature")

	require.Len(t, push.sent, 1)
	assert.Equal(t, "tok-d", push.sent[0].token)
}

func TestOnCreated_CooldownSuppressesSecondAlert(t *testing.T) {
	notifications := newFakeNotificationStore()
	notifications.recentTitles["doctor-1|"+TitleDrasticVitals] = true
	push := &fakePusher{}
	r := newReadingRules(testUsers(), notifications, push, nil)

	require.NoError(t, r.OnCreated(context.Background(), reading(130, 36, 95)))
	assert.Empty(t, notifications.created)
	assert.Empty(t, push.sent)
}

func TestOnCreated_GuardDenySuppresses(t *testing.T) {
	notifications := newFakeNotificationStore()
	push := &fakePusher{}
	guard := &fakeGuard{allow: false}
	r := newReadingRules(testUsers(), notifications, push, guard)

	require.NoError(t, r.OnCreated(context.Background(), reading(130, 36, 95)))
	assert.Empty(t, notifications.created)
	assert.Empty(t, push.sent)
	require.Len(t, guard.keys, 1)
	assert.Equal(t, "vitals-alert:doctor-1", guard.keys[0])
}

func TestOnCreated_NoDoctorTokenIsNoOp(t *testing.T) {
	users := testUsers()
	users.users["doctor-1"].FCMToken = ""
	notifications := newFakeNotificationStore()
	r := newReadingRules(users, notifications, &fakePusher{}, nil)

	require.NoError(t, r.OnCreated(context.Background(), reading(130, 36, 95)))
	assert.Empty(t, notifications.created)
}

func TestOnCreated_UnassignedPatientIsNoOp(t *testing.T) {
	users := testUsers()
	users.users["patient-1"].DoctorID = ""
	notifications := newFakeNotificationStore()
	r := newReadingRules(users, notifications, &fakePusher{}, nil)

	require.NoError(t, r.OnCreated(context.Background(), reading(130, 36, 95)))
	assert.Empty(t, notifications.created)
}

func TestOnCreated_PushFailureStillWritesRecord(t *testing.T) {
	notifications := newFakeNotificationStore()
	r := newReadingRules(testUsers(), notifications, &fakePusher{err: assert.AnError}, nil)

	require.NoError(t, r.OnCreated(context.Background(), reading(130, 36, 95)))
	assert.Len(t, notifications.created, 1)
}
