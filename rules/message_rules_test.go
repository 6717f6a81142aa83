package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safespace/safespace_backend/models"
)

func chatMessage(chatID, senderID, text string) *models.Message {
	return &models.Message{ID: "msg-1", ChatID: chatID, SenderID: senderID, Text: text}
}

func TestMessageOnCreated_DoctorToPatient(t *testing.T) {
	notifications := newFakeNotificationStore()
	push := &fakePusher{}
	r := NewMessageRules(testUsers(), notifications, push)

	err := r.OnCreated(context.Background(), chatMessage("patient-1_doctor-1", "doctor-1", "See you tomorrow"))
	require.NoError(t, err)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, "patient-1", notifications.created[0].userID)
	assert.Equal(t, TitleNewMessageFromDoctor, notifications.created[0].title)
	assert.Contains(t, notifications.created[0].body, "See you tomorrow")
	assert.Contains(t, notifications.created[0].body, "Haddad")
	require.Len(t, push.sent, 1)
	assert.Equal(t, "tok-p", push.sent[0].token)
}

func TestMessageOnCreated_EmptyTextUsesPlaceholder(t *testing.T) {
	notifications := newFakeNotificationStore()
	r := NewMessageRules(testUsers(), notifications, &fakePusher{})

	err := r.OnCreated(context.Background(), chatMessage("doctor-1_patient-1", "doctor-1", ""))
	require.NoError(t, err)

	require.Len(t, notifications.created, 1)
	assert.Contains(t, notifications.created[0].body, "You have a new message.")
}

func TestMessageOnCreated_PatientToDoctor(t *testing.T) {
	notifications := newFakeNotificationStore()
	push := &fakePusher{}
	r := NewMessageRules(testUsers(), notifications, push)

	err := r.OnCreated(context.Background(), chatMessage("patient-1_doctor-1", "patient-1", "I feel dizzy"))
	require.NoError(t, err)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, "doctor-1", notifications.created[0].userID)
	assert.Equal(t, TitleNewMessageFromPatient, notifications.created[0].title)
	assert.Len(t, push.sent, 1)
}

func TestMessageOnCreated_PatientToDoctorDedup(t *testing.T) {
	notifications := newFakeNotificationStore()
	notifications.unreadTitles["doctor-1|"+TitleNewMessageFromPatient] = true
	push := &fakePusher{}
	r := NewMessageRules(testUsers(), notifications, push)

	err := r.OnCreated(context.Background(), chatMessage("patient-1_doctor-1", "patient-1", "Still dizzy"))
	require.NoError(t, err)

	assert.Empty(t, notifications.created)
	assert.Empty(t, push.sent)
}

func TestMessageOnCreated_DoctorDedupDoesNotApplyToPatientDirection(t *testing.T) {
	notifications := newFakeNotificationStore()
	// An unread doctor-side notification must not suppress messages flowing
	// the other way.
	notifications.unreadTitles["doctor-1|"+TitleNewMessageFromPatient] = true
	r := NewMessageRules(testUsers(), notifications, &fakePusher{})

	err := r.OnCreated(context.Background(), chatMessage("patient-1_doctor-1", "doctor-1", "Reply"))
	require.NoError(t, err)
	assert.Len(t, notifications.created, 1)
}

func TestMessageOnCreated_NoOpCases(t *testing.T) {
	t.Run("recipient without token", func(t *testing.T) {
		users := testUsers()
		users.users["patient-1"].FCMToken = ""
		notifications := newFakeNotificationStore()
		r := NewMessageRules(users, notifications, &fakePusher{})

		require.NoError(t, r.OnCreated(context.Background(), chatMessage("patient-1_doctor-1", "doctor-1", "hi")))
		assert.Empty(t, notifications.created)
	})

	t.Run("sender is not the assigned doctor", func(t *testing.T) {
		users := testUsers()
		users.users["doctor-2"] = &models.User{ID: "doctor-2", Role: models.RoleDoctor, FCMToken: "tok-d2"}
		notifications := newFakeNotificationStore()
		r := NewMessageRules(users, notifications, &fakePusher{})

		require.NoError(t, r.OnCreated(context.Background(), chatMessage("patient-1_doctor-2", "doctor-2", "hi")))
		assert.Empty(t, notifications.created)
	})

	t.Run("malformed chat key", func(t *testing.T) {
		notifications := newFakeNotificationStore()
		r := NewMessageRules(testUsers(), notifications, &fakePusher{})

		require.NoError(t, r.OnCreated(context.Background(), chatMessage("justoneparty", "doctor-1", "hi")))
		assert.Empty(t, notifications.created)
	})

	t.Run("sender not a chat party", func(t *testing.T) {
		notifications := newFakeNotificationStore()
		r := NewMessageRules(testUsers(), notifications, &fakePusher{})

		require.NoError(t, r.OnCreated(context.Background(), chatMessage("patient-1_doctor-1", "intruder", "hi")))
		assert.Empty(t, notifications.created)
	})
}
