package rules

import (
	"context"
	"fmt"
	"log"

	"github.com/safespace/safespace_backend/models"
)

// MessageRules notifies the non-sending party of a new chat message. Only the
// patient/assigned-doctor pairing produces notifications.
type MessageRules struct {
	users         UserStore
	notifications NotificationStore
	push          Pusher
}

func NewMessageRules(users UserStore, notifications NotificationStore, push Pusher) *MessageRules {
	return &MessageRules{users: users, notifications: notifications, push: push}
}

// OnCreated evaluates one new chat message.
func (r *MessageRules) OnCreated(ctx context.Context, msg *models.Message) error {
	recipientID, ok := msg.Recipient()
	if !ok {
		return nil
	}

	sender, err := r.users.GetUser(ctx, msg.SenderID)
	if err != nil {
		return fmt.Errorf("load sender %s: %w", msg.SenderID, err)
	}
	recipient, err := r.users.GetUser(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("load recipient %s: %w", recipientID, err)
	}
	if sender == nil || recipient == nil || recipient.FCMToken == "" {
		return nil
	}

	text := msg.Text
	if text == "" {
		text = "You have a new message."
	}
	body := fmt.Sprintf("%s: %s", sender.DisplayName(), text)

	switch {
	case recipient.IsPatient() && sender.IsDoctor() && recipient.DoctorID == sender.ID:
		// Doctor to their patient: always notify.
		return r.notify(ctx, recipient, TitleNewMessageFromDoctor, body)

	case sender.IsPatient() && recipient.IsDoctor() && sender.DoctorID == recipient.ID:
		// Patient to their doctor: one outstanding unread notification
		// stands in for any number of pending patient messages.
		pending, err := r.notifications.ExistsUnreadWithTitle(ctx, recipient.ID, TitleNewMessageFromPatient)
		if err != nil {
			return err
		}
		if pending {
			log.Printf("Skipped patient-message notification to doctor %s: one already unread", recipient.ID)
			return nil
		}
		return r.notify(ctx, recipient, TitleNewMessageFromPatient, body)
	}
	return nil
}

func (r *MessageRules) notify(ctx context.Context, recipient *models.User, title, body string) error {
	if err := r.notifications.Create(ctx, recipient.ID, title, body); err != nil {
		return err
	}
	if err := r.push.SendToToken(ctx, recipient.FCMToken, title, body, map[string]string{"type": "chat"}); err != nil {
		log.Printf("message push to %s failed: %v", recipient.ID, err)
	}
	return nil
}
