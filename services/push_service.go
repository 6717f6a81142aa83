package services

import (
	"context"
	"fmt"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// PushService delivers push notifications through Firebase Cloud Messaging.
// Delivery is best-effort; callers log and swallow errors so a failed push
// never blocks the notification record write.
type PushService struct {
	client *messaging.Client
}

// NewPushService obtains an FCM messaging client from the Firebase app.
func NewPushService(ctx context.Context, app *firebase.App) (*PushService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &PushService{client: client}, nil
}

// SendToToken sends one notification to a device token. The data payload is
// merged over a default set so the app can always route the tap.
func (s *PushService) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	payload := map[string]string{
		"type":      "general",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range data {
		payload[k] = v
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "safespace_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
					Badge: func() *int { v := 1; return &v }(),
				},
			},
		},
	}

	response, err := s.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}
	log.Printf("FCM notification sent: %s", response)
	return nil
}
