package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/safespace/safespace_backend/models"
)

const notificationsCollection = "notifications"

// NotificationRepository owns the users/{id}/notifications subcollection.
// Create is deliberately not idempotent; rule evaluators deduplicate before
// calling it.
type NotificationRepository struct {
	client *firestore.Client
}

func NewNotificationRepository(client *firestore.Client) *NotificationRepository {
	return &NotificationRepository{client: client}
}

func (r *NotificationRepository) collection(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(notificationsCollection)
}

// Create writes one in-app notification record for the user.
func (r *NotificationRepository) Create(ctx context.Context, userID, title, body string) error {
	doc := r.collection(userID).Doc(uuid.NewString())
	_, err := doc.Set(ctx, models.Notification{
		Title:     title,
		Body:      body,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create notification for %s: %w", userID, err)
	}
	return nil
}

// ExistsWithTitleSince reports whether the user already has a notification
// with the exact title created at or after the given instant. Used for the
// drastic-vitals cooldown.
func (r *NotificationRepository) ExistsWithTitleSince(ctx context.Context, userID, title string, since time.Time) (bool, error) {
	iter := r.collection(userID).
		Where("title", "==", title).
		Where("timestamp", ">=", since).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query recent notifications for %s: %w", userID, err)
	}
	return true, nil
}

// ExistsUnreadWithTitle reports whether the user has an unread notification
// with the exact title. Used for the patient-message dedup.
func (r *NotificationRepository) ExistsUnreadWithTitle(ctx context.Context, userID, title string) (bool, error) {
	iter := r.collection(userID).
		Where("title", "==", title).
		Where("read", "==", false).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query unread notifications for %s: %w", userID, err)
	}
	return true, nil
}

// ListUnreadUndigested returns the user's notifications that are unread and
// not yet included in any digest email.
func (r *NotificationRepository) ListUnreadUndigested(ctx context.Context, userID string) ([]models.Notification, error) {
	iter := r.collection(userID).
		Where("read", "==", false).
		Where("digestSent", "==", false).
		Documents(ctx)
	defer iter.Stop()

	var notifications []models.Notification
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list unread notifications for %s: %w", userID, err)
		}

		var n models.Notification
		if err := snap.DataTo(&n); err != nil {
			continue
		}
		n.ID = snap.Ref.ID
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkDigestSent flips digestSent on the given notification documents.
// Each chunk of up to maxBatchWrites commits atomically; chunks are
// independent of each other.
func (r *NotificationRepository) MarkDigestSent(ctx context.Context, userID string, ids []string) error {
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.collection(userID).Doc(id))
	}
	return commitChunked(ctx, r.client, refs, func(b *firestore.WriteBatch, ref *firestore.DocumentRef) {
		b.Update(ref, []firestore.Update{{Path: "digestSent", Value: true}})
	})
}
