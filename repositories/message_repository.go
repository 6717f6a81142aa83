package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/safespace/safespace_backend/models"
)

const (
	messagesCollection = "messages"
	chatsSubcollection = "chats"
)

// MessageRepository reads messages/{chatId}/chats documents.
type MessageRepository struct {
	client *firestore.Client
}

func NewMessageRepository(client *firestore.Client) *MessageRepository {
	return &MessageRepository{client: client}
}

// CountUnreadFrom counts unread messages the doctor has sent in the pair chat
// with the patient. The chat key order depends on who opened the chat, so
// both orderings are checked; a missing chat simply contributes zero.
func (r *MessageRepository) CountUnreadFrom(ctx context.Context, patientID, doctorID string) (int, error) {
	total := 0
	for _, chatID := range models.ChatIDCandidates(patientID, doctorID) {
		n, err := r.countUnreadInChat(ctx, chatID, doctorID)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *MessageRepository) countUnreadInChat(ctx context.Context, chatID, senderID string) (int, error) {
	iter := r.client.Collection(messagesCollection).Doc(chatID).Collection(chatsSubcollection).
		Where("senderId", "==", senderID).
		Where("isRead", "==", false).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count unread messages in chat %s: %w", chatID, err)
		}
		count++
	}
	return count, nil
}
