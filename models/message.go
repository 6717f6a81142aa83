package models

import (
	"strings"
	"time"
)

// Message mirrors a messages/{chatId}/chats/{id} document. A chat is keyed by
// its two parties as "{userA}_{userB}"; Firebase user ids never contain an
// underscore, so the key splits unambiguously.
type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Text      string
	IsRead    bool
	Timestamp time.Time
}

// MessageFromData decodes a raw chat message document.
func MessageFromData(chatID, id string, data map[string]interface{}) *Message {
	m := &Message{ID: id, ChatID: chatID}
	m.SenderID = coerceString(data["senderId"])
	m.Text = coerceString(data["text"])
	m.IsRead = coerceBool(data["isRead"])
	if t, ok := CoerceTime(data["timestamp"]); ok {
		m.Timestamp = t
	}
	return m
}

// ChatParties splits a chat key into its two user ids.
func ChatParties(chatID string) (string, string, bool) {
	parts := strings.SplitN(chatID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ChatIDCandidates returns both orderings of the pair key for two users. The
// chat flow writes the key in the order the chat was opened, so lookups check
// both.
func ChatIDCandidates(a, b string) []string {
	return []string{a + "_" + b, b + "_" + a}
}

// Recipient resolves the non-sending party of the message's chat. It returns
// false when the chat key is malformed or the sender is not one of the two
// parties.
func (m *Message) Recipient() (string, bool) {
	a, b, ok := ChatParties(m.ChatID)
	if !ok {
		return "", false
	}
	switch m.SenderID {
	case a:
		return b, true
	case b:
		return a, true
	}
	return "", false
}
