package models

import "time"

// Notification mirrors a users/{userId}/notifications/{id} document. Created
// exclusively by this service; `read` is flipped by the client app and
// `digestSent` by the digest sweep once the record has been emailed.
type Notification struct {
	ID         string    `firestore:"-"`
	Title      string    `firestore:"title"`
	Body       string    `firestore:"body"`
	Timestamp  time.Time `firestore:"timestamp"`
	Read       bool      `firestore:"read"`
	DigestSent bool      `firestore:"digestSent"`
}
