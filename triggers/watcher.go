// Package triggers turns Firestore collection-group snapshot streams into the
// created/updated events the rule evaluators consume. A watcher keeps the
// last seen state of every document so an update event carries a before/after
// pair, matching the trigger contract the evaluators were written against.
package triggers

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/safespace/safespace_backend/models"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Handlers are the rule entry points the watcher dispatches to. Update
// handlers are a slice because independent rules (patient-facing change rule,
// doctor-facing reschedule rule, re-pending rule) react to the same
// transition without calling each other.
type Handlers struct {
	AppointmentCreated func(ctx context.Context, appt *models.Appointment) error
	AppointmentUpdated []func(ctx context.Context, before, after *models.Appointment) error
	ReadingCreated     func(ctx context.Context, rd *models.Reading) error
	MessageCreated     func(ctx context.Context, msg *models.Message) error
}

// Watcher runs one snapshot listener per watched collection group.
type Watcher struct {
	client   *firestore.Client
	handlers Handlers
}

func NewWatcher(client *firestore.Client, handlers Handlers) *Watcher {
	return &Watcher{client: client, handlers: handlers}
}

// Start launches the listeners. Each reconnects with exponential backoff and
// runs until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx, "appointments", w.runAppointments)
	go w.watch(ctx, "readings", w.runReadings)
	go w.watch(ctx, "chats", w.runMessages)
}

func (w *Watcher) watch(ctx context.Context, name string, run func(context.Context) error) {
	backoff := reconnectBackoff
	for {
		err := run(ctx)
		if ctx.Err() != nil {
			log.Printf("%s watcher stopped", name)
			return
		}
		log.Printf("%s watcher disconnected, reconnecting in %s: %v", name, backoff, err)

		select {
		case <-time.After(backoff):
			if backoff *= 2; backoff > maxReconnect {
				backoff = maxReconnect
			}
		case <-ctx.Done():
			return
		}
	}
}

// dispatch runs one rule invocation in its own goroutine. An error or panic
// aborts only that invocation.
func dispatch(name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("%s handler panic: %v", name, r)
			}
		}()
		if err := fn(); err != nil {
			log.Printf("%s handler: %v", name, err)
		}
	}()
}

// ownerID resolves the parent document id of a subcollection document
// (the user for appointments/readings/notifications, the chat for messages).
func ownerID(snap *firestore.DocumentSnapshot) string {
	if parent := snap.Ref.Parent.Parent; parent != nil {
		return parent.ID
	}
	return ""
}

func (w *Watcher) runAppointments(ctx context.Context) error {
	iter := w.client.CollectionGroup("appointments").Snapshots(ctx)
	defer iter.Stop()

	// The first snapshot replays every existing document as an Added change;
	// it only seeds the before-state cache, otherwise a restart would replay
	// every appointment as freshly created.
	prev := make(map[string]*models.Appointment)
	baseline := true

	for {
		qs, err := iter.Next()
		if err != nil {
			return err
		}

		for _, change := range qs.Changes {
			path := change.Doc.Ref.Path
			switch change.Kind {
			case firestore.DocumentAdded:
				appt := models.AppointmentFromData(ownerID(change.Doc), change.Doc.Ref.ID, change.Doc.Data())
				prev[path] = appt
				if baseline {
					continue
				}
				if h := w.handlers.AppointmentCreated; h != nil {
					dispatch("appointment created", func() error { return h(ctx, appt) })
				}
			case firestore.DocumentModified:
				after := models.AppointmentFromData(ownerID(change.Doc), change.Doc.Ref.ID, change.Doc.Data())
				before := prev[path]
				prev[path] = after
				if before == nil {
					continue
				}
				for _, h := range w.handlers.AppointmentUpdated {
					h := h
					dispatch("appointment updated", func() error { return h(ctx, before, after) })
				}
			case firestore.DocumentRemoved:
				delete(prev, path)
			}
		}
		baseline = false
	}
}

func (w *Watcher) runReadings(ctx context.Context) error {
	iter := w.client.CollectionGroup("readings").Snapshots(ctx)
	defer iter.Stop()

	baseline := true
	for {
		qs, err := iter.Next()
		if err != nil {
			return err
		}

		for _, change := range qs.Changes {
			if change.Kind != firestore.DocumentAdded || baseline {
				continue
			}
			rd := models.ReadingFromData(ownerID(change.Doc), change.Doc.Ref.ID, change.Doc.Data())
			if h := w.handlers.ReadingCreated; h != nil {
				dispatch("reading created", func() error { return h(ctx, rd) })
			}
		}
		baseline = false
	}
}

func (w *Watcher) runMessages(ctx context.Context) error {
	iter := w.client.CollectionGroup("chats").Snapshots(ctx)
	defer iter.Stop()

	baseline := true
	for {
		qs, err := iter.Next()
		if err != nil {
			return err
		}

		for _, change := range qs.Changes {
			if change.Kind != firestore.DocumentAdded || baseline {
				continue
			}
			msg := models.MessageFromData(ownerID(change.Doc), change.Doc.Ref.ID, change.Doc.Data())
			if h := w.handlers.MessageCreated; h != nil {
				dispatch("message created", func() error { return h(ctx, msg) })
			}
		}
		baseline = false
	}
}
