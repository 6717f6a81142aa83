package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/safespace/safespace_backend/models"
)

const appointmentsCollection = "appointments"

// AppointmentRepository runs the cross-user collection-group queries over all
// users/{id}/appointments subcollections used by the periodic sweeps.
type AppointmentRepository struct {
	client *firestore.Client
}

func NewAppointmentRepository(client *firestore.Client) *AppointmentRepository {
	return &AppointmentRepository{client: client}
}

// decodeGroupDoc turns a collection-group document into an Appointment,
// resolving the owning patient from the document path.
func decodeGroupDoc(snap *firestore.DocumentSnapshot) *models.Appointment {
	ownerID := ""
	if parent := snap.Ref.Parent.Parent; parent != nil {
		ownerID = parent.ID
	}
	return models.AppointmentFromData(ownerID, snap.Ref.ID, snap.Data())
}

// ConfirmedBetween returns every confirmed appointment whose dateTime falls
// in [from, to), across all patients.
func (r *AppointmentRepository) ConfirmedBetween(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	iter := r.client.CollectionGroup(appointmentsCollection).
		Where("status", "==", string(models.StatusConfirmed)).
		Where("dateTime", ">=", from).
		Where("dateTime", "<", to).
		Documents(ctx)
	defer iter.Stop()

	var appointments []*models.Appointment
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query confirmed appointments: %w", err)
		}
		appointments = append(appointments, decodeGroupDoc(snap))
	}
	return appointments, nil
}

// DeleteStalePending deletes pending appointments older than the cutoff and
// returns how many were removed. Staleness is decided in code rather than the
// query because the age basis falls back from createdAt to dateTime
// (models.Appointment.StaleEligible); the pending set is small. Deletes are
// committed in atomic chunks.
func (r *AppointmentRepository) DeleteStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	iter := r.client.CollectionGroup(appointmentsCollection).
		Where("status", "==", string(models.StatusPending)).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("query pending appointments: %w", err)
		}
		if decodeGroupDoc(snap).StaleEligible(cutoff) {
			refs = append(refs, snap.Ref)
		}
	}

	if err := commitChunked(ctx, r.client, refs, func(b *firestore.WriteBatch, ref *firestore.DocumentRef) {
		b.Delete(ref)
	}); err != nil {
		return 0, err
	}
	return len(refs), nil
}

// CompletePast transitions confirmed appointments whose time has passed to
// completed and returns how many were updated. Updates are committed in
// atomic chunks; a retried sweep re-matches only documents still confirmed,
// so duplicate invocations cannot corrupt state.
func (r *AppointmentRepository) CompletePast(ctx context.Context, now time.Time) (int, error) {
	iter := r.client.CollectionGroup(appointmentsCollection).
		Where("status", "==", string(models.StatusConfirmed)).
		Where("dateTime", "<", now).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("query past confirmed appointments: %w", err)
		}
		if decodeGroupDoc(snap).CompleteEligible(now) {
			refs = append(refs, snap.Ref)
		}
	}

	if err := commitChunked(ctx, r.client, refs, func(b *firestore.WriteBatch, ref *firestore.DocumentRef) {
		b.Update(ref, []firestore.Update{{Path: "status", Value: string(models.StatusCompleted)}})
	}); err != nil {
		return 0, err
	}
	return len(refs), nil
}
