package rules

import (
	"context"
	"log"
	"time"
)

// LifecycleRules are the maintenance sweeps over appointment records.
type LifecycleRules struct {
	appointments AppointmentStore
	staleAge     time.Duration
}

func NewLifecycleRules(appointments AppointmentStore, staleAge time.Duration) *LifecycleRules {
	return &LifecycleRules{appointments: appointments, staleAge: staleAge}
}

// CleanupStalePending deletes pending appointments left unanswered past the
// staleness threshold.
func (r *LifecycleRules) CleanupStalePending(ctx context.Context) error {
	cutoff := time.Now().Add(-r.staleAge)
	deleted, err := r.appointments.DeleteStalePending(ctx, cutoff)
	if err != nil {
		return err
	}
	log.Printf("stale pending cleanup complete: %d deleted", deleted)
	return nil
}

// AutoCompletePast moves confirmed appointments whose time has passed to
// completed.
func (r *LifecycleRules) AutoCompletePast(ctx context.Context) error {
	completed, err := r.appointments.CompletePast(ctx, time.Now())
	if err != nil {
		return err
	}
	log.Printf("auto-complete sweep complete: %d completed", completed)
	return nil
}
