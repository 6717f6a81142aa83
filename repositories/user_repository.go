package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/safespace/safespace_backend/models"
)

const usersCollection = "users"

// UserRepository reads users/{id} documents.
type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

// GetUser loads one user. A missing document returns (nil, nil) so callers
// can treat it as a missing dependency rather than a failure.
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

// GetDoctorFor resolves a patient's assigned doctor. Returns (nil, nil) when
// the patient has no assignment or the referenced user is not a doctor.
func (r *UserRepository) GetDoctorFor(ctx context.Context, patient *models.User) (*models.User, error) {
	if patient == nil || patient.DoctorID == "" {
		return nil, nil
	}
	doctor, err := r.GetUser(ctx, patient.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || !doctor.IsDoctor() {
		return nil, nil
	}
	return doctor, nil
}

// ListPatients returns every patient account.
func (r *UserRepository) ListPatients(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).
		Where("role", "==", string(models.RolePatient)).
		Documents(ctx)
	defer iter.Stop()

	var patients []*models.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list patients: %w", err)
		}

		var user models.User
		if err := snap.DataTo(&user); err != nil {
			// A malformed profile must not abort the whole sweep.
			continue
		}
		user.ID = snap.Ref.ID
		patients = append(patients, &user)
	}
	return patients, nil
}
