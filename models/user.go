package models

// Role of a Safe Space account.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// User mirrors a users/{id} document. Accounts are created and mutated by the
// mobile app's auth flow; this service only reads them.
type User struct {
	ID       string `firestore:"-"`
	Role     Role   `firestore:"role"`
	DoctorID string `firestore:"doctorId"` // patient's assigned doctor, empty when unassigned
	FCMToken string `firestore:"fcmToken"`
	Email    string `firestore:"email"`
	Name     string `firestore:"name"`
}

func (u *User) IsPatient() bool { return u.Role == RolePatient }

func (u *User) IsDoctor() bool { return u.Role == RoleDoctor }

// DisplayName falls back to a role-appropriate label when the profile has no
// name, matching the copy used in notification bodies.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Role == RoleDoctor {
		return "Your Doctor"
	}
	return "A patient"
}
