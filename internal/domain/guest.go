package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for guest operations.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("guest name already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidParent = errors.New("invalid party head")
)

// Attendance is the tri-state RSVP answer. A guest starts with NoResponse;
// AttendanceAttending and AttendanceNotAttending are set by an RSVP
// submission or by an admin.
type Attendance string

const (
	AttendanceNoResponse   Attendance = "no_response"
	AttendanceAttending    Attendance = "attending"
	AttendanceNotAttending Attendance = "not_attending"
)

// Valid reports whether a is one of the three known attendance states.
func (a Attendance) Valid() bool {
	switch a {
	case AttendanceNoResponse, AttendanceAttending, AttendanceNotAttending:
		return true
	}
	return false
}

// Decided reports whether the guest has given a yes/no answer.
func (a Attendance) Decided() bool {
	return a == AttendanceAttending || a == AttendanceNotAttending
}

// Guest represents a single invitee. A guest with no ParentID is a party
// head; guests carrying a head's ID in ParentID are members of that party.
// swagger:model Guest
type Guest struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Attendance Attendance `json:"attendance"`
	ParentID   *string    `json:"parent_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewGuest returns a new Guest with attendance unset. ID is set by the
// repository on create.
func NewGuest(name, email string, parentID *string, createdAt, updatedAt time.Time) *Guest {
	return &Guest{
		Name:       name,
		Email:      email,
		Attendance: AttendanceNoResponse,
		ParentID:   parentID,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// GuestPatch carries optional field updates for a single guest. Nil fields
// are left untouched.
type GuestPatch struct {
	Name       *string
	Email      *string
	Phone      *string
	Attendance *Attendance
}

// GuestRepository defines storage operations for guests.
type GuestRepository interface {
	Create(ctx context.Context, guest *Guest) error
	GetByID(ctx context.Context, id string) (*Guest, error)
	List(ctx context.Context) ([]*Guest, error)
	ListByParentID(ctx context.Context, parentID string) ([]*Guest, error)
	// ExistsByName reports whether a guest with exactly this name exists
	// (case-sensitive).
	ExistsByName(ctx context.Context, name string) (bool, error)
	// FindByNameFold returns the first guest whose name matches
	// case-insensitively, or ErrNotFound.
	FindByNameFold(ctx context.Context, name string) (*Guest, error)
	Update(ctx context.Context, id string, patch GuestPatch) error
	UpdateAttendance(ctx context.Context, id string, attendance Attendance, email *string) error
	// UpdatePartyRSVP applies all member updates in one transaction.
	UpdatePartyRSVP(ctx context.Context, updates []MemberUpdate) error
	// DeleteWithMembers removes the guest and any guests referencing it as
	// their party head, in one transaction. Deleting an unknown id is a no-op.
	DeleteWithMembers(ctx context.Context, id string) error
}

// DirectoryService is the sole mutation/query surface over guest storage.
type DirectoryService interface {
	List(ctx context.Context) ([]*Guest, error)
	// Create inserts a new guest with attendance unset. Returns
	// ErrDuplicateName when a guest with the identical name already exists,
	// and ErrInvalidParent when parentID is unknown or not a party head.
	Create(ctx context.Context, name, email string, parentID *string) (*Guest, error)
	// Delete hard-deletes a guest by id; for a party head its members are
	// deleted too. Unknown ids are a no-op.
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch GuestPatch) (*Guest, error)
	UpdateSingleAttendance(ctx context.Context, id string, attendance Attendance, email *string) error
	UpdatePartyRSVP(ctx context.Context, updates []MemberUpdate) error
	// FindByName is a case-insensitive exact-match lookup.
	FindByName(ctx context.Context, name string) (*Guest, error)
	Report(ctx context.Context) (*RSVPReport, error)
	// Watch subscribes to directory snapshots, re-delivered after every
	// mutation. Cancel releases the subscription.
	Watch() (sub *DirectorySubscription, cancel func())
}
