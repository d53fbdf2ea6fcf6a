package domain

import "context"

// Party is the explicit two-level aggregate: one head guest plus the guests
// referencing it as their parent. There is no deeper nesting.
// swagger:model Party
type Party struct {
	Head    *Guest   `json:"head"`
	Members []*Guest `json:"members"`
}

// All returns the head followed by the members.
func (p *Party) All() []*Guest {
	out := make([]*Guest, 0, 1+len(p.Members))
	out = append(out, p.Head)
	out = append(out, p.Members...)
	return out
}

// MemberUpdate is one per-guest patch inside a party RSVP submission.
type MemberUpdate struct {
	ID         string     `json:"id"`
	Attendance Attendance `json:"attendance"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
}

// RSVPReport is the aggregate view shown on the admin panel. It is derived
// from the full guest list on demand, never stored; Total always equals
// Attending + NotAttending + NoResponse.
// swagger:model RSVPReport
type RSVPReport struct {
	Total        int `json:"total"`
	Attending    int `json:"attending"`
	NotAttending int `json:"not_attending"`
	NoResponse   int `json:"no_response"`
}

// NewRSVPReport counts attendance states across the given guests.
func NewRSVPReport(guests []*Guest) *RSVPReport {
	r := &RSVPReport{Total: len(guests)}
	for _, g := range guests {
		switch g.Attendance {
		case AttendanceAttending:
			r.Attending++
		case AttendanceNotAttending:
			r.NotAttending++
		default:
			r.NoResponse++
		}
	}
	return r
}

// DirectorySnapshot is what directory subscribers receive after each change:
// the full current guest list plus the derived report.
type DirectorySnapshot struct {
	Guests []*Guest    `json:"guests"`
	Report *RSVPReport `json:"report"`
}

// DirectorySubscription delivers snapshots until cancelled. The channel is
// closed on cancel.
type DirectorySubscription struct {
	ID        string
	Snapshots <-chan *DirectorySnapshot
}

// RSVPService drives the self-service RSVP workflow.
type RSVPService interface {
	// FindParty resolves a case-insensitive exact name match to the whole
	// party of the matched guest (head plus members), or ErrNotFound.
	FindParty(ctx context.Context, name string) (*Party, error)
	// SubmitParty validates that every member has a decided attendance and
	// that attending members carry non-empty email and phone, then applies
	// all patches atomically. Validation failures are ErrInvalidInput and
	// nothing is written.
	SubmitParty(ctx context.Context, updates []MemberUpdate) error
	// SubmitSingle is the single-guest flow: set attendance and optionally
	// email on one record.
	SubmitSingle(ctx context.Context, id string, attendance Attendance, email *string) error
}
