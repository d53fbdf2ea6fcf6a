package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"weddingsite/internal/domain"
)

type mockEmailService struct {
	mu   sync.Mutex
	sent []*domain.RSVPConfirmationEmailData
	err  error
}

func (m *mockEmailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

func newRSVPFixture() (*mockGuestRepository, *mockEmailService, domain.RSVPService) {
	repo := newMockGuestRepository()
	emails := &mockEmailService{}
	directory := NewDirectoryService(repo, testLogger())
	svc := NewRSVPService(repo, directory, emails, testLogger())
	return repo, emails, svc
}

func TestRSVPService_FindParty_ResolvesWholeParty(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newRSVPFixture()

	head := repo.seed("Bob", domain.AttendanceNoResponse, nil)
	repo.seed("Bob Junior", domain.AttendanceNoResponse, &head.ID)

	// Searching the head finds head + members.
	party, err := svc.FindParty(ctx, "bob")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if party.Head.ID != head.ID {
		t.Fatalf("expected head %s, got %s", head.ID, party.Head.ID)
	}
	if len(party.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(party.Members))
	}

	// Searching a member resolves to the same party.
	party, err = svc.FindParty(ctx, "BOB JUNIOR")
	if err != nil {
		t.Fatalf("find by member failed: %v", err)
	}
	if party.Head.ID != head.ID {
		t.Fatalf("member search should resolve to head %s, got %s", head.ID, party.Head.ID)
	}
}

func TestRSVPService_FindParty_NotFound(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newRSVPFixture()

	if _, err := svc.FindParty(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRSVPService_SubmitParty_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		updates []domain.MemberUpdate
	}{
		{
			name:    "empty submission",
			updates: nil,
		},
		{
			name: "undecided member",
			updates: []domain.MemberUpdate{
				{ID: "guest-1", Attendance: domain.AttendanceNoResponse},
			},
		},
		{
			name: "attending without email",
			updates: []domain.MemberUpdate{
				{ID: "guest-1", Attendance: domain.AttendanceAttending, Phone: "555-0100"},
			},
		},
		{
			name: "attending without phone",
			updates: []domain.MemberUpdate{
				{ID: "guest-1", Attendance: domain.AttendanceAttending, Email: "a@example.com"},
			},
		},
		{
			name: "one valid one incomplete",
			updates: []domain.MemberUpdate{
				{ID: "guest-1", Attendance: domain.AttendanceAttending, Email: "a@example.com", Phone: "555-0100"},
				{ID: "guest-2", Attendance: domain.AttendanceAttending, Phone: "555-0101"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newRSVPFixture()
			repo.seed("Alice", domain.AttendanceNoResponse, nil)
			repo.seed("Aaron", domain.AttendanceNoResponse, nil)

			err := svc.SubmitParty(ctx, tt.updates)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			// Nothing may be written on a rejected submission.
			guests, _ := repo.List(ctx)
			for _, g := range guests {
				if g.Attendance != domain.AttendanceNoResponse {
					t.Fatalf("guest %s was mutated by a rejected submission", g.Name)
				}
			}
		})
	}
}

func TestRSVPService_SubmitParty_DecliningNeedsNoContact(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newRSVPFixture()
	g := repo.seed("Alice", domain.AttendanceNoResponse, nil)

	err := svc.SubmitParty(ctx, []domain.MemberUpdate{
		{ID: g.ID, Attendance: domain.AttendanceNotAttending},
	})
	if err != nil {
		t.Fatalf("declining without contact info must be valid: %v", err)
	}
	updated, _ := repo.GetByID(ctx, g.ID)
	if updated.Attendance != domain.AttendanceNotAttending {
		t.Fatalf("attendance not stored: %+v", updated)
	}
}

func TestRSVPService_SubmitParty_WholePartyAttending(t *testing.T) {
	ctx := context.Background()
	repo, emails, svc := newRSVPFixture()

	head := repo.seed("Bob", domain.AttendanceNoResponse, nil)
	member := repo.seed("Bob Junior", domain.AttendanceNoResponse, &head.ID)

	err := svc.SubmitParty(ctx, []domain.MemberUpdate{
		{ID: head.ID, Attendance: domain.AttendanceAttending, Email: "bob@example.com", Phone: "555-0100"},
		{ID: member.ID, Attendance: domain.AttendanceAttending, Email: "junior@example.com", Phone: "555-0101"},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	for _, id := range []string{head.ID, member.ID} {
		g, _ := repo.GetByID(ctx, id)
		if g.Attendance != domain.AttendanceAttending {
			t.Fatalf("guest %s not marked attending", id)
		}
		if g.Email == "" || g.Phone == "" {
			t.Fatalf("guest %s missing stored contact info: %+v", id, g)
		}
	}

	if len(emails.sent) != 2 {
		t.Fatalf("expected 2 confirmation emails, got %d", len(emails.sent))
	}
}

func TestRSVPService_SubmitParty_EmailFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := newMockGuestRepository()
	emails := &mockEmailService{err: errors.New("ses down")}
	directory := NewDirectoryService(repo, testLogger())
	svc := NewRSVPService(repo, directory, emails, testLogger())

	g := repo.seed("Alice", domain.AttendanceNoResponse, nil)
	err := svc.SubmitParty(ctx, []domain.MemberUpdate{
		{ID: g.ID, Attendance: domain.AttendanceAttending, Email: "a@example.com", Phone: "555-0100"},
	})
	if err != nil {
		t.Fatalf("mail failure must not fail the submission: %v", err)
	}
	updated, _ := repo.GetByID(ctx, g.ID)
	if updated.Attendance != domain.AttendanceAttending {
		t.Fatal("submission was not stored")
	}
}

func TestRSVPService_SubmitSingle(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newRSVPFixture()
	g := repo.seed("Alice", domain.AttendanceNoResponse, nil)

	email := "alice@example.com"
	if err := svc.SubmitSingle(ctx, g.ID, domain.AttendanceAttending, &email); err != nil {
		t.Fatalf("submit single failed: %v", err)
	}
	updated, _ := repo.GetByID(ctx, g.ID)
	if updated.Attendance != domain.AttendanceAttending || updated.Email != email {
		t.Fatalf("single update not applied: %+v", updated)
	}

	if err := svc.SubmitSingle(ctx, "guest-404", domain.AttendanceAttending, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown guest, got %v", err)
	}
}
