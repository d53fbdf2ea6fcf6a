package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"weddingsite/internal/domain"
)

type rsvpService struct {
	guestRepo    domain.GuestRepository
	directory    domain.DirectoryService
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewRSVPService creates the RSVPService. emailService may be nil to disable
// confirmation emails.
func NewRSVPService(guestRepo domain.GuestRepository, directory domain.DirectoryService, emailService domain.EmailService, logger *slog.Logger) domain.RSVPService {
	return &rsvpService{
		guestRepo:    guestRepo,
		directory:    directory,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *rsvpService) FindParty(ctx context.Context, name string) (*domain.Party, error) {
	match, err := s.directory.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	// A matched party member resolves to its whole party.
	head := match
	if match.ParentID != nil {
		head, err = s.guestRepo.GetByID(ctx, *match.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Head was deleted out from under the member; treat the
				// member as its own single-guest party.
				head = match
			} else {
				return nil, fmt.Errorf("get party head: %w", err)
			}
		}
	}

	members, err := s.guestRepo.ListByParentID(ctx, head.ID)
	if err != nil {
		return nil, fmt.Errorf("list party members: %w", err)
	}
	if members == nil {
		members = []*domain.Guest{}
	}
	return &domain.Party{Head: head, Members: members}, nil
}

func (s *rsvpService) SubmitParty(ctx context.Context, updates []domain.MemberUpdate) error {
	if err := validatePartySubmission(updates); err != nil {
		return err
	}
	if err := s.directory.UpdatePartyRSVP(ctx, updates); err != nil {
		return err
	}
	s.sendConfirmations(ctx, updates)
	return nil
}

func (s *rsvpService) SubmitSingle(ctx context.Context, id string, attendance domain.Attendance, email *string) error {
	return s.directory.UpdateSingleAttendance(ctx, id, attendance, email)
}

// validatePartySubmission enforces the submit-ready rule: every member has a
// decided attendance, and attending members carry non-empty email and phone.
func validatePartySubmission(updates []domain.MemberUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no members to submit", domain.ErrInvalidInput)
	}
	for _, u := range updates {
		if u.ID == "" {
			return fmt.Errorf("%w: member id is required", domain.ErrInvalidInput)
		}
		if !u.Attendance.Decided() {
			return fmt.Errorf("%w: every member needs an attendance choice", domain.ErrInvalidInput)
		}
		if u.Attendance == domain.AttendanceAttending {
			if strings.TrimSpace(u.Email) == "" {
				return fmt.Errorf("%w: attending members need an email", domain.ErrInvalidInput)
			}
			if strings.TrimSpace(u.Phone) == "" {
				return fmt.Errorf("%w: attending members need a phone number", domain.ErrInvalidInput)
			}
		}
	}
	return nil
}

// sendConfirmations emails each attending member after a successful
// submission. Best-effort: the RSVP is already stored, so failures are
// logged and swallowed.
func (s *rsvpService) sendConfirmations(ctx context.Context, updates []domain.MemberUpdate) {
	if s.emailService == nil {
		return
	}
	for _, u := range updates {
		if u.Attendance != domain.AttendanceAttending || u.Email == "" {
			continue
		}
		guest, err := s.guestRepo.GetByID(ctx, u.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "confirmation lookup failed", "guest_id", u.ID, "err", err)
			continue
		}
		data := &domain.RSVPConfirmationEmailData{
			Email:     u.Email,
			GuestName: guest.Name,
			Attending: true,
		}
		if err := s.emailService.SendRSVPConfirmation(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "confirmation email failed", "guest_id", u.ID, "err", err)
		}
	}
}
