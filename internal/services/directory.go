package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weddingsite/internal/domain"
)

type directoryService struct {
	guestRepo domain.GuestRepository
	watcher   *watchHub
	logger    *slog.Logger
}

// NewDirectoryService creates the DirectoryService over the given repository.
// Every successful mutation broadcasts a fresh snapshot to watchers.
func NewDirectoryService(guestRepo domain.GuestRepository, logger *slog.Logger) domain.DirectoryService {
	return &directoryService{
		guestRepo: guestRepo,
		watcher:   newWatchHub(),
		logger:    logger,
	}
}

func (s *directoryService) List(ctx context.Context) ([]*domain.Guest, error) {
	guests, err := s.guestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	return guests, nil
}

func (s *directoryService) Create(ctx context.Context, name, email string, parentID *string) (*domain.Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	// The duplicate check is deliberately case-sensitive: "Nicole" and
	// "nicole" may coexist, even though self-service search folds case.
	exists, err := s.guestRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check guest name: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateName
	}

	if parentID != nil {
		head, err := s.guestRepo.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrInvalidParent
			}
			return nil, fmt.Errorf("get party head: %w", err)
		}
		// Parties are exactly two levels: a member cannot head a party.
		if head.ParentID != nil {
			return nil, domain.ErrInvalidParent
		}
	}

	now := time.Now()
	guest := domain.NewGuest(name, strings.TrimSpace(email), parentID, now, now)
	if err := s.guestRepo.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	s.notify(ctx)
	return guest, nil
}

func (s *directoryService) Delete(ctx context.Context, id string) error {
	// Idempotent by contract: deleting an unknown id is a no-op. Heads take
	// their party members with them.
	if err := s.guestRepo.DeleteWithMembers(ctx, id); err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *directoryService) Update(ctx context.Context, id string, patch domain.GuestPatch) (*domain.Guest, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		patch.Name = &trimmed
	}
	if patch.Attendance != nil && !patch.Attendance.Valid() {
		return nil, fmt.Errorf("%w: unknown attendance %q", domain.ErrInvalidInput, *patch.Attendance)
	}
	if err := s.guestRepo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicateName) {
			return nil, err
		}
		return nil, fmt.Errorf("update guest: %w", err)
	}
	guest, err := s.guestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload guest: %w", err)
	}
	s.notify(ctx)
	return guest, nil
}

func (s *directoryService) UpdateSingleAttendance(ctx context.Context, id string, attendance domain.Attendance, email *string) error {
	if !attendance.Decided() {
		return fmt.Errorf("%w: attendance must be attending or not_attending", domain.ErrInvalidInput)
	}
	if err := s.guestRepo.UpdateAttendance(ctx, id, attendance, email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update attendance: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *directoryService) UpdatePartyRSVP(ctx context.Context, updates []domain.MemberUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: no members to update", domain.ErrInvalidInput)
	}
	if err := s.guestRepo.UpdatePartyRSVP(ctx, updates); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update party: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *directoryService) FindByName(ctx context.Context, name string) (*domain.Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	guest, err := s.guestRepo.FindByNameFold(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find guest by name: %w", err)
	}
	return guest, nil
}

func (s *directoryService) Report(ctx context.Context) (*domain.RSVPReport, error) {
	guests, err := s.guestRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return domain.NewRSVPReport(guests), nil
}

func (s *directoryService) Watch() (*domain.DirectorySubscription, func()) {
	return s.watcher.subscribe()
}

// notify rebuilds the current snapshot and re-delivers it to every watcher.
// Watchers hold no cache of their own, so a failed rebuild just skips this
// round of delivery.
func (s *directoryService) notify(ctx context.Context) {
	if s.watcher.empty() {
		return
	}
	guests, err := s.guestRepo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "snapshot rebuild failed", "err", err)
		return
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	s.watcher.broadcast(&domain.DirectorySnapshot{
		Guests: guests,
		Report: domain.NewRSVPReport(guests),
	})
}
