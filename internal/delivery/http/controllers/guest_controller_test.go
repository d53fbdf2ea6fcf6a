package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

type mockDirectoryService struct {
	guests    []*domain.Guest
	listErr   error
	created   *domain.Guest
	createErr error
	deleted   []string
	deleteErr error
	updated   *domain.Guest
	updateErr error
	snapshots chan *domain.DirectorySnapshot
}

func (m *mockDirectoryService) List(ctx context.Context) ([]*domain.Guest, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.guests, nil
}

func (m *mockDirectoryService) Create(ctx context.Context, name, email string, parentID *string) (*domain.Guest, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *mockDirectoryService) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDirectoryService) Update(ctx context.Context, id string, patch domain.GuestPatch) (*domain.Guest, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updated, nil
}

func (m *mockDirectoryService) UpdateSingleAttendance(ctx context.Context, id string, attendance domain.Attendance, email *string) error {
	return nil
}

func (m *mockDirectoryService) UpdatePartyRSVP(ctx context.Context, updates []domain.MemberUpdate) error {
	return nil
}

func (m *mockDirectoryService) FindByName(ctx context.Context, name string) (*domain.Guest, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDirectoryService) Report(ctx context.Context) (*domain.RSVPReport, error) {
	return domain.NewRSVPReport(m.guests), nil
}

func (m *mockDirectoryService) Watch() (*domain.DirectorySubscription, func()) {
	if m.snapshots == nil {
		m.snapshots = make(chan *domain.DirectorySnapshot, 1)
	}
	sub := &domain.DirectorySubscription{ID: "test-sub", Snapshots: m.snapshots}
	return sub, func() {}
}

func TestGuestController_ListGuests(t *testing.T) {
	svc := &mockDirectoryService{
		guests: []*domain.Guest{
			{ID: headID, Name: "Nicole Smith", Attendance: domain.AttendanceAttending},
			{ID: memberID, Name: "Alex Smith", Attendance: domain.AttendanceNoResponse},
		},
	}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/guests", nil)
	w := httptest.NewRecorder()

	ctrl.ListGuests(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Data GuestListResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Data.Guests) != 2 {
		t.Fatalf("expected 2 guests, got %d", len(resp.Data.Guests))
	}
	if resp.Data.Report == nil {
		t.Fatal("expected a report alongside the list")
	}
	if resp.Data.Report.Total != 2 || resp.Data.Report.Attending != 1 || resp.Data.Report.NoResponse != 1 {
		t.Errorf("unexpected report: %+v", resp.Data.Report)
	}
}

func TestGuestController_ListGuests_Error(t *testing.T) {
	svc := &mockDirectoryService{listErr: context.DeadlineExceeded}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/guests", nil)
	w := httptest.NewRecorder()

	ctrl.ListGuests(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestGuestController_CreateGuest_Success(t *testing.T) {
	svc := &mockDirectoryService{
		created: &domain.Guest{ID: headID, Name: "Nicole Smith", Attendance: domain.AttendanceNoResponse},
	}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	body := strings.NewReader(`{"name":"Nicole Smith"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/guests", body)
	w := httptest.NewRecorder()

	ctrl.CreateGuest(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var resp struct {
		Data domain.Guest `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.Attendance != domain.AttendanceNoResponse {
		t.Errorf("expected new guest with no_response, got %q", resp.Data.Attendance)
	}
}

func TestGuestController_CreateGuest_DuplicateName(t *testing.T) {
	svc := &mockDirectoryService{createErr: domain.ErrDuplicateName}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	body := strings.NewReader(`{"name":"Nicole Smith"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/guests", body)
	w := httptest.NewRecorder()

	ctrl.CreateGuest(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}

	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeConflict {
		t.Fatalf("expected error code %q, got %+v", helpers.ErrCodeConflict, resp.Error)
	}
}

func TestGuestController_CreateGuest_InvalidParent(t *testing.T) {
	svc := &mockDirectoryService{createErr: domain.ErrInvalidParent}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	body := strings.NewReader(`{"name":"Alex Smith","parent_id":"` + headID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/guests", body)
	w := httptest.NewRecorder()

	ctrl.CreateGuest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGuestController_CreateGuest_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{}`},
		{name: "blank name", body: `{"name":"   "}`},
		{name: "bad parent id", body: `{"name":"Alex","parent_id":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewGuestController(discardLogger(), &mockDirectoryService{}, nil)

			req := httptest.NewRequest(http.MethodPost, "/admin/guests", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			ctrl.CreateGuest(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestGuestController_DeleteGuest(t *testing.T) {
	svc := &mockDirectoryService{}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/admin/guests/"+headID, nil)
	req.SetPathValue("guestID", headID)
	w := httptest.NewRecorder()

	ctrl.DeleteGuest(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != headID {
		t.Errorf("expected delete of %s, got %v", headID, svc.deleted)
	}
}

func TestGuestController_DeleteGuest_InvalidID(t *testing.T) {
	ctrl := NewGuestController(discardLogger(), &mockDirectoryService{}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/admin/guests/nope", nil)
	req.SetPathValue("guestID", "nope")
	w := httptest.NewRecorder()

	ctrl.DeleteGuest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGuestController_UpdateGuest_Success(t *testing.T) {
	svc := &mockDirectoryService{
		updated: &domain.Guest{ID: headID, Name: "Nicole Jones", Attendance: domain.AttendanceAttending},
	}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	body := strings.NewReader(`{"name":"Nicole Jones","attendance":"attending"}`)
	req := httptest.NewRequest(http.MethodPatch, "/admin/guests/"+headID, body)
	req.SetPathValue("guestID", headID)
	w := httptest.NewRecorder()

	ctrl.UpdateGuest(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Data domain.Guest `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.Name != "Nicole Jones" {
		t.Errorf("expected updated name, got %q", resp.Data.Name)
	}
}

func TestGuestController_UpdateGuest_NotFound(t *testing.T) {
	svc := &mockDirectoryService{updateErr: domain.ErrNotFound}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	body := strings.NewReader(`{"name":"Nicole Jones"}`)
	req := httptest.NewRequest(http.MethodPatch, "/admin/guests/"+headID, body)
	req.SetPathValue("guestID", headID)
	w := httptest.NewRecorder()

	ctrl.UpdateGuest(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGuestController_UpdateGuest_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty patch", body: `{}`},
		{name: "blank name", body: `{"name":""}`},
		{name: "bad attendance", body: `{"attendance":"maybe"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewGuestController(discardLogger(), &mockDirectoryService{}, nil)

			req := httptest.NewRequest(http.MethodPatch, "/admin/guests/"+headID, strings.NewReader(tt.body))
			req.SetPathValue("guestID", headID)
			w := httptest.NewRecorder()

			ctrl.UpdateGuest(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestGuestController_WatchGuests(t *testing.T) {
	svc := &mockDirectoryService{
		guests:    []*domain.Guest{{ID: headID, Name: "Nicole Smith"}},
		snapshots: make(chan *domain.DirectorySnapshot, 1),
	}
	ctrl := NewGuestController(discardLogger(), svc, nil)

	server := httptest.NewServer(http.HandlerFunc(ctrl.WatchGuests))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var initial domain.DirectorySnapshot
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("failed to read initial snapshot: %v", err)
	}
	if len(initial.Guests) != 1 || initial.Guests[0].Name != "Nicole Smith" {
		t.Fatalf("unexpected initial snapshot: %+v", initial)
	}

	updated := []*domain.Guest{
		{ID: headID, Name: "Nicole Smith", Attendance: domain.AttendanceAttending},
	}
	svc.snapshots <- &domain.DirectorySnapshot{Guests: updated, Report: domain.NewRSVPReport(updated)}

	var next domain.DirectorySnapshot
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("failed to read pushed snapshot: %v", err)
	}
	if next.Report == nil || next.Report.Attending != 1 {
		t.Fatalf("unexpected pushed snapshot: %+v", next)
	}
}
