package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// SearchPartySuccessResponse is the success response envelope for GET /rsvp/search (200).
type SearchPartySuccessResponse struct {
	Data  *domain.Party `json:"data"`
	Error *h.APIError   `json:"error"`
}

// SearchParty godoc
// @Summary Find a party by guest name
// @Description Case-insensitive exact-match lookup. A match on any party member returns the whole party (head plus members) seeded from stored values.
// @Tags rsvp
// @Produce json
// @Param name query string true "Guest name"
// @Success 200 {object} controllers.SearchPartySuccessResponse "data contains head and members"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/search [get]
func (c *RSVPController) SearchParty(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "name is required")
		return
	}

	party, err := c.Service.FindParty(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "guest not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, party)
}

// MemberUpdateRequest is one member patch inside a party submission.
type MemberUpdateRequest struct {
	ID         string `json:"id"`
	Attendance string `json:"attendance"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// SubmitPartyRequest is the request body for PUT /rsvp/party.
type SubmitPartyRequest struct {
	Members []MemberUpdateRequest `json:"members"`
}

// Validate implements helpers.Validator.
func (s SubmitPartyRequest) Validate() []string {
	var errs []string
	if len(s.Members) == 0 {
		return []string{"members is required"}
	}
	for _, m := range s.Members {
		if m.ID == "" {
			errs = append(errs, "member id is required")
			continue
		}
		if !uuidRegex.MatchString(m.ID) {
			errs = append(errs, "invalid member id")
		}
		switch domain.Attendance(m.Attendance) {
		case domain.AttendanceAttending, domain.AttendanceNotAttending:
		default:
			errs = append(errs, "attendance must be \"attending\" or \"not_attending\"")
		}
	}
	return errs
}

// SubmitParty godoc
// @Summary Submit a party RSVP
// @Description Applies one patch per party member, all-or-nothing. Every member needs a decided attendance; attending members need non-empty email and phone.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param body body SubmitPartyRequest true "Member patches"
// @Success 200 {object} helpers.APIResponse "data contains submitted member count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown member id)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/party [put]
func (c *RSVPController) SubmitParty(w http.ResponseWriter, r *http.Request) {
	var req SubmitPartyRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	updates := make([]domain.MemberUpdate, 0, len(req.Members))
	for _, m := range req.Members {
		updates = append(updates, domain.MemberUpdate{
			ID:         m.ID,
			Attendance: domain.Attendance(m.Attendance),
			Email:      strings.TrimSpace(m.Email),
			Phone:      strings.TrimSpace(m.Phone),
		})
	}

	if err := c.Service.SubmitParty(r.Context(), updates); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "unknown party member")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]int{"submitted": len(updates)})
}

// SubmitAttendanceRequest is the request body for PUT /rsvp/guests/{guestID}/attendance.
type SubmitAttendanceRequest struct {
	Attendance string  `json:"attendance"`
	Email      *string `json:"email,omitempty"`
}

// Validate implements helpers.Validator.
func (s SubmitAttendanceRequest) Validate() []string {
	switch domain.Attendance(s.Attendance) {
	case domain.AttendanceAttending, domain.AttendanceNotAttending:
		return nil
	}
	return []string{"attendance must be \"attending\" or \"not_attending\""}
}

// SubmitAttendance godoc
// @Summary Submit a single guest's attendance
// @Description The single-guest flow: sets attendance and optionally email on exactly one record.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param guestID path string true "Guest ID (UUID)"
// @Param body body SubmitAttendanceRequest true "Attendance answer"
// @Success 200 {object} helpers.APIResponse "data contains the guest id"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/guests/{guestID}/attendance [put]
func (c *RSVPController) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	guestID := r.PathValue("guestID")
	if guestID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing guestID")
		return
	}
	if !uuidRegex.MatchString(guestID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid guestID")
		return
	}

	var req SubmitAttendanceRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	err := c.Service.SubmitSingle(r.Context(), guestID, domain.Attendance(req.Attendance), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "guest not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": guestID})
}
