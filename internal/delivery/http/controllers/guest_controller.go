package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

type GuestController struct {
	Logger   *slog.Logger
	Service  domain.DirectoryService
	upgrader websocket.Upgrader
}

func NewGuestController(logger *slog.Logger, svc domain.DirectoryService, wsOrigins []string) *GuestController {
	allowed := make(map[string]struct{}, len(wsOrigins))
	for _, o := range wsOrigins {
		allowed[strings.TrimSuffix(strings.TrimSpace(o), "/")] = struct{}{}
	}
	return &GuestController{
		Logger:  logger,
		Service: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[strings.TrimSuffix(origin, "/")]
				return ok
			},
		},
	}
}

// GuestListResponse is the payload for GET /admin/guests: the full guest
// list plus the derived attendance counts.
type GuestListResponse struct {
	Guests []*domain.Guest    `json:"guests"`
	Report *domain.RSVPReport `json:"report"`
}

// ListGuests godoc
// @Summary List all guests with attendance counts
// @Description Returns every guest ordered by name, plus total/attending/not-attending/no-response counts derived from the same list. No pagination.
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains guests and report"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/guests [get]
func (c *GuestController) ListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := c.Service.List(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, GuestListResponse{
		Guests: guests,
		Report: domain.NewRSVPReport(guests),
	})
}

// CreateGuestRequest is the request body for POST /admin/guests.
type CreateGuestRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

// Validate implements helpers.Validator.
func (c CreateGuestRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.ParentID != nil && !uuidRegex.MatchString(*c.ParentID) {
		errs = append(errs, "invalid parent_id")
	}
	return errs
}

// CreateGuest godoc
// @Summary Create a guest
// @Description Creates a guest with attendance unset. A duplicate name (case-sensitive) is rejected. Optional parent_id links the guest into an existing party; the referenced guest must itself be a party head.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateGuestRequest true "Guest data"
// @Success 201 {object} helpers.APIResponse "data contains the created guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate name)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/guests [post]
func (c *GuestController) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req CreateGuestRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	guest, err := c.Service.Create(r.Context(), req.Name, req.Email, req.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "a guest with this name already exists")
			return
		}
		if errors.Is(err, domain.ErrInvalidParent) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "parent_id must reference an existing party head")
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
	h.WriteJSONSuccess(w, http.StatusCreated, guest)
}

// DeleteGuest godoc
// @Summary Delete a guest
// @Description Hard-deletes a guest by id. Deleting a party head deletes its members too. Unknown ids succeed as a no-op.
// @Tags admin
// @Produce json
// @Param guestID path string true "Guest ID (UUID)"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/guests/{guestID} [delete]
func (c *GuestController) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	guestID := r.PathValue("guestID")
	if guestID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing guestID")
		return
	}
	if !uuidRegex.MatchString(guestID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid guestID")
		return
	}

	if err := c.Service.Delete(r.Context(), guestID); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateGuestRequest is the request body for PATCH /admin/guests/{guestID}.
// Omitted fields are left untouched.
type UpdateGuestRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Attendance *string `json:"attendance,omitempty"`
}

// Validate implements helpers.Validator.
func (u UpdateGuestRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if u.Attendance != nil && !domain.Attendance(*u.Attendance).Valid() {
		errs = append(errs, "attendance must be \"no_response\", \"attending\", or \"not_attending\"")
	}
	if u.Name == nil && u.Email == nil && u.Phone == nil && u.Attendance == nil {
		errs = append(errs, "nothing to update")
	}
	return errs
}

// UpdateGuest godoc
// @Summary Update a guest
// @Description Patches any subset of name, email, phone, and attendance on one record. Renaming to an existing name is rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param guestID path string true "Guest ID (UUID)"
// @Param body body UpdateGuestRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate name)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/guests/{guestID} [patch]
func (c *GuestController) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	guestID := r.PathValue("guestID")
	if guestID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing guestID")
		return
	}
	if !uuidRegex.MatchString(guestID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid guestID")
		return
	}

	var req UpdateGuestRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	patch := domain.GuestPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if req.Attendance != nil {
		a := domain.Attendance(*req.Attendance)
		patch.Attendance = &a
	}

	guest, err := c.Service.Update(r.Context(), guestID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "guest not found")
			return
		}
		if errors.Is(err, domain.ErrDuplicateName) {
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "a guest with this name already exists")
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
	h.WriteJSONSuccess(w, http.StatusOK, guest)
}

// WatchGuests godoc
// @Summary Subscribe to live guest list updates
// @Description Upgrades to a websocket and delivers the current guest list plus report, then a fresh snapshot after every directory change. Subscribers hold no cache of their own.
// @Tags admin
// @Success 101 "switching protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /admin/guests/ws [get]
func (c *GuestController) WatchGuests(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		c.Logger.ErrorContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sub, cancel := c.Service.Watch()
	defer cancel()

	// Seed the subscriber with the current state before any mutation fires.
	guests, err := c.Service.List(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "initial snapshot failed", "err", err)
		return
	}
	initial := &domain.DirectorySnapshot{Guests: guests, Report: domain.NewRSVPReport(guests)}
	if err := conn.WriteJSON(initial); err != nil {
		return
	}

	// Reader goroutine: unblocks when the client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.Snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
