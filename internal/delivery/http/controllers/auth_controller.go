package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/delivery/http/middleware"
	"weddingsite/internal/domain"
)

// VerifyPasswordRequest is the request body for POST /auth and POST /admin/auth.
type VerifyPasswordRequest struct {
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (v VerifyPasswordRequest) Validate() []string {
	if v.Password == "" {
		return []string{"password is required"}
	}
	return nil
}

// VerifyPasswordResponse is the response body for a passed gate.
type VerifyPasswordResponse struct {
	Success bool `json:"success"`
}

// AuthStatusResponse is the response body for GET /auth and GET /admin/auth.
type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
}

type AuthController struct {
	Logger *slog.Logger
	Access domain.AccessService
	Secure bool
}

// NewAuthController creates the controller for both access gates. secure
// controls the cookie Secure flag (off for plain-HTTP development).
func NewAuthController(logger *slog.Logger, access domain.AccessService, secure bool) *AuthController {
	return &AuthController{
		Logger: logger,
		Access: access,
		Secure: secure,
	}
}

// VerifySite godoc
// @Summary Unlock the site
// @Description Check the shared site password. On success sets the access cookie (7-day expiry).
// @Tags auth
// @Accept json
// @Produce json
// @Param body body VerifyPasswordRequest true "Site password"
// @Success 200 {object} helpers.APIResponse "data contains success:true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth [post]
func (c *AuthController) VerifySite(w http.ResponseWriter, r *http.Request) {
	c.verify(w, r, domain.GateSite)
}

// VerifyAdmin godoc
// @Summary Unlock the admin panel
// @Description Check the shared admin password. On success sets the admin cookie (7-day expiry).
// @Tags auth
// @Accept json
// @Produce json
// @Param body body VerifyPasswordRequest true "Admin password"
// @Success 200 {object} helpers.APIResponse "data contains success:true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/auth [post]
func (c *AuthController) VerifyAdmin(w http.ResponseWriter, r *http.Request) {
	c.verify(w, r, domain.GateAdmin)
}

func (c *AuthController) verify(w http.ResponseWriter, r *http.Request, gate domain.Gate) {
	var req VerifyPasswordRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	token, expiry, err := c.Access.Verify(gate, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "incorrect password")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieForGate(gate),
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(expiry),
		MaxAge:   int(expiry.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.WriteJSONSuccess(w, http.StatusOK, VerifyPasswordResponse{Success: true})
}

// SiteStatus godoc
// @Summary Read site access status
// @Description Reports whether the request carries a valid site access cookie. Missing or expired cookies read as not authenticated.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains authenticated flag"
// @Router /auth [get]
func (c *AuthController) SiteStatus(w http.ResponseWriter, r *http.Request) {
	c.status(w, r, domain.GateSite)
}

// AdminStatus godoc
// @Summary Read admin access status
// @Description Reports whether the request carries a valid admin cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains authenticated flag"
// @Router /admin/auth [get]
func (c *AuthController) AdminStatus(w http.ResponseWriter, r *http.Request) {
	c.status(w, r, domain.GateAdmin)
}

func (c *AuthController) status(w http.ResponseWriter, r *http.Request, gate domain.Gate) {
	authenticated := false
	if cookie, err := r.Cookie(middleware.CookieForGate(gate)); err == nil {
		authenticated = c.Access.IsGranted(gate, cookie.Value)
	}
	h.WriteJSONSuccess(w, http.StatusOK, AuthStatusResponse{Authenticated: authenticated})
}
