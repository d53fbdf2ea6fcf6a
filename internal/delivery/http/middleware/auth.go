package middleware

import (
	"net/http"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// Cookie names for the two access gates.
const (
	SiteCookieName  = "wedding_access"
	AdminCookieName = "wedding_admin"
)

// CookieForGate returns the cookie name carrying the credential for a gate.
func CookieForGate(gate domain.Gate) string {
	if gate == domain.GateAdmin {
		return AdminCookieName
	}
	return SiteCookieName
}

// RequireGate returns a wrapper that checks the gate cookie against the
// access service. A missing, expired, or invalid credential responds with
// 401 and does not call next.
func RequireGate(gate domain.Gate, access domain.AccessService) func(http.HandlerFunc) http.HandlerFunc {
	cookieName := CookieForGate(gate)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "access required")
				return
			}
			if !access.IsGranted(gate, cookie.Value) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired access")
				return
			}
			next(w, r)
		}
	}
}
