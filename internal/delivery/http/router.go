package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"weddingsite/internal/delivery/http/controllers"
	"weddingsite/internal/delivery/http/middleware"
	"weddingsite/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	authController *controllers.AuthController,
	rsvpController *controllers.RSVPController,
	guestController *controllers.GuestController,
	access domain.AccessService,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireSite := middleware.RequireGate(domain.GateSite, access)
	requireAdmin := middleware.RequireGate(domain.GateAdmin, access)

	// Access gates
	mux.HandleFunc("POST /auth", authController.VerifySite)
	mux.HandleFunc("GET /auth", authController.SiteStatus)
	mux.HandleFunc("POST /admin/auth", authController.VerifyAdmin)
	mux.HandleFunc("GET /admin/auth", authController.AdminStatus)

	// RSVP workflow (behind the site gate)
	mux.HandleFunc("GET /rsvp/search", requireSite(rsvpController.SearchParty))
	mux.HandleFunc("PUT /rsvp/party", requireSite(rsvpController.SubmitParty))
	mux.HandleFunc("PUT /rsvp/guests/{guestID}/attendance", requireSite(rsvpController.SubmitAttendance))

	// Admin panel
	mux.HandleFunc("GET /admin/guests", requireAdmin(guestController.ListGuests))
	mux.HandleFunc("POST /admin/guests", requireAdmin(guestController.CreateGuest))
	mux.HandleFunc("PATCH /admin/guests/{guestID}", requireAdmin(guestController.UpdateGuest))
	mux.HandleFunc("DELETE /admin/guests/{guestID}", requireAdmin(guestController.DeleteGuest))
	mux.HandleFunc("GET /admin/guests/ws", requireAdmin(guestController.WatchGuests))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
