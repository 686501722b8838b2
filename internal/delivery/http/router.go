package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"calendrier/internal/delivery/http/controllers"
	h "calendrier/internal/delivery/http/helpers"
	"calendrier/internal/delivery/http/middleware"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	Events   *controllers.EventController
	Groups   *controllers.GroupController
	Calendar *controllers.CalendarController
}

// NewRouter initializes the HTTP router with all application routes.
// Everything except sign-up, sign-in, health and docs requires a bearer token.
func NewRouter(c Controllers, auth middleware.Authenticator, limiter *middleware.RateLimiter, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	protected := middleware.RequireAuth(auth, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", limiter.Limit(c.Auth.SignUp))
	mux.HandleFunc("POST /auth/signin", limiter.Limit(c.Auth.SignIn))
	mux.HandleFunc("POST /auth/signout", protected(c.Auth.SignOut))
	mux.HandleFunc("GET /auth/me", protected(c.Auth.Me))

	// Personal calendar
	mux.HandleFunc("GET /events", protected(c.Events.ListEvents))
	mux.HandleFunc("POST /events", protected(c.Events.CreateEvent))
	mux.HandleFunc("POST /events/slot", protected(c.Events.CreateFromSlot))
	mux.HandleFunc("GET /events/agenda", protected(c.Events.ListAgenda))
	mux.HandleFunc("GET /events/calendar.ics", protected(c.Calendar.ExportPersonal))
	mux.HandleFunc("POST /events/import", protected(c.Calendar.Import))
	mux.HandleFunc("GET /events/{eventID}", protected(c.Events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", protected(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", protected(c.Events.DeleteEvent))

	// Groups
	mux.HandleFunc("GET /groups", protected(c.Groups.ListMyGroups))
	mux.HandleFunc("POST /groups", protected(c.Groups.CreateGroup))
	mux.HandleFunc("POST /groups/join", protected(c.Groups.JoinGroup))
	mux.HandleFunc("GET /groups/{groupID}", protected(c.Groups.GetGroup))
	mux.HandleFunc("GET /groups/{groupID}/events", protected(c.Groups.ListGroupEvents))
	mux.HandleFunc("GET /groups/{groupID}/calendar.ics", protected(c.Calendar.ExportGroup))
	mux.HandleFunc("POST /groups/{groupID}/invitations", protected(c.Groups.InviteByEmail))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
