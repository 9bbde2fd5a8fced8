package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventregistration/docs"
	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
	"eventregistration/internal/metrics"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	System        *controllers.SystemController
	Users         *controllers.UserController
	Events        *controllers.EventController
	Notifications *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	authenticated := middleware.RequireAuth(verifier, logger)
	organizer := middleware.RequireRole(domain.RoleOrganizer)

	// System
	mux.HandleFunc("GET /{$}", c.System.Welcome)
	mux.HandleFunc("GET /healthz", c.System.Healthz)

	// Users
	mux.HandleFunc("POST /users/signup", c.Users.SignUp)
	mux.HandleFunc("POST /users/signin", c.Users.SignIn)

	// Events
	createEvent := middleware.Chain(c.Events.CreateEvent, authenticated, organizer)
	mux.HandleFunc("POST /events", createEvent)
	mux.HandleFunc("POST /create-events", createEvent)
	mux.HandleFunc("GET /events", middleware.Chain(c.Events.ListEvents, authenticated))
	mux.HandleFunc("POST /register-for-event", middleware.Chain(c.Events.RegisterForEvent, authenticated))

	// Notifications
	mux.HandleFunc("POST /send-notification", middleware.Chain(c.Notifications.SendNotification, authenticated, organizer))
	mux.HandleFunc("GET /email-status", middleware.Chain(c.Notifications.EmailStatus, authenticated, organizer))

	// Metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry}))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with the cross-cutting middleware. Metrics sits below RequestID
// so it observes the request the mux fills in with the matched pattern.
func NewHandler(mux *http.ServeMux, logger *slog.Logger, allowedOrigins []string) http.Handler {
	var h http.Handler = mux
	h = middleware.CORS(allowedOrigins, h)
	h = middleware.Metrics(h)
	h = middleware.LoggingMiddleware(logger, h)
	h = middleware.RequestID(h)
	return h
}
