package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventregistration/internal/delivery/http/helpers"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WelcomeResponse is the body of GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// SystemController serves the unauthenticated root and health endpoints.
type SystemController struct {
	Logger *slog.Logger
	Store  Pinger
}

func NewSystemController(logger *slog.Logger, store Pinger) *SystemController {
	return &SystemController{Logger: logger, Store: store}
}

// Welcome godoc
// @Summary Welcome message
// @Tags system
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router / [get]
func (c *SystemController) Welcome(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, WelcomeResponse{Message: "Welcome to the event registration API"})
}

// Healthz godoc
// @Summary Liveness and store check
// @Tags system
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /healthz [get]
func (c *SystemController) Healthz(w http.ResponseWriter, r *http.Request) {
	if c.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.Store.Ping(ctx); err != nil {
			c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "store unavailable")
			return
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}
