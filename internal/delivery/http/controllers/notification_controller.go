package controllers

import (
	"log/slog"
	"net/http"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

// SendNotificationRequest is the request body for POST /send-notification.
// An empty recipientEmails list sends to every participant.
type SendNotificationRequest struct {
	Subject         string   `json:"subject" validate:"required"`
	Message         string   `json:"message" validate:"required"`
	RecipientEmails []string `json:"recipientEmails" validate:"omitempty,dive,required"`
}

// SendNotificationSuccessResponse is the success response envelope for POST /send-notification (200).
type SendNotificationSuccessResponse struct {
	Data  domain.BroadcastResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// EmailStatusSuccessResponse is the success response envelope for GET /email-status (200).
type EmailStatusSuccessResponse struct {
	Data  *domain.EmailStatus `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// NotificationController handles the organizer-facing email endpoints.
type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// SendNotification godoc
// @Summary Send a custom email
// @Description Sends subject and message to each recipient in order, or to every participant when recipientEmails is empty. Organizer only. One failed recipient never stops the rest.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendNotificationRequest true "Message"
// @Success 200 {object} controllers.SendNotificationSuccessResponse "data contains successCount and failureCount"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /send-notification [post]
func (c *NotificationController) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req SendNotificationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.BroadcastCustom(r.Context(), req.Subject, req.Message, req.RecipientEmails)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// EmailStatus godoc
// @Summary Email transport status
// @Description Reports the mail provider, the result of a transport check and the notification queue counters. Organizer only.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EmailStatusSuccessResponse "data contains the status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /email-status [get]
func (c *NotificationController) EmailStatus(w http.ResponseWriter, r *http.Request) {
	status, err := c.Service.Status(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "email status check failed", "path", r.URL.Path, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}
