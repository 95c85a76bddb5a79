package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talentbase/eventsync/app/importer"
	"github.com/talentbase/eventsync/app/metrics"
)

// EventbriteWebhook receives RSVP push notifications. The config.action field
// discriminates: "order.placed" funnels the order's attendee through the
// upsert chain, "test" (sent by the vendor when registering the webhook) is
// acknowledged without side effects, anything else is ignored. Every error is
// converted into a JSON body whose status_code mirrors the HTTP status.
func (h *Handler) EventbriteWebhook(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		h.webhookReply(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.webhookReply(c, http.StatusBadRequest, "Invalid webhook body: "+err.Error())
		return
	}

	metrics.WebhookEvents.WithLabelValues("eventbrite", payload.Config.Action).Inc()

	switch payload.Config.Action {
	case "test":
		h.webhookReply(c, http.StatusOK, "Webhook received")
	case "order.placed":
		if err := h.processOrderPlaced(c, userID, payload); err != nil {
			slog.Error("Webhook processing failed", "user_id", userID,
				"action", payload.Config.Action, "error", err)
			h.webhookReply(c, http.StatusInternalServerError, err.Error())
			return
		}
		h.webhookReply(c, http.StatusOK, "Attendee imported")
	default:
		slog.Debug("Ignoring webhook action", "user_id", userID, "action", payload.Config.Action)
		h.webhookReply(c, http.StatusOK, "Action ignored")
	}
}

// processOrderPlaced runs the single-attendee version of the import chain:
// fetch the order behind the notification, resolve the local event row, and
// thread the attendee through the same upsert sequence the batch importer
// uses.
func (h *Handler) processOrderPlaced(c *gin.Context, userID int64, payload webhookPayload) error {
	if payload.APIURL == "" {
		return fmt.Errorf("webhook payload has no api_url")
	}

	creds, err := h.credentialRepo.GetCredentials(importer.SocialNetworkEventbrite, userID)
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}
	if len(creds) == 0 {
		return fmt.Errorf("no eventbrite credential for user %d", userID)
	}
	cred := creds[0]

	fetcher, err := h.newOrderFetcher(cred)
	if err != nil {
		return fmt.Errorf("failed to build vendor client: %w", err)
	}

	attendee, vendorEventID, err := fetcher.FetchOrderAttendee(c.Request.Context(), payload.APIURL)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}

	event, err := h.eventRepo.GetEventByVendorID(userID, importer.SocialNetworkEventbrite, vendorEventID)
	if err != nil {
		return fmt.Errorf("failed to look up event: %w", err)
	}
	if event == nil {
		return fmt.Errorf("event %s not found for user %d", vendorEventID, userID)
	}

	attendee.Event = *event
	attendee.UserID = cred.UserID
	attendee.NetworkID = cred.SocialNetworkID
	attendee.ProductID = importer.SourceProductEventbrite

	if _, err := h.writer.Run(attendee); err != nil {
		return fmt.Errorf("failed to persist attendee: %w", err)
	}

	metrics.RSVPsImported.Inc()
	slog.Info("Webhook attendee imported", "user_id", userID, "event", vendorEventID,
		"rsvp", attendee.RSVP.VendorRSVPID)
	return nil
}

func (h *Handler) webhookReply(c *gin.Context, status int, message string) {
	c.JSON(status, webhookResponse{
		Message:    message,
		StatusCode: status,
	})
}
