package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentbase/eventsync/app/cfg"
	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
	"github.com/talentbase/eventsync/app/tasks"
)

func NewHandler(credentialRepo database.CredentialRepository, eventRepo database.EventRepository,
	candidateRepo database.CandidateRepository, rsvpRepo database.RSVPRepository,
	activityRepo database.ActivityRepository, writer *importer.Writer,
	reconciler *importer.Reconciler, scheduler tasks.TaskSchedulerInterface,
	newOrderFetcher OrderFetcherFactory) *Handler {
	return &Handler{
		credentialRepo:  credentialRepo,
		eventRepo:       eventRepo,
		candidateRepo:   candidateRepo,
		rsvpRepo:        rsvpRepo,
		activityRepo:    activityRepo,
		writer:          writer,
		reconciler:      reconciler,
		scheduler:       scheduler,
		newOrderFetcher: newOrderFetcher,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if credCount, err := h.credentialRepo.GetCredentialCount(); err == nil {
		health["credentials"] = credCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if count, err := h.eventRepo.GetEventCount(); err == nil {
		stats["events"] = count
	}
	if count, err := h.candidateRepo.GetCandidateCount(); err == nil {
		stats["candidates"] = count
	}
	if count, err := h.rsvpRepo.GetRSVPCount(); err == nil {
		stats["rsvps"] = count
	}
	if count, err := h.activityRepo.GetActivityCount(); err == nil {
		stats["activities"] = count
	}
	if count, err := h.credentialRepo.GetCredentialCount(); err == nil {
		stats["credentials"] = count
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListCredentials(c *gin.Context) {
	networks := []int64{importer.SocialNetworkMeetup, importer.SocialNetworkEventbrite}

	creds := make([]map[string]interface{}, 0)
	for _, networkID := range networks {
		networkCreds, err := h.credentialRepo.GetCredentials(networkID, 0)
		if err != nil {
			slog.Error("Database error", "operation", "get_credentials", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		for _, cred := range networkCreds {
			// Tokens stay out of the listing
			creds = append(creds, map[string]interface{}{
				"id":                cred.ID,
				"user_id":           cred.UserID,
				"social_network_id": cred.SocialNetworkID,
				"member_id":         cred.MemberID,
				"enabled":           cred.Enabled,
				"next_import_at":    cred.NextImportAt,
				"updated_at":        cred.UpdatedAt,
			})
		}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"credentials": creds,
		"total":       len(creds),
	})
}

func (h *Handler) APIUpsertCredential(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	id, err := h.credentialRepo.UpsertCredential(database.UserCredential{
		UserID:          req.UserID,
		SocialNetworkID: req.SocialNetworkID,
		AccessToken:     req.AccessToken,
		RefreshToken:    req.RefreshToken,
		MemberID:        req.MemberID,
		Enabled:         enabled,
	})
	if err != nil {
		slog.Error("Database error", "operation", "upsert_credential", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save credential"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}

// APITriggerImport enqueues an immediate import pass for one user's Meetup
// credential instead of waiting for the next scheduler tick.
func (h *Handler) APITriggerImport(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	creds, err := h.credentialRepo.GetCredentials(importer.SocialNetworkMeetup, userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_credentials", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if len(creds) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No credential found for user"})
		return
	}

	importInterval := time.Duration(cfg.Get().ImportInterval) * time.Second
	for _, cred := range creds {
		task := tasks.NewImportCredentialTask(cred, h.reconciler, h.credentialRepo, importInterval)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing import task", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue import task",
				"details": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Import task enqueued",
		"user_id": userID,
	})
}
