package api

import (
	"context"

	"github.com/talentbase/eventsync/app/database"
	"github.com/talentbase/eventsync/app/importer"
	"github.com/talentbase/eventsync/app/tasks"
)

// OrderFetcher resolves one webhook notification into an attendee record.
type OrderFetcher interface {
	FetchOrderAttendee(ctx context.Context, orderURL string) (importer.Attendee, string, error)
}

// OrderFetcherFactory builds an OrderFetcher bound to one user's credential.
type OrderFetcherFactory func(cred database.UserCredential) (OrderFetcher, error)

type Handler struct {
	credentialRepo  database.CredentialRepository
	eventRepo       database.EventRepository
	candidateRepo   database.CandidateRepository
	rsvpRepo        database.RSVPRepository
	activityRepo    database.ActivityRepository
	writer          *importer.Writer
	reconciler      *importer.Reconciler
	scheduler       tasks.TaskSchedulerInterface
	newOrderFetcher OrderFetcherFactory
}

// webhookPayload is the JSON body Eventbrite posts to the webhook endpoint.
type webhookPayload struct {
	Config struct {
		Action   string `json:"action"`
		UserID   string `json:"user_id"`
		Endpoint string `json:"endpoint_url"`
	} `json:"config"`
	APIURL string `json:"api_url"`
}

// webhookResponse mirrors the HTTP status in the body, as sibling services
// expect when consuming the acknowledgment.
type webhookResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// credentialRequest is the admin API body for registering vendor credentials.
type credentialRequest struct {
	UserID          int64  `json:"user_id" binding:"required"`
	SocialNetworkID int64  `json:"social_network_id" binding:"required"`
	AccessToken     string `json:"access_token" binding:"required"`
	RefreshToken    string `json:"refresh_token"`
	MemberID        string `json:"member_id"`
	Enabled         *bool  `json:"enabled"`
}
